package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/databases"
	mocksdb "github.com/durjog-prohori/durjog-prohori-api/databases/mocks"
)

func TestDonationDatabase_DebitBalanceConditionalWrite(t *testing.T) {
	var db databases.DatabaseHelper
	var balanceConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	balanceConn = &mocksdb.CollectionHelper{}

	var filter bson.M
	var update bson.M

	balanceConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Run(func(args mock.Arguments) {
		filter = args.Get(1).(bson.M)
		update = args.Get(2).(bson.M)
	})
	db.(*mocksdb.DatabaseHelper).On("Collection", "ngo_balances").Return(balanceConn)

	donationDB := databases.NewDonationDatabase(db)

	res, err := donationDB.DebitBalance(context.Background(), "ngo-1", 250.0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)

	// the sufficiency check lives in the filter, so an overdraw can never
	// match a document
	assert.Equal(t, bson.M{"_id": "ngo-1", "totalremaining": bson.M{"$gte": 250.0}}, filter)
	// remaining drops and withdrawn rises by the same amount, so
	// received == remaining + withdrawn holds across the write
	assert.Equal(t, bson.M{"$inc": bson.M{"totalremaining": -250.0, "totalwithdraw": 250.0}}, update)
}

func TestDonationDatabase_CreditBalanceIncPair(t *testing.T) {
	var db databases.DatabaseHelper
	var balanceConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	balanceConn = &mocksdb.CollectionHelper{}

	var filter bson.M
	var update bson.M
	var opts *options.UpdateOptions

	balanceConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Run(func(args mock.Arguments) {
		filter = args.Get(1).(bson.M)
		update = args.Get(2).(bson.M)
		opts = args.Get(3).(*options.UpdateOptions)
	})
	db.(*mocksdb.DatabaseHelper).On("Collection", "ngo_balances").Return(balanceConn)

	donationDB := databases.NewDonationDatabase(db)

	err := donationDB.CreditBalance(context.Background(), "ngo-1", 600.0)
	assert.NoError(t, err)

	assert.Equal(t, bson.M{"_id": "ngo-1"}, filter)
	// a credit grows received and remaining in lockstep and never touches
	// withdrawn
	assert.Equal(t, bson.M{"$inc": bson.M{"totalreceived": 600.0, "totalremaining": 600.0}}, update)
	// the first donation for an ngo creates its balance document
	if assert.NotNil(t, opts) && assert.NotNil(t, opts.Upsert) {
		assert.True(t, *opts.Upsert)
	}
}
