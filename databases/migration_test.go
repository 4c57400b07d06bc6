package databases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/durjog-prohori/durjog-prohori-api/databases"
	mocksdb "github.com/durjog-prohori/durjog-prohori-api/databases/mocks"
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

func TestRunMigrations_AppliesEachVersionOnce(t *testing.T) {
	orig := databases.Migrations
	defer func() { databases.Migrations = orig }()

	runs := 0
	databases.Migrations = []databases.Migration{
		{
			Version: 99,
			Name:    "rewrite-something",
			Run: func(ctx context.Context, db databases.DatabaseHelper) error {
				runs++
				return nil
			},
		},
	}

	var db databases.DatabaseHelper
	var migrationConn databases.CollectionHelper
	var missingResult databases.SingleResultHelper
	var appliedResult databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	migrationConn = &mocksdb.CollectionHelper{}
	missingResult = &mocksdb.SingleResultHelper{}
	appliedResult = &mocksdb.SingleResultHelper{}

	missingResult.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	appliedResult.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil)

	// no record on the first pass, a record on every pass after
	migrationConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, bson.M{"_id": 99}).Return(missingResult).Once()
	migrationConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, bson.M{"_id": 99}).Return(appliedResult)

	var recorded bson.M
	migrationConn.(*mocksdb.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil).Run(func(args mock.Arguments) {
		recorded = args.Get(1).(bson.M)
	})

	db.(*mocksdb.DatabaseHelper).On("Collection", "schema_migrations").Return(migrationConn)

	err := databases.RunMigrations(context.Background(), db)
	assert.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 99, recorded["_id"])
	assert.Equal(t, "rewrite-something", recorded["name"])

	// a second run sees the record and leaves the data alone
	err = databases.RunMigrations(context.Background(), db)
	assert.NoError(t, err)
	assert.Equal(t, 1, runs)
	migrationConn.(*mocksdb.CollectionHelper).AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestRunMigrations_RegistryBodies(t *testing.T) {
	var db databases.DatabaseHelper
	var migrationConn databases.CollectionHelper
	var reportConn databases.CollectionHelper
	var missingResult databases.SingleResultHelper
	var legacyCursor databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	migrationConn = &mocksdb.CollectionHelper{}
	reportConn = &mocksdb.CollectionHelper{}
	missingResult = &mocksdb.SingleResultHelper{}
	legacyCursor = &mocksdb.CursorHelper{}

	missingResult.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	migrationConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(missingResult)
	migrationConn.(*mocksdb.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)

	type manyCall struct {
		filter bson.M
		update bson.M
	}
	var manyCalls []manyCall
	reportConn.(*mocksdb.CollectionHelper).On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{}, nil).Run(func(args mock.Arguments) {
		manyCalls = append(manyCalls, manyCall{
			filter: args.Get(1).(bson.M),
			update: args.Get(2).(bson.M),
		})
	})

	legacyID := primitive.NewObjectID()
	createdAt := primitive.NewDateTimeFromTime(time.Now())
	legacyCursor.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{{ID: legacyID, Status: "open", CreatedAt: createdAt}}
	})
	reportConn.(*mocksdb.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(legacyCursor, nil)

	var backfillUpdate bson.M
	reportConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, bson.M{"_id": legacyID}, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Run(func(args mock.Arguments) {
		backfillUpdate = args.Get(2).(bson.M)
	})

	db.(*mocksdb.DatabaseHelper).On("Collection", "schema_migrations").Return(migrationConn)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(reportConn)

	err := databases.RunMigrations(context.Background(), db)
	assert.NoError(t, err)

	// legacy numeric visible flags become booleans
	if assert.Len(t, manyCalls, 2) {
		assert.Equal(t, bson.M{"visible": 1}, manyCalls[0].filter)
		assert.Equal(t, bson.M{"$set": bson.M{"visible": true}}, manyCalls[0].update)
		assert.Equal(t, bson.M{"visible": 0}, manyCalls[1].filter)
		assert.Equal(t, bson.M{"$set": bson.M{"visible": false}}, manyCalls[1].update)
	}

	// reports without an audit trail get a creation entry; an unknown legacy
	// status falls back to pending
	assert.Equal(t, bson.M{"$set": bson.M{"statusHistory": []models.StatusHistoryEntry{{
		Status:        models.StatusPending,
		ChangedBy:     "system",
		ChangedByType: "migration",
		Timestamp:     createdAt,
	}}}}, backfillUpdate)
}
