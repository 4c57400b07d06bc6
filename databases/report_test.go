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

func TestReportDatabase_AssignResponderGuardedFilter(t *testing.T) {
	var db databases.DatabaseHelper
	var reportConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	reportConn = &mocksdb.CollectionHelper{}

	var filter bson.M
	var update bson.M

	reportConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Run(func(args mock.Arguments) {
		filter = args.Get(1).(bson.M)
		update = args.Get(2).(bson.M)
	})
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(reportConn)

	reportDB := databases.NewReportDatabase(db)

	rID := primitive.NewObjectID()
	entry := models.AssignedResponder{
		ResponderID: "5fc51f58c72ff10004dca383",
		Name:        "Station 7 Crew",
		Station:     "Mirpur Fire Station",
		AssignedAt:  primitive.NewDateTimeFromTime(time.Now()),
		Equipment:   []string{"ladder"},
	}

	res, err := reportDB.AssignResponder(context.Background(), rID, entry)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)

	// the filter itself carries the dedup guard: a report that already holds
	// this responder must not match
	assert.Equal(t, bson.M{
		"_id":                            rID,
		"assignedResponders.responderId": bson.M{"$ne": entry.ResponderID},
	}, filter)
	assert.Equal(t, bson.M{
		"$push": bson.M{"assignedResponders": entry},
		"$set":  bson.M{"updatedAt": entry.AssignedAt},
	}, update)
}

func TestReportDatabase_SetStatusCompareAndSwap(t *testing.T) {
	var db databases.DatabaseHelper
	var reportConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	reportConn = &mocksdb.CollectionHelper{}

	var filter bson.M
	var update bson.M

	reportConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Run(func(args mock.Arguments) {
		filter = args.Get(1).(bson.M)
		update = args.Get(2).(bson.M)
	})
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(reportConn)

	reportDB := databases.NewReportDatabase(db)

	rID := primitive.NewObjectID()
	entry := models.StatusHistoryEntry{
		Status:        models.StatusAccepted,
		ChangedBy:     "5fc51f58c72ff10004dca383",
		ChangedByType: "responder",
		Timestamp:     primitive.NewDateTimeFromTime(time.Now()),
	}

	res, err := reportDB.SetStatus(context.Background(), rID, models.StatusProcessing, entry)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)

	// pinning the expected current status in the filter is what makes the
	// write a compare-and-swap: a concurrent transition leaves it unmatched
	assert.Equal(t, bson.M{"_id": rID, "status": models.StatusProcessing}, filter)
	assert.Equal(t, bson.M{
		"$set":  bson.M{"status": entry.Status, "updatedAt": entry.Timestamp},
		"$push": bson.M{"statusHistory": entry},
	}, update)
}
