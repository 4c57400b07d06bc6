package databases

// go generate: mockery --name ReportDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const reportName = "reports"

// ReportDatabase contains the methods to use with the report collection
type ReportDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Report, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Report, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)

	FindPaginated(ctx context.Context, filter interface{}, limit, page int) ([]models.Report, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	AssignResponder(ctx context.Context, reportID primitive.ObjectID, entry models.AssignedResponder) (*mongo.UpdateResult, error)
	SetStatus(ctx context.Context, reportID primitive.ObjectID, from models.ReportStatus, entry models.StatusHistoryEntry) (*mongo.UpdateResult, error)
	FindAssignedTo(ctx context.Context, responderID string, opts ...*options.FindOptions) ([]models.Report, error)
	CountAssignedTo(ctx context.Context, responderID string) (int64, error)
	FindPendingForStation(ctx context.Context, station string) ([]models.Report, error)
}

type reportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the provided db connection
func NewReportDatabase(db DatabaseHelper) ReportDatabase {
	return &reportDatabase{
		db: db,
	}
}

func (c *reportDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Report, error) {
	report := &models.Report{}
	err := c.db.Collection(reportName).FindOne(ctx, filter, opts...).Decode(&report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *reportDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Report, error) {
	var reports []models.Report
	cr, err := c.db.Collection(reportName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&reports)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *reportDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(reportName).InsertOne(ctx, document, opts...)
}

func (c *reportDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(reportName).UpdateOne(ctx, filter, update, opts...)
}

func (c *reportDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(reportName).DeleteOne(ctx, filter, opts...)
}

func (c *reportDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(reportName).CountDocuments(ctx, filter, opts...)
}

// FindPaginated returns one page of reports matching filter, newest first
func (c *reportDatabase) FindPaginated(ctx context.Context, filter interface{}, limit, page int) ([]models.Report, error) {
	opts := newMongoPaginate(limit, page).getPaginatedOpts()
	opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return c.Find(ctx, filter, opts)
}

// CountByStatus groups the whole collection by lifecycle status
func (c *reportDatabase) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
	cr, err := c.db.Collection(reportName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cr.Decode(&rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// AssignResponder appends the entry to the assignment ledger. The filter
// excludes reports that already carry the responder, so a duplicate
// assignment matches zero documents and the caller can surface a conflict.
func (c *reportDatabase) AssignResponder(ctx context.Context, reportID primitive.ObjectID, entry models.AssignedResponder) (*mongo.UpdateResult, error) {
	filter := bson.M{
		"_id":                            reportID,
		"assignedResponders.responderId": bson.M{"$ne": entry.ResponderID},
	}
	update := bson.M{
		"$push": bson.M{"assignedResponders": entry},
		"$set":  bson.M{"updatedAt": entry.AssignedAt},
	}
	return c.db.Collection(reportName).UpdateOne(ctx, filter, update)
}

// SetStatus applies a status change with a compare-and-swap on the expected
// current status, appending to statusHistory in the same write. A concurrent
// writer that moved the status first leaves MatchedCount at zero.
func (c *reportDatabase) SetStatus(ctx context.Context, reportID primitive.ObjectID, from models.ReportStatus, entry models.StatusHistoryEntry) (*mongo.UpdateResult, error) {
	filter := bson.M{"_id": reportID, "status": from}
	update := bson.M{
		"$set":  bson.M{"status": entry.Status, "updatedAt": entry.Timestamp},
		"$push": bson.M{"statusHistory": entry},
	}
	return c.db.Collection(reportName).UpdateOne(ctx, filter, update)
}

func (c *reportDatabase) FindAssignedTo(ctx context.Context, responderID string, opts ...*options.FindOptions) ([]models.Report, error) {
	return c.Find(ctx, bson.M{"assignedResponders.responderId": responderID}, opts...)
}

func (c *reportDatabase) CountAssignedTo(ctx context.Context, responderID string) (int64, error) {
	return c.CountDocuments(ctx, bson.M{"assignedResponders.responderId": responderID})
}

// FindPendingForStation returns the dispatch inbox for a station: pending
// reports already routed to one of its responders plus pending reports not
// yet assigned to anyone.
func (c *reportDatabase) FindPendingForStation(ctx context.Context, station string) ([]models.Report, error) {
	filter := bson.M{
		"status": models.StatusPending,
		"$or": []bson.M{
			{"assignedResponders.station": station},
			{"assignedResponders": bson.M{"$size": 0}},
		},
	}
	return c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}
