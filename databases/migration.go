package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/durjog-prohori/durjog-prohori-api/models"
)

const migrationName = "schema_migrations"

// Migration is one sequential, idempotent schema change. Applied versions
// are recorded in the schema_migrations collection so each runs exactly once.
type Migration struct {
	Version int
	Name    string
	Run     func(ctx context.Context, db DatabaseHelper) error
}

// Migrations is the ordered registry of schema changes
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "normalize-visible-flag",
		Run:     normalizeVisibleFlag,
	},
	{
		Version: 2,
		Name:    "backfill-status-history-creation-entry",
		Run:     backfillStatusHistory,
	},
}

// RunMigrations applies every unapplied migration in version order
func RunMigrations(ctx context.Context, db DatabaseHelper) error {
	coll := db.Collection(migrationName)
	for _, m := range Migrations {
		var applied struct {
			Version int `bson:"_id"`
		}
		err := coll.FindOne(ctx, bson.M{"_id": m.Version}).Decode(&applied)
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			return err
		}

		zap.S().Infow("applying schema migration", "version", m.Version, "name", m.Name)
		if err := m.Run(ctx, db); err != nil {
			return err
		}
		_, err = coll.InsertOne(ctx, bson.M{
			"_id":       m.Version,
			"name":      m.Name,
			"appliedAt": primitive.NewDateTimeFromTime(time.Now()),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// normalizeVisibleFlag rewrites legacy numeric visible values (0/1) from the
// old portals into canonical booleans.
func normalizeVisibleFlag(ctx context.Context, db DatabaseHelper) error {
	coll := db.Collection(reportName)
	_, err := coll.UpdateMany(ctx,
		bson.M{"visible": 1},
		bson.M{"$set": bson.M{"visible": true}},
	)
	if err != nil {
		return err
	}
	_, err = coll.UpdateMany(ctx,
		bson.M{"visible": 0},
		bson.M{"$set": bson.M{"visible": false}},
	)
	return err
}

// backfillStatusHistory seeds a creation history entry on reports that
// predate the audit trail.
func backfillStatusHistory(ctx context.Context, db DatabaseHelper) error {
	coll := db.Collection(reportName)
	var legacy []models.Report
	cr, err := coll.Find(ctx, bson.M{"$or": []bson.M{
		{"statusHistory": bson.M{"$exists": false}},
		{"statusHistory": nil},
	}})
	if err != nil {
		return err
	}
	if err := cr.Decode(&legacy); err != nil {
		return err
	}
	for _, r := range legacy {
		entry := models.StatusHistoryEntry{
			Status:        canonicalStatus(r.Status),
			ChangedBy:     "system",
			ChangedByType: "migration",
			Timestamp:     r.CreatedAt,
		}
		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": r.ID},
			bson.M{"$set": bson.M{"statusHistory": []models.StatusHistoryEntry{entry}}},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func canonicalStatus(s models.ReportStatus) models.ReportStatus {
	if !s.IsValid() {
		return models.StatusPending
	}
	return s
}
