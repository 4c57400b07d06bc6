package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const schedulerLockName = "scheduler_locks"

// SchedulerLockDatabase provides a mongo-backed distributed lock so that
// scheduled jobs run on exactly one instance at a time.
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock claims the named lock for this instance. A lock held by
// another instance is only stealable once its TTL has lapsed.
func (c *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	expiresAt := primitive.NewDateTimeFromTime(now.Add(ttl))

	// Take over an expired lock, or refresh one we already hold.
	res, err := c.db.Collection(schedulerLockName).UpdateOne(ctx,
		bson.M{
			"_id": jobName,
			"$or": []bson.M{
				{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
				{"instanceId": instanceID},
			},
		},
		bson.M{"$set": bson.M{"instanceId": instanceID, "expiresAt": expiresAt}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// No existing lock document: try to create one. A duplicate key error
	// means another instance won the race.
	_, err = c.db.Collection(schedulerLockName).InsertOne(ctx, bson.M{
		"_id":        jobName,
		"instanceId": instanceID,
		"expiresAt":  expiresAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseLock drops the lock if this instance still holds it
func (c *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	return c.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{
		"_id":        jobName,
		"instanceId": instanceID,
	})
}
