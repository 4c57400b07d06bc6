// Package scheduler runs the periodic background jobs: hourly weather
// polling for the monitored districts and a sweep that escalates SOS
// reports left unattended. Jobs coordinate across instances with a
// mongo-backed distributed lock.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/models"
	"github.com/durjog-prohori/durjog-prohori-api/weather"
)

// staleSOSAge is how long an SOS report may sit pending with no assigned
// responder before the sweep escalates it.
const staleSOSAge = 30 * time.Minute

// Scheduler handles the periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	RDB        databases.ReportDatabase
	NDB        databases.NotificationDatabase
	WDB        databases.WeatherDatabase
	LockDB     databases.SchedulerLockDatabase
	Weather    *weather.Client
	Broadcast  func(eventType string, data map[string]interface{})
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	rDB databases.ReportDatabase,
	nDB databases.NotificationDatabase,
	wDB databases.WeatherDatabase,
	lockDB databases.SchedulerLockDatabase,
	weatherClient *weather.Client,
	broadcast func(eventType string, data map[string]interface{}),
) *Scheduler {
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		RDB:        rDB,
		NDB:        nDB,
		WDB:        wDB,
		LockDB:     lockDB,
		Weather:    weatherClient,
		Broadcast:  broadcast,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Poll district weather hourly
	_, err := s.cron.AddFunc("0 * * * *", s.pollWeather)
	if err != nil {
		zap.S().Errorw("failed to register weather polling job", "error", err)
	}

	// Escalate unattended SOS reports every 15 minutes
	_, err = s.cron.AddFunc("*/15 * * * *", s.sweepStaleSOS)
	if err != nil {
		zap.S().Errorw("failed to register sos sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Durjog Prohori scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Durjog Prohori scheduler stopped")
}

// pollWeather fetches the current observation for every monitored district
// and persists each as a snapshot
func (s *Scheduler) pollWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "weather_poll_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for weather poll job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Weather poll job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "weather_poll_job", s.instanceID)

	zap.S().Infow("Running weather polling job", "instance", s.instanceID)

	polled := 0
	for _, d := range weather.Districts {
		obs, err := s.Weather.Current(ctx, d.Latitude, d.Longitude)
		if err != nil {
			zap.S().Errorw("failed to poll weather", "district", d.Name, "error", err)
			continue
		}

		snapshot := models.WeatherSnapshot{
			ID:            primitive.NewObjectID(),
			District:      d.Name,
			Latitude:      d.Latitude,
			Longitude:     d.Longitude,
			TemperatureC:  obs.TemperatureC,
			WindSpeedKmh:  obs.WindSpeedKmh,
			Precipitation: obs.Precipitation,
			WeatherCode:   obs.WeatherCode,
			FetchedAt:     primitive.NewDateTimeFromTime(time.Now()),
		}
		if _, err := s.WDB.InsertOne(ctx, snapshot); err != nil {
			zap.S().Errorw("failed to persist weather snapshot", "district", d.Name, "error", err)
			continue
		}
		polled++
	}

	zap.S().Infow("Weather polling complete", "districtsPolled", polled)
}

// sweepStaleSOS finds SOS reports still pending and unassigned past the age
// threshold, re-broadcasts them and marks them escalated so each is
// escalated once.
func (s *Scheduler) sweepStaleSOS() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "sos_sweep_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for sos sweep job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("SOS sweep job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "sos_sweep_job", s.instanceID)

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-staleSOSAge))
	filter := bson.M{
		"disasterType":       models.DisasterSOS,
		"status":             models.StatusPending,
		"assignedResponders": bson.M{"$size": 0},
		"createdAt":          bson.M{"$lt": cutoff},
		"escalatedAt":        nil,
	}

	stale, err := s.RDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find stale sos reports", "error", err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	for _, report := range stale {
		if s.Broadcast != nil {
			s.Broadcast("sos_report_escalated", map[string]interface{}{
				"reportId":     report.ID.Hex(),
				"latitude":     report.Latitude,
				"longitude":    report.Longitude,
				"locationName": report.LocationName,
				"createdAt":    report.CreatedAt,
			})
		}

		notification := models.Notification{
			ID:          primitive.NewObjectID(),
			ResponderID: "",
			ReportID:    report.ID.Hex(),
			Type:        models.NotificationEscalation,
			Title:       "Unattended SOS",
			Message:     fmt.Sprintf("SOS at %s has been pending for over %v with no responder", report.LocationName, staleSOSAge),
			Read:        false,
			CreatedAt:   now,
		}
		if _, err := s.NDB.InsertOne(ctx, notification); err != nil {
			zap.S().Errorw("failed to persist escalation notification", "reportId", report.ID.Hex(), "error", err)
		}

		_, err := s.RDB.UpdateOne(ctx,
			bson.M{"_id": report.ID},
			bson.M{"$set": bson.M{"escalatedAt": now}},
		)
		if err != nil {
			zap.S().Errorw("failed to mark report escalated", "reportId", report.ID.Hex(), "error", err)
		}
	}

	if len(stale) > 0 {
		zap.S().Infow("SOS sweep complete", "escalated", len(stale))
	}
}
