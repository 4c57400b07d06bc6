package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/durjog-prohori/durjog-prohori-api/api"
	"github.com/durjog-prohori/durjog-prohori-api/api/scheduler"
	"github.com/durjog-prohori/durjog-prohori-api/config"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/geocoding"
	"github.com/durjog-prohori/durjog-prohori-api/models"
	"github.com/durjog-prohori/durjog-prohori-api/weather"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	DB        databases.CollectionHelper
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewResponderDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	report := Report{
		RDB:      databases.NewReportDatabase(a.dbHelper),
		RespDB:   databases.NewResponderDatabase(a.dbHelper),
		NDB:      databases.NewNotificationDatabase(a.dbHelper),
		Geocoder: geocoding.New(a.Config.NominatimBaseURL),
	}
	responder := Responder{DB: databases.NewResponderDatabase(a.dbHelper)}
	donation := Donation{
		DDB: databases.NewDonationDatabase(a.dbHelper),
		WDB: databases.NewWithdrawalDatabase(a.dbHelper),
	}
	notification := Notification{DB: databases.NewNotificationDatabase(a.dbHelper)}
	authority := Authority{}
	weatherH := Weather{DB: databases.NewWeatherDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/authority/login", http.HandlerFunc(authority.LoginHandler)).Methods("POST")

	// citizen paths stay unauthenticated
	apiCreate.Handle("/reports", http.HandlerFunc(report.CreateReportHandler)).Methods("POST")
	apiCreate.Handle("/reports", http.HandlerFunc(report.ReportsHandler)).Methods("GET")
	apiCreate.Handle("/reports/stats", http.HandlerFunc(report.ReportStatsHandler)).Methods("GET")
	apiCreate.Handle("/report/{report_id}", http.HandlerFunc(report.ReportByIDHandler)).Methods("GET")
	apiCreate.Handle("/report/{report_id}", authority.RequireJWT(http.HandlerFunc(report.DeleteReportByIDHandler))).Methods("DELETE")
	apiCreate.Handle("/report/{report_id}/status", api.Middleware(http.HandlerFunc(report.SetReportStatusHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/assign", api.Middleware(http.HandlerFunc(report.AssignResponderHandler))).Methods("POST")
	apiCreate.Handle("/reports/responder/{responder_id}", api.Middleware(http.HandlerFunc(report.ReportsAssignedToHandler))).Methods("GET")
	apiCreate.Handle("/reports/responder/{responder_id}/count", api.Middleware(http.HandlerFunc(report.CountAssignedToHandler))).Methods("GET")
	apiCreate.Handle("/reports/station/{station}/pending", api.Middleware(http.HandlerFunc(report.PendingForStationHandler))).Methods("GET")

	apiCreate.Handle("/responder/create-responder", authority.RequireJWT(http.HandlerFunc(responder.ResponderCreateHandler))).Methods("POST")
	apiCreate.Handle("/responder/{responder_id}", api.Middleware(http.HandlerFunc(responder.ResponderByIDHandler))).Methods("GET")
	apiCreate.Handle("/responder/{responder_id}", api.Middleware(http.HandlerFunc(responder.UpdateResponderHandler))).Methods("PUT")
	apiCreate.Handle("/responders", api.Middleware(http.HandlerFunc(responder.RespondersHandler))).Methods("GET")

	apiCreate.Handle("/donations/create", http.HandlerFunc(donation.CreateDonationHandler)).Methods("POST")
	apiCreate.Handle("/donations/user/{ngo_id}", api.Middleware(http.HandlerFunc(donation.DonationsByNgoIDHandler))).Methods("GET")
	apiCreate.Handle("/donations/blood-donors", api.Middleware(http.HandlerFunc(donation.BloodDonorsHandler))).Methods("GET")
	apiCreate.Handle("/ngo-donations/withdraw", api.Middleware(http.HandlerFunc(donation.WithdrawHandler))).Methods("POST")
	apiCreate.Handle("/ngo-donations/balance/{ngo_id}", api.Middleware(http.HandlerFunc(donation.BalanceHandler))).Methods("GET")

	apiCreate.Handle("/responder/{responder_id}/notifications", api.Middleware(http.HandlerFunc(notification.NotificationsByResponderHandler))).Methods("GET")
	apiCreate.Handle("/responder/{responder_id}/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(notification.MarkNotificationAsReadHandler))).Methods("PUT")
	apiCreate.Handle("/responder/{responder_id}/notifications/{notification_id}", api.Middleware(http.HandlerFunc(notification.DeleteNotificationHandler))).Methods("DELETE")

	apiCreate.Handle("/weather/latest", http.HandlerFunc(weatherH.LatestHandler)).Methods("GET")

	apiCreate.Handle("/generate-upload-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("durjog-prohori-api has connected to the database")

	if err := databases.RunMigrations(context.Background(), a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to run schema migrations")
		return err
	}

	a.Scheduler = scheduler.NewScheduler(
		databases.NewReportDatabase(a.dbHelper),
		databases.NewNotificationDatabase(a.dbHelper),
		databases.NewWeatherDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		weather.New(a.Config.WeatherBaseURL),
		BroadcastSOSEvent,
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
