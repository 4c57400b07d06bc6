package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/durjog-prohori/durjog-prohori-api/config"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/geocoding"
	"github.com/durjog-prohori/durjog-prohori-api/models"
	templates "github.com/durjog-prohori/durjog-prohori-api/templates/html"
)

// Geocoder resolves coordinates to a display name
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Report handles report-related requests
type Report struct {
	RDB      databases.ReportDatabase
	RespDB   databases.ResponderDatabase
	NDB      databases.NotificationDatabase
	Geocoder Geocoder
}

// Page holds the current page number for paginated list endpoints
var Page int

func getPage(page int, r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		zap.S().Debugf("page not set, using default of %v", page)
		return page
	}
	return p
}

// CreateReportHandler creates a new disaster or SOS report
func (re Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ReportCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := req.Validate(); err != nil {
		config.ErrorStatus("failed to validate report", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	report := models.Report{
		ID:           primitive.NewObjectID(),
		ReporterName: req.ReporterName,
		PhoneNumber:  req.PhoneNumber,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		DisasterType: req.DisasterType,
		Description:  req.Description,
		Status:       models.StatusPending,
		Visible:      true,
		PhotoURLs:    []string{},
		AssignedResponders: []models.AssignedResponder{},
		StatusHistory: []models.StatusHistoryEntry{{
			Status:        models.StatusPending,
			ChangedBy:     req.PhoneNumber,
			ChangedByType: "citizen",
			Timestamp:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Geocoding failures never fail the create; fall back to raw coordinates.
	name, err := re.Geocoder.ReverseGeocode(r.Context(), report.Latitude, report.Longitude)
	if err != nil {
		zap.S().Warnw("reverse geocoding failed, using coordinate fallback",
			"error", err,
			"reportId", report.ID.Hex(),
		)
		name = geocoding.FallbackName(report.Latitude, report.Longitude)
	}
	report.LocationName = name

	if _, err := re.RDB.InsertOne(context.Background(), report); err != nil {
		config.ErrorStatus("failed to create report", http.StatusInternalServerError, w, err)
		return
	}

	if report.DisasterType == models.DisasterSOS {
		broadcastSOSEvent("sos_report_created", map[string]interface{}{
			"reportId":     report.ID.Hex(),
			"latitude":     report.Latitude,
			"longitude":    report.Longitude,
			"locationName": report.LocationName,
		})
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ReportByIDHandler returns a report by ID
func (re Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	zap.S().Debugf("report_id: %v", reportID)

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := re.RDB.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsHandler returns reports filtered by status, type, responder,
// station and visibility, newest first
func (re Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	Page = getPage(Page, r)

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ReportStatus(status).IsValid() {
			config.ErrorStatus("invalid status filter", http.StatusBadRequest, w, &models.ValidationError{Field: "status", Message: "unknown status"})
			return
		}
		filter["status"] = status
	}
	if dt := r.URL.Query().Get("disasterType"); dt != "" {
		filter["disasterType"] = dt
	}
	if responderID := r.URL.Query().Get("responderId"); responderID != "" {
		filter["assignedResponders.responderId"] = responderID
	}
	if station := r.URL.Query().Get("station"); station != "" {
		filter["assignedResponders.station"] = station
	}
	if visible := r.URL.Query().Get("visible"); visible != "" {
		visibleB, err := strconv.ParseBool(visible)
		if err != nil {
			config.ErrorStatus("invalid visible value", http.StatusBadRequest, w, err)
			return
		}
		filter["visible"] = visibleB
	}

	dbResp, err := re.RDB.FindPaginated(context.TODO(), filter, limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteReportByIDHandler deletes a report by ID
func (re Report) DeleteReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := re.RDB.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	if err := re.RDB.DeleteOne(context.Background(), bson.M{"_id": rID}); err != nil {
		config.ErrorStatus("failed to delete report", http.StatusInternalServerError, w, err)
		return
	}

	// best effort cleanup of attached photos
	go destroyReportPhotos(dbResp.PhotoURLs)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Report deleted successfully",
	})
}

type assignRequest struct {
	ResponderID string   `json:"responderId"`
	Equipment   []string `json:"equipment"`
}

// AssignResponderHandler attaches a responder to a report. Assigning the
// same responder twice is rejected as a conflict.
func (re Report) AssignResponderHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.ResponderID == "" {
		config.ErrorStatus("failed to validate assignment", http.StatusBadRequest, w, &models.ValidationError{Field: "responderId", Message: "responderId is required"})
		return
	}

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	respID, err := primitive.ObjectIDFromHex(req.ResponderID)
	if err != nil {
		config.ErrorStatus("invalid responder ID", http.StatusBadRequest, w, err)
		return
	}

	responder, err := re.RespDB.FindOne(context.Background(), bson.M{"_id": respID})
	if err != nil {
		config.ErrorStatus("failed to get responder by ID", http.StatusNotFound, w, err)
		return
	}

	report, err := re.RDB.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	equipment := req.Equipment
	if equipment == nil {
		equipment = responder.Equipment
	}
	if equipment == nil {
		equipment = []string{}
	}

	entry := models.AssignedResponder{
		ResponderID: responder.ID.Hex(),
		Name:        responder.Name,
		Station:     responder.Station,
		AssignedAt:  primitive.NewDateTimeFromTime(time.Now()),
		Equipment:   equipment,
	}

	res, err := re.RDB.AssignResponder(context.Background(), rID, entry)
	if err != nil {
		config.ErrorStatus("failed to assign responder", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		// The guarded filter misses on a duplicate, but also when the report
		// was deleted after the fetch above. Only an existing report is a
		// duplicate conflict.
		if _, err := re.RDB.FindOne(context.Background(), bson.M{"_id": rID}); err != nil {
			config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("responder already assigned", http.StatusConflict, w, &models.ConflictError{
			Message: fmt.Sprintf("responder %s is already assigned to report %s", entry.ResponderID, reportID),
		})
		return
	}

	re.notifyResponder(entry.ResponderID, report, models.NotificationAssignment,
		"New assignment",
		fmt.Sprintf("You have been assigned to a %s report at %s", report.DisasterType, report.LocationName),
	)
	go sendAssignmentEmail(responder, report)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Responder assigned successfully",
	})
}

type statusChangeRequest struct {
	Status        string `json:"status"`
	ResponderID   string `json:"responderId"`
	ResponderType string `json:"responderType"`
}

// SetReportStatusHandler applies a lifecycle transition to a report. The
// write compares-and-swaps on the current status so concurrent responders
// cannot silently overwrite each other.
func (re Report) SetReportStatusHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var req statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	newStatus := models.ReportStatus(req.Status)
	if !newStatus.IsValid() {
		config.ErrorStatus("invalid status value", http.StatusBadRequest, w, &models.ValidationError{Field: "status", Message: "unknown status"})
		return
	}

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	report, err := re.RDB.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	if !models.CanTransition(report.Status, newStatus) {
		config.ErrorStatus("invalid status transition", http.StatusUnprocessableEntity, w, &models.InvalidTransitionError{
			From: report.Status,
			To:   newStatus,
		})
		return
	}

	entry := models.StatusHistoryEntry{
		Status:        newStatus,
		ChangedBy:     req.ResponderID,
		ChangedByType: req.ResponderType,
		Timestamp:     primitive.NewDateTimeFromTime(time.Now()),
	}

	res, err := re.RDB.SetStatus(context.Background(), rID, report.Status, entry)
	if err != nil {
		config.ErrorStatus("failed to update report status", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("report status changed concurrently", http.StatusConflict, w, &models.ConcurrencyConflictError{ReportID: reportID})
		return
	}

	for _, assigned := range report.AssignedResponders {
		re.notifyResponder(assigned.ResponderID, report, models.NotificationStatusChange,
			"Report status updated",
			fmt.Sprintf("Report at %s moved to %s", report.LocationName, newStatus),
		)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Report status updated successfully",
		"status":  newStatus,
	})
}

// ReportStatsHandler returns report counts grouped by lifecycle status,
// for the public dashboard
func (re Report) ReportStatsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := re.RDB.CountByStatus(context.TODO())
	if err != nil {
		config.ErrorStatus("failed to get report stats", http.StatusInternalServerError, w, err)
		return
	}
	b, err := json.Marshal(counts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsAssignedToHandler returns all reports assigned to a responder
func (re Report) ReportsAssignedToHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]

	dbResp, err := re.RDB.FindAssignedTo(context.TODO(), responderID)
	if err != nil {
		config.ErrorStatus("failed to get reports for responder", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CountAssignedToHandler returns the number of reports assigned to a responder
func (re Report) CountAssignedToHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]

	count, err := re.RDB.CountAssignedTo(context.TODO(), responderID)
	if err != nil {
		config.ErrorStatus("failed to count reports for responder", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"responderId": responderID,
		"count":       count,
	})
}

// PendingForStationHandler returns the pending dispatch inbox for a station
func (re Report) PendingForStationHandler(w http.ResponseWriter, r *http.Request) {
	station := mux.Vars(r)["station"]

	dbResp, err := re.RDB.FindPendingForStation(context.TODO(), station)
	if err != nil {
		config.ErrorStatus("failed to get pending reports for station", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// notifyResponder persists a lifecycle notification and pushes it over the
// websocket hub if the responder is connected.
func (re Report) notifyResponder(responderID string, report *models.Report, nType models.NotificationType, title, message string) {
	notification := models.Notification{
		ID:          primitive.NewObjectID(),
		ResponderID: responderID,
		ReportID:    report.ID.Hex(),
		Type:        nType,
		Title:       title,
		Message:     message,
		Read:        false,
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := re.NDB.InsertOne(context.Background(), notification); err != nil {
		zap.S().Errorw("failed to persist notification",
			"error", err,
			"responderId", responderID,
		)
		return
	}
	sendNotificationToResponder(responderID, notification)
}

func sendAssignmentEmail(responder *models.Responder, report *models.Report) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" || responder.Email == "" {
		return
	}

	from := mail.NewEmail("Durjog Prohori", "no-reply@durjogprohori.org")
	to := mail.NewEmail(responder.Name, responder.Email)
	subject := fmt.Sprintf("New %s assignment - Durjog Prohori", report.DisasterType)
	plainText := fmt.Sprintf("You have been assigned to a %s report at %s. Reporter: %s (%s).",
		report.DisasterType, report.LocationName, report.ReporterName, report.PhoneNumber)
	htmlContent := templates.RenderAssignmentEmail(string(report.DisasterType), report.LocationName, report.ReporterName, report.PhoneNumber)

	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send assignment email", "error", err, "responderId", responder.ID.Hex())
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}
