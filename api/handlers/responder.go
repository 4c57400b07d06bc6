package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/durjog-prohori/durjog-prohori-api/config"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

// Responder handles responder account requests
type Responder struct {
	DB databases.ResponderDatabase
}

// ResponderCreateHandler provisions a new firefighter or NGO account
func (h Responder) ResponderCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ResponderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := req.Validate(); err != nil {
		config.ErrorStatus("failed to validate responder", http.StatusBadRequest, w, err)
		return
	}

	count, err := h.DB.CountDocuments(context.Background(), bson.M{"username": req.Username})
	if err != nil {
		config.ErrorStatus("failed to check username", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("username already taken", http.StatusConflict, w, &models.ConflictError{
			Message: "username already taken",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	responder := models.Responder{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Password:     string(hashedPassword),
		Name:         req.Name,
		Role:         req.Role,
		Station:      req.Station,
		Registration: req.Registration,
		Email:        req.Email,
		Phone:        req.Phone,
		Location:     req.Location,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       models.ResponderActive,
		Equipment:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := h.DB.InsertOne(context.Background(), responder); err != nil {
		config.ErrorStatus("failed to create responder", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(responder)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ResponderByIDHandler returns a responder by ID
func (h Responder) ResponderByIDHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]

	rID, err := primitive.ObjectIDFromHex(responderID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := h.DB.FindOne(context.Background(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get responder by ID", http.StatusNotFound, w, err)
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

// UpdateResponderHandler updates profile fields on a responder account.
// Username, password and role are not updatable through this path.
func (h Responder) UpdateResponderHandler(w http.ResponseWriter, r *http.Request) {
	responderID := mux.Vars(r)["responder_id"]

	var requestBody map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	rID, err := primitive.ObjectIDFromHex(responderID)
	if err != nil {
		config.ErrorStatus("invalid responder ID", http.StatusBadRequest, w, err)
		return
	}

	allowed := map[string]bool{
		"name": true, "station": true, "email": true, "phone": true,
		"location": true, "latitude": true, "longitude": true,
		"status": true, "equipment": true, "registration": true,
	}
	updateFields := bson.M{}
	for key, value := range requestBody {
		if allowed[key] {
			updateFields[key] = value
		}
	}
	if status, ok := updateFields["status"].(string); ok {
		switch models.ResponderStatus(status) {
		case models.ResponderActive, models.ResponderOnLeave, models.ResponderInactive:
		default:
			config.ErrorStatus("invalid responder status", http.StatusBadRequest, w, &models.ValidationError{Field: "status", Message: "unknown responder status"})
			return
		}
	}
	updateFields["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())

	res, err := h.DB.UpdateOne(context.Background(), bson.M{"_id": rID}, bson.M{"$set": updateFields})
	if err != nil {
		config.ErrorStatus("failed to update responder", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to get responder by ID", http.StatusNotFound, w, &models.NotFoundError{Resource: "responder", ID: responderID})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Responder updated successfully",
	})
}

// RespondersHandler returns responders filtered by role, station and status
func (h Responder) RespondersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}
	if station := r.URL.Query().Get("station"); station != "" {
		filter["station"] = station
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	dbResp, err := h.DB.Find(context.TODO(), filter)
	if err != nil {
		config.ErrorStatus("failed to get responders", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Responder{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
