package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisasterType classifies a report. SOS reports share the same collection
// and shape as disaster reports, discriminated by this field.
type DisasterType string

// Supported disaster types
const (
	DisasterEarthquake DisasterType = "earthquake"
	DisasterFlood      DisasterType = "flood"
	DisasterCyclone    DisasterType = "cyclone"
	DisasterLandslide  DisasterType = "landslide"
	DisasterTsunami    DisasterType = "tsunami"
	DisasterFire       DisasterType = "fire"
	DisasterOther      DisasterType = "other"
	DisasterSOS        DisasterType = "sos"
)

// IsValid reports whether dt is one of the supported disaster types
func (dt DisasterType) IsValid() bool {
	switch dt {
	case DisasterEarthquake, DisasterFlood, DisasterCyclone, DisasterLandslide,
		DisasterTsunami, DisasterFire, DisasterOther, DisasterSOS:
		return true
	}
	return false
}

// Report holds the structure for the reports collection in mongo
type Report struct {
	ID                 primitive.ObjectID   `json:"_id" bson:"_id"`
	ReporterName       string               `json:"reporterName" bson:"reporterName"`
	PhoneNumber        string               `json:"phoneNumber" bson:"phoneNumber"`
	Latitude           float64              `json:"latitude" bson:"latitude"`
	Longitude          float64              `json:"longitude" bson:"longitude"`
	LocationName       string               `json:"locationName" bson:"locationName"`
	DisasterType       DisasterType         `json:"disasterType" bson:"disasterType"`
	Description        string               `json:"description" bson:"description"`
	Status             ReportStatus         `json:"status" bson:"status"`
	Visible            bool                 `json:"visible" bson:"visible"`
	PhotoURLs          []string             `json:"photoUrls" bson:"photoUrls"`
	AssignedResponders []AssignedResponder  `json:"assignedResponders" bson:"assignedResponders"`
	StatusHistory      []StatusHistoryEntry `json:"statusHistory" bson:"statusHistory"`
	EscalatedAt        *primitive.DateTime  `json:"escalatedAt,omitempty" bson:"escalatedAt,omitempty"`
	CreatedAt          primitive.DateTime   `json:"createdAt" bson:"createdAt"`
	UpdatedAt          primitive.DateTime   `json:"updatedAt" bson:"updatedAt"`
}

// AssignedResponder is one entry in a report's assignment ledger.
// Insertion order is assignment order.
type AssignedResponder struct {
	ResponderID string             `json:"responderId" bson:"responderId"`
	Name        string             `json:"name" bson:"name"`
	Station     string             `json:"station" bson:"station"`
	AssignedAt  primitive.DateTime `json:"assignedAt" bson:"assignedAt"`
	Equipment   []string           `json:"equipment" bson:"equipment"`
}

// StatusHistoryEntry is one append-only audit record of a status change
type StatusHistoryEntry struct {
	Status        ReportStatus       `json:"status" bson:"status"`
	ChangedBy     string             `json:"changedBy" bson:"changedBy"`
	ChangedByType string             `json:"changedByType" bson:"changedByType"`
	Timestamp     primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// ReportCreateRequest is the payload accepted when a citizen files a report
type ReportCreateRequest struct {
	ReporterName string       `json:"reporterName"`
	PhoneNumber  string       `json:"phoneNumber"`
	Latitude     *float64     `json:"latitude"`
	Longitude    *float64     `json:"longitude"`
	DisasterType DisasterType `json:"disasterType"`
	Description  string       `json:"description"`
}

// Validate checks the required creation fields and coordinate bounds
func (r ReportCreateRequest) Validate() error {
	if r.ReporterName == "" {
		return &ValidationError{Field: "reporterName", Message: "reporterName is required"}
	}
	if r.PhoneNumber == "" {
		return &ValidationError{Field: "phoneNumber", Message: "phoneNumber is required"}
	}
	if r.Latitude == nil {
		return &ValidationError{Field: "latitude", Message: "latitude is required"}
	}
	if r.Longitude == nil {
		return &ValidationError{Field: "longitude", Message: "longitude is required"}
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"}
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"}
	}
	if !r.DisasterType.IsValid() {
		return &ValidationError{Field: "disasterType", Message: "unknown disaster type"}
	}
	return nil
}

// IsAssigned reports whether the responder appears in the assignment ledger
func (r Report) IsAssigned(responderID string) bool {
	for _, a := range r.AssignedResponders {
		if a.ResponderID == responderID {
			return true
		}
	}
	return false
}
