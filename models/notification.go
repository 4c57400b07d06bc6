package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NotificationType classifies what lifecycle event produced a notification
type NotificationType string

// Notification types
const (
	NotificationAssignment   NotificationType = "assignment"
	NotificationStatusChange NotificationType = "status-change"
	NotificationSOS          NotificationType = "sos"
	NotificationEscalation   NotificationType = "escalation"
)

// Notification holds the structure for the notifications collection in
// mongo. Notifications are produced by report lifecycle events, not seeded.
type Notification struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	ResponderID string             `json:"responderId" bson:"responderId"`
	ReportID    string             `json:"reportId" bson:"reportId"`
	Type        NotificationType   `json:"type" bson:"type"`
	Title       string             `json:"title" bson:"title"`
	Message     string             `json:"message" bson:"message"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
