package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ResponderRole identifies which portal an account belongs to
type ResponderRole string

// Responder roles
const (
	RoleFirefighter ResponderRole = "firefighter"
	RoleNGO         ResponderRole = "ngo"
)

// ResponderStatus is the duty state of a responder account
type ResponderStatus string

// Responder duty states
const (
	ResponderActive   ResponderStatus = "active"
	ResponderOnLeave  ResponderStatus = "on-leave"
	ResponderInactive ResponderStatus = "inactive"
)

// Responder holds the structure for the responders collection in mongo.
// Firefighter and NGO accounts share this shape; NGO accounts additionally
// carry a registration number used as the donation ledger key.
type Responder struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Username     string             `json:"username" bson:"username"`
	Password     string             `json:"-" bson:"password"`
	Name         string             `json:"name" bson:"name"`
	Role         ResponderRole      `json:"role" bson:"role"`
	Station      string             `json:"station" bson:"station"`
	Registration string             `json:"registration,omitempty" bson:"registration,omitempty"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"phone"`
	Location     string             `json:"location" bson:"location"`
	Latitude     float64            `json:"latitude" bson:"latitude"`
	Longitude    float64            `json:"longitude" bson:"longitude"`
	Status       ResponderStatus    `json:"status" bson:"status"`
	Equipment    []string           `json:"equipment" bson:"equipment"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ResponderCreateRequest is the payload for provisioning a responder account
type ResponderCreateRequest struct {
	Username     string        `json:"username"`
	Password     string        `json:"password"`
	Name         string        `json:"name"`
	Role         ResponderRole `json:"role"`
	Station      string        `json:"station"`
	Registration string        `json:"registration"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Location     string        `json:"location"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
}

// Validate checks the required provisioning fields
func (r ResponderCreateRequest) Validate() error {
	if r.Username == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if r.Role != RoleFirefighter && r.Role != RoleNGO {
		return &ValidationError{Field: "role", Message: "role must be firefighter or ngo"}
	}
	if r.Role == RoleNGO && r.Registration == "" {
		return &ValidationError{Field: "registration", Message: "registration is required for ngo accounts"}
	}
	return nil
}
