package models

import "fmt"

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// ValidationError is returned when a request carries malformed or missing
// required input. Surfaced as HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError is returned when a report or responder id does not exist.
// Surfaced as HTTP 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidTransitionError is returned when a status change is outside the
// lifecycle transition table. Surfaced as HTTP 422.
type InvalidTransitionError struct {
	From ReportStatus
	To   ReportStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition report from %q to %q", e.From, e.To)
}

// ConcurrencyConflictError is returned when an optimistic status update lost
// the race against a concurrent writer. Surfaced as HTTP 409; clients should
// refetch and retry.
type ConcurrencyConflictError struct {
	ReportID string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("report %s was modified concurrently", e.ReportID)
}

// ConflictError is returned for state conflicts such as duplicate assignment
// or a withdrawal exceeding the remaining balance. Surfaced as HTTP 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UpstreamGeocodingError is returned when the reverse-geocoding provider is
// unavailable or slow. Callers degrade gracefully rather than failing the
// operation.
type UpstreamGeocodingError struct {
	Err error
}

func (e *UpstreamGeocodingError) Error() string {
	return fmt.Sprintf("geocoding upstream failed: %v", e.Err)
}

func (e *UpstreamGeocodingError) Unwrap() error {
	return e.Err
}

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
