package models

// ReportStatus is the lifecycle state of a report
type ReportStatus string

// Report lifecycle states
const (
	StatusPending    ReportStatus = "pending"
	StatusProcessing ReportStatus = "processing"
	StatusAccepted   ReportStatus = "accepted"
	StatusDeclined   ReportStatus = "declined"
	StatusResolved   ReportStatus = "resolved"
)

// IsValid reports whether s is one of the five lifecycle states
func (s ReportStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusAccepted, StatusDeclined, StatusResolved:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s ReportStatus) IsTerminal() bool {
	return s == StatusDeclined || s == StatusResolved
}

// statusTransitions is the closed transition table. Declined and resolved
// are terminal and have no outgoing edges.
var statusTransitions = map[ReportStatus][]ReportStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusAccepted, StatusDeclined, StatusResolved},
	StatusAccepted:   {StatusResolved, StatusDeclined},
}

// CanTransition reports whether from -> to is an allowed lifecycle move
func CanTransition(from, to ReportStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
