package domain

import "time"

// IncidentState enumerates lifecycle states for incidents.
type IncidentState string

const (
	IncidentStateOpen       IncidentState = "OPEN"
	IncidentStateInProgress IncidentState = "IN_PROGRESS"
	IncidentStateClosed     IncidentState = "CLOSED"
)

// ParseIncidentState maps a raw string onto the closed state set.
func ParseIncidentState(raw string) (IncidentState, bool) {
	switch IncidentState(raw) {
	case IncidentStateOpen, IncidentStateInProgress, IncidentStateClosed:
		return IncidentState(raw), true
	default:
		return "", false
	}
}

// Incident is the aggregate for reported technical work.
//
// Description and RequesterID are set at creation and never change; ownership
// does not transfer. AssignedTechnicianID must reference a TECHNICIAN principal
// at assignment time. ResolvedAt, TimeSpentMinutes, Materials and Cost are
// meaningful once the incident is CLOSED, but technicians may record partial
// progress earlier.
type Incident struct {
	ID                   int64
	Description          string
	State                IncidentState
	RequesterID          int64
	AssignedTechnicianID *int64
	ResolvedAt           *time.Time
	TimeSpentMinutes     *int
	Materials            *string
	Cost                 *float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
