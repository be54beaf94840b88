package events

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated      EventType = "incident_created"
	EventIncidentAssigned     EventType = "incident_assigned"
	EventIncidentStateChanged EventType = "incident_state_changed"
	EventIncidentClosed       EventType = "incident_closed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	PrincipalID int64       `json:"principal_id"`
	Role        domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID int64       `json:"incident_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	RequesterID int64  `json:"requester_id"`
	Description string `json:"description"`
}

// IncidentAssignedPayload payload.
type IncidentAssignedPayload struct {
	AssignedTechnicianID *int64 `json:"assigned_technician_id,omitempty"`
}

// IncidentStateChangedPayload payload.
type IncidentStateChangedPayload struct {
	OldState domain.IncidentState `json:"old_state"`
	NewState domain.IncidentState `json:"new_state"`
}

// IncidentClosedPayload payload.
type IncidentClosedPayload struct {
	ResolvedAt       time.Time `json:"resolved_at"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
}
