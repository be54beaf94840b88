package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/policy"
	"github.com/spec-kit/incident-service/internal/service"
)

// IncidentCreateRequest payload for new incidents.
type IncidentCreateRequest struct {
	Description string `json:"description"`
}

// IncidentUpdateRequest is a partial update. Fields absent from the payload
// are left unchanged; nullable fields submitted as null are cleared.
// Unrecognized fields are ignored by the JSON decoder.
type IncidentUpdateRequest struct {
	State                policy.Field[string]    `json:"state"`
	AssignedTechnicianID policy.Field[int64]     `json:"assignedTechnicianId"`
	ResolvedAt           policy.Field[time.Time] `json:"resolvedAt"`
	TimeSpentMinutes     policy.Field[int]       `json:"timeSpentMinutes"`
	Materials            policy.Field[string]    `json:"materials"`
	Cost                 policy.Field[float64]   `json:"cost"`
}

// ToPatch converts the request into a policy patch.
func (r IncidentUpdateRequest) ToPatch() policy.IncidentPatch {
	patch := policy.IncidentPatch{
		AssignedTechnicianID: r.AssignedTechnicianID,
		ResolvedAt:           r.ResolvedAt,
		TimeSpentMinutes:     r.TimeSpentMinutes,
		Materials:            r.Materials,
		Cost:                 r.Cost,
	}
	patch.State = policy.Field[domain.IncidentState]{
		Set:   r.State.Set,
		Null:  r.State.Null,
		Value: domain.IncidentState(r.State.Value),
	}
	return patch
}

// IncidentCloseRequest optional payload for the close-now helper.
type IncidentCloseRequest struct {
	TimeSpentMinutes *int `json:"timeSpentMinutes"`
}

// IncidentResponse is the transport representation of an incident with its
// derived signals.
type IncidentResponse struct {
	ID                   int64      `json:"id"`
	Description          string     `json:"description"`
	State                string     `json:"state"`
	RequesterID          int64      `json:"requesterId"`
	AssignedTechnicianID *int64     `json:"assignedTechnicianId"`
	ResolvedAt           *time.Time `json:"resolvedAt"`
	TimeSpentMinutes     *int       `json:"timeSpentMinutes"`
	Materials            *string    `json:"materials"`
	Cost                 *float64   `json:"cost"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
	HoursOpen            int        `json:"hoursOpen"`
	SLAAtRisk            bool       `json:"slaAtRisk"`
	EstimatedCost        *float64   `json:"estimatedCost"`
}

// NewIncidentResponse maps a service view onto the transport shape.
func NewIncidentResponse(view service.IncidentView) IncidentResponse {
	inc := view.Incident
	return IncidentResponse{
		ID:                   inc.ID,
		Description:          inc.Description,
		State:                string(inc.State),
		RequesterID:          inc.RequesterID,
		AssignedTechnicianID: inc.AssignedTechnicianID,
		ResolvedAt:           inc.ResolvedAt,
		TimeSpentMinutes:     inc.TimeSpentMinutes,
		Materials:            inc.Materials,
		Cost:                 inc.Cost,
		CreatedAt:            inc.CreatedAt,
		UpdatedAt:            inc.UpdatedAt,
		HoursOpen:            view.HoursOpen,
		SLAAtRisk:            view.SLAAtRisk,
		EstimatedCost:        view.EstimatedCost,
	}
}

// NewIncidentListResponse maps a slice of views.
func NewIncidentListResponse(views []service.IncidentView) []IncidentResponse {
	result := make([]IncidentResponse, 0, len(views))
	for _, view := range views {
		result = append(result, NewIncidentResponse(view))
	}
	return result
}
