// Package policy implements the incident access and lifecycle rules: who may
// read or mutate which incident fields, how an incident moves through its
// states, and the derived signals computed on every read. All functions are
// pure over their inputs; persistence and transport stay with the callers.
package policy

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CanRead reports whether the principal may read the incident. Admins read
// everything, technicians read incidents assigned to them, requesters read
// incidents they created.
func CanRead(p *domain.Principal, inc *domain.Incident) bool {
	if p == nil || inc == nil {
		return false
	}
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTechnician:
		return inc.AssignedTechnicianID != nil && *inc.AssignedTechnicianID == p.ID
	case domain.RoleRequester:
		return inc.RequesterID == p.ID
	default:
		return false
	}
}

// CanWrite reports whether the principal may mutate the incident. Requesters
// may create incidents but never edit them.
func CanWrite(p *domain.Principal, inc *domain.Incident) bool {
	if p == nil || inc == nil {
		return false
	}
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTechnician:
		return inc.AssignedTechnicianID != nil && *inc.AssignedTechnicianID == p.ID
	default:
		return false
	}
}

// ScopeFilter constrains an incident listing to what a principal may see.
// Nil fields are unconstrained.
type ScopeFilter struct {
	RequesterID          *int64
	AssignedTechnicianID *int64
}

// Matches reports whether an incident falls inside the scope. Listing with a
// scope filter and post-filtering with CanRead must agree.
func (f ScopeFilter) Matches(inc *domain.Incident) bool {
	if f.RequesterID != nil && inc.RequesterID != *f.RequesterID {
		return false
	}
	if f.AssignedTechnicianID != nil {
		if inc.AssignedTechnicianID == nil || *inc.AssignedTechnicianID != *f.AssignedTechnicianID {
			return false
		}
	}
	return true
}

// ScopeFilterFor returns the visibility scope for a listing: admins see all
// incidents, technicians those assigned to them, requesters their own.
func ScopeFilterFor(p *domain.Principal) ScopeFilter {
	if p == nil {
		return ScopeFilter{}
	}
	switch p.Role {
	case domain.RoleTechnician:
		id := p.ID
		return ScopeFilter{AssignedTechnicianID: &id}
	case domain.RoleRequester:
		id := p.ID
		return ScopeFilter{RequesterID: &id}
	default:
		return ScopeFilter{}
	}
}

// IncidentPatch is a partial update over the writable incident fields. Fields
// omitted from the request are left unchanged; fields submitted as null clear
// the corresponding nullable column.
type IncidentPatch struct {
	State                Field[domain.IncidentState]
	AssignedTechnicianID Field[int64]
	ResolvedAt           Field[time.Time]
	TimeSpentMinutes     Field[int]
	Materials            Field[string]
	Cost                 Field[float64]
}

// FilterWritableFields narrows a proposed patch to the fields the writer may
// apply. Reassignment is reserved to admins: a technician submitting
// AssignedTechnicianID has the field silently dropped while the rest of the
// patch still applies.
func FilterWritableFields(p *domain.Principal, patch IncidentPatch) IncidentPatch {
	if p == nil || p.Role != domain.RoleAdmin {
		patch.AssignedTechnicianID = Field[int64]{}
	}
	return patch
}

// Validate rejects patch values outside the data model: unknown states and
// negative time or cost.
func (patch IncidentPatch) Validate() error {
	if patch.State.Set {
		if patch.State.Null {
			return apperrors.NewValidationError("state cannot be null", nil)
		}
		if _, ok := domain.ParseIncidentState(string(patch.State.Value)); !ok {
			return apperrors.NewValidationError("invalid state", map[string]any{"state": patch.State.Value})
		}
	}
	if patch.TimeSpentMinutes.Set && !patch.TimeSpentMinutes.Null && patch.TimeSpentMinutes.Value < 0 {
		return apperrors.NewValidationError("timeSpentMinutes must be non-negative", nil)
	}
	if patch.Cost.Set && !patch.Cost.Null && patch.Cost.Value < 0 {
		return apperrors.NewValidationError("cost must be non-negative", nil)
	}
	return nil
}

// ValidateAssignee checks the principal referenced by an admin reassignment.
// The referenced account must exist and hold exactly the TECHNICIAN role;
// otherwise the entire update fails with a validation error and nothing is
// applied.
func ValidateAssignee(target *domain.Principal) error {
	if target == nil {
		return apperrors.NewValidationError("assigned technician does not exist", nil)
	}
	if target.Role != domain.RoleTechnician {
		return apperrors.NewValidationError("assigned principal is not a technician",
			map[string]any{"principal_id": target.ID, "role": target.Role})
	}
	return nil
}

// ApplyPatch writes a filtered, validated patch onto the incident.
func ApplyPatch(inc *domain.Incident, patch IncidentPatch) {
	if patch.State.Set && !patch.State.Null {
		inc.State = patch.State.Value
	}
	if patch.AssignedTechnicianID.Set {
		inc.AssignedTechnicianID = patch.AssignedTechnicianID.Ptr()
	}
	if patch.ResolvedAt.Set {
		inc.ResolvedAt = patch.ResolvedAt.Ptr()
	}
	if patch.TimeSpentMinutes.Set {
		inc.TimeSpentMinutes = patch.TimeSpentMinutes.Ptr()
	}
	if patch.Materials.Set {
		inc.Materials = patch.Materials.Ptr()
	}
	if patch.Cost.Set {
		inc.Cost = patch.Cost.Ptr()
	}
}
