package policy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

func int64Ptr(v int64) *int64 { return &v }

func principal(id int64, role domain.Role) *domain.Principal {
	return &domain.Principal{ID: id, Role: role, Name: "p", Email: "p@example.com"}
}

func incident(id, requesterID int64, technicianID *int64) *domain.Incident {
	return &domain.Incident{
		ID:                   id,
		Description:          "printer jam",
		State:                domain.IncidentStateOpen,
		RequesterID:          requesterID,
		AssignedTechnicianID: technicianID,
		CreatedAt:            time.Now(),
	}
}

func TestCanRead(t *testing.T) {
	inc := incident(1, 10, int64Ptr(20))

	cases := []struct {
		name string
		p    *domain.Principal
		want bool
	}{
		{"admin reads anything", principal(99, domain.RoleAdmin), true},
		{"assigned technician", principal(20, domain.RoleTechnician), true},
		{"other technician", principal(21, domain.RoleTechnician), false},
		{"owning requester", principal(10, domain.RoleRequester), true},
		{"other requester", principal(11, domain.RoleRequester), false},
		{"nil principal", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanRead(tc.p, inc); got != tc.want {
				t.Fatalf("CanRead = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanReadUnassignedIncident(t *testing.T) {
	inc := incident(1, 10, nil)
	if CanRead(principal(20, domain.RoleTechnician), inc) {
		t.Fatal("technician must not read an unassigned incident")
	}
	if !CanRead(principal(10, domain.RoleRequester), inc) {
		t.Fatal("requester must read their own unassigned incident")
	}
}

func TestCanWrite(t *testing.T) {
	inc := incident(1, 10, int64Ptr(20))

	cases := []struct {
		name string
		p    *domain.Principal
		want bool
	}{
		{"admin", principal(99, domain.RoleAdmin), true},
		{"assigned technician", principal(20, domain.RoleTechnician), true},
		{"other technician", principal(21, domain.RoleTechnician), false},
		{"owning requester never writes", principal(10, domain.RoleRequester), false},
		{"nil principal", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanWrite(tc.p, inc); got != tc.want {
				t.Fatalf("CanWrite = %v, want %v", got, tc.want)
			}
		})
	}
}

// Listing with a scope filter and post-filtering the full set with CanRead
// must select the same incidents for every role.
func TestScopeFilterMatchesCanRead(t *testing.T) {
	incidents := []*domain.Incident{
		incident(1, 10, int64Ptr(20)),
		incident(2, 10, nil),
		incident(3, 11, int64Ptr(21)),
		incident(4, 12, int64Ptr(20)),
		incident(5, 11, nil),
	}
	principals := []*domain.Principal{
		principal(10, domain.RoleRequester),
		principal(11, domain.RoleRequester),
		principal(20, domain.RoleTechnician),
		principal(21, domain.RoleTechnician),
		principal(99, domain.RoleAdmin),
	}

	for _, p := range principals {
		scope := ScopeFilterFor(p)
		for _, inc := range incidents {
			if scope.Matches(inc) != CanRead(p, inc) {
				t.Fatalf("scope and CanRead disagree for role %s on incident %d", p.Role, inc.ID)
			}
		}
	}
}

func TestScopeFilterFor(t *testing.T) {
	admin := ScopeFilterFor(principal(99, domain.RoleAdmin))
	if admin.RequesterID != nil || admin.AssignedTechnicianID != nil {
		t.Fatal("admin scope must be unconstrained")
	}

	tech := ScopeFilterFor(principal(20, domain.RoleTechnician))
	if tech.AssignedTechnicianID == nil || *tech.AssignedTechnicianID != 20 {
		t.Fatalf("technician scope = %+v", tech)
	}
	if tech.RequesterID != nil {
		t.Fatal("technician scope must not constrain requester")
	}

	req := ScopeFilterFor(principal(10, domain.RoleRequester))
	if req.RequesterID == nil || *req.RequesterID != 10 {
		t.Fatalf("requester scope = %+v", req)
	}
}

func TestFilterWritableFieldsDropsAssigneeForTechnician(t *testing.T) {
	patch := IncidentPatch{
		State:                NewField(domain.IncidentStateClosed),
		AssignedTechnicianID: NewField[int64](7),
	}

	filtered := FilterWritableFields(principal(20, domain.RoleTechnician), patch)
	if filtered.AssignedTechnicianID.Set {
		t.Fatal("assignee change by technician must be dropped")
	}
	if !filtered.State.Set || filtered.State.Value != domain.IncidentStateClosed {
		t.Fatal("other submitted fields must still apply")
	}

	kept := FilterWritableFields(principal(99, domain.RoleAdmin), patch)
	if !kept.AssignedTechnicianID.Set || kept.AssignedTechnicianID.Value != 7 {
		t.Fatal("admin assignee change must be kept")
	}
}

func TestValidateAssignee(t *testing.T) {
	if err := ValidateAssignee(principal(20, domain.RoleTechnician)); err != nil {
		t.Fatalf("technician assignee rejected: %v", err)
	}

	err := ValidateAssignee(principal(10, domain.RoleRequester))
	if err == nil {
		t.Fatal("requester assignee must be rejected")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", domainErr.Code)
	}

	if err := ValidateAssignee(nil); err == nil {
		t.Fatal("missing assignee must be rejected")
	}
}

func TestPatchValidate(t *testing.T) {
	cases := []struct {
		name    string
		patch   IncidentPatch
		wantErr bool
	}{
		{"empty patch", IncidentPatch{}, false},
		{"valid state", IncidentPatch{State: NewField(domain.IncidentStateInProgress)}, false},
		{"unknown state", IncidentPatch{State: NewField(domain.IncidentState("BROKEN"))}, true},
		{"null state", IncidentPatch{State: NullField[domain.IncidentState]()}, true},
		{"negative minutes", IncidentPatch{TimeSpentMinutes: NewField(-5)}, true},
		{"negative cost", IncidentPatch{Cost: NewField(-1.0)}, true},
		{"null cost clears", IncidentPatch{Cost: NullField[float64]()}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestApplyPatchNullVsOmitted(t *testing.T) {
	materials := "toner"
	cost := 12.5
	inc := incident(1, 10, int64Ptr(20))
	inc.Materials = &materials
	inc.Cost = &cost

	// Materials submitted as null clears it; cost omitted stays untouched.
	ApplyPatch(inc, IncidentPatch{Materials: NullField[string]()})
	if inc.Materials != nil {
		t.Fatal("explicit null must clear materials")
	}
	if inc.Cost == nil || *inc.Cost != 12.5 {
		t.Fatal("omitted cost must be preserved")
	}

	ApplyPatch(inc, IncidentPatch{Cost: NewField(40.0)})
	if inc.Cost == nil || *inc.Cost != 40.0 {
		t.Fatal("provided cost must apply")
	}
}

func TestFieldJSONTriState(t *testing.T) {
	var patch struct {
		Materials Field[string]  `json:"materials"`
		Cost      Field[float64] `json:"cost"`
	}
	if err := json.Unmarshal([]byte(`{"materials":null,"cost":19.99}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !patch.Materials.Set || !patch.Materials.Null {
		t.Fatalf("materials = %+v, want explicit null", patch.Materials)
	}
	if !patch.Cost.Set || patch.Cost.Null || patch.Cost.Value != 19.99 {
		t.Fatalf("cost = %+v, want 19.99", patch.Cost)
	}

	var empty struct {
		Materials Field[string] `json:"materials"`
	}
	if err := json.Unmarshal([]byte(`{}`), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if empty.Materials.Set {
		t.Fatal("omitted field must stay unset")
	}
}
