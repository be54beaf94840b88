package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/policy"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// IncidentService coordinates incident workflows: creation, scoped listing,
// partial updates and the start-work/close-now lifecycle helpers. All
// authorization decisions are delegated to the policy package.
type IncidentService struct {
	incidents  repository.IncidentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	hourlyRate float64
	now        func() time.Time
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	IncidentRepo repository.IncidentRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	HourlyRate   float64
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	rate := deps.HourlyRate
	if rate <= 0 {
		rate = policy.DefaultHourlyRate
	}
	return &IncidentService{
		incidents:  deps.IncidentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		hourlyRate: rate,
		now:        time.Now,
	}
}

// IncidentView pairs an incident with its derived, read-only signals.
type IncidentView struct {
	Incident      domain.Incident
	HoursOpen     int
	SLAAtRisk     bool
	EstimatedCost *float64
}

// ListFilter describes listing parameters beyond the visibility scope.
type ListFilter struct {
	States []domain.IncidentState
	Limit  int
	Offset int
}

// Create opens a new incident attributed to the caller. Any authenticated
// principal may create; the description must be non-empty after trimming.
func (s *IncidentService) Create(ctx context.Context, p *domain.Principal, description string) (*IncidentView, error) {
	if p == nil {
		return nil, apperrors.NewUnauthenticated("not authenticated")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}

	inc := &domain.Incident{
		Description: description,
		State:       domain.IncidentStateOpen,
		RequesterID: p.ID,
	}
	if err := s.incidents.Create(ctx, inc); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentCreated,
		IncidentID: inc.ID,
		Actor:      actorOf(p),
		Payload: events.IncidentCreatedPayload{
			RequesterID: inc.RequesterID,
			Description: inc.Description,
		},
	})
	view := s.viewOf(*inc)
	return &view, nil
}

// List returns incidents visible to the principal, newest first. Visibility
// is applied as a query scope, not a post-filter.
func (s *IncidentService) List(ctx context.Context, p *domain.Principal, filter ListFilter) ([]IncidentView, error) {
	if p == nil {
		return nil, apperrors.NewUnauthenticated("not authenticated")
	}
	repoFilter := repository.IncidentFilter{
		Scope:  policy.ScopeFilterFor(p),
		States: filter.States,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	incidents, err := s.incidents.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]IncidentView, 0, len(incidents))
	for _, inc := range incidents {
		views = append(views, s.viewOf(inc))
	}
	return views, nil
}

// Get fetches a single incident, enforcing read access. A principal lacking
// access to an existing incident receives a forbidden error, not a not-found
// one.
func (s *IncidentService) Get(ctx context.Context, p *domain.Principal, id int64) (*IncidentView, error) {
	inc, err := s.authorizeRead(ctx, p, id)
	if err != nil {
		return nil, err
	}
	view := s.viewOf(*inc)
	return &view, nil
}

// Update applies a partial update. The patch is narrowed to the fields the
// writer may touch; an admin reassignment is validated against the referenced
// account and fails the whole update when invalid.
func (s *IncidentService) Update(ctx context.Context, p *domain.Principal, id int64, patch policy.IncidentPatch) (*IncidentView, error) {
	inc, err := s.authorizeWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}

	filtered := policy.FilterWritableFields(p, patch)
	if err := filtered.Validate(); err != nil {
		return nil, err
	}
	if filtered.AssignedTechnicianID.Set && !filtered.AssignedTechnicianID.Null {
		target, err := s.users.GetByID(ctx, filtered.AssignedTechnicianID.Value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, policy.ValidateAssignee(nil)
			}
			return nil, apperrors.MapError(err)
		}
		if err := policy.ValidateAssignee(target.Principal()); err != nil {
			return nil, err
		}
	}

	oldState := inc.State
	oldAssignee := inc.AssignedTechnicianID
	policy.ApplyPatch(inc, filtered)

	if err := s.incidents.Update(ctx, inc); err != nil {
		return nil, apperrors.MapError(err)
	}

	if filtered.AssignedTechnicianID.Set && !equalID(oldAssignee, inc.AssignedTechnicianID) {
		s.publishEvent(ctx, events.Event{
			Type:       events.EventIncidentAssigned,
			IncidentID: inc.ID,
			Actor:      actorOf(p),
			Payload:    events.IncidentAssignedPayload{AssignedTechnicianID: inc.AssignedTechnicianID},
		})
	}
	if inc.State != oldState {
		s.publishEvent(ctx, events.Event{
			Type:       events.EventIncidentStateChanged,
			IncidentID: inc.ID,
			Actor:      actorOf(p),
			Payload:    events.IncidentStateChangedPayload{OldState: oldState, NewState: inc.State},
		})
	}

	view := s.viewOf(*inc)
	return &view, nil
}

// StartWork moves the incident to IN_PROGRESS on behalf of an authorized
// writer. Closed incidents cannot be reopened through this path.
func (s *IncidentService) StartWork(ctx context.Context, p *domain.Principal, id int64) (*IncidentView, error) {
	inc, err := s.authorizeWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	oldState := inc.State
	if err := policy.StartWork(inc); err != nil {
		return nil, err
	}
	if err := s.incidents.Update(ctx, inc); err != nil {
		return nil, apperrors.MapError(err)
	}
	if inc.State != oldState {
		s.publishEvent(ctx, events.Event{
			Type:       events.EventIncidentStateChanged,
			IncidentID: inc.ID,
			Actor:      actorOf(p),
			Payload:    events.IncidentStateChangedPayload{OldState: oldState, NewState: inc.State},
		})
	}
	view := s.viewOf(*inc)
	return &view, nil
}

// CloseNow closes the incident, stamping resolution time and recording time
// spent. Closing an already-closed incident is a no-op and publishes nothing.
func (s *IncidentService) CloseNow(ctx context.Context, p *domain.Principal, id int64, explicitMinutes *int) (*IncidentView, error) {
	inc, err := s.authorizeWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if explicitMinutes != nil && *explicitMinutes < 0 {
		return nil, apperrors.NewValidationError("timeSpentMinutes must be non-negative", nil)
	}

	if !policy.CloseNow(inc, explicitMinutes, s.now()) {
		view := s.viewOf(*inc)
		return &view, nil
	}
	if err := s.incidents.Update(ctx, inc); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventIncidentClosed,
		IncidentID: inc.ID,
		Actor:      actorOf(p),
		Payload: events.IncidentClosedPayload{
			ResolvedAt:       *inc.ResolvedAt,
			TimeSpentMinutes: *inc.TimeSpentMinutes,
		},
	})
	view := s.viewOf(*inc)
	return &view, nil
}

func (s *IncidentService) authorizeRead(ctx context.Context, p *domain.Principal, id int64) (*domain.Incident, error) {
	if p == nil {
		return nil, apperrors.NewUnauthenticated("not authenticated")
	}
	inc, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(p, inc) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return inc, nil
}

func (s *IncidentService) authorizeWrite(ctx context.Context, p *domain.Principal, id int64) (*domain.Incident, error) {
	if p == nil {
		return nil, apperrors.NewUnauthenticated("not authenticated")
	}
	inc, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanWrite(p, inc) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return inc, nil
}

func (s *IncidentService) fetch(ctx context.Context, id int64) (*domain.Incident, error) {
	inc, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return inc, nil
}

func (s *IncidentService) viewOf(inc domain.Incident) IncidentView {
	now := s.now()
	return IncidentView{
		Incident:      inc,
		HoursOpen:     policy.HoursOpen(&inc, now),
		SLAAtRisk:     policy.SLAAtRisk(&inc, now),
		EstimatedCost: policy.EstimatedCost(inc.TimeSpentMinutes, s.hourlyRate),
	}
}

func (s *IncidentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorOf(p *domain.Principal) events.Actor {
	return events.Actor{PrincipalID: p.ID, Role: p.Role}
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
