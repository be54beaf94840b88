package policy

import (
	"math"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// StartWork moves the incident to IN_PROGRESS. Reopening a closed incident
// through this path is not allowed.
func StartWork(inc *domain.Incident) error {
	if inc.State == domain.IncidentStateClosed {
		return apperrors.NewConflict("incident already closed", map[string]any{"incident_id": inc.ID})
	}
	inc.State = domain.IncidentStateInProgress
	return nil
}

// CloseNow closes the incident, stamping ResolvedAt with now and recording the
// time spent: the explicit value when provided, otherwise the elapsed
// wall-clock minutes since creation, floored at one minute. Closing an
// already-closed incident is a no-op; the call reports false and side effects
// are not applied twice.
func CloseNow(inc *domain.Incident, explicitMinutes *int, now time.Time) bool {
	if inc.State == domain.IncidentStateClosed {
		return false
	}
	inc.State = domain.IncidentStateClosed
	resolvedAt := now
	inc.ResolvedAt = &resolvedAt

	var minutes int
	if explicitMinutes != nil {
		minutes = *explicitMinutes
	} else {
		// Elapsed wall-clock time since creation, floored at one minute so a
		// just-created incident never records zero or negative duration.
		minutes = int(math.Round(now.Sub(inc.CreatedAt).Minutes()))
		if minutes < 1 {
			minutes = 1
		}
	}
	inc.TimeSpentMinutes = &minutes
	return true
}
