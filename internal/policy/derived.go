package policy

import (
	"math"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// SLAThresholdHours is the fixed breach threshold: an incident still open
// after this many hours is flagged as at risk.
const SLAThresholdHours = 72

// DefaultHourlyRate is the fallback labor rate for cost estimation, in
// currency units per hour.
const DefaultHourlyRate = 30.0

// HoursOpen returns the whole hours elapsed since the incident was created.
func HoursOpen(inc *domain.Incident, now time.Time) int {
	return int(math.Floor(now.Sub(inc.CreatedAt).Hours()))
}

// SLAAtRisk flags incidents that have stayed unresolved past the SLA
// threshold. Closed incidents are never at risk regardless of age.
func SLAAtRisk(inc *domain.Incident, now time.Time) bool {
	if inc.State == domain.IncidentStateClosed {
		return false
	}
	return HoursOpen(inc, now) >= SLAThresholdHours
}

// EstimatedCost converts recorded minutes into a monetary estimate at the
// given hourly rate, rounded to two decimals. It is an assist value the
// technician may accept or override, never applied without an explicit save.
// Nil minutes yield nil.
func EstimatedCost(timeSpentMinutes *int, hourlyRate float64) *float64 {
	if timeSpentMinutes == nil {
		return nil
	}
	cost := math.Round(float64(*timeSpentMinutes)/60.0*hourlyRate*100) / 100
	return &cost
}
