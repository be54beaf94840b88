package policy

import (
	"testing"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

func TestStartWork(t *testing.T) {
	inc := incident(1, 10, int64Ptr(20))
	if err := StartWork(inc); err != nil {
		t.Fatalf("StartWork: %v", err)
	}
	if inc.State != domain.IncidentStateInProgress {
		t.Fatalf("state = %s, want IN_PROGRESS", inc.State)
	}

	// Starting twice is allowed; only closed incidents are off limits.
	if err := StartWork(inc); err != nil {
		t.Fatalf("StartWork again: %v", err)
	}

	inc.State = domain.IncidentStateClosed
	if err := StartWork(inc); err == nil {
		t.Fatal("StartWork must reject a closed incident")
	}
}

func TestCloseNowComputesElapsedMinutes(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := created.Add(45 * time.Minute)

	inc := incident(1, 10, int64Ptr(20))
	inc.CreatedAt = created
	inc.State = domain.IncidentStateInProgress

	if !CloseNow(inc, nil, now) {
		t.Fatal("CloseNow must apply on an open incident")
	}
	if inc.State != domain.IncidentStateClosed {
		t.Fatalf("state = %s, want CLOSED", inc.State)
	}
	if inc.ResolvedAt == nil || !inc.ResolvedAt.Equal(now) {
		t.Fatalf("resolvedAt = %v, want %v", inc.ResolvedAt, now)
	}
	if inc.TimeSpentMinutes == nil || *inc.TimeSpentMinutes != 45 {
		t.Fatalf("timeSpentMinutes = %v, want 45", inc.TimeSpentMinutes)
	}
}

func TestCloseNowExplicitMinutes(t *testing.T) {
	inc := incident(1, 10, int64Ptr(20))
	minutes := 90
	if !CloseNow(inc, &minutes, time.Now()) {
		t.Fatal("CloseNow must apply")
	}
	if *inc.TimeSpentMinutes != 90 {
		t.Fatalf("timeSpentMinutes = %d, want explicit 90", *inc.TimeSpentMinutes)
	}
}

func TestCloseNowFloorsAtOneMinute(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	inc := incident(1, 10, int64Ptr(20))
	inc.CreatedAt = created

	CloseNow(inc, nil, created.Add(5*time.Second))
	if *inc.TimeSpentMinutes != 1 {
		t.Fatalf("timeSpentMinutes = %d, want floor of 1", *inc.TimeSpentMinutes)
	}
}

func TestCloseNowIdempotent(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := created.Add(30 * time.Minute)
	second := created.Add(2 * time.Hour)

	inc := incident(1, 10, int64Ptr(20))
	inc.CreatedAt = created

	if !CloseNow(inc, nil, first) {
		t.Fatal("first close must apply")
	}
	resolvedAt := *inc.ResolvedAt
	minutes := *inc.TimeSpentMinutes

	if CloseNow(inc, nil, second) {
		t.Fatal("second close must be a no-op")
	}
	if !inc.ResolvedAt.Equal(resolvedAt) {
		t.Fatal("second close must not change resolvedAt")
	}
	if *inc.TimeSpentMinutes != minutes {
		t.Fatal("second close must not change timeSpentMinutes")
	}
}
