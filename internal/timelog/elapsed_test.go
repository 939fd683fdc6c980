package timelog_test

import (
	"testing"
	"time"

	"shopclock/internal/timelog"
)

var elapsedBase = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func closedPause(pausedAt time.Time, seconds int64) *timelog.Pause {
	resumed := pausedAt.Add(time.Duration(seconds) * time.Second)
	return &timelog.Pause{
		PausedAt:        pausedAt,
		ResumedAt:       &resumed,
		DurationSeconds: seconds,
	}
}

func TestElapsedNoPauses(t *testing.T) {
	got := timelog.Elapsed(elapsedBase, elapsedBase.Add(90*time.Minute), nil, timelog.StatusActive)
	if got != 90*60 {
		t.Fatalf("expected %d seconds, got %d", 90*60, got)
	}
}

func TestElapsedSubtractsClosedPauses(t *testing.T) {
	pauses := []*timelog.Pause{
		closedPause(elapsedBase.Add(10*time.Minute), 300),
		closedPause(elapsedBase.Add(30*time.Minute), 600),
	}
	got := timelog.Elapsed(elapsedBase, elapsedBase.Add(time.Hour), pauses, timelog.StatusActive)
	want := int64(3600 - 300 - 600)
	if got != want {
		t.Fatalf("expected %d seconds, got %d", want, got)
	}
}

func TestElapsedOpenPauseStopsClock(t *testing.T) {
	open := &timelog.Pause{PausedAt: elapsedBase.Add(20 * time.Minute)}
	pauses := []*timelog.Pause{open}

	// While paused, the live reading stops advancing the moment the pause starts.
	atPause := timelog.Elapsed(elapsedBase, elapsedBase.Add(20*time.Minute), pauses, timelog.StatusPaused)
	later := timelog.Elapsed(elapsedBase, elapsedBase.Add(50*time.Minute), pauses, timelog.StatusPaused)
	if atPause != 20*60 || later != 20*60 {
		t.Fatalf("expected frozen reading of %d, got %d then %d", 20*60, atPause, later)
	}
}

func TestElapsedOpenPauseIgnoredWhenActive(t *testing.T) {
	// The finish path closes the open pause first and evaluates as active;
	// an open pause must not be double-counted in that evaluation.
	open := &timelog.Pause{PausedAt: elapsedBase.Add(20 * time.Minute)}
	got := timelog.Elapsed(elapsedBase, elapsedBase.Add(time.Hour), []*timelog.Pause{open}, timelog.StatusActive)
	if got != 3600 {
		t.Fatalf("expected %d seconds, got %d", 3600, got)
	}
}

func TestElapsedClampsClockSkew(t *testing.T) {
	if got := timelog.Elapsed(elapsedBase, elapsedBase.Add(-time.Minute), nil, timelog.StatusActive); got != 0 {
		t.Fatalf("expected 0 for now before start, got %d", got)
	}

	// A pause ledger longer than the wall interval must not go negative.
	pauses := []*timelog.Pause{closedPause(elapsedBase, 7200)}
	if got := timelog.Elapsed(elapsedBase, elapsedBase.Add(time.Hour), pauses, timelog.StatusActive); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestElapsedTruncatesSubSeconds(t *testing.T) {
	got := timelog.Elapsed(elapsedBase, elapsedBase.Add(90*time.Second+900*time.Millisecond), nil, timelog.StatusActive)
	if got != 90 {
		t.Fatalf("expected truncation to 90 seconds, got %d", got)
	}
}

func TestPauseDuration(t *testing.T) {
	start := elapsedBase
	if got := timelog.PauseDuration(start, start.Add(150*time.Second)); got != 150 {
		t.Fatalf("expected 150, got %d", got)
	}
	if got := timelog.PauseDuration(start, start.Add(-time.Second)); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestLiveSecondsFinishedReportsFrozenTotal(t *testing.T) {
	finished := elapsedBase.Add(time.Hour)
	session := &timelog.Session{
		Status:       timelog.StatusFinished,
		StartedAt:    elapsedBase,
		FinishedAt:   &finished,
		TotalSeconds: 1234,
	}
	if got := session.LiveSeconds(elapsedBase.Add(24 * time.Hour)); got != 1234 {
		t.Fatalf("expected frozen total 1234, got %d", got)
	}
}
