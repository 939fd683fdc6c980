package api_test

import (
	"testing"
	"time"

	"shopclock/internal/api"
	"shopclock/internal/timelog"
)

func TestFromSessionComputesLiveElapsed(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	resumed := start.Add(40 * time.Minute)
	session := &timelog.Session{
		ID:        7,
		Owner:     "maria",
		JobRef:    "ENG-450",
		Subject:   "head torque",
		Status:    timelog.StatusActive,
		StartedAt: start,
		Pauses: []*timelog.Pause{
			{
				ID:              1,
				SessionID:       7,
				Observation:     "break",
				PausedAt:        start.Add(30 * time.Minute),
				ResumedAt:       &resumed,
				DurationSeconds: 600,
			},
		},
	}

	dto := api.FromSession(session, start.Add(time.Hour))
	if dto.ID != 7 || dto.Status != "active" {
		t.Fatalf("unexpected dto: %#v", dto)
	}
	if want := int64(3600 - 600); dto.ElapsedSeconds != want {
		t.Fatalf("expected elapsed %d, got %d", want, dto.ElapsedSeconds)
	}
	if dto.StartedAt != "2026-03-14T09:00:00.000Z" {
		t.Fatalf("unexpected started_at formatting: %q", dto.StartedAt)
	}
	if dto.FinishedAt != "" {
		t.Fatalf("expected empty finished_at, got %q", dto.FinishedAt)
	}
	if len(dto.Pauses) != 1 {
		t.Fatalf("expected 1 pause, got %d", len(dto.Pauses))
	}
	pause := dto.Pauses[0]
	if pause.Open || pause.DurationSeconds != 600 || pause.Observation != "break" {
		t.Fatalf("unexpected pause dto: %#v", pause)
	}
}

func TestFromSessionFinishedUsesFrozenTotal(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	finished := start.Add(time.Hour)
	session := &timelog.Session{
		ID:           3,
		Status:       timelog.StatusFinished,
		StartedAt:    start,
		FinishedAt:   &finished,
		TotalSeconds: 2400,
	}

	dto := api.FromSession(session, start.Add(48*time.Hour))
	if dto.ElapsedSeconds != 2400 {
		t.Fatalf("expected frozen total, got %d", dto.ElapsedSeconds)
	}
	if dto.FinishedAt == "" {
		t.Fatal("expected finished_at to be set")
	}
}

func TestFromSessionNil(t *testing.T) {
	dto := api.FromSession(nil, time.Now())
	if dto.ID != 0 || dto.Pauses != nil {
		t.Fatalf("expected zero dto for nil session, got %#v", dto)
	}
}

func TestFromPauseOpen(t *testing.T) {
	pausedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	dto := api.FromPause(&timelog.Pause{ID: 2, SessionID: 7, PausedAt: pausedAt, Observation: "parts"})
	if !dto.Open {
		t.Fatal("expected open pause")
	}
	if dto.ResumedAt != "" {
		t.Fatalf("expected empty resumed_at, got %q", dto.ResumedAt)
	}
}
