package api

import (
	"time"

	"shopclock/internal/timelog"
)

// FromSession converts a session record to its API representation, computing
// live elapsed time as of now. now must come from the tracker's clock so the
// reading agrees with what a finish at the same instant would freeze.
func FromSession(session *timelog.Session, now time.Time) Session {
	if session == nil {
		return Session{}
	}

	dto := Session{
		ID:             session.ID,
		Owner:          session.Owner,
		JobRef:         session.JobRef,
		Subject:        session.Subject,
		Status:         string(session.Status),
		TotalSeconds:   session.TotalSeconds,
		ElapsedSeconds: session.LiveSeconds(now),
		Pauses:         make([]Pause, 0, len(session.Pauses)),
	}
	if !session.StartedAt.IsZero() {
		dto.StartedAt = session.StartedAt.UTC().Format(dateTimeFormat)
	}
	if session.FinishedAt != nil {
		dto.FinishedAt = session.FinishedAt.UTC().Format(dateTimeFormat)
	}
	for _, pause := range session.Pauses {
		dto.Pauses = append(dto.Pauses, FromPause(pause))
	}
	return dto
}

// FromSessions converts a session collection, sharing a single now across
// every live elapsed computation.
func FromSessions(sessions []*timelog.Session, now time.Time) []Session {
	out := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, FromSession(session, now))
	}
	return out
}

// FromPause converts a pause ledger entry to its API representation.
func FromPause(pause *timelog.Pause) Pause {
	if pause == nil {
		return Pause{}
	}
	dto := Pause{
		ID:              pause.ID,
		SessionID:       pause.SessionID,
		Observation:     pause.Observation,
		DurationSeconds: pause.DurationSeconds,
		Open:            pause.Open(),
	}
	if !pause.PausedAt.IsZero() {
		dto.PausedAt = pause.PausedAt.UTC().Format(dateTimeFormat)
	}
	if pause.ResumedAt != nil {
		dto.ResumedAt = pause.ResumedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}
