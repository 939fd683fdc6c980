package timelog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a work session.
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

var allStatuses = []Status{
	StatusActive,
	StatusPaused,
	StatusFinished,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Session is one timed unit of work owned by a single operator.
type Session struct {
	ID           int64
	Owner        string
	JobRef       string
	Subject      string
	Status       Status
	StartedAt    time.Time
	FinishedAt   *time.Time
	TotalSeconds int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Pauses is the session's pause ledger ordered by PausedAt ascending.
	// Populated by store queries that load sessions with their pauses.
	Pauses []*Pause
}

// Pause is one interval during which a session's clock did not advance.
// A pause with no ResumedAt is open; DurationSeconds is frozen when the
// pause closes and never recomputed.
type Pause struct {
	ID              int64
	SessionID       int64
	Observation     string
	PausedAt        time.Time
	ResumedAt       *time.Time
	DurationSeconds int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Open reports whether the pause has not been closed yet.
func (p *Pause) Open() bool {
	return p != nil && p.ResumedAt == nil
}

// OpenPause returns the session's open pause, or nil when every pause in the
// ledger is closed. At most one pause per session can be open.
func (s *Session) OpenPause() *Pause {
	if s == nil {
		return nil
	}
	for _, pause := range s.Pauses {
		if pause.Open() {
			return pause
		}
	}
	return nil
}

// IsOpen reports whether the session still accepts transitions.
func (s *Session) IsOpen() bool {
	return s != nil && s.Status != StatusFinished
}

// LiveSeconds returns the session's elapsed working time as of now. Finished
// sessions report their frozen total regardless of now.
func (s *Session) LiveSeconds(now time.Time) int64 {
	if s == nil {
		return 0
	}
	if s.Status == StatusFinished {
		return s.TotalSeconds
	}
	return Elapsed(s.StartedAt, now, s.Pauses, s.Status)
}
