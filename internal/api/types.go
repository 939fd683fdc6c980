// Package api defines the transport-friendly representations shared by the
// daemon HTTP API and its clients.
package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Session describes a work session in a transport-friendly format.
// ElapsedSeconds is the live pause-net working time as of the server clock;
// for finished sessions it equals the frozen TotalSeconds.
type Session struct {
	ID             int64   `json:"id"`
	Owner          string  `json:"owner"`
	JobRef         string  `json:"jobRef"`
	Subject        string  `json:"subject"`
	Status         string  `json:"status"`
	StartedAt      string  `json:"startedAt"`
	FinishedAt     string  `json:"finishedAt,omitempty"`
	TotalSeconds   int64   `json:"totalSeconds"`
	ElapsedSeconds int64   `json:"elapsedSeconds"`
	Pauses         []Pause `json:"pauses"`
}

// Pause describes one entry of a session's pause ledger.
type Pause struct {
	ID              int64  `json:"id"`
	SessionID       int64  `json:"sessionId"`
	Observation     string `json:"observation"`
	PausedAt        string `json:"pausedAt"`
	ResumedAt       string `json:"resumedAt,omitempty"`
	DurationSeconds int64  `json:"durationSeconds"`
	Open            bool   `json:"open"`
}

// CreateSessionRequest is the payload for starting a session.
type CreateSessionRequest struct {
	Owner   string `json:"owner"`
	JobRef  string `json:"jobRef"`
	Subject string `json:"subject"`
}

// SwitchSessionRequest is the payload for pausing the active session and
// starting a new one atomically.
type SwitchSessionRequest struct {
	Owner       string `json:"owner"`
	JobRef      string `json:"jobRef"`
	Subject     string `json:"subject"`
	Observation string `json:"observation"`
}

// PauseSessionRequest is the payload for pausing a session.
type PauseSessionRequest struct {
	Owner       string `json:"owner"`
	Observation string `json:"observation"`
}

// OwnerRequest carries the operator identifier for resume and finish calls.
type OwnerRequest struct {
	Owner string `json:"owner"`
}

// SessionResponse wraps a single session payload. Session is null when the
// operator has no matching session.
type SessionResponse struct {
	Session *Session `json:"session"`
}

// SessionListResponse wraps session collection payloads.
type SessionListResponse struct {
	Sessions []Session `json:"sessions"`
}

// FinishResponse reports the frozen total of a finished session.
type FinishResponse struct {
	TotalSeconds int64 `json:"totalSeconds"`
}

// DaemonStatus summarizes daemon runtime information.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DBPath       string         `json:"dbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Sessions     map[string]int `json:"sessions"`
}

// ErrorResponse is the uniform error payload for API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
