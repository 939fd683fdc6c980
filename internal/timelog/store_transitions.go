package timelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopclock/internal/services"
)

// Each transition below is one immediate transaction: the guard reads and the
// writes they authorize commit together or not at all. The partial unique
// index on active sessions backs up the in-transaction conflict checks, so a
// racing writer fails at commit instead of producing two active sessions.

// CreateSession starts a new active session for the operator at now. It is
// rejected with a conflict error when the operator already has an active
// session.
func (s *Store) CreateSession(ctx context.Context, owner, jobRef, subject string, now time.Time) (*Session, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		activeID, err := activeSessionIDTx(ctx, tx, owner, 0)
		if err != nil {
			return err
		}
		if activeID != 0 {
			return services.Wrap(services.ErrConflict, "timelog", "create",
				fmt.Sprintf("operator %q already has active session %d", owner, activeID), nil)
		}
		id, err = insertSessionTx(ctx, tx, owner, jobRef, subject, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// PauseActiveAndCreate atomically pauses the operator's current active
// session, recording the supplied observation, and starts a new active
// session. Both mutations commit together or neither does.
func (s *Store) PauseActiveAndCreate(ctx context.Context, owner, jobRef, subject, observation string, now time.Time) (*Session, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		activeID, err := activeSessionIDTx(ctx, tx, owner, 0)
		if err != nil {
			return err
		}
		if activeID == 0 {
			return services.Wrap(services.ErrNotFound, "timelog", "pause and create",
				fmt.Sprintf("operator %q has no active session", owner), nil)
		}
		if err := setStatusTx(ctx, tx, activeID, StatusPaused, now); err != nil {
			return err
		}
		if err := openPauseTx(ctx, tx, activeID, observation, now); err != nil {
			return err
		}
		id, err = insertSessionTx(ctx, tx, owner, jobRef, subject, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// PauseSession moves an active session to paused and opens a pause carrying
// the operator's observation.
func (s *Store) PauseSession(ctx context.Context, id int64, owner, observation string, now time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		session, err := ownedSessionTx(ctx, tx, id, owner, "pause")
		if err != nil {
			return err
		}
		if session.Status != StatusActive {
			return services.Wrap(services.ErrInvalidState, "timelog", "pause",
				fmt.Sprintf("session %d is %s, not active", id, session.Status), nil)
		}
		if err := setStatusTx(ctx, tx, id, StatusPaused, now); err != nil {
			return err
		}
		return openPauseTx(ctx, tx, id, observation, now)
	})
}

// ResumeSession closes a paused session's open pause, freezing its duration
// as of now, and moves the session back to active. It is rejected with a
// conflict error when the operator has another session in active state.
func (s *Store) ResumeSession(ctx context.Context, id int64, owner string, now time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		session, err := ownedSessionTx(ctx, tx, id, owner, "resume")
		if err != nil {
			return err
		}
		if session.Status != StatusPaused {
			return services.Wrap(services.ErrInvalidState, "timelog", "resume",
				fmt.Sprintf("session %d is %s, not paused", id, session.Status), nil)
		}
		otherID, err := activeSessionIDTx(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		if otherID != 0 {
			return services.Wrap(services.ErrConflict, "timelog", "resume",
				fmt.Sprintf("operator %q already has active session %d", owner, otherID), nil)
		}
		_, closed, err := closeOpenPauseTx(ctx, tx, id, now)
		if err != nil {
			return err
		}
		if !closed {
			return services.Wrap(services.ErrInvalidState, "timelog", "resume",
				fmt.Sprintf("session %d has no open pause", id), nil)
		}
		return setStatusTx(ctx, tx, id, StatusActive, now)
	})
}

// FinishSession terminates an active or paused session at now. An open pause
// is closed first without reactivating the session, then the total working
// time is computed over the closed ledger and frozen on the row.
func (s *Store) FinishSession(ctx context.Context, id int64, owner string, now time.Time) (int64, error) {
	var total int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		session, err := ownedSessionTx(ctx, tx, id, owner, "finish")
		if err != nil {
			return err
		}
		if session.Status == StatusFinished {
			return services.Wrap(services.ErrInvalidState, "timelog", "finish",
				fmt.Sprintf("session %d is already finished", id), nil)
		}
		if _, _, err := closeOpenPauseTx(ctx, tx, id, now); err != nil {
			return err
		}
		pauses, err := listPauses(ctx, tx, id)
		if err != nil {
			return err
		}
		total = Elapsed(session.StartedAt, now, pauses, StatusActive)
		ts := formatTime(now)
		_, err = tx.ExecContext(
			ctx,
			`UPDATE sessions SET status = ?, finished_at = ?, total_seconds = ?, updated_at = ? WHERE id = ?`,
			StatusFinished,
			ts,
			total,
			ts,
			id,
		)
		if err != nil {
			return fmt.Errorf("finish session: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func insertSessionTx(ctx context.Context, tx *sql.Tx, owner, jobRef, subject string, now time.Time) (int64, error) {
	ts := formatTime(now)
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (owner, job_ref, subject, status, started_at, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		owner,
		jobRef,
		subject,
		StatusActive,
		ts,
		ts,
		ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, services.Wrap(services.ErrConflict, "timelog", "create",
				fmt.Sprintf("operator %q already has an active session", owner), nil)
		}
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func setStatusTx(ctx context.Context, tx *sql.Tx, id int64, status Status, now time.Time) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		formatTime(now),
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return services.Wrap(services.ErrConflict, "timelog", "set status",
				fmt.Sprintf("another session is already active for the owner of session %d", id), nil)
		}
		return fmt.Errorf("set session status: %w", err)
	}
	return nil
}

// ownedSessionTx loads a session and verifies ownership. Sessions belonging
// to another operator report not-found rather than leaking their existence.
func ownedSessionTx(ctx context.Context, tx *sql.Tx, id int64, owner, operation string) (*Session, error) {
	session, err := getSession(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Owner != owner {
		return nil, services.Wrap(services.ErrNotFound, "timelog", operation,
			fmt.Sprintf("session %d not found for operator %q", id, owner), nil)
	}
	return session, nil
}

func activeSessionIDTx(ctx context.Context, tx *sql.Tx, owner string, excludeID int64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(
		ctx,
		`SELECT id FROM sessions WHERE owner = ? AND status = ? AND id != ? LIMIT 1`,
		owner,
		StatusActive,
		excludeID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("check active session: %w", err)
	}
	return id, nil
}
