package timelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopclock/internal/services"
)

const pauseColumns = "id, session_id, observation, paused_at, resumed_at, duration_seconds, created_at, updated_at"

// ListPauses returns a session's pause ledger ordered by pause start ascending.
func (s *Store) ListPauses(ctx context.Context, sessionID int64) ([]*Pause, error) {
	ctx = ensureContext(ctx)
	return listPauses(ctx, s.db, sessionID)
}

func listPauses(ctx context.Context, q querier, sessionID int64) ([]*Pause, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT `+pauseColumns+` FROM pauses WHERE session_id = ? ORDER BY paused_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pauses: %w", err)
	}
	defer rows.Close()

	var pauses []*Pause
	for rows.Next() {
		pause, err := scanPause(rows)
		if err != nil {
			return nil, err
		}
		pauses = append(pauses, pause)
	}
	return pauses, rows.Err()
}

func attachPauses(ctx context.Context, q querier, sessions ...*Session) error {
	for _, session := range sessions {
		pauses, err := listPauses(ctx, q, session.ID)
		if err != nil {
			return err
		}
		session.Pauses = pauses
	}
	return nil
}

// openPauseTx appends an open pause to the session's ledger. The partial
// unique index on open pauses rejects a second open pause for the session.
func openPauseTx(ctx context.Context, tx *sql.Tx, sessionID int64, observation string, now time.Time) error {
	ts := formatTime(now)
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO pauses (session_id, observation, paused_at, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		sessionID,
		observation,
		ts,
		ts,
		ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return services.Wrap(services.ErrInvalidState, "timelog", "open pause",
				fmt.Sprintf("session %d already has an open pause", sessionID), nil)
		}
		return fmt.Errorf("insert pause: %w", err)
	}
	return nil
}

// closePauseTx closes a pause exactly once, freezing its duration as of now.
// Closing an already-closed pause is an invalid-state error, never a silent
// overwrite of the frozen duration.
func closePauseTx(ctx context.Context, tx *sql.Tx, pause *Pause, now time.Time) (int64, error) {
	if pause == nil {
		return 0, services.Wrap(services.ErrNotFound, "timelog", "close pause", "pause does not exist", nil)
	}
	duration := PauseDuration(pause.PausedAt, now)
	ts := formatTime(now)
	res, err := tx.ExecContext(
		ctx,
		`UPDATE pauses SET resumed_at = ?, duration_seconds = ?, updated_at = ?
         WHERE id = ? AND resumed_at IS NULL`,
		ts,
		duration,
		ts,
		pause.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("close pause: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return 0, services.Wrap(services.ErrInvalidState, "timelog", "close pause",
			fmt.Sprintf("pause %d is already closed", pause.ID), nil)
	}
	return duration, nil
}

// closeOpenPauseTx closes the session's open pause if one exists and returns
// its frozen duration. Returns sql.ErrNoRows mapped to (0, false) when the
// ledger has no open pause.
func closeOpenPauseTx(ctx context.Context, tx *sql.Tx, sessionID int64, now time.Time) (int64, bool, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+pauseColumns+` FROM pauses WHERE session_id = ? AND resumed_at IS NULL ORDER BY paused_at DESC LIMIT 1`,
		sessionID,
	)
	pause, err := scanPause(row)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find open pause: %w", err)
	}
	duration, err := closePauseTx(ctx, tx, pause, now)
	if err != nil {
		return 0, false, err
	}
	return duration, true, nil
}

func scanPause(scanner interface{ Scan(dest ...any) error }) (*Pause, error) {
	var (
		id         int64
		sessionID  int64
		obs        string
		pausedRaw  sql.NullString
		resumedRaw sql.NullString
		duration   sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sessionID,
		&obs,
		&pausedRaw,
		&resumedRaw,
		&duration,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	pause := &Pause{
		ID:              id,
		SessionID:       sessionID,
		Observation:     obs,
		DurationSeconds: duration.Int64,
	}
	paused, err := parseTimeString(pausedRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse paused_at for pause %d: %w", id, err)
	}
	pause.PausedAt = paused
	if resumedRaw.Valid {
		resumed, err := parseTimeString(resumedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse resumed_at for pause %d: %w", id, err)
		}
		pause.ResumedAt = &resumed
	}
	created, err := parseTimeString(createdRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for pause %d: %w", id, err)
	}
	pause.CreatedAt = created
	updated, err := parseTimeString(updatedRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for pause %d: %w", id, err)
	}
	pause.UpdatedAt = updated
	return pause, nil
}
