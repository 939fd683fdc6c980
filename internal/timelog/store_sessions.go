package timelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const sessionColumns = "id, owner, job_ref, subject, status, started_at, finished_at, total_seconds, created_at, updated_at"

// querier is satisfied by both *sql.DB and *sql.Tx so session reads can run
// standalone or inside a transition's transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetByID fetches a session and its pause ledger by identifier. Returns nil
// when the session does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Session, error) {
	ctx = ensureContext(ctx)
	session, err := getSession(ctx, s.db, id)
	if err != nil || session == nil {
		return session, err
	}
	if err := attachPauses(ctx, s.db, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Active returns the owner's session in active state, with pauses, or nil.
func (s *Store) Active(ctx context.Context, owner string) (*Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE owner = ? AND status = ? ORDER BY started_at DESC LIMIT 1`,
		owner,
		StatusActive,
	)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if err := attachPauses(ctx, s.db, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListOpen returns the owner's active and paused sessions, newest first,
// each with its pause ledger.
func (s *Store) ListOpen(ctx context.Context, owner string) ([]*Session, error) {
	return s.listByOwner(ctx, owner, StatusActive, StatusPaused)
}

// ListFinished returns the owner's finished sessions, newest first.
func (s *Store) ListFinished(ctx context.Context, owner string) ([]*Session, error) {
	return s.listByOwner(ctx, owner, StatusFinished)
}

func (s *Store) listByOwner(ctx context.Context, owner string, statuses ...Status) ([]*Session, error) {
	ctx = ensureContext(ctx)
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	args = append(args, owner)
	for _, status := range statuses {
		args = append(args, status)
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE owner = ? AND status IN (` + placeholders + `) ORDER BY started_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, err
	}
	if err := attachPauses(ctx, s.db, sessions...); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Filter narrows Search results. Zero-valued fields are ignored; JobRef and
// Subject match as substrings.
type Filter struct {
	Owner   string
	Status  Status
	JobRef  string
	Subject string
}

// Search returns sessions across all owners matching the filter, newest
// first, each with its pause ledger.
func (s *Store) Search(ctx context.Context, filter Filter) ([]*Session, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []any

	if owner := strings.TrimSpace(filter.Owner); owner != "" {
		query += ` AND owner = ?`
		args = append(args, owner)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if jobRef := strings.TrimSpace(filter.JobRef); jobRef != "" {
		query += ` AND job_ref LIKE ?`
		args = append(args, "%"+jobRef+"%")
	}
	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		query += ` AND subject LIKE ?`
		args = append(args, "%"+subject+"%")
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, err
	}
	if err := attachPauses(ctx, s.db, sessions...); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Stats returns a count of sessions grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func getSession(ctx context.Context, q querier, id int64) (*Session, error) {
	row := q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func collectSessions(rows *sql.Rows) ([]*Session, error) {
	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id           int64
		owner        string
		jobRef       string
		subject      string
		statusStr    string
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
		totalSeconds sql.NullInt64
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&owner,
		&jobRef,
		&subject,
		&statusStr,
		&startedRaw,
		&finishedRaw,
		&totalSeconds,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	session := &Session{
		ID:           id,
		Owner:        owner,
		JobRef:       jobRef,
		Subject:      subject,
		Status:       Status(statusStr),
		TotalSeconds: totalSeconds.Int64,
	}

	started, err := parseTimeString(startedRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse started_at for session %d: %w", id, err)
	}
	session.StartedAt = started
	if finishedRaw.Valid {
		finished, err := parseTimeString(finishedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at for session %d: %w", id, err)
		}
		session.FinishedAt = &finished
	}
	created, err := parseTimeString(createdRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for session %d: %w", id, err)
	}
	session.CreatedAt = created
	updated, err := parseTimeString(updatedRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for session %d: %w", id, err)
	}
	session.UpdatedAt = updated
	return session, nil
}
