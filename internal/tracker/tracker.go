// Package tracker owns the session lifecycle rules: input validation, the
// canonical clock, and the transitions between active, paused, and finished
// states. All persistence goes through the timelog store; every transition
// is a single transactional unit of work.
//
// Retrying a timed-out Pause or Resume is not idempotent: a retry of an
// operation that actually committed reports invalid-state. Callers that need
// retries must deduplicate requests themselves.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shopclock/internal/services"
	"shopclock/internal/timelog"
)

// Tracker coordinates session state transitions for operators.
type Tracker struct {
	store  *timelog.Store
	logger *slog.Logger
	clock  func() time.Time
}

// Option customizes Tracker construction.
type Option func(*Tracker)

// WithClock overrides the time source. Every operation samples the clock
// once and threads that instant through all timestamps it writes.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// New constructs a Tracker around the provided store.
func New(store *timelog.Store, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		store:  store,
		logger: logger.With(slog.String("component", "tracker")),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the current instant on the tracker's clock in UTC. Callers
// computing live elapsed time must use this clock, never their own.
func (t *Tracker) Now() time.Time {
	return t.clock().UTC()
}

// Create starts a new active session for the operator. The operator must not
// already have an active session.
func (t *Tracker) Create(ctx context.Context, owner, jobRef, subject string) (*timelog.Session, error) {
	owner, jobRef, subject = strings.TrimSpace(owner), strings.TrimSpace(jobRef), strings.TrimSpace(subject)
	if err := requireFields(map[string]string{"owner": owner, "job reference": jobRef, "subject": subject}); err != nil {
		return nil, err
	}
	now := t.Now()
	session, err := t.store.CreateSession(ctx, owner, jobRef, subject, now)
	if err != nil {
		return nil, err
	}
	t.log(ctx).Info("session started",
		slog.Int64("session_id", session.ID),
		slog.String("owner", owner),
		slog.String("job_ref", jobRef))
	return session, nil
}

// PauseActiveAndCreate pauses the operator's current active session with the
// supplied observation and starts a new session, atomically. Either both
// happen or neither does, so the operator never holds zero or two active
// sessions across the switch.
func (t *Tracker) PauseActiveAndCreate(ctx context.Context, owner, jobRef, subject, observation string) (*timelog.Session, error) {
	owner, jobRef, subject = strings.TrimSpace(owner), strings.TrimSpace(jobRef), strings.TrimSpace(subject)
	observation = strings.TrimSpace(observation)
	if err := requireFields(map[string]string{
		"owner":         owner,
		"job reference": jobRef,
		"subject":       subject,
		"observation":   observation,
	}); err != nil {
		return nil, err
	}
	now := t.Now()
	session, err := t.store.PauseActiveAndCreate(ctx, owner, jobRef, subject, observation, now)
	if err != nil {
		return nil, err
	}
	t.log(ctx).Info("session switched",
		slog.Int64("session_id", session.ID),
		slog.String("owner", owner),
		slog.String("job_ref", jobRef))
	return session, nil
}

// Pause moves the operator's active session to paused, opening a pause that
// records why work stopped.
func (t *Tracker) Pause(ctx context.Context, id int64, owner, observation string) error {
	owner, observation = strings.TrimSpace(owner), strings.TrimSpace(observation)
	if err := requireFields(map[string]string{"owner": owner, "observation": observation}); err != nil {
		return err
	}
	now := t.Now()
	if err := t.store.PauseSession(ctx, id, owner, observation, now); err != nil {
		return err
	}
	t.log(ctx).Info("session paused", slog.Int64("session_id", id), slog.String("owner", owner))
	return nil
}

// Resume closes the session's open pause and reactivates it. Resuming while
// another of the operator's sessions is active is a conflict, never a silent
// pause of the other session.
func (t *Tracker) Resume(ctx context.Context, id int64, owner string) error {
	owner = strings.TrimSpace(owner)
	if err := requireFields(map[string]string{"owner": owner}); err != nil {
		return err
	}
	now := t.Now()
	if err := t.store.ResumeSession(ctx, id, owner, now); err != nil {
		return err
	}
	t.log(ctx).Info("session resumed", slog.Int64("session_id", id), slog.String("owner", owner))
	return nil
}

// Finish terminates the session, closing any open pause without reactivating
// the session, and returns the frozen total working seconds.
func (t *Tracker) Finish(ctx context.Context, id int64, owner string) (int64, error) {
	owner = strings.TrimSpace(owner)
	if err := requireFields(map[string]string{"owner": owner}); err != nil {
		return 0, err
	}
	now := t.Now()
	total, err := t.store.FinishSession(ctx, id, owner, now)
	if err != nil {
		return 0, err
	}
	t.log(ctx).Info("session finished",
		slog.Int64("session_id", id),
		slog.String("owner", owner),
		slog.Int64("total_seconds", total))
	return total, nil
}

// Active returns the operator's active session with its pause ledger, or nil
// when the operator has none.
func (t *Tracker) Active(ctx context.Context, owner string) (*timelog.Session, error) {
	owner = strings.TrimSpace(owner)
	if err := requireFields(map[string]string{"owner": owner}); err != nil {
		return nil, err
	}
	return t.store.Active(ctx, owner)
}

// ListOpen returns the operator's active and paused sessions, newest first.
func (t *Tracker) ListOpen(ctx context.Context, owner string) ([]*timelog.Session, error) {
	owner = strings.TrimSpace(owner)
	if err := requireFields(map[string]string{"owner": owner}); err != nil {
		return nil, err
	}
	return t.store.ListOpen(ctx, owner)
}

// ListFinished returns the operator's finished sessions, newest first.
func (t *Tracker) ListFinished(ctx context.Context, owner string) ([]*timelog.Session, error) {
	owner = strings.TrimSpace(owner)
	if err := requireFields(map[string]string{"owner": owner}); err != nil {
		return nil, err
	}
	return t.store.ListFinished(ctx, owner)
}

// Search returns sessions across all operators matching the filter.
func (t *Tracker) Search(ctx context.Context, filter timelog.Filter) ([]*timelog.Session, error) {
	return t.store.Search(ctx, filter)
}

// log returns the tracker logger, stamped with the request identifier when
// the call arrived through the daemon API.
func (t *Tracker) log(ctx context.Context) *slog.Logger {
	if id, ok := services.RequestIDFromContext(ctx); ok {
		return t.logger.With(slog.String("request_id", id))
	}
	return t.logger
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return services.Wrap(services.ErrValidation, "tracker", "input",
				fmt.Sprintf("%s must not be empty", name), nil)
		}
	}
	return nil
}
