package testsupport

import (
	"context"
	"testing"
	"time"

	"shopclock/internal/config"
	"shopclock/internal/timelog"
)

// MustOpenStore opens a timelog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *timelog.Store {
	t.Helper()

	store, err := timelog.Open(cfg)
	if err != nil {
		t.Fatalf("timelog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// StartSession creates a new active session for tests using the provided store.
func StartSession(t testing.TB, store *timelog.Store, owner, jobRef, subject string, now time.Time) *timelog.Session {
	t.Helper()

	session, err := store.CreateSession(context.Background(), owner, jobRef, subject, now)
	if err != nil {
		t.Fatalf("store.CreateSession: %v", err)
	}
	return session
}
