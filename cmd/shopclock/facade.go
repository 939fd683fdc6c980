package main

import (
	"context"
	"fmt"

	"shopclock/internal/api"
	"shopclock/internal/client"
	"shopclock/internal/timelog"
	"shopclock/internal/tracker"
)

// sessionFacade gives commands one set of session operations regardless of
// whether they run against a daemon's API or directly on the store. All
// results are API DTOs so rendering code has a single shape to work with.
type sessionFacade struct {
	remote *client.Client
	local  *tracker.Tracker
}

func (f *sessionFacade) Create(ctx context.Context, owner, jobRef, subject string) (*api.Session, error) {
	if f.remote != nil {
		return f.remote.Create(ctx, api.CreateSessionRequest{Owner: owner, JobRef: jobRef, Subject: subject})
	}
	session, err := f.local.Create(ctx, owner, jobRef, subject)
	if err != nil {
		return nil, err
	}
	dto := api.FromSession(session, f.local.Now())
	return &dto, nil
}

func (f *sessionFacade) Switch(ctx context.Context, owner, jobRef, subject, observation string) (*api.Session, error) {
	if f.remote != nil {
		return f.remote.Switch(ctx, api.SwitchSessionRequest{
			Owner:       owner,
			JobRef:      jobRef,
			Subject:     subject,
			Observation: observation,
		})
	}
	session, err := f.local.PauseActiveAndCreate(ctx, owner, jobRef, subject, observation)
	if err != nil {
		return nil, err
	}
	dto := api.FromSession(session, f.local.Now())
	return &dto, nil
}

func (f *sessionFacade) Pause(ctx context.Context, id int64, owner, observation string) error {
	if f.remote != nil {
		return f.remote.Pause(ctx, id, owner, observation)
	}
	return f.local.Pause(ctx, id, owner, observation)
}

func (f *sessionFacade) Resume(ctx context.Context, id int64, owner string) error {
	if f.remote != nil {
		return f.remote.Resume(ctx, id, owner)
	}
	return f.local.Resume(ctx, id, owner)
}

func (f *sessionFacade) Finish(ctx context.Context, id int64, owner string) (int64, error) {
	if f.remote != nil {
		return f.remote.Finish(ctx, id, owner)
	}
	return f.local.Finish(ctx, id, owner)
}

func (f *sessionFacade) Active(ctx context.Context, owner string) (*api.Session, error) {
	if f.remote != nil {
		return f.remote.Active(ctx, owner)
	}
	session, err := f.local.Active(ctx, owner)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	dto := api.FromSession(session, f.local.Now())
	return &dto, nil
}

func (f *sessionFacade) ListOpen(ctx context.Context, owner string) ([]api.Session, error) {
	if f.remote != nil {
		return f.remote.ListOpen(ctx, owner)
	}
	sessions, err := f.local.ListOpen(ctx, owner)
	if err != nil {
		return nil, err
	}
	return api.FromSessions(sessions, f.local.Now()), nil
}

func (f *sessionFacade) History(ctx context.Context, owner string) ([]api.Session, error) {
	if f.remote != nil {
		return f.remote.History(ctx, owner)
	}
	sessions, err := f.local.ListFinished(ctx, owner)
	if err != nil {
		return nil, err
	}
	return api.FromSessions(sessions, f.local.Now()), nil
}

func (f *sessionFacade) Search(ctx context.Context, owner, status, job, subject string) ([]api.Session, error) {
	if f.remote != nil {
		return f.remote.Search(ctx, owner, status, job, subject)
	}
	filter := timelog.Filter{Owner: owner, JobRef: job, Subject: subject}
	if status != "" {
		parsed, ok := timelog.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		filter.Status = parsed
	}
	sessions, err := f.local.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return api.FromSessions(sessions, f.local.Now()), nil
}
