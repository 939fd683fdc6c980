package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"shopclock/internal/api"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var switchActive bool
	var observation string

	cmd := &cobra.Command{
		Use:   "start <job-ref> <subject>",
		Short: "Start a new work session",
		Long: `Start a new active session on a job. An operator can only have one
active session at a time; use --switch to pause the current session and
start the new one in a single step.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}
			jobRef := strings.TrimSpace(args[0])
			subject := strings.TrimSpace(strings.Join(args[1:], " "))

			return ctx.withSessions(func(sessions *sessionFacade) error {
				var session *api.Session
				if switchActive {
					session, err = sessions.Switch(cmd.Context(), owner, jobRef, subject, observation)
				} else {
					session, err = sessions.Create(cmd.Context(), owner, jobRef, subject)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started session %d on %s (%s)\n", session.ID, session.JobRef, session.Subject)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&switchActive, "switch", false, "Pause the current active session before starting")
	cmd.Flags().StringVarP(&observation, "note", "m", "", "Reason for pausing the current session (required with --switch)")
	return cmd
}

func newPauseCommand(ctx *commandContext) *cobra.Command {
	var observation string

	cmd := &cobra.Command{
		Use:   "pause [sessionID]",
		Short: "Pause a session with a reason",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}

			return ctx.withSessions(func(sessions *sessionFacade) error {
				id, err := targetSessionID(cmd, sessions, owner, args, "active")
				if err != nil {
					return err
				}
				if err := sessions.Pause(cmd.Context(), id, owner, observation); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Paused session %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&observation, "note", "m", "", "Why work stopped (required)")
	_ = cmd.MarkFlagRequired("note")
	return cmd
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [sessionID]",
		Short: "Resume a paused session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}

			return ctx.withSessions(func(sessions *sessionFacade) error {
				id, err := targetSessionID(cmd, sessions, owner, args, "paused")
				if err != nil {
					return err
				}
				if err := sessions.Resume(cmd.Context(), id, owner); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Resumed session %d\n", id)
				return nil
			})
		},
	}
}

func newFinishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finish [sessionID]",
		Short: "Finish a session and freeze its total",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}

			return ctx.withSessions(func(sessions *sessionFacade) error {
				id, err := targetSessionID(cmd, sessions, owner, args, "active", "paused")
				if err != nil {
					return err
				}
				total, err := sessions.Finish(cmd.Context(), id, owner)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Finished session %d: %s worked\n", id, formatDuration(total))
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}

			return ctx.withSessions(func(sessions *sessionFacade) error {
				session, err := sessions.Active(cmd.Context(), owner)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if session == nil {
					fmt.Fprintf(out, "No active session for %s\n", owner)
					return nil
				}
				fmt.Fprintf(out, "Session %d: %s (%s)\n", session.ID, session.JobRef, session.Subject)
				fmt.Fprintf(out, "  Status:  %s\n", formatStatus(session.Status))
				fmt.Fprintf(out, "  Started: %s\n", formatStamp(session.StartedAt))
				fmt.Fprintf(out, "  Worked:  %s\n", formatDuration(session.ElapsedSeconds))
				if n := len(session.Pauses); n > 0 {
					fmt.Fprintf(out, "  Pauses:  %d\n", n)
				}
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}

			return ctx.withSessions(func(sessions *sessionFacade) error {
				open, err := sessions.ListOpen(cmd.Context(), owner)
				if err != nil {
					return err
				}
				if len(open) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No open sessions for %s\n", owner)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(sessionTableHeaders, buildSessionRows(open), sessionTableAligns))
				return nil
			})
		},
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List finished sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ctx.operator()
			if err != nil {
				return err
			}

			return ctx.withSessions(func(sessions *sessionFacade) error {
				finished, err := sessions.History(cmd.Context(), owner)
				if err != nil {
					return err
				}
				if len(finished) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No finished sessions for %s\n", owner)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(sessionTableHeaders, buildSessionRows(finished), sessionTableAligns))
				return nil
			})
		},
	}
}

// targetSessionID resolves an explicit session id argument, or falls back to
// the operator's single open session in the wanted state.
func targetSessionID(cmd *cobra.Command, sessions *sessionFacade, owner string, args []string, wantStatuses ...string) (int64, error) {
	if len(args) > 0 {
		return parseSessionID(args[0])
	}

	open, err := sessions.ListOpen(cmd.Context(), owner)
	if err != nil {
		return 0, err
	}
	return pickOpenSession(open, owner, wantStatuses...)
}

func pickOpenSession(open []api.Session, owner string, wantStatuses ...string) (int64, error) {
	var matches []api.Session
	for _, session := range open {
		if slices.Contains(wantStatuses, session.Status) {
			matches = append(matches, session)
		}
	}
	switch len(matches) {
	case 0:
		if len(wantStatuses) == 1 {
			return 0, fmt.Errorf("no %s session for %s", wantStatuses[0], owner)
		}
		return 0, fmt.Errorf("no open session for %s", owner)
	case 1:
		return matches[0].ID, nil
	default:
		return 0, errors.New("multiple candidate sessions; pass a session id")
	}
}
