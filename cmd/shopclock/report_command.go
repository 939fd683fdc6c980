package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shopclock/internal/api"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var filterOwner string
	var filterStatus string
	var filterJob string
	var filterSubject string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report sessions across operators",
		Long: `Search sessions across all operators, optionally filtered by owner,
status, job reference, or subject. Job and subject filters match
substrings. Use --csv for machine-readable output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSessions(func(sessions *sessionFacade) error {
				found, err := sessions.Search(cmd.Context(), filterOwner, filterStatus, filterJob, filterSubject)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(found) == 0 {
					if asCSV {
						renderCSV(out, reportHeaders, nil)
						return nil
					}
					fmt.Fprintln(out, "No sessions matched")
					return nil
				}

				rows := buildReportRows(found)
				if asCSV {
					renderCSV(out, reportHeaders, rows)
					return nil
				}
				fmt.Fprintln(out, renderTable(reportHeaders, rows, reportAligns))
				fmt.Fprintf(out, "%d sessions, %s worked in total\n", len(found), formatDuration(sumWorked(found)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filterOwner, "owner", "", "Filter by operator")
	cmd.Flags().StringVar(&filterStatus, "status", "", "Filter by status (active, paused, finished)")
	cmd.Flags().StringVar(&filterJob, "job", "", "Filter by job reference substring")
	cmd.Flags().StringVar(&filterSubject, "subject", "", "Filter by subject substring")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Emit CSV instead of a table")
	return cmd
}

var reportHeaders = []string{"ID", "Operator", "Job", "Subject", "Status", "Started", "Finished", "Pauses", "Worked Seconds", "Observations"}

var reportAligns = []columnAlignment{
	alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft,
}

func buildReportRows(sessions []api.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, []string{
			strconv.FormatInt(session.ID, 10),
			session.Owner,
			session.JobRef,
			session.Subject,
			formatStatus(session.Status),
			formatStamp(session.StartedAt),
			formatStamp(session.FinishedAt),
			strconv.Itoa(len(session.Pauses)),
			strconv.FormatInt(session.ElapsedSeconds, 10),
			joinObservations(session.Pauses),
		})
	}
	return rows
}

func joinObservations(pauses []api.Pause) string {
	parts := make([]string, 0, len(pauses))
	for _, pause := range pauses {
		if pause.Observation != "" {
			parts = append(parts, pause.Observation)
		}
	}
	return strings.Join(parts, "; ")
}

func sumWorked(sessions []api.Session) int64 {
	var total int64
	for _, session := range sessions {
		total += session.ElapsedSeconds
	}
	return total
}
