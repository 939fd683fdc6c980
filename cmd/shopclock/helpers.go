package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shopclock/internal/api"
)

var statusTitler = cases.Title(language.English)

// formatDuration renders a second count as "2h 05m 30s", dropping leading
// zero components.
func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatStatus(status string) string {
	return statusTitler.String(status)
}

// formatStamp shortens an RFC3339 API timestamp for table display.
func formatStamp(stamp string) string {
	if stamp == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func parseSessionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid session id %q", arg)
	}
	return id, nil
}

var sessionTableHeaders = []string{"ID", "Job", "Subject", "Status", "Started", "Worked", "Pauses"}

var sessionTableAligns = []columnAlignment{
	alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight,
}

func buildSessionRows(sessions []api.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, []string{
			strconv.FormatInt(session.ID, 10),
			session.JobRef,
			session.Subject,
			formatStatus(session.Status),
			formatStamp(session.StartedAt),
			formatDuration(session.ElapsedSeconds),
			strconv.Itoa(len(session.Pauses)),
		})
	}
	return rows
}
