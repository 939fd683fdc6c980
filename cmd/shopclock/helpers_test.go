package main

import (
	"strings"
	"testing"

	"shopclock/internal/api"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m 00s"},
		{150, "2m 30s"},
		{3661, "1h 01m 01s"},
		{7530, "2h 05m 30s"},
		{-5, "0s"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Fatalf("formatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatStamp(t *testing.T) {
	if got := formatStamp(""); got != "" {
		t.Fatalf("expected empty output for empty stamp, got %q", got)
	}
	if got := formatStamp("not-a-time"); got != "not-a-time" {
		t.Fatalf("expected unparseable stamp passed through, got %q", got)
	}
	got := formatStamp("2026-03-14T09:00:00.000Z")
	if !strings.Contains(got, "2026-03-14") {
		t.Fatalf("expected date in %q", got)
	}
}

func TestParseSessionID(t *testing.T) {
	if id, err := parseSessionID(" 42 "); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d err=%v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseSessionID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestBuildSessionRows(t *testing.T) {
	sessions := []api.Session{
		{
			ID:             7,
			JobRef:         "ENG-450",
			Subject:        "head torque",
			Status:         "paused",
			StartedAt:      "2026-03-14T09:00:00.000Z",
			ElapsedSeconds: 1800,
			Pauses:         []api.Pause{{ID: 1}},
		},
	}
	rows := buildSessionRows(sessions)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row[0] != "7" || row[1] != "ENG-450" || row[3] != "Paused" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[5] != "30m 00s" || row[6] != "1" {
		t.Fatalf("unexpected duration or pause count: %v", row)
	}
}

func TestRenderTableIncludesHeadersAndRows(t *testing.T) {
	out := renderTable([]string{"ID", "Job"}, [][]string{{"1", "ENG-450"}}, []columnAlignment{alignRight, alignLeft})
	if !strings.Contains(out, "ID") || !strings.Contains(out, "ENG-450") {
		t.Fatalf("unexpected table output: %q", out)
	}
}

func TestJoinObservationsSkipsEmpty(t *testing.T) {
	pauses := []api.Pause{
		{Observation: "lunch"},
		{Observation: ""},
		{Observation: "parts run"},
	}
	if got := joinObservations(pauses); got != "lunch; parts run" {
		t.Fatalf("unexpected observations: %q", got)
	}
	if got := joinObservations(nil); got != "" {
		t.Fatalf("expected empty string for no pauses, got %q", got)
	}
}

func TestPickOpenSessionAcceptsPausedForFinish(t *testing.T) {
	open := []api.Session{{ID: 4, Status: "paused"}}
	id, err := pickOpenSession(open, "maria", "active", "paused")
	if err != nil {
		t.Fatalf("pickOpenSession: %v", err)
	}
	if id != 4 {
		t.Fatalf("expected session 4, got %d", id)
	}
}

func TestPickOpenSessionErrors(t *testing.T) {
	if _, err := pickOpenSession(nil, "maria", "active"); err == nil || err.Error() != "no active session for maria" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pickOpenSession(nil, "maria", "active", "paused"); err == nil || err.Error() != "no open session for maria" {
		t.Fatalf("unexpected error: %v", err)
	}

	open := []api.Session{{ID: 1, Status: "active"}, {ID: 2, Status: "paused"}}
	if _, err := pickOpenSession(open, "maria", "active", "paused"); err == nil {
		t.Fatal("expected error for multiple candidates")
	}
	if _, err := pickOpenSession(open, "maria", "paused"); err != nil {
		t.Fatalf("expected single paused match, got error: %v", err)
	}
}
