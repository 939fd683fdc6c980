package timelog

import "time"

// Elapsed computes the working seconds between startedAt and now with pause
// time excluded. Closed pauses contribute their frozen durations; when the
// session is paused the still-running open pause is subtracted as of now so
// a live reading stops advancing the moment the pause starts. The result is
// truncated to whole seconds and never negative, even under clock skew.
//
// Finishing a session closes its open pause first and then evaluates this
// same formula, so a live reading at time T and a finish at time T agree to
// one-second granularity.
func Elapsed(startedAt, now time.Time, pauses []*Pause, status Status) int64 {
	total := clampSeconds(startedAt, now)
	for _, pause := range pauses {
		if pause.Open() {
			if status == StatusPaused {
				total -= clampSeconds(pause.PausedAt, now)
			}
			continue
		}
		total -= pause.DurationSeconds
	}
	if total < 0 {
		total = 0
	}
	return total
}

// PauseDuration returns the whole seconds a pause lasted between pausedAt
// and resumedAt, clamped at zero.
func PauseDuration(pausedAt, resumedAt time.Time) int64 {
	return clampSeconds(pausedAt, resumedAt)
}

func clampSeconds(from, to time.Time) int64 {
	seconds := to.Unix() - from.Unix()
	if seconds < 0 {
		return 0
	}
	return seconds
}
