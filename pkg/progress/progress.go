// Package progress derives percentage, throughput and time-remaining
// figures from cumulative bytes processed against a known total.
package progress

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is one observation of cumulative progress
type Snapshot struct {
	Done    int64
	Total   int64
	Percent int
	// BytesPerSecond is the average throughput since tracking started
	BytesPerSecond float64
	// Remaining is the estimated time to completion
	Remaining time.Duration
}

// Tracker accumulates processed bytes against a fixed total. Snapshots are
// only surfaced when the whole percentage changes, keeping output readable
// on large backlogs.
type Tracker struct {
	total       int64
	done        int64
	start       time.Time
	lastPercent int
	now         func() time.Time
}

// NewTracker starts tracking a backlog of total bytes
func NewTracker(total int64) *Tracker {
	return newTracker(total, time.Now)
}

func newTracker(total int64, now func() time.Time) *Tracker {
	return &Tracker{total: total, start: now(), lastPercent: -1, now: now}
}

// Total returns the tracked backlog size
func (t *Tracker) Total() int64 {
	return t.total
}

// Add records n more processed bytes. The returned bool is true when the
// whole percentage advanced, meaning the snapshot is worth displaying.
func (t *Tracker) Add(n int64) (Snapshot, bool) {
	t.done += n

	percent := 100
	if t.total > 0 {
		percent = int(t.done * 100 / t.total)
	}

	elapsed := t.now().Sub(t.start)
	var throughput float64
	if elapsed > 0 {
		throughput = float64(t.done) / elapsed.Seconds()
	}

	var remaining time.Duration
	if t.done > 0 && t.total > t.done && elapsed > 0 {
		remaining = time.Duration(float64(elapsed) * float64(t.total-t.done) / float64(t.done))
	}

	snapshot := Snapshot{
		Done:           t.done,
		Total:          t.total,
		Percent:        percent,
		BytesPerSecond: throughput,
		Remaining:      remaining,
	}

	changed := percent != t.lastPercent
	if changed {
		t.lastPercent = percent
	}
	return snapshot, changed
}

// GB converts a byte count to decimal gigabytes for display
func GB(bytes int64) float64 {
	return float64(bytes) / 1e9
}

// MBps converts a bytes-per-second rate to decimal megabytes per second
func MBps(bytesPerSecond float64) float64 {
	return bytesPerSecond / 1e6
}

// FormatETA renders a duration as a coarse human-readable estimate, e.g.
// "2 days, 3 hours, 5 minutes". Sub-minute estimates render as
// "less than a minute".
func FormatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days != 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours != 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes != 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
