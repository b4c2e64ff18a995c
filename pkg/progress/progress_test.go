package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances a fixed amount per observation
type fakeClock struct {
	current time.Time
	step    time.Duration
}

func (c *fakeClock) now() time.Time {
	c.current = c.current.Add(c.step)
	return c.current
}

func TestTrackerPercentGranularity(t *testing.T) {
	clock := &fakeClock{current: time.Unix(0, 0), step: time.Second}
	tracker := newTracker(1000, clock.now)

	// 5 bytes is below one percent: no display-worthy change after the
	// initial zero percent
	_, changed := tracker.Add(5)
	require.True(t, changed, "first observation establishes zero percent")

	_, changed = tracker.Add(4)
	assert.False(t, changed, "still below one percent")

	snapshot, changed := tracker.Add(1)
	assert.True(t, changed)
	assert.Equal(t, 1, snapshot.Percent)

	snapshot, changed = tracker.Add(990)
	assert.True(t, changed)
	assert.Equal(t, 100, snapshot.Percent)
	assert.Equal(t, int64(1000), snapshot.Done)
}

func TestTrackerThroughputAndETA(t *testing.T) {
	clock := &fakeClock{current: time.Unix(0, 0), step: time.Second}
	tracker := newTracker(100, clock.now)
	// tracker start consumed one tick; this Add happens one second later

	snapshot, _ := tracker.Add(25)

	assert.InDelta(t, 25.0, snapshot.BytesPerSecond, 0.01)
	// 75 bytes left at 25 B/s
	assert.InDelta(t, 3.0, snapshot.Remaining.Seconds(), 0.01)
}

func TestTrackerZeroTotal(t *testing.T) {
	tracker := NewTracker(0)
	snapshot, _ := tracker.Add(0)
	assert.Equal(t, 100, snapshot.Percent, "an empty backlog is complete")
}

func TestGBAndMBps(t *testing.T) {
	assert.InDelta(t, 1.5, GB(1_500_000_000), 0.001)
	assert.InDelta(t, 2.0, MBps(2_000_000), 0.001)
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "sub_minute", d: 30 * time.Second, want: "less than a minute"},
		{name: "minutes", d: 5 * time.Minute, want: "5 minutes"},
		{name: "one_minute", d: time.Minute, want: "1 minute"},
		{name: "hours_and_minutes", d: 3*time.Hour + 5*time.Minute, want: "3 hours, 5 minutes"},
		{name: "days_hours_minutes", d: 51*time.Hour + 5*time.Minute, want: "2 days, 3 hours, 5 minutes"},
		{name: "negative_clamped", d: -time.Hour, want: "less than a minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatETA(tt.d))
		})
	}
}
