package matrix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestDaysUntilDeadline_NoDeadline(t *testing.T) {
	_, ok := DaysUntilDeadline(nil, time.Now())
	assert.False(t, ok)
	assert.False(t, IsUrgent(nil, time.Now()))
	assert.False(t, Overdue(nil, time.Now()))

	ev := Evaluate(nil, time.Now())
	assert.Nil(t, ev.DaysUntilDeadline)
	assert.False(t, ev.Urgent)
	assert.False(t, ev.Overdue)
}

func TestDaysUntilDeadline_Floors(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")

	tests := []struct {
		name   string
		offset time.Duration
		want   int
	}{
		{"exactly now", 0, 0},
		{"23 hours ahead", 23 * time.Hour, 0},
		{"one day ahead", day, 1},
		{"three and a half days", 3*day + 12*time.Hour, 3},
		{"four days", 4 * day, 4},
		{"one hour late", -time.Hour, -1},
		{"exactly a day late", -day, -1},
		{"25 hours late", -25 * time.Hour, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deadline := now.Add(tt.offset)
			got, ok := DaysUntilDeadline(&deadline, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsUrgent_MatchesThreshold(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")

	for h := -96; h <= 24*8; h += 5 {
		deadline := now.Add(time.Duration(h) * time.Hour)
		days, ok := DaysUntilDeadline(&deadline, now)
		require.True(t, ok)
		assert.Equal(t, days <= UrgencyThresholdDays, IsUrgent(&deadline, now), "offset %dh", h)
		assert.Equal(t, days < 0, Overdue(&deadline, now), "offset %dh", h)
	}
}

func TestDaysUntilDeadline_NormalizesZones(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	plus3 := time.FixedZone("MSK", 3*60*60)
	// 2025-03-12T15:00+03:00 is 2025-03-12T12:00Z, two days ahead.
	deadline := time.Date(2025, 3, 12, 15, 0, 0, 0, plus3)

	got, ok := DaysUntilDeadline(&deadline, now)
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestScenarios(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	in := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name      string
		important bool
		deadline  *time.Time
		urgent    bool
		want      Quadrant
	}{
		{"important due tomorrow", true, in(day), true, Q1},
		{"important due in ten days", true, in(10 * day), false, Q2},
		{"unimportant due in two days", false, in(2 * day), true, Q3},
		{"unimportant without deadline", false, nil, false, Q4},
		{"important overdue", true, in(-day), true, Q1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urgent := IsUrgent(tt.deadline, now)
			assert.Equal(t, tt.urgent, urgent)
			assert.Equal(t, tt.want, Classify(tt.important, urgent))
		})
	}
}

func TestFixedClock(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	c := FixedClock(ts)
	assert.True(t, c.Now().Equal(ts))
	assert.Equal(t, time.UTC, c.Now().Location())
}
