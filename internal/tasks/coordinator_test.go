package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eisenhower-tasks-backend/internal/matrix"
)

var baseNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// mutableClock lets a test move time forward between mutations.
type mutableClock struct{ now time.Time }

func (c *mutableClock) Now() time.Time { return c.now }

func at(d time.Duration) *time.Time {
	t := baseNow.Add(d)
	return &t
}

func ptr[T any](v T) *T { return &v }

const day = 24 * time.Hour

func TestCoordinator_CreateScenarios(t *testing.T) {
	c := NewCoordinator(matrix.FixedClock(baseNow))

	tests := []struct {
		name      string
		important bool
		deadline  *time.Time
		urgent    bool
		want      matrix.Quadrant
	}{
		{"A: important, due tomorrow", true, at(day), true, matrix.Q1},
		{"B: important, due in ten days", true, at(10 * day), false, matrix.Q2},
		{"C: unimportant, due in two days", false, at(2 * day), true, matrix.Q3},
		{"D: unimportant, no deadline", false, nil, false, matrix.Q4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := c.Create(NewTask{UserID: 1, Title: "  Write report ", Important: tt.important, Deadline: tt.deadline})
			assert.Equal(t, tt.urgent, task.Urgent)
			assert.Equal(t, tt.want, task.Quadrant)
			assert.Equal(t, "Write report", task.Title)
			assert.False(t, task.Completed)
			assert.Nil(t, task.CompletedAt)
			assert.Equal(t, baseNow, task.CreatedAt)
		})
	}
}

func TestCoordinator_CreateNormalizesDeadline(t *testing.T) {
	c := NewCoordinator(matrix.FixedClock(baseNow))
	local := time.Date(2025, 3, 12, 15, 0, 0, 0, time.FixedZone("MSK", 3*3600))

	task := c.Create(NewTask{Title: "zone", Deadline: &local})
	require.NotNil(t, task.Deadline)
	assert.Equal(t, time.UTC, task.Deadline.Location())
	assert.True(t, task.Deadline.Equal(local))
}

func TestCoordinator_ApplyImportanceChange(t *testing.T) {
	// Scenario E: Q1 -> Q3 when importance is dropped.
	c := NewCoordinator(matrix.FixedClock(baseNow))
	task := c.Create(NewTask{Title: "urgent thing", Important: true, Deadline: at(day)})
	require.Equal(t, matrix.Q1, task.Quadrant)

	ch := c.Apply(&task, Patch{Important: ptr(false)})
	assert.True(t, ch.Reclassified)
	assert.Equal(t, matrix.Q1, ch.QuadrantBefore)
	assert.Equal(t, matrix.Q3, task.Quadrant)
	assert.Equal(t, []string{"important"}, ch.Fields)
}

func TestCoordinator_ApplyUsesPostUpdateValues(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "later", Important: false, Deadline: at(30 * day)})
	require.Equal(t, matrix.Q4, task.Quadrant)

	// Both fields change in one patch; the result reflects both.
	ch := c.Apply(&task, Patch{Important: ptr(true), SetDeadline: true, Deadline: at(2 * day)})
	assert.True(t, ch.Reclassified)
	assert.Equal(t, matrix.Q1, task.Quadrant)

	// Clearing the deadline drops urgency.
	c.Apply(&task, Patch{SetDeadline: true})
	assert.Nil(t, task.Deadline)
	assert.False(t, task.Urgent)
	assert.Equal(t, matrix.Q2, task.Quadrant)
}

func TestCoordinator_ApplyTextOnlyKeepsQuadrant(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "far away", Important: true, Deadline: at(5 * day)})
	require.Equal(t, matrix.Q2, task.Quadrant)

	// Time passes until the deadline is close, but only the title changes.
	clock.now = baseNow.Add(4 * day)
	ch := c.Apply(&task, Patch{Title: ptr("renamed"), Description: ptr(" notes ")})
	assert.False(t, ch.Reclassified)
	assert.Equal(t, matrix.Q2, task.Quadrant, "quadrant only moves on importance/deadline/completion changes")
	assert.Equal(t, "renamed", task.Title)
	assert.Equal(t, "notes", task.Description)
}

func TestCoordinator_CompleteOverdue(t *testing.T) {
	// Scenario F.
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "late", Important: true, Deadline: at(10 * day)})
	require.Equal(t, matrix.Q2, task.Quadrant)

	clock.now = baseNow.Add(11 * day)
	assert.True(t, c.Complete(&task))
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, clock.now, *task.CompletedAt)
	assert.True(t, task.Urgent)
	assert.Equal(t, matrix.Q1, task.Quadrant)

	resp := Present(task, clock.now.Add(time.Hour))
	assert.True(t, resp.Overdue)
	assert.True(t, resp.IsUrgent)
}

func TestCoordinator_CompleteIsIdempotent(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "done once"})

	require.True(t, c.Complete(&task))
	stamped := *task.CompletedAt

	clock.now = baseNow.Add(day)
	assert.False(t, c.Complete(&task))
	assert.Equal(t, stamped, *task.CompletedAt)
}

func TestCoordinator_ApplyCompletedFlag(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "flag", Important: true, Deadline: at(6 * day)})
	require.Equal(t, matrix.Q2, task.Quadrant)

	clock.now = baseNow.Add(5 * day)
	ch := c.Apply(&task, Patch{Completed: ptr(true)})
	assert.True(t, ch.Completed)
	assert.True(t, ch.Reclassified)
	assert.Equal(t, matrix.Q1, task.Quadrant)
	require.NotNil(t, task.CompletedAt)

	// Already completed: nothing re-stamped.
	stamped := *task.CompletedAt
	clock.now = baseNow.Add(6 * day)
	ch = c.Apply(&task, Patch{Completed: ptr(true)})
	assert.False(t, ch.Completed)
	assert.Equal(t, stamped, *task.CompletedAt)

	ch = c.Apply(&task, Patch{Completed: ptr(false)})
	assert.True(t, ch.Reopened)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
}

func TestCoordinator_Refresh(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "drift", Important: false, Deadline: at(7 * day)})
	require.Equal(t, matrix.Q4, task.Quadrant)

	assert.False(t, c.Refresh(&task))

	clock.now = baseNow.Add(4 * day)
	assert.True(t, c.Refresh(&task))
	assert.Equal(t, matrix.Q3, task.Quadrant)
}

func TestCoordinator_QuadrantAlwaysMatchesClassifier(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "invariant"})

	patches := []Patch{
		{Important: ptr(true)},
		{SetDeadline: true, Deadline: at(day)},
		{Important: ptr(false)},
		{SetDeadline: true, Deadline: at(20 * day)},
		{SetDeadline: true},
		{Important: ptr(true), SetDeadline: true, Deadline: at(-day)},
	}
	for i, p := range patches {
		c.Apply(&task, p)
		assert.Equal(t, matrix.IsUrgent(task.Deadline, clock.now), task.Urgent, "patch %d", i)
		assert.Equal(t, matrix.Classify(task.Important, task.Urgent), task.Quadrant, "patch %d", i)
	}
}

func TestCoordinator_CompletedTaskKeepsQuadrant(t *testing.T) {
	clock := &mutableClock{now: baseNow}
	c := NewCoordinator(clock)
	task := c.Create(NewTask{Title: "done deal", Important: true, Deadline: at(day)})
	require.True(t, c.Complete(&task))
	require.Equal(t, matrix.Q1, task.Quadrant)

	ch := c.Apply(&task, Patch{Important: ptr(false), SetDeadline: true})
	assert.False(t, ch.Reclassified)
	assert.False(t, task.Important)
	assert.Nil(t, task.Deadline)
	assert.Equal(t, matrix.Q1, task.Quadrant)

	// Reopening in the same patch classifies the open task again.
	ch = c.Apply(&task, Patch{Important: ptr(true), Completed: ptr(false)})
	assert.True(t, ch.Reopened)
	assert.True(t, ch.Reclassified)
	assert.Equal(t, matrix.Q2, task.Quadrant)
}
