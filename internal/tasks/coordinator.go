package tasks

import (
	"strings"
	"time"

	"eisenhower-tasks-backend/internal/matrix"
)

// Coordinator keeps Urgent and Quadrant consistent with Important and
// Deadline across create, update and completion. It holds no state besides
// the clock and never fails.
type Coordinator struct {
	Clock matrix.Clock
}

func NewCoordinator(clock matrix.Clock) *Coordinator {
	if clock == nil {
		clock = matrix.SystemClock
	}
	return &Coordinator{Clock: clock}
}

// Create builds a fresh, classified, open task.
func (c *Coordinator) Create(in NewTask) Task {
	now := c.Clock.Now()
	t := Task{
		UserID:      in.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Important:   in.Important,
		Deadline:    utc(in.Deadline),
		CreatedAt:   now,
	}
	classify(&t, now)
	return t
}

// Apply writes the supplied fields of p into t. Urgency and quadrant are
// recomputed from the post-update values whenever importance or deadline
// was supplied and the task is open afterwards. completed=true counts as a
// completion, completed=false on a completed task reopens it.
func (c *Coordinator) Apply(t *Task, p Patch) Change {
	now := c.Clock.Now()
	ch := Change{QuadrantBefore: t.Quadrant}

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
		ch.Fields = append(ch.Fields, "title")
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
		ch.Fields = append(ch.Fields, "description")
	}
	if p.Important != nil {
		t.Important = *p.Important
		ch.Fields = append(ch.Fields, "important")
	}
	if p.SetDeadline {
		t.Deadline = utc(p.Deadline)
		ch.Fields = append(ch.Fields, "deadline")
	}

	if p.Completed != nil {
		ch.Fields = append(ch.Fields, "completed")
		switch {
		case *p.Completed && !t.Completed:
			complete(t, now)
			ch.Completed = true
			ch.Reclassified = true
			return ch
		case !*p.Completed && t.Completed:
			t.Completed = false
			t.CompletedAt = nil
			ch.Reopened = true
		}
	}

	// A completed task keeps the quadrant it was completed in.
	if (p.Important != nil || p.SetDeadline) && !t.Completed {
		classify(t, now)
		ch.Reclassified = true
	}

	return ch
}

// Complete marks t done and classifies it one final time. Completing an
// already completed task is a no-op and returns false.
func (c *Coordinator) Complete(t *Task) bool {
	if t.Completed {
		return false
	}
	complete(t, c.Clock.Now())
	return true
}

// Refresh re-evaluates urgency against the current clock and reports
// whether the quadrant moved.
func (c *Coordinator) Refresh(t *Task) bool {
	before := t.Quadrant
	classify(t, c.Clock.Now())
	return t.Quadrant != before
}

func complete(t *Task, now time.Time) {
	t.Completed = true
	t.CompletedAt = &now
	classify(t, now)
}

func classify(t *Task, now time.Time) {
	t.Urgent = matrix.IsUrgent(t.Deadline, now)
	t.Quadrant = matrix.Classify(t.Important, t.Urgent)
}

func utc(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	u := ts.UTC()
	return &u
}
