package tasks

import (
	"time"

	"eisenhower-tasks-backend/internal/matrix"
)

// Task is the stored entity. Urgent and Quadrant are derived by the
// Coordinator and never taken from a caller.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Important   bool
	Deadline    *time.Time
	Quadrant    matrix.Quadrant
	Completed   bool
	CreatedAt   time.Time
	CompletedAt *time.Time

	// Urgent as evaluated at the last mutation. Not persisted.
	Urgent bool
}

// NewTask is the caller-supplied part of a task at creation.
type NewTask struct {
	UserID      int64
	Title       string
	Description string
	Important   bool
	Deadline    *time.Time
}

// Patch is a sparse update: nil fields are left alone.
// SetDeadline with a nil Deadline clears the deadline.
type Patch struct {
	Title       *string
	Description *string
	Important   *bool
	SetDeadline bool
	Deadline    *time.Time
	Completed   *bool
}

// Change describes what Apply did to a task.
type Change struct {
	Fields         []string
	Reclassified   bool
	QuadrantBefore matrix.Quadrant
	Completed      bool
	Reopened       bool
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	UserID    int64
	Completed *bool
	Quadrant  matrix.Quadrant
	Query     string
	Skip      int
	Limit     int
}

type StatusCounts struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type Stats struct {
	TotalTasks int                     `json:"total_tasks"`
	ByQuadrant map[matrix.Quadrant]int `json:"by_quadrant"`
	ByStatus   StatusCounts            `json:"by_status"`
}

func newStats() Stats {
	s := Stats{ByQuadrant: make(map[matrix.Quadrant]int, 4)}
	for _, q := range matrix.All() {
		s.ByQuadrant[q] = 0
	}
	return s
}
