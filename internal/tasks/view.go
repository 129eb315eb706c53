package tasks

import (
	"time"

	"eisenhower-tasks-backend/internal/matrix"
)

// TaskResponse is the wire shape of a task. DaysUntilDeadline, IsUrgent and
// Overdue are computed at read time, while Quadrant is the label stored at
// the last mutation, so a task can read overdue yet still show the quadrant
// it had before its deadline passed.
type TaskResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Important   bool            `json:"important"`
	Deadline    *time.Time      `json:"deadline"`
	Quadrant    matrix.Quadrant `json:"quadrant"`
	Completed   bool            `json:"completed"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at"`

	DaysUntilDeadline *int `json:"days_until_deadline"`
	IsUrgent          bool `json:"is_urgent"`
	Overdue           bool `json:"overdue"`
}

func Present(t Task, now time.Time) TaskResponse {
	ev := matrix.Evaluate(t.Deadline, now)
	return TaskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Important:         t.Important,
		Deadline:          t.Deadline,
		Quadrant:          t.Quadrant,
		Completed:         t.Completed,
		CreatedAt:         t.CreatedAt,
		CompletedAt:       t.CompletedAt,
		DaysUntilDeadline: ev.DaysUntilDeadline,
		IsUrgent:          ev.Urgent,
		Overdue:           ev.Overdue,
	}
}

func PresentAll(ts []Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, Present(t, now))
	}
	return out
}
