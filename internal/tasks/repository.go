package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eisenhower-tasks-backend/internal/db"
	"eisenhower-tasks-backend/internal/matrix"
)

// Repository is the persistence the service needs. Implementations must
// report missing rows as ErrNotFound.
type Repository interface {
	Get(ctx context.Context, id int64) (Task, error)
	List(ctx context.Context, f Filter) ([]Task, error)
	Insert(ctx context.Context, t *Task) error
	Update(ctx context.Context, t Task) error
	// Complete stores t only if the row is still open and reports whether
	// it did, so two concurrent completions stamp completed_at once.
	Complete(ctx context.Context, t Task) (bool, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, userID int64) (Stats, error)
}

// SQLRepository stores tasks in Postgres or SQLite.
type SQLRepository struct {
	DB *db.DB
}

func NewSQLRepository(dbx *db.DB) *SQLRepository {
	return &SQLRepository{DB: dbx}
}

const taskColumns = `id, user_id, title, description, important, deadline_at,
	quadrant, completed, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t           Task
		quadrant    string
		deadline    sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Important, &deadline,
		&quadrant, &t.Completed, &t.CreatedAt, &completedAt)
	if err != nil {
		return Task{}, err
	}
	t.Quadrant = matrix.Quadrant(quadrant)
	t.CreatedAt = t.CreatedAt.UTC()
	t.Deadline = fromNullTime(deadline)
	t.CompletedAt = fromNullTime(completedAt)
	return t, nil
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	u := nt.Time.UTC()
	return &u
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) List(ctx context.Context, f Filter) ([]Task, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}
	if f.Quadrant != "" {
		where = append(where, "quadrant = ?")
		args = append(args, string(f.Quadrant))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := r.DB.Lower("?")
		where = append(where, `(`+r.DB.Lower("title")+` LIKE `+like+` ESCAPE '\' OR `+
			r.DB.Lower("description")+` LIKE `+like+` ESCAPE '\')`)
		pattern := "%" + escapeLike(q) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Skip)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *SQLRepository) Insert(ctx context.Context, t *Task) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, title, description, important, deadline_at,
			quadrant, completed, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, t.UserID, t.Title, t.Description, t.Important, toNullTime(t.Deadline),
		string(t.Quadrant), t.Completed, t.CreatedAt.UTC(), toNullTime(t.CompletedAt),
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, t Task) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, important = ?, deadline_at = ?,
			quadrant = ?, completed = ?, completed_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Important, toNullTime(t.Deadline),
		string(t.Quadrant), t.Completed, toNullTime(t.CompletedAt), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) Complete(ctx context.Context, t Task) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, important = ?, deadline_at = ?,
			quadrant = ?, completed = ?, completed_at = ?
		WHERE id = ? AND completed = ?
	`, t.Title, t.Description, t.Important, toNullTime(t.Deadline),
		string(t.Quadrant), true, toNullTime(t.CompletedAt), t.ID, false)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) Stats(ctx context.Context, userID int64) (Stats, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT quadrant, completed, COUNT(*)
		FROM tasks
		WHERE user_id = ?
		GROUP BY quadrant, completed
	`, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	s := newStats()
	for rows.Next() {
		var (
			quadrant  string
			completed bool
			n         int
		)
		if err := rows.Scan(&quadrant, &completed, &n); err != nil {
			return Stats{}, fmt.Errorf("failed to scan counts: %w", err)
		}
		s.TotalTasks += n
		if q := matrix.Quadrant(quadrant); q.Valid() {
			s.ByQuadrant[q] += n
		}
		if completed {
			s.ByStatus.Completed += n
		} else {
			s.ByStatus.Pending += n
		}
	}
	return s, rows.Err()
}
