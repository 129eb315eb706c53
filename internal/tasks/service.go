package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"eisenhower-tasks-backend/internal/analytics"
	"eisenhower-tasks-backend/internal/auth"
	"eisenhower-tasks-backend/internal/matrix"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrForbidden    = errors.New("not allowed to access this task")
	ErrInvalidQuery = errors.New("search query must be at least 2 characters")
)

const (
	DefaultLimit   = 100
	MaxLimit       = 500
	minQueryLength = 2
)

// EventRecorder receives product analytics events.
type EventRecorder interface {
	Record(ctx context.Context, userID int64, eventName string, props map[string]any)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, int64, string, map[string]any) {}

// Service applies access rules around the Coordinator and the Repository.
// Reads and mutations of a single task are allowed to its owner and to admins;
// listings are always scoped to the caller.
type Service struct {
	repo   Repository
	coord  *Coordinator
	roles  auth.RoleLookup
	events EventRecorder
	log    *slog.Logger
}

func NewService(repo Repository, coord *Coordinator, roles auth.RoleLookup, events EventRecorder, logger *slog.Logger) *Service {
	if events == nil {
		events = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, coord: coord, roles: roles, events: events, log: logger}
}

// Clock is the clock used both for mutations and for read-time fields.
func (s *Service) Clock() matrix.Clock { return s.coord.Clock }

func (s *Service) Create(ctx context.Context, in NewTask) (Task, error) {
	t := s.coord.Create(in)
	if err := s.repo.Insert(ctx, &t); err != nil {
		return Task{}, err
	}

	s.events.Record(ctx, t.UserID, analytics.EventTaskCreated, map[string]any{
		"task_id":      t.ID,
		"quadrant":     t.Quadrant,
		"important":    t.Important,
		"has_deadline": t.Deadline != nil,
	})
	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.authorize(ctx, userID, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, p Patch) (Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return Task{}, err
	}

	ch := s.coord.Apply(&t, p)
	if ch.Completed {
		stored, err := s.repo.Complete(ctx, t)
		if err != nil {
			return Task{}, err
		}
		if !stored {
			// Someone else completed it first.
			return s.repo.Get(ctx, id)
		}
	} else if err := s.repo.Update(ctx, t); err != nil {
		return Task{}, err
	}

	s.events.Record(ctx, userID, analytics.EventTaskUpdated, map[string]any{
		"task_id":         t.ID,
		"fields":          ch.Fields,
		"quadrant_before": ch.QuadrantBefore,
		"quadrant_after":  t.Quadrant,
	})
	switch {
	case ch.Completed:
		s.recordCompleted(ctx, userID, t)
	case ch.Reopened:
		s.events.Record(ctx, userID, analytics.EventTaskUncompleted, map[string]any{
			"task_id":  t.ID,
			"quadrant": t.Quadrant,
		})
	}
	return t, nil
}

// Complete is idempotent: an already completed task comes back unchanged.
func (s *Service) Complete(ctx context.Context, userID, id int64) (Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return Task{}, err
	}
	if !s.coord.Complete(&t) {
		return t, nil
	}
	stored, err := s.repo.Complete(ctx, t)
	if err != nil {
		return Task{}, err
	}
	if !stored {
		return s.repo.Get(ctx, id)
	}
	s.recordCompleted(ctx, userID, t)
	return t, nil
}

func (s *Service) recordCompleted(ctx context.Context, userID int64, t Task) {
	props := map[string]any{
		"task_id":                t.ID,
		"quadrant_at_completion": t.Quadrant,
		"overdue":                matrix.Overdue(t.Deadline, *t.CompletedAt),
		"time_since_created_sec": int(t.CompletedAt.Sub(t.CreatedAt).Seconds()),
	}
	s.events.Record(ctx, userID, analytics.EventTaskCompleted, props)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Record(ctx, userID, analytics.EventTaskDeleted, map[string]any{
		"task_id":   t.ID,
		"quadrant":  t.Quadrant,
		"completed": t.Completed,
	})
	return nil
}

func (s *Service) List(ctx context.Context, userID int64, skip, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.List(ctx, Filter{UserID: userID, Skip: skip, Limit: limit})
}

// Search matches title or description case-insensitively.
func (s *Service) Search(ctx context.Context, userID int64, query string) ([]Task, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, ErrInvalidQuery
	}
	return s.repo.List(ctx, Filter{UserID: userID, Query: query})
}

func (s *Service) ByStatus(ctx context.Context, userID int64, completed bool) ([]Task, error) {
	return s.repo.List(ctx, Filter{UserID: userID, Completed: &completed})
}

func (s *Service) ByQuadrant(ctx context.Context, userID int64, q matrix.Quadrant) ([]Task, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("%w: %q", matrix.ErrUnknownQuadrant, q)
	}
	return s.repo.List(ctx, Filter{UserID: userID, Quadrant: q})
}

func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	return s.repo.Stats(ctx, userID)
}

// ReclassifyResult summarises a Reclassify sweep.
type ReclassifyResult struct {
	Scanned int
	Changed int
	Failed  int
}

// Reclassify re-evaluates every open task against the current clock and
// stores the ones whose quadrant moved. Completed tasks stay frozen.
func (s *Service) Reclassify(ctx context.Context) (ReclassifyResult, error) {
	open := false
	list, err := s.repo.List(ctx, Filter{Completed: &open})
	if err != nil {
		return ReclassifyResult{}, err
	}

	var res ReclassifyResult
	for _, t := range list {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++
		before := t.Quadrant
		if !s.coord.Refresh(&t) {
			continue
		}
		if err := s.repo.Update(ctx, t); err != nil {
			res.Failed++
			s.log.Warn("reclassify failed", "task_id", t.ID, "error", err)
			continue
		}
		res.Changed++
		s.log.Debug("task reclassified", "task_id", t.ID, "from", before, "to", t.Quadrant)
	}
	return res, nil
}

func (s *Service) authorize(ctx context.Context, userID int64, t Task) error {
	if t.UserID == userID {
		return nil
	}
	if s.roles == nil {
		return ErrForbidden
	}
	role, err := s.roles.Role(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if role != auth.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
