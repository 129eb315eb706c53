package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eisenhower-tasks-backend/internal/auth"
	"eisenhower-tasks-backend/internal/matrix"
	"eisenhower-tasks-backend/internal/validation"
)

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Important   bool    `json:"important"`
	Deadline    *string `json:"deadline"`
}

type updateTaskRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Important   Optional[bool]   `json:"important"`
	Deadline    Optional[string] `json:"deadline"`
	Completed   Optional[bool]   `json:"completed"`
}

type listResponse struct {
	Count int            `json:"count"`
	Tasks []TaskResponse `json:"tasks"`
}

type searchResponse struct {
	Query string         `json:"query"`
	Count int            `json:"count"`
	Tasks []TaskResponse `json:"tasks"`
}

type quadrantResponse struct {
	Quadrant matrix.Quadrant `json:"quadrant"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
	Tasks    []TaskResponse  `json:"tasks"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeStrict rejects unknown fields, which keeps quadrant and is_urgent
// out of request bodies.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, matrix.ErrUnknownQuadrant):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "task request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
	}
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", r.PathValue("id"))
	}
	return id, nil
}

func parseDeadlinePtr(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDeadline(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body createTaskRequest
		if err := decodeStrict(r, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body.Title = strings.TrimSpace(body.Title)
		body.Description = strings.TrimSpace(body.Description)
		if err := validation.Struct(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		deadline, err := parseDeadlinePtr(body.Deadline)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		t, err := svc.Create(r.Context(), NewTask{
			UserID:      uid,
			Title:       body.Title,
			Description: body.Description,
			Important:   body.Important,
			Deadline:    deadline,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, Present(t, svc.Clock().Now()))
	}
}

func (req updateTaskRequest) patch() (Patch, error) {
	var p Patch

	if req.Title.Set {
		if req.Title.Null {
			return Patch{}, errors.New("title: may not be null")
		}
		title := strings.TrimSpace(req.Title.Value)
		if err := validation.Var("title", title, "min=3,max=100"); err != nil {
			return Patch{}, err
		}
		p.Title = &title
	}
	if req.Description.Set {
		desc := strings.TrimSpace(req.Description.Value)
		if err := validation.Var("description", desc, "max=500"); err != nil {
			return Patch{}, err
		}
		p.Description = &desc
	}
	if req.Important.Set {
		if req.Important.Null {
			return Patch{}, errors.New("important: may not be null")
		}
		p.Important = &req.Important.Value
	}
	if req.Deadline.Set {
		p.SetDeadline = true
		if !req.Deadline.Null {
			d, err := parseDeadlinePtr(&req.Deadline.Value)
			if err != nil {
				return Patch{}, err
			}
			p.Deadline = d
		}
	}
	if req.Completed.Set {
		if req.Completed.Null {
			return Patch{}, errors.New("completed: may not be null")
		}
		p.Completed = &req.Completed.Value
	}
	return p, nil
}

func UpdateTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := taskID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var body updateTaskRequest
		if err := decodeStrict(r, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := body.patch()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		t, err := svc.Update(r.Context(), uid, id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Present(t, svc.Clock().Now()))
	}
}

func CompleteTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := taskID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		t, err := svc.Complete(r.Context(), uid, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Present(t, svc.Clock().Now()))
	}
}

func DeleteTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := taskID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := svc.Delete(r.Context(), uid, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := taskID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		t, err := svc.Get(r.Context(), uid, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Present(t, svc.Clock().Now()))
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func GetTasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		limit, err := queryInt(r, "limit", DefaultLimit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		list, err := svc.List(r.Context(), uid, skip, limit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		tasks := PresentAll(list, svc.Clock().Now())
		writeJSON(w, http.StatusOK, listResponse{Count: len(tasks), Tasks: tasks})
	}
}

func SearchTasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := strings.TrimSpace(r.URL.Query().Get("q"))
		list, err := svc.Search(r.Context(), uid, q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if len(list) == 0 {
			http.Error(w, fmt.Sprintf("no tasks matching %q", q), http.StatusNotFound)
			return
		}

		tasks := PresentAll(list, svc.Clock().Now())
		writeJSON(w, http.StatusOK, searchResponse{Query: q, Count: len(tasks), Tasks: tasks})
	}
}

func TasksByStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var completed bool
		switch r.PathValue("status") {
		case "completed":
			completed = true
		case "pending":
		default:
			http.Error(w, "status must be completed or pending", http.StatusBadRequest)
			return
		}

		list, err := svc.ByStatus(r.Context(), uid, completed)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, PresentAll(list, svc.Clock().Now()))
	}
}

func TasksByQuadrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q, err := matrix.ParseQuadrant(r.PathValue("quadrant"))
		if err != nil {
			http.Error(w, "quadrant must be one of Q1, Q2, Q3, Q4", http.StatusBadRequest)
			return
		}

		list, err := svc.ByQuadrant(r.Context(), uid, q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		tasks := PresentAll(list, svc.Clock().Now())
		writeJSON(w, http.StatusOK, quadrantResponse{Quadrant: q, Label: q.Label(), Count: len(tasks), Tasks: tasks})
	}
}

func StatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		stats, err := svc.Stats(r.Context(), uid)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
