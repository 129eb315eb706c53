package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eisenhower-tasks-backend/internal/analytics"
	"eisenhower-tasks-backend/internal/validation"
)

// EventRecorder receives product analytics events.
type EventRecorder interface {
	Record(ctx context.Context, userID int64, eventName string, props map[string]any)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Nickname string `json:"nickname" validate:"max=64"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func RegisterHandler(users *Users, tokens Tokens, events EventRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		user, err := users.Create(r.Context(), body.Email, body.Nickname, body.Password)
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "register failed", "error", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			slog.ErrorContext(r.Context(), "token issue failed", "user_id", user.ID, "error", err)
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		if events != nil {
			events.Record(r.Context(), user.ID, analytics.EventUserRegistered, nil)
		}

		writeJSON(w, http.StatusCreated, tokenResponse{UserID: user.ID, Token: token})
	}
}

func LoginHandler(users *Users, tokens Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		user, err := users.Authenticate(r.Context(), body.Email, body.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "login failed", "error", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{UserID: user.ID, Token: token})
	}
}

func MeHandler(users *Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := users.ByID(r.Context(), uid)
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// JWT stateless: the client just drops the token.
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func DeleteAccountHandler(users *Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := users.Delete(r.Context(), uid); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			slog.ErrorContext(r.Context(), "delete account failed", "user_id", uid, "error", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// AdminUsersHandler lists all users with their task counts. Mount behind WrapAdmin.
func AdminUsersHandler(users *Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.ListWithTaskCounts(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "list users failed", "error", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
