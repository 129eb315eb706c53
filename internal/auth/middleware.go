package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eisenhower-tasks-backend/internal/analytics"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// RoleLookup resolves a user's current role. Roles are read per request
// rather than baked into the token so promotions apply immediately.
type RoleLookup interface {
	Role(ctx context.Context, userID int64) (Role, error)
}

type Middleware struct {
	tokens Tokens
}

func New(tokens Tokens) Middleware {
	return Middleware{tokens: tokens}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := m.tokens.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := WithUserID(r.Context(), userID)
		next(w, r.WithContext(ctx))
	}
}

// WrapAdmin authenticates like Wrap and then requires the admin role.
func (m Middleware) WrapAdmin(roles RoleLookup, next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		role, err := roles.Role(r.Context(), uid)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			slog.ErrorContext(r.Context(), "role lookup failed", "user_id", uid, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if role != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// WithUserID marks ctx as authenticated for userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	// прокидываем user_id в analytics context
	return analytics.WithUserID(ctx, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}
