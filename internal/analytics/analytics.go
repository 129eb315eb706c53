package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eisenhower-tasks-backend/internal/db"
)

type CtxKey string

const (
	ctxUserIDKey   CtxKey = "analytics_user_id"
	ctxEnvelopeKey CtxKey = "analytics_envelope"
	ctxSourceKey   CtxKey = "analytics_source_event_key"
)

// Event names written to analytics_events.
const (
	EventUserRegistered  = "user_registered"
	EventTaskCreated     = "task_created"
	EventTaskUpdated     = "task_updated"
	EventTaskCompleted   = "task_completed"
	EventTaskUncompleted = "task_uncompleted"
	EventTaskDeleted     = "task_deleted"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       int64
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
	IPCountry    string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	// no geoip yet, ip_country stays empty
	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// SourceEventKeyFromRequest returns the client idempotency key, if any.
// Duplicate keys are ignored on insert.
func SourceEventKeyFromRequest(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(ctxUserIDKey).(int64)
	return uid, ok
}

// Middleware stores the request envelope and idempotency key in the context
// so that code far from the handler can emit events.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxEnvelopeKey, FromRequest(r))
		if k := SourceEventKeyFromRequest(r); k != "" {
			ctx = context.WithValue(ctx, ctxSourceKey, k)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func EnvelopeFromContext(ctx context.Context) Envelope {
	env, ok := ctx.Value(ctxEnvelopeKey).(Envelope)
	if !ok {
		return Envelope{Platform: "unknown"}
	}
	return env
}

func sourceKeyFromContext(ctx context.Context) string {
	k, _ := ctx.Value(ctxSourceKey).(string)
	return k
}

// Log inserts one analytics event.
// Never logs sensitive raw text; caller passes sanitized props.
// An event without a user is skipped.
func Log(ctx context.Context, dbx *db.DB, env Envelope, eventName string, props any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}

	userID := env.UserID
	if userID == 0 {
		uid, ok := UserIDFromContext(ctx)
		if !ok {
			return nil
		}
		userID = uid
	}

	if props == nil {
		props = map[string]any{}
	}
	b, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshal %s props: %w", eventName, err)
	}

	_, err = dbx.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale, ip_country,
			source_event_key,
			properties
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_event_key) DO NOTHING
	`, eventName, time.Now().UTC(),
		userID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale), nullIfEmpty(env.IPCountry),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	if err != nil {
		return fmt.Errorf("insert %s event: %w", eventName, err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Recorder writes events using the envelope carried by the context.
// Failures are logged and swallowed: analytics never breaks the core flow.
type Recorder struct {
	DB  *db.DB
	Log *slog.Logger
}

func NewRecorder(dbx *db.DB, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{DB: dbx, Log: logger}
}

func (r *Recorder) Record(ctx context.Context, userID int64, eventName string, props map[string]any) {
	env := EnvelopeFromContext(ctx)
	env.UserID = userID
	if props == nil {
		props = map[string]any{}
	}

	// Scope the key per event name so one request may emit several events.
	key := sourceKeyFromContext(ctx)
	if key != "" {
		key = key + ":" + eventName
	}

	if err := Log(ctx, r.DB, env, eventName, props, key); err != nil {
		r.Log.Warn("analytics event dropped", "event", eventName, "user_id", userID, "error", err)
	}
}
