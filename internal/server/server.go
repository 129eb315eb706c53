package server

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"eisenhower-tasks-backend/internal/analytics"
	"eisenhower-tasks-backend/internal/auth"
	"eisenhower-tasks-backend/internal/tasks"
)

// Deps is everything the router needs.
type Deps struct {
	Users       *auth.Users
	Tokens      auth.Tokens
	Tasks       *tasks.Service
	Events      auth.EventRecorder
	CORSOrigins []string
	Logger      *slog.Logger
}

// New builds the HTTP handler: routes, CORS, request ids, access log and
// the analytics envelope.
func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	mw := auth.New(d.Tokens)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Eisenhower matrix task API",
			"status":  "running",
		})
	})

	// ----- AUTH -----
	mux.HandleFunc("POST /auth/register", auth.RegisterHandler(d.Users, d.Tokens, d.Events))
	mux.HandleFunc("POST /auth/login", auth.LoginHandler(d.Users, d.Tokens))
	mux.HandleFunc("GET /auth/me", mw.Wrap(auth.MeHandler(d.Users)))
	mux.HandleFunc("POST /auth/logout", mw.Wrap(auth.LogoutHandler()))
	mux.HandleFunc("DELETE /auth/account", mw.Wrap(auth.DeleteAccountHandler(d.Users)))

	// ----- TASKS -----
	mux.HandleFunc("POST /api/v1/tasks", mw.Wrap(tasks.CreateTaskHandler(d.Tasks)))
	mux.HandleFunc("GET /api/v1/tasks", mw.Wrap(tasks.GetTasksHandler(d.Tasks)))
	mux.HandleFunc("GET /api/v1/tasks/search", mw.Wrap(tasks.SearchTasksHandler(d.Tasks)))
	mux.HandleFunc("GET /api/v1/tasks/status/{status}", mw.Wrap(tasks.TasksByStatusHandler(d.Tasks)))
	mux.HandleFunc("GET /api/v1/tasks/quadrant/{quadrant}", mw.Wrap(tasks.TasksByQuadrantHandler(d.Tasks)))
	mux.HandleFunc("GET /api/v1/tasks/{id}", mw.Wrap(tasks.GetTaskHandler(d.Tasks)))
	mux.HandleFunc("PUT /api/v1/tasks/{id}", mw.Wrap(tasks.UpdateTaskHandler(d.Tasks)))
	mux.HandleFunc("PATCH /api/v1/tasks/{id}/complete", mw.Wrap(tasks.CompleteTaskHandler(d.Tasks)))
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", mw.Wrap(tasks.DeleteTaskHandler(d.Tasks)))
	mux.HandleFunc("GET /api/v1/stats", mw.Wrap(tasks.StatsHandler(d.Tasks)))

	// ----- ADMIN -----
	mux.HandleFunc("GET /api/v1/admin/users", mw.WrapAdmin(d.Users, auth.AdminUsersHandler(d.Users)))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id",
			"X-Platform", "X-App-Version", "X-Session-Id", "X-Device-Locale",
			"Idempotency-Key", "X-Source-Event-Key"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowsAny(origins),
	})

	var h http.Handler = mux
	h = analytics.Middleware(h)
	h = accessLog(d.Logger, h)
	h = requestID(h)
	return c.Handler(h)
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
