package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eisenhower-tasks-backend/internal/analytics"
	"eisenhower-tasks-backend/internal/auth"
	"eisenhower-tasks-backend/internal/config"
	"eisenhower-tasks-backend/internal/db"
	"eisenhower-tasks-backend/internal/matrix"
	"eisenhower-tasks-backend/internal/server"
	"eisenhower-tasks-backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := cfg.Logger(os.Stderr)

	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Error("failed to connect DB", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer database.Close()
	log.Info("connected to database", "driver", cfg.DBDriver)

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx)
		cancel()
		if err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	if cfg.DevSecret() {
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	users := auth.NewUsers(database)
	recorder := analytics.NewRecorder(database, log)
	svc := tasks.NewService(
		tasks.NewSQLRepository(database),
		tasks.NewCoordinator(matrix.SystemClock),
		users,
		recorder,
		log,
	)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.New(server.Deps{
			Users:       users,
			Tokens:      auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
			Tasks:       svc,
			Events:      recorder,
			CORSOrigins: cfg.CORSOrigins,
			Logger:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("API server is running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
