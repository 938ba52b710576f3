package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/user"
	"strings"

	"github.com/Veraticus/ponder/internal/config"
	"github.com/Veraticus/ponder/internal/hosted"
	"github.com/Veraticus/ponder/internal/service"
	"github.com/Veraticus/ponder/internal/session"
	"github.com/Veraticus/ponder/internal/storage"
	"github.com/Veraticus/ponder/internal/storage/postgres"
	"github.com/Veraticus/ponder/internal/workflow"
	"github.com/spf13/viper"
)

// initSessions returns the session provider for the configured backend. An
// explicit --user wins; otherwise a signed-in JWT session is used. The local
// sqlite journal falls back to the operating system user when no JWT secret
// is configured.
func initSessions(backend string) (service.SessionProvider, error) {
	if name := strings.TrimSpace(viper.GetString("auth.user")); name != "" {
		return session.NewStatic(name, ""), nil
	}

	auth := config.LoadAuth()
	if auth.JWTSecret == "" && backend == config.BackendSQLite {
		return session.NewStatic(localUser(), ""), nil
	}

	return newJWTProvider(auth)
}

func newJWTProvider(auth config.Auth) (*session.JWTProvider, error) {
	path := auth.TokenPath
	if path == "" {
		path = session.DefaultTokenPath
	}
	return session.NewJWTProvider(session.NewFileTokenStore(path), []byte(auth.JWTSecret))
}

func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// initStorage opens the configured backend and runs its migrations.
func initStorage(ctx context.Context, cfg config.Store, sessions service.SessionProvider) (service.Storage, error) {
	var (
		store service.Storage
		err   error
	)

	switch cfg.Backend {
	case config.BackendSQLite:
		store, err = storage.NewSQLiteStorage(cfg.SQLitePath)
	case config.BackendPostgres:
		store, err = postgres.Open(ctx, cfg.Postgres, slog.Default())
	case config.BackendHosted:
		store, err = hosted.New(cfg.Hosted, sessions, slog.Default())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// deps bundles what the record-handling commands need.
type deps struct {
	store    service.Storage
	sessions service.SessionProvider
}

func (d *deps) Close() {
	if d.store != nil {
		_ = d.store.Close()
	}
}

func initDeps(ctx context.Context) (*deps, error) {
	storeCfg, err := config.LoadStore()
	if err != nil {
		return nil, err
	}
	sessions, err := initSessions(storeCfg.Backend)
	if err != nil {
		return nil, err
	}
	store, err := initStorage(ctx, storeCfg, sessions)
	if err != nil {
		return nil, err
	}
	return &deps{store: store, sessions: sessions}, nil
}

// newEngine wires a workflow engine to the configured store, session and
// advisor. The returned cleanup must be called when the engine is done.
func newEngine(ctx context.Context) (*workflow.Engine, func(), error) {
	d, err := initDeps(ctx)
	if err != nil {
		return nil, nil, err
	}

	adv, fallback, closeAdvisor, err := initAdvisor()
	if err != nil {
		d.Close()
		return nil, nil, err
	}

	wf := config.LoadWorkflow()
	engine, err := workflow.New(workflow.Config{
		Advisor:             adv,
		Store:               d.store,
		Sessions:            d.sessions,
		Logger:              slog.Default(),
		FallbackToHeuristic: fallback,
		AdviceTimeout:       wf.AdviceTimeout,
		CommitTimeout:       wf.CommitTimeout,
	})
	if err != nil {
		closeAdvisor()
		d.Close()
		return nil, nil, err
	}

	return engine, func() {
		closeAdvisor()
		d.Close()
	}, nil
}
