package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"todoapi/internal/server/config"
	"todoapi/internal/server/httpapi"
	"todoapi/internal/server/repository/memory"
	"todoapi/internal/server/repository/postgres"
	"todoapi/internal/server/repository/sqlite"
	"todoapi/internal/server/service"
)

type App struct {
	version   string
	buildDate string
	logger    *log.Logger
	server    *http.Server
	repoClose io.Closer
}

type repository interface {
	service.Repository
	io.Closer
}

func New(version, buildDate string, logger *log.Logger) (*App, error) {
	return NewWithConfig(version, buildDate, logger, config.Load())
}

// NewWithConfig builds the application from an explicit configuration.
func NewWithConfig(version, buildDate string, logger *log.Logger, cfg config.Config) (*App, error) {
	cfg = cfg.WithDefaults()
	repo, err := openRepository(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	services := service.NewServices(repo, cfg)
	router := httpapi.NewRouter(services, logger, httpapi.Options{
		MaxRequestBytes: cfg.MaxRequestBytes,
		CORSOrigins:     cfg.CORSOrigins,
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &App{version: version, buildDate: buildDate, logger: logger, server: server, repoClose: repo}, nil
}

// openRepository picks a backend from the DSN: postgres URLs go to
// PostgreSQL, "memory" keeps everything in process, anything else is a
// SQLite DSN.
func openRepository(ctx context.Context, dsn string) (repository, error) {
	switch {
	case dsn == "memory":
		return memory.New(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		repo, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return repo, nil
	default:
		repo, err := sqlite.New(dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repo, nil
	}
}

// Handler exposes the configured HTTP handler.
func (a *App) Handler() http.Handler { return a.server.Handler }

func (a *App) Close() error { return a.repoClose.Close() }

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = a.repoClose.Close() }()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Printf("http server error: %v", err)
			errCh <- err
		}
	}()

	a.logger.Printf("todoapi server %s (%s) listening on %s", a.version, a.buildDate, a.server.Addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
