// Package server initializes and runs the main application server.
// It wires the metadata store, the blob backend, the transfer service and
// the background sweeper, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/guardianbox/internal/logging"
	"github.com/dmitrijs2005/guardianbox/internal/server/config"
	"github.com/dmitrijs2005/guardianbox/internal/server/httpapi"
	"github.com/dmitrijs2005/guardianbox/internal/server/migrations"
	"github.com/dmitrijs2005/guardianbox/internal/server/repositories/files"
	"github.com/dmitrijs2005/guardianbox/internal/server/storage"
	"github.com/dmitrijs2005/guardianbox/internal/server/sweeper"
	"github.com/dmitrijs2005/guardianbox/internal/server/transfer"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	service *transfer.Service
	sweeper *sweeper.Sweeper
	srv     *http.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	app := &App{config: c, logger: logger}

	repo, err := app.initRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := app.initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	app.service = transfer.NewService(repo, store, logger, transfer.Policy{
		DefaultExpirySeconds: c.DefaultExpirySeconds,
		DefaultDownloadLimit: c.DefaultDownloadLimit,
	})
	app.sweeper = sweeper.New(repo, app.service, c.SweepInterval, logger)
	app.srv = &http.Server{
		Addr:    c.Addr,
		Handler: httpapi.NewRouter(app.service, logger),
	}

	return app, nil
}

// initRepository opens the metadata store. A configured DSN selects
// PostgreSQL with goose migrations applied at startup; an empty DSN falls
// back to the in-memory store for development and tests.
func (app *App) initRepository(ctx context.Context) (files.Repository, error) {

	if app.config.DatabaseDSN == "" {
		app.logger.Info(ctx, "no database DSN, using in-memory metadata store")
		return files.NewInMemoryRepository(), nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app.db = db
	return files.NewPostgresRepository(db), nil
}

func (app *App) initStorage(ctx context.Context) (storage.Backend, error) {
	switch app.config.StorageKind {
	case config.StorageKindS3:
		return storage.NewS3Backend(ctx, storage.S3Options{
			User:         app.config.S3RootUser,
			Password:     app.config.S3RootPassword,
			Bucket:       app.config.S3Bucket,
			Region:       app.config.S3Region,
			BaseEndpoint: app.config.S3BaseEndpoint,
		})
	case config.StorageKindFilesystem:
		return storage.NewFilesystemBackend(app.config.FileStorageDir)
	default:
		return nil, fmt.Errorf("unknown storage kind: %s", app.config.StorageKind)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	app.sweeper.Start(ctx)

	go func() {
		if err := app.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(context.Background(), "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}

	app.sweeper.Stop()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), err.Error())
		}
	}
}
