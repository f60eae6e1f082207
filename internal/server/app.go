// Package server initializes and runs the accountd server: it opens the
// database, applies migrations, wires repositories, services and the HTTP
// router, starts the background token sweep and handles graceful shutdown.
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
	"sync"
	"syscall"
	"time"

	"github.com/accountd/accountd/internal/logging"
	"github.com/accountd/accountd/internal/server/config"
	"github.com/accountd/accountd/internal/server/email"
	"github.com/accountd/accountd/internal/server/httpapi"
	"github.com/accountd/accountd/internal/server/models"
	"github.com/accountd/accountd/internal/server/repositories/repomanager"
	"github.com/accountd/accountd/internal/server/services"
	"github.com/accountd/accountd/internal/server/storage"
)

// App owns the server's long-lived resources.
type App struct {
	config *config.Config
	logger logging.Logger

	db             *sql.DB
	refreshService *services.RefreshTokenService
	httpServer     *http.Server
}

// NewApp wires the whole server from config.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	sender, err := email.NewSMTPSender(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	rolesService := services.NewRolesService(db, rm)
	confirmationService := services.NewConfirmationTokenService(cfg)
	refreshService := services.NewRefreshTokenService(db, rm, cfg)
	authService := services.NewAuthService(db, rm, rolesService, confirmationService, refreshService, sender, cfg)
	usersService := services.NewUsersService(db, rm, confirmationService, sender, cfg)
	filesService := services.NewFilesService(db, rm, store, cfg.FileStorage)

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:  httpapi.NewAuthHandler(authService, refreshService, usersService, int(cfg.RefreshTokenTTL.Seconds())),
		Users: httpapi.NewUsersHandler(usersService, rolesService),
		Roles: httpapi.NewRolesHandler(rolesService),
		Files: httpapi.NewFilesHandler(filesService),
	}, []byte(cfg.AccessTokenSecret))

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		refreshService: refreshService,
		httpServer: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.FileStorage {
	case models.StorageS3:
		return storage.NewS3Storage(ctx, cfg)
	case models.StorageLocal:
		return storage.NewLocalStorage(cfg.FileStoragePath)
	default:
		return nil, fmt.Errorf("unknown file storage %q", cfg.FileStorage)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runTokenSweep deletes expired refresh tokens on the configured interval
// until ctx is canceled.
func (app *App) runTokenSweep(ctx context.Context) {
	ticker := time.NewTicker(app.config.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.refreshService.CleanExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "token sweep failed", "error", err)
				continue
			}
			app.logger.Info(ctx, "token sweep done", "deleted", n)
		}
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "http server listening", "addr", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run starts the server and blocks until shutdown completes.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting accountd")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runTokenSweep(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown failed", "error", err)
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "accountd stopped")
}
