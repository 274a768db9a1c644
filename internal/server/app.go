// Package server initializes and runs the main application server.
// It opens the database, applies migrations, wires the provider clients and
// services, handles graceful shutdown, and runs the HTTP endpoint together
// with the periodic ledger reconciliation sweep.
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

	"github.com/sketchmotion/sketchmotion/internal/billingportal"
	"github.com/sketchmotion/sketchmotion/internal/logging"
	"github.com/sketchmotion/sketchmotion/internal/mediastore"
	"github.com/sketchmotion/sketchmotion/internal/server/auth"
	"github.com/sketchmotion/sketchmotion/internal/server/config"
	"github.com/sketchmotion/sketchmotion/internal/server/httpapi"
	"github.com/sketchmotion/sketchmotion/internal/server/repositories/repomanager"
	"github.com/sketchmotion/sketchmotion/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	clipService *services.ClipService
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := mediastore.New(mediastore.Config{
		CloudName:       cfg.MediaCloudName,
		APIKey:          cfg.MediaAPIKey,
		APISecret:       cfg.MediaAPISecret,
		APIBaseURL:      cfg.MediaAPIBaseURL,
		DeliveryBaseURL: cfg.MediaDeliveryBaseURL,
	})
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.AuthSecret))
	if err != nil {
		return nil, err
	}

	billing, err := billingportal.NewStripeProvider(cfg.StripeAPIKey)
	if err != nil {
		return nil, err
	}

	uploadService := services.NewUploadService(cfg.MediaCloudName, cfg.MediaAPIKey, cfg.MediaAPISecret)
	clipService := services.NewClipService(db, rm, store, logger, cfg.DeliveryURLTTL)
	billingService := services.NewBillingService(db, rm, billing, cfg.BillingReturnURL, logger)
	jobService := services.NewJobService(db, rm)

	api := httpapi.NewServer(httpapi.ServerDeps{
		Verifier: verifier,
		Uploads:  uploadService,
		Clips:    clipService,
		Billing:  billingService,
		Jobs:     jobService,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Handler(),
	}

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		clipService: clipService,
		httpServer:  httpServer,
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "http server listening", "addr", app.httpServer.Addr)

	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runSweep removes ledger records whose objects are gone upstream, on the
// configured interval, until ctx is cancelled.
func (app *App) runSweep(ctx context.Context) {
	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.clipService.SweepDanglingRecords(ctx)
			if err != nil {
				app.logger.Warn(ctx, "sweep failed", "error", err.Error())
				continue
			}
			if removed > 0 {
				app.logger.Info(ctx, "sweep finished", "removed", removed)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSweep(ctx)
	}()

	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
