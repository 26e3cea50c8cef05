// Package app initializes and runs the service.
// It configures logging, storage, authentication, the catalog proxy and
// routing, and handles graceful shutdown of the HTTP and gRPC servers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/arrowflix/internal/auth"
	"github.com/patric-chuzhbe/arrowflix/internal/catalog"
	"github.com/patric-chuzhbe/arrowflix/internal/config"
	"github.com/patric-chuzhbe/arrowflix/internal/db/jsondb"
	"github.com/patric-chuzhbe/arrowflix/internal/db/memorystorage"
	"github.com/patric-chuzhbe/arrowflix/internal/db/postgresdb"
	"github.com/patric-chuzhbe/arrowflix/internal/db/storage"
	"github.com/patric-chuzhbe/arrowflix/internal/grpcserver"
	"github.com/patric-chuzhbe/arrowflix/internal/ipchecker"
	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/metrics"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/passwords"
	"github.com/patric-chuzhbe/arrowflix/internal/router"
	"github.com/patric-chuzhbe/arrowflix/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the configuration, storage backend and servers.
type App struct {
	cfg           *config.Config
	db            storage.Storage
	httpHandler   http.Handler
	healthHandler *grpcserver.HealthHandler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - building the account service, session authority and catalog client
// - setting up the router and middleware
func New(optionsProto ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	hasher, err := passwords.NewBcrypt(app.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	appMetrics := metrics.New()

	accounts := service.New(app.db, hasher, service.WithRecorder(appMetrics))

	theAuth := auth.New(
		app.db,
		hasher,
		[]byte(app.cfg.JWTSecret),
		auth.WithTokenTTL(app.cfg.TokenTTL),
		auth.WithRecorder(appMetrics),
	)

	if app.cfg.TMDBAPIKey == "" {
		logger.Log.Warnln("TMDB_API_KEY is not set, catalog requests will be rejected upstream")
	}
	catalogClient := catalog.New(
		app.cfg.TMDBAPIKey,
		catalog.WithBaseURL(app.cfg.TMDBBaseURL),
		catalog.WithLanguage(app.cfg.TMDBLanguage),
		catalog.WithTimeout(app.cfg.UpstreamTimeout),
		catalog.WithRecorder(appMetrics),
	)

	metricsGuard, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		accounts,
		theAuth,
		catalogClient,
		router.WithAPIPrefix(app.cfg.APIPrefix),
		router.WithMetrics(appMetrics),
		router.WithMetricsAccess(metricsGuard.Middleware),
	)

	app.healthHandler = grpcserver.NewHealthHandler(app.db)

	return app, nil
}

// Run starts the HTTP server, and the gRPC health server when an address is
// configured, with graceful shutdown support.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infow("server running", "RunAddr", a.cfg.RunAddr, "APIPrefix", a.cfg.APIPrefix)

	var grpcServer *grpc.Server
	var grpcListener net.Listener
	if a.cfg.GRPCAddr != "" {
		var err error
		grpcServer, grpcListener, err = grpcserver.NewGRPCServer(a.cfg.GRPCAddr, a.healthHandler)
		if err != nil {
			if closeErr := a.db.Close(); closeErr != nil {
				logger.Log.Debugln("Error calling the `a.db.Close()`: ", zap.Error(closeErr))
			}
			return err
		}
	}

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	if grpcServer != nil {
		logger.Log.Infow("gRPC health server running", "GRPCAddr", a.cfg.GRPCAddr)
		go func() {
			serverErrCh <- grpcServer.Serve(grpcListener)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		a.healthHandler.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.GracefulStop()
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		if grpcServer != nil {
			grpcServer.Stop()
		}
		if closeErr := a.db.Close(); closeErr != nil {
			logger.Log.Debugln("Error calling the `a.db.Close()`: ", zap.Error(closeErr))
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
