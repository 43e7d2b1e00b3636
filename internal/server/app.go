// Package server wires storage, services and both transports together and
// runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	registry    *prometheus.Registry
	router      http.Handler
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := newApp(ctx, c, db, m, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// newApp builds everything above the database handle.
func newApp(ctx context.Context, c *config.Config, db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) (*App, error) {

	if c.AccessTokenValidityDuration < 0 {
		return nil, fmt.Errorf("access token ttl must not be negative, got %s", c.AccessTokenValidityDuration)
	}
	if c.TokenFallbackDuration < 0 {
		return nil, fmt.Errorf("token fallback ttl must not be negative, got %s", c.TokenFallbackDuration)
	}

	secret := c.SecretKey
	if secret == "" {
		s, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret generation error: %w", err)
		}
		secret = s
		logger.Warn(ctx, "No secret key configured, using a random one; tokens will not survive a restart")
	}

	hasher, err := auth.NewPasswordHasher(c.BcryptCost, c.HashWorkers)
	if err != nil {
		return nil, fmt.Errorf("password hasher error: %w", err)
	}

	codec, err := auth.NewCodec([]byte(secret), c.Algorithm, c.TokenFallbackDuration)
	if err != nil {
		return nil, fmt.Errorf("token codec error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	us := services.NewUserService(db, m, hasher, codec, c,
		services.WithLogger(logger),
		services.WithMetrics(collector),
	)

	router := httpapi.NewRouter(&httpapi.RouterDeps{
		Users: us,
		Status: httpapi.StatusInfo{
			Title:       c.AppName,
			Version:     c.AppVersion,
			Description: c.AppDescription,
		},
		Logger:   logger,
		Metrics:  collector,
		Gatherer: registry,
	})

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: us,
		registry:    registry,
		router:      router,
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server stopped", "error", err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server stopped", "error", err.Error())
		cancelFunc()
	}
}

// Run serves gRPC and HTTP until ctx ends, a signal arrives or either
// server fails, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"grpc", app.config.EndpointAddrGRPC,
		"http", app.config.EndpointAddrHTTP,
	)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing db", "error", err.Error())
		}
	}
	app.logger.Info(ctx, "Stopped")
}
