package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/aussiebroadwan/vaultguard/internal/auth/http"
	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/vaultguard/pkg/cryptox"
	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	codec    *jwtx.Codec
	registry *prometheus.Registry

	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "vaultguard",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized.
// Migrations are applied before the server is built.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:      cfg,
		logger:   NewLogger(cfg),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)

	if err := app.initServices(); err != nil {
		_ = db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// OpenStore connects to the configured database without migrating it.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	case DriverSQLite, "":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseURL)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// NewHasher loads (or creates) the pepper and returns the password hasher.
func NewHasher(cfg Config) (*cryptox.Hasher, error) {
	pepper, err := cryptox.LoadOrGeneratePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	return cryptox.NewHasher(pepper, cryptox.DefaultParams), nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	hasher, err := NewHasher(app.cfg)
	if err != nil {
		return err
	}

	app.codec, err = jwtx.NewCodec([]byte(app.cfg.JWTSecret), jwtx.WithIssuer(app.cfg.Issuer))
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	metrics := service.NewMetrics(app.registry)

	app.authService = service.NewAuthService(
		app.db,
		app.codec,
		hasher,
		app.cfg.ServiceConfig(),
		service.NewResetDelivery(app.cfg.ResetDelivery, app.cfg.IsDev()),
		metrics,
	)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = metrics

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.AuthService = app.authService
	router.Cookie.Name = app.cfg.CookieName
	router.Cookie.Secure = app.cfg.CookieSecure
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("vaultguard starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down vaultguard...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("vaultguard stopped")
	return nil
}
