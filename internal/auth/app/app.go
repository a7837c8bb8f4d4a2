// Package app wires configuration, stores, services, and the HTTP server
// into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/vitalstudio/auth-service/internal/auth/http"
	"github.com/vitalstudio/auth-service/internal/auth/notify"
	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/internal/auth/store"
	"github.com/vitalstudio/auth-service/internal/auth/store/drivers/memory"
	"github.com/vitalstudio/auth-service/internal/auth/store/drivers/postgres"
	redisdriver "github.com/vitalstudio/auth-service/internal/auth/store/drivers/redis"
	"github.com/vitalstudio/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/vitalstudio/auth-service/pkg/cryptox"
	"github.com/vitalstudio/auth-service/pkg/jwtx"
	"github.com/vitalstudio/auth-service/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	users   store.Users
	banned  store.BannedTokens
	codes   store.TwoFactorCodes
	pruners []store.Pruner
	pinger  httpapi.Pinger
	closers []io.Closer

	authService         *service.AuthService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	ctx := context.Background()
	if err := app.initUserStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initTokenStores(ctx); err != nil {
		app.closeAll()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeAll()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.closeAll()

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeAll() {
	for _, closer := range app.closers {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing resource", "error", err)
		}
	}
}

// initUserStore selects the credential store driver from configuration.
func (app *Application) initUserStore(ctx context.Context) error {
	switch app.cfg.UserStore {
	case "memory":
		app.users = memory.NewUserStore()
		app.logger.Warn("using in-memory user store; accounts are lost on restart")

	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.users = db.Users()
		app.pinger = db
		app.closers = append(app.closers, db)
		app.logger.Info("database migrations applied successfully")

	case "postgres":
		if app.cfg.PostgresDSN == "" {
			return errors.New("DATABASE_URL must be set for the postgres user store")
		}
		db, err := postgres.NewStore(ctx, app.cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.users = db.Users()
		app.pinger = db
		app.closers = append(app.closers, db)

	default:
		return fmt.Errorf("unknown user store driver %q", app.cfg.UserStore)
	}

	return nil
}

// initTokenStores selects the revocation and 2FA store drivers. With redis
// configured both live there and expire natively; otherwise the in-memory
// drivers are used and registered for housekeeping sweeps.
func (app *Application) initTokenStores(ctx context.Context) error {
	if app.cfg.RedisAddr == "" {
		bannedStore := memory.NewBannedTokenStore()
		codeStore := memory.NewTwoFactorStore(app.cfg.TwoFactorTTL)
		app.banned = bannedStore
		app.codes = codeStore
		app.pruners = []store.Pruner{bannedStore, codeStore}
		return nil
	}

	client, err := redisdriver.NewClient(ctx, app.cfg.RedisAddr, app.cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.banned = redisdriver.NewBannedTokenStore(client)
	app.codes = redisdriver.NewTwoFactorStore(client, app.cfg.TwoFactorTTL)
	app.closers = append(app.closers, client)
	app.logger.Info("using redis token stores", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	signer, err := jwtx.NewSigner([]byte(app.cfg.JWTSecret), app.cfg.SessionTTL)
	if err != nil {
		return err
	}

	app.sessionService = &service.SessionService{
		Signer: signer,
		Banned: app.banned,
	}

	var notifier notify.Notifier
	if app.cfg.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(app.cfg.ResendAPIKey, app.cfg.EmailSender)
		app.logger.Info("using resend email delivery", "sender", app.cfg.EmailSender)
	} else {
		notifier = notify.NewLogNotifier(app.logger)
		app.logger.Warn("no RESEND_API_KEY set; 2FA codes are logged instead of emailed")
	}

	app.authService = &service.AuthService{
		Users:          app.users,
		TwoFactorCodes: app.codes,
		Passwords:      cryptox.NewPool(cryptox.NewHasher(app.cfg.Pepper), 0),
		Sessions:       app.sessionService,
		Notifier:       notifier,
		Logger:         app.logger,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.pruners,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.pinger, app.logger)
	router.AuthService = app.authService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
