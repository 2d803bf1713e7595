package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"mykitchen/internal/auth"
	"mykitchen/internal/config"
	"mykitchen/internal/db"
	"mykitchen/internal/db/mock"
	"mykitchen/internal/delivery"
	"mykitchen/internal/handlers"
	applog "mykitchen/internal/log"
	"mykitchen/internal/media"
	"mykitchen/internal/recipes"
	"mykitchen/internal/server"
	"mykitchen/internal/shopping"
	"mykitchen/internal/social"
)

const revocationCleanup = 5 * time.Minute

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	setLogFormatFunc    = applog.SetFormat
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	closeDatabase       = db.Close
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "error", err, "level", cfg.Logging.Level)
		return 1
	}
	if err := setLogFormatFunc(cfg.Logging.Format); err != nil {
		applog.Error(ctx, "invalid log format", "error", err, "format", cfg.Logging.Format)
		return 1
	}

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err, "mock", cfg.Database.UseMock)
		return 1
	}
	defer func() {
		if err := closeDatabase(database); err != nil {
			applog.Warn(ctx, "failed to close database", "error", err)
		}
	}()

	api, cleanup, err := buildAPI(cfg, database)
	if err != nil {
		applog.Error(ctx, "failed to build services", "error", err)
		return 1
	}
	defer cleanup()

	srv, err := newServerFunc(server.Config{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		API:               api,
	})
	if err != nil {
		applog.Error(ctx, "failed to create server", "error", err)
		return 1
	}

	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	started := make(chan struct{})
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		close(started)
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-started
		select {
		case sig := <-sigCh:
			applog.Info(ctx, "shutdown signal received", "signal", sig.String())
		case <-groupCtx.Done():
			// Start failed or the parent context ended; only the latter needs a Stop.
			if ctx.Err() == nil {
				return nil
			}
		}
		applog.Info(ctx, "shutting down http server")
		return srv.Stop()
	})

	if err := group.Wait(); err != nil {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}

	applog.Info(ctx, "server stopped")
	return 0
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.UseMock {
		applog.Info(ctx, "using seeded in-memory database")
		return newMockDatabaseFunc(ctx)
	}
	applog.Info(ctx, "connecting to database", "driver", cfg.Driver)
	return configureDatabase(cfg)
}

// buildAPI wires the services behind the HTTP handlers. The returned cleanup
// drains pending email deliveries and stops the revocation sweeper.
func buildAPI(cfg config.Config, database *gorm.DB) (*handlers.API, func(), error) {
	images, err := media.NewStore(cfg.Media)
	if err != nil {
		return nil, nil, err
	}
	mailer, err := delivery.NewMailer(cfg.Mail)
	if err != nil {
		return nil, nil, err
	}

	revoked := auth.NewMemoryRevocationList(revocationCleanup)
	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.TokenTTL,
	}
	recipeRepo := recipes.NewRepository(database)
	dispatcher := delivery.NewDispatcher(mailer)

	api := &handlers.API{
		Auth:           auth.NewService(database, tokens, revoked),
		Recipes:        recipes.NewService(recipeRepo, images, cfg.Media.MaxWidth),
		Social:         social.NewService(database, recipeRepo),
		Shopping:       shopping.NewService(shopping.NewGormStore(database), recipeRepo),
		Delivery:       dispatcher,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	}

	cleanup := func() {
		dispatcher.Close()
		revoked.Close()
	}
	return api, cleanup, nil
}
