// Package server wires the stores, services and the HTTP and gRPC front ends
// together and runs them until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/securelogin/internal/logging"
	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securelogin/internal/server/security"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/dmitrijs2005/securelogin/internal/server/sessions"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/securelogin/internal/server/grpc"
	hs "github.com/dmitrijs2005/securelogin/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	redis       *redis.Client

	accountService *services.AccountService
	attemptService *services.AttemptService
	authService    *services.AuthService
	exporter       *services.ReportExporter
	trustedProxies []netip.Prefix
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	trusted, err := c.TrustedProxyPrefixes()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	rm, err := repomanager.Open(ctx, repomanager.Options{
		Driver:        c.StoreDriver,
		DatabaseDSN:   c.DatabaseDSN,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	})
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{config: c, logger: logger, repomanager: rm, trustedProxies: trusted}

	var revocations sessions.RevocationStore
	if c.RedisURL != "" {
		client, err := sessions.Connect(ctx, c.RedisURL)
		if err != nil {
			_ = rm.Close(ctx)
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		revocations = sessions.NewRedisStore(client)
	} else {
		logger.Warn(ctx, "no redis configured, logouts are kept in memory")
		revocations = sessions.NewMemoryStore()
	}

	hasher := security.NewBcryptHasher(c.BcryptCost)
	app.accountService = services.NewAccountService(rm, hasher, logger, c)
	app.attemptService = services.NewAttemptService(rm, logger)
	app.authService = services.NewAuthService(app.accountService, app.attemptService, hasher, revocations, logger, c)
	if c.S3Bucket != "" {
		app.exporter = services.NewReportExporter(app.attemptService, logger, c)
	}

	if _, err := app.accountService.EnsureDefaultAdmin(ctx); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("default admin error: %w", err)
	}

	return app, nil
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
	var exporter hs.ReportExporter
	if app.exporter != nil {
		exporter = app.exporter
	}
	h := hs.NewHandler(app.accountService, app.attemptService, app.authService, exporter, app.trustedProxies, app.logger)
	s := hs.NewServer(app.config.EndpointAddrHTTP, h, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accountService, app.attemptService, app.authService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// close releases the stores. Errors are logged; there is nothing left to
// retry at shutdown.
func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close failed", "err", err)
		}
	}
	if err := app.repomanager.Close(context.WithoutCancel(ctx)); err != nil {
		app.logger.Error(ctx, "store close failed", "err", err)
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or one
// of the servers fails, then closes the stores.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}
