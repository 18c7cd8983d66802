// Package server wires the minibi server together: it opens the store,
// picks the token deny list, builds the services and runs the HTTP server
// until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/config"
	"github.com/dmitrijs2005/minibi/internal/server/credentials"
	"github.com/dmitrijs2005/minibi/internal/server/httpapi"
	"github.com/dmitrijs2005/minibi/internal/server/metrics"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibi/internal/server/revocation"
	"github.com/dmitrijs2005/minibi/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	zap    *zap.Logger
	db     *sql.DB
	redis  *redis.Client
	server *httpapi.HTTPServer
}

// Seams for tests.
var (
	openStore    = repomanager.Open
	connectRedis = revocation.Connect
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	zl, err := logging.NewZap(c.LogLevel, c.LogProduction)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, c, zl)
}

func newApp(ctx context.Context, c *config.Config, zl *zap.Logger) (*App, error) {
	logger := logging.NewZapLogger(zl)

	verifier, err := credentials.New(c.CredentialScheme)
	if err != nil {
		return nil, err
	}

	db, m, err := openStore(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, zap: zl, db: db}

	var revoked revocation.Store
	if c.RedisAddr != "" {
		client, err := connectRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		revoked = revocation.NewRedisStore(client)
	} else {
		logger.Warn(ctx, "no redis configured, revoked tokens are kept in memory")
		revoked = revocation.NewMemoryStore()
	}

	gateway := services.NewAccessGateway(db, m)
	svc := httpapi.Services{
		Identity: services.NewIdentityService(db, m, verifier, revoked, logger, c),
		Notes:    services.NewNoteService(db, m),
		Files:    services.NewFileService(db, m),
		Sharing:  services.NewSharingService(db, m),
		Gateway:  gateway,
		Export:   services.NewExportService(gateway, c),
	}

	mx := metrics.New()
	mx.RecordDBStats(db)

	app.server = httpapi.NewHTTPServer(c.HTTPAddr, logger, svc, mx, c.SecretKey, c.MaxUploadBytes)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a signal arrives, then releases the
// store and the Redis connection.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.zap.Sync()
}
