// Package server wires the record store, the lifecycle services and the
// network endpoints together and runs them until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/questkeeper/internal/dbx"
	"github.com/dmitrijs2005/questkeeper/internal/logging"
	"github.com/dmitrijs2005/questkeeper/internal/server/config"
	"github.com/dmitrijs2005/questkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/questkeeper/internal/server/ops"
	"github.com/dmitrijs2005/questkeeper/internal/server/portraits"
	"github.com/dmitrijs2005/questkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/questkeeper/internal/server/services"
	"github.com/dmitrijs2005/questkeeper/internal/server/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/questkeeper/internal/server/grpc"
)

const serviceName = "questkeeper"

type App struct {
	config   *config.Config
	logger   logging.Logger
	gateway  *dbx.Gateway
	registry *prometheus.Registry
	shutdown func(context.Context) error

	characterService *services.CharacterService
	adventureService *services.AdventureService
	episodeService   *services.EpisodeService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	shutdown, err := tracing.Setup(ctx, serviceName, c.TracingEnabled, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	gw, err := dbx.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewSQLRepositoryManager(dialect)
	if c.MigrateOnStart {
		if err := repos.RunMigrations(ctx, gw.DB()); err != nil {
			_ = gw.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		logger.Info(ctx, "migrations applied", "driver", string(dialect))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewTransitions(reg)

	presigner := portraits.NewS3Presigner(portraits.Settings{
		Region:   c.S3Region,
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Endpoint: c.S3BaseEndpoint,
		Bucket:   c.S3Bucket,
		TTL:      c.S3PresignTTL,
	})

	return &App{
		config:           c,
		logger:           logger,
		gateway:          gw,
		registry:         reg,
		shutdown:         shutdown,
		characterService: services.NewCharacterService(gw, repos, presigner, logger, rec),
		adventureService: services.NewAdventureService(gw, repos, logger, rec),
		episodeService:   services.NewEpisodeService(gw, repos, logger, rec),
	}, nil
}

// Run serves gRPC and ops HTTP until SIGINT/SIGTERM or until either server
// fails, then releases the store and flushes traces.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	grpcServer, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.characterService, app.adventureService, app.episodeService, app.config.SecretKey)
	if err != nil {
		return err
	}
	opsServer := ops.NewServer(app.config.EndpointAddrOps, ops.NewRouter(app.registry, app.gateway), app.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return opsServer.Run(ctx) })
	runErr := g.Wait()

	if err := app.shutdown(context.Background()); err != nil {
		app.logger.Warn(ctx, "tracer shutdown", "error", err)
	}
	if err := app.gateway.Close(); err != nil {
		app.logger.Warn(ctx, "store close", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
	return runErr
}
