package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"region-sync/core/archive"
	"region-sync/core/loader"
	"region-sync/core/logger"
	"region-sync/core/middleware/auth"
	"region-sync/core/middleware/rayid"
	"region-sync/core/reconcile"
	"region-sync/core/region"
	"region-sync/core/scheduler"
	"region-sync/core/stats"
	"region-sync/core/storage"
	"region-sync/feature/replication"
	"region-sync/feature/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the replication server",
	Long: `Connects to every region, starts the scheduled reconciliation and serves
the sales and sync HTTP APIs.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// 1. Configuration and logger
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	// 2. Regions. An unreachable region is kept and reconnects once its database answers.
	replicas := region.Open(cfg.Regions, logg)
	defer func() {
		if err := region.Close(replicas); err != nil {
			logg.Warn("Failed to close region connections", zap.Error(err))
		}
	}()

	// 3. Stats, sales feature and engine
	collector := stats.NewCollector(region.Labels)
	salesFeature := sales.NewFeature(replicas, collector, cfg.Sync.CacheTTL(), logg)

	opts := append(cfg.Sync.Options(), reconcile.WithObserver(func(reconcile.RunOutcome) {
		salesFeature.Service().InvalidateCache()
	}))

	var (
		reports  replication.Reports
		archiver *archive.Archiver
	)
	if cfg.Archive.Enabled {
		client, err := storage.NewClient(cfg.Archive.Storage)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		err = storage.EnsureBucket(ctx, client, cfg.Archive.Storage.Bucket, cfg.Archive.Storage.Region)
		cancel()
		if err != nil {
			logg.Warn("Run report bucket unavailable; reports will be retried on every run", zap.Error(err))
		}

		archiver = archive.New(client, cfg.Archive, logg)
		archiver.Start()
		opts = append(opts, reconcile.WithObserver(archiver.Observer()))
		reports = archiver
	}

	engine := reconcile.New(replicas, collector, logg, opts...)

	// 4. Scheduled runs
	var sched *scheduler.Scheduler
	if cfg.Sync.Enabled {
		sched, err = scheduler.New(cfg.Sync.Schedule, func(ctx context.Context) {
			engine.RunOnce(ctx)
		}, logg)
		if err != nil {
			return err
		}
		sched.Start()
	} else {
		logg.Info("Scheduled reconciliation disabled")
	}

	// 5. HTTP
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID must be first to trace everything
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Metrics stay public so scrapers do not need the API key
	var skip []string
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			stats.NewPrometheusCollector(collector),
		)
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
		skip = append(skip, cfg.Metrics.Path)
	}

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: skip}))
	if !cfg.Server.AuthEnabled() {
		logg.Warn("API key not configured; the API is unprotected")
	}

	mgr := loader.NewManager(logg)
	mgr.Register(salesFeature)
	mgr.Register(replication.NewFeature(engine, collector, reports, logg))
	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := app.Listen(cfg.Server.Address()); err != nil {
			logg.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// 6. Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logg.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			logg.Warn("Scheduled run did not finish before shutdown", zap.Error(err))
		}
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	if archiver != nil {
		if err := archiver.Stop(ctx); err != nil {
			logg.Warn("Pending run reports were not archived before shutdown", zap.Error(err))
		}
	}
	return nil
}
