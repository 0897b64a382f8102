package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comcol/comcol-backend/api/routes"
	"github.com/comcol/comcol-backend/internal/computers"
	"github.com/comcol/comcol-backend/internal/imageproc"
	"github.com/comcol/comcol-backend/internal/pictures"
	"github.com/comcol/comcol-backend/pkg/config"
	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/metrics"
	"github.com/comcol/comcol-backend/pkg/migrate"
	"github.com/comcol/comcol-backend/pkg/storage/fsblob"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogConsole(),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	blobStore, err := fsblob.New(cfg.Media.RootDir)
	if err != nil {
		logg.Error(context.Background(), "failed to open media root", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ingestMetrics := metrics.NewIngestMetrics(registry)

	resolver, err := pictures.NewURLResolver(cfg.Media.PublicPrefix, cfg.Media.CollectionDir)
	if err != nil {
		logg.Error(context.Background(), "failed to build url resolver", err)
		os.Exit(1)
	}

	policy := imageproc.DefaultPolicy(cfg.Media.JPEGQuality)
	policy.CropSquare = cfg.Media.CropSquare

	pictureService, err := pictures.NewService(
		pictures.NewRepository(dbClient.DB()),
		blobStore,
		dbClient,
		resolver,
		policy,
		logg,
		ingestMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create picture service", err)
		os.Exit(1)
	}

	computerService, err := computers.NewService(
		computers.NewRepository(dbClient.DB()),
		pictureService,
		resolver,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create computer service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			blobStore,
			computerService,
			pictureService,
			cfg.Gate,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
