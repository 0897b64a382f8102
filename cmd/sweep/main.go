package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/comcol/comcol-backend/internal/sweep"
	"github.com/comcol/comcol-backend/pkg/config"
	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/metrics"
	"github.com/comcol/comcol-backend/pkg/storage/fsblob"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sweep"})

	_ = godotenv.Load()

	dryRun := flag.Bool("dry-run", false, "report orphaned files without deleting them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sweep",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogConsole(),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	blobStore, err := fsblob.New(cfg.Media.RootDir)
	if err != nil {
		logg.Error(context.Background(), "failed to open media root", err)
		os.Exit(1)
	}

	sweeper, err := sweep.NewSweeper(
		blobStore,
		sweep.NewRepository(dbClient.DB()),
		cfg.Media.CollectionDir,
		*dryRun,
		logg,
		metrics.NewSweepMetrics(nil),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweeper", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"dry_run": *dryRun,
	})

	result, err := sweeper.Run(ctx)
	if err != nil {
		logg.Error(ctx, "sweep failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"scanned": result.Scanned,
		"removed": result.Removed,
		"failed":  result.Failed,
		"kept":    result.Kept,
	})
	logg.Info(ctx, "sweep complete")

	fmt.Printf("scanned=%d removed=%d failed=%d kept=%d\n", result.Scanned, result.Removed, result.Failed, result.Kept)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
