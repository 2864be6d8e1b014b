package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/config"
	"github.com/mjoubert/kraken-sync/internal/report"
	"github.com/mjoubert/kraken-sync/internal/runner"
	"github.com/mjoubert/kraken-sync/internal/store"
	"github.com/mjoubert/kraken-sync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/reconciler.local.yaml", "path to config file")
	category := flag.String("category", "", "run a single category once and exit")
	input := flag.String("input", "", "ingest a captured response file or directory instead of fetching")
	once := flag.Bool("once", false, "run every enabled category once and exit")
	dryRun := flag.Bool("dry-run", false, "reconcile against an in-memory store, write nothing durable")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting reconciler",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the store
	var st store.Store
	if *dryRun {
		logger.Info("dry run, using in-memory store")
		st = store.NewMemoryStore()
	} else {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pg, err := store.NewPostgresStore(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		st = pg
	}
	defer st.Close()

	// Create API client
	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.Key,
		cfg.API.Secret,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(rate.Limit(cfg.API.RateLimit), 1),
	)

	rec := report.NewRecorder()
	run := runner.New(client, st, rec, logger)

	logger.Info("run started", "run_id", rec.RunID())

	exitCode := 0
	switch {
	case *input != "":
		if err := ingest(ctx, run, *input); err != nil {
			logger.Error("ingestion failed", "error", err)
			exitCode = 1
		}

	case *category != "":
		if err := run.RunCategory(ctx, *category); err != nil {
			logger.Error("category run failed", "category", *category, "error", err)
			exitCode = 1
		}

	case *once:
		runner.NewScheduler(run, cfg.Categories, logger).RunAll(ctx)

	default:
		sched := runner.NewScheduler(run, cfg.Categories, logger)
		if err := sched.Start(ctx); err != nil {
			logger.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}

		logger.Info("reconciler running", "instance_id", cfg.Instance.ID)
		<-ctx.Done()

		logger.Info("shutting down...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := sched.Stop(stopCtx); err != nil {
			logger.Error("scheduler shutdown failed", "error", err)
		}
	}

	rec.Close(logger)
	fmt.Println(rec.Summarize(report.ConsoleFormatter{}))

	logger.Info("reconciler stopped")
	if exitCode != 0 {
		st.Close()
		os.Exit(exitCode)
	}
}

// ingest replays a captured response file, or every file in a directory.
func ingest(ctx context.Context, run *runner.Runner, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return run.IngestDir(ctx, path)
	}

	category, ok := runner.CategoryForPath(path)
	if !ok {
		return fmt.Errorf("cannot infer category from file name %q", path)
	}
	return run.IngestFile(ctx, category, path)
}
