package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedpost/feedpost/app/api"
	"github.com/feedpost/feedpost/app/cfg"
	"github.com/feedpost/feedpost/app/compose"
	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/extract"
	"github.com/feedpost/feedpost/app/feed"
	"github.com/feedpost/feedpost/app/publish"
	"github.com/feedpost/feedpost/app/secrets"
	"github.com/feedpost/feedpost/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting FeedPost", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.FeedsDir)

	httpClient := &http.Client{}

	fetcher := feed.NewFetcher(httpClient, itemRepo, appCfg.UserAgent)

	extractor := extract.NewExtractor(
		extract.NewReadabilityStrategy(httpClient, 10*time.Second),
		extract.NewHeuristicStrategy(15*time.Second, true),
		extract.NewPlainStrategy(httpClient, "FeedPost/"+appCfg.Version, 10*time.Second),
	)

	summarizer := compose.NewSummarizer(appCfg.OpenAIKey, appCfg.OpenAIModel, appCfg.SummaryTokens)
	hashtagGen := compose.NewHashtagGenerator()
	composer := compose.NewComposer()

	secretsStore := secrets.NewStore(appCfg.SecretsDir)
	publisher := publish.NewPublisher(itemRepo, secretsStore, httpClient, appCfg.UserAgent)

	scheduler := tasks.NewScheduler(configCache, feedRepo, itemRepo, fetcher,
		extractor, summarizer, hashtagGen, composer, publisher)

	// One-shot modes run a single cycle synchronously and exit; used when an
	// external scheduler owns the cadence.
	if appCfg.Run != "" {
		ctx := context.Background()
		scheduler.SyncFeedConfigs(ctx)

		switch appCfg.Run {
		case "fetch":
			scheduler.RunFetchCycle(ctx)
		case "publish":
			scheduler.RunPublishCycle(ctx)
		}

		slog.Info("Cycle complete", "mode", appCfg.Run)
		return
	}

	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(feedRepo, itemRepo, configCache, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("FeedPost started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
