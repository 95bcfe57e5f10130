package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lexops/causelist/internal/advocates"
	"github.com/lexops/causelist/internal/cache"
	"github.com/lexops/causelist/internal/config"
	"github.com/lexops/causelist/internal/database"
	"github.com/lexops/causelist/internal/fetch"
	"github.com/lexops/causelist/internal/job"
	"github.com/lexops/causelist/internal/llm"
	"github.com/lexops/causelist/internal/mediation"
	"github.com/lexops/causelist/internal/server"
	"github.com/lexops/causelist/pkg/logger"
)

func main() {
	migrate := flag.Bool("migrate", false, "Run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}

	if *migrate {
		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations", "error", err)
		}
		log.Info("Migrations completed successfully")
		return
	}

	appCache := cache.NewCache(cfg.CacheSize, cfg.CacheTTL)

	fetcher := fetch.NewHTTPFetcher(cfg.CauseListURLTemplate, cfg.ArchivePath, cfg.FetchTimeout, cfg.FetchRetries, log)

	chatClient := llm.NewClient(llm.ClientConfig{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	parser := llm.NewParser(chatClient, log, cfg.LLMMaxConcurrent, cfg.BlockTextLimit)

	portal := mediation.NewPortalClient(cfg.PortalBaseURL, cfg.PortalTimeout, log)
	mediationSvc := mediation.NewService(db, portal, log, cfg.MediationMaxAttempts)

	directory := advocates.NewDBDirectory(db, appCache)
	daily := job.NewDaily(db, fetcher, directory, parser, mediationSvc, appCache, log)

	srv := server.New(cfg, db, appCache, daily, mediationSvc, log)

	log.Info("Starting cause-list service",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"model", cfg.LLMModel,
	)

	if err := srv.Run(); err != nil {
		log.Fatal("Server error", "error", err)
	}
}
