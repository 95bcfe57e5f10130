package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lexops/causelist/internal/advocates"
	"github.com/lexops/causelist/internal/cache"
	"github.com/lexops/causelist/internal/config"
	"github.com/lexops/causelist/internal/database"
	"github.com/lexops/causelist/internal/fetch"
	"github.com/lexops/causelist/internal/job"
	"github.com/lexops/causelist/internal/llm"
	"github.com/lexops/causelist/internal/mediation"
	"github.com/lexops/causelist/pkg/logger"
)

// One-shot runner for the daily pipeline, meant for cron and manual reruns.
// The run summary is printed to stdout as JSON; logs go to stderr.
func main() {
	date := flag.String("date", time.Now().Format("2006-01-02"), "Listing date (YYYY-MM-DD)")
	migrate := flag.Bool("migrate", false, "Run database migrations and exit")
	enrich := flag.Bool("enrich", false, "Also run one mediation enrichment batch after the job")
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

	if _, err := time.Parse("2006-01-02", *date); err != nil {
		log.Fatal("Invalid date, expected YYYY-MM-DD", "date", *date)
	}

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

	ctx := context.Background()

	summary, err := daily.Run(ctx, *date)
	if err != nil {
		log.Fatal("Daily job failed", "date", *date, "error", err)
	}

	if *enrich {
		enrichSummary, err := mediationSvc.EnrichPending(ctx, cfg.MediationBatchSize)
		if err != nil {
			log.Error("Mediation enrichment failed", "error", err)
		} else {
			log.Info("Mediation enrichment finished",
				"processed", enrichSummary.Processed,
				"fetched", enrichSummary.Fetched,
				"failed", enrichSummary.Failed,
				"rateLimited", enrichSummary.RateLimited,
			)
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode summary", "error", err)
	}
	fmt.Println(string(out))
}
