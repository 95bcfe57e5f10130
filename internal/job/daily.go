package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexops/causelist/internal/advocates"
	"github.com/lexops/causelist/internal/cache"
	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/internal/database"
	"github.com/lexops/causelist/internal/fetch"
	"github.com/lexops/causelist/internal/llm"
	"github.com/lexops/causelist/internal/mediation"
	"github.com/lexops/causelist/internal/pdftext"
	"github.com/lexops/causelist/pkg/logger"
)

// Daily is the cause-list pipeline orchestrator for one calendar date:
// fetch -> page text -> block segmentation -> advocate matching -> LLM
// fan-out -> reconciliation -> storage, plus mediation-list discovery.
type Daily struct {
	db        *gorm.DB
	fetcher   fetch.Fetcher
	directory advocates.Directory
	parser    *llm.Parser
	mediation *mediation.Service
	cache     cache.Cache
	logger    *logger.Logger

	// extractText is swappable so the pipeline can run on pre-extracted text
	extractText func(data []byte) (*pdftext.Document, error)
}

func NewDaily(db *gorm.DB, fetcher fetch.Fetcher, directory advocates.Directory, parser *llm.Parser, med *mediation.Service, cache cache.Cache, logger *logger.Logger) *Daily {
	return &Daily{
		db:          db,
		fetcher:     fetcher,
		directory:   directory,
		parser:      parser,
		mediation:   med,
		cache:       cache,
		logger:      logger,
		extractText: pdftext.Extract,
	}
}

// Summary is the run report printed by the CLI and returned by the trigger
// endpoint.
type Summary struct {
	Date                 string `json:"date"`
	PageCount            int    `json:"page_count"`
	Blocks               int    `json:"blocks"`
	Advocates            int    `json:"advocates"`
	AdvocatesWithMatches int    `json:"advocates_with_matches"`
	ParseErrors          int    `json:"parse_errors"`
	TotalListings        int    `json:"total_listings"`
	SourceURL            string `json:"source_url"`
	ArchivePath          string `json:"archive_path,omitempty"`
	MediationBlocks      int    `json:"mediation_blocks"`
	MediationNew         int    `json:"mediation_new"`
}

// resultPayload is what lands in listing_results.result_json.
type resultPayload struct {
	Listings     []causelist.Listing `json:"listings"`
	ParseError   string              `json:"parse_error,omitempty"`
	ErrorRawText string              `json:"error_raw_text,omitempty"`
}

// Run executes the pipeline for one date (YYYY-MM-DD). A failure before
// the per-advocate upserts (fetch, extraction, directory load) propagates
// with nothing written; the upsert loop itself is per-advocate independent
// and safe to re-run, since (advocate_id, date) is last-write-wins.
func (d *Daily) Run(ctx context.Context, date string) (*Summary, error) {
	started := time.Now()

	summary, err := d.run(ctx, date)
	d.recordJobRun(date, started, summary, err)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.cache.Set(cache.SummaryKey(date), summary)
	}

	return summary, nil
}

func (d *Daily) run(ctx context.Context, date string) (*Summary, error) {
	fetched, err := d.fetcher.Fetch(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("cause-list fetch failed for %s: %w", date, err)
	}

	doc, err := d.extractText(fetched.Data)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed for %s: %w", date, err)
	}

	blocks := causelist.SplitBlocks(doc.Text)

	advs, err := d.directory.VerifiedActive(ctx)
	if err != nil {
		return nil, err
	}

	matched := causelist.MatchBlocksByAdvocate(blocks, advs)

	withMatches := 0
	for _, m := range matched {
		if len(m) > 0 {
			withMatches++
		}
	}

	d.logger.Info("Cause-list segmented and matched",
		"date", date,
		"pages", doc.PageCount,
		"blocks", len(blocks),
		"advocates", len(advs),
		"withMatches", withMatches,
	)

	results := d.parser.ParsePerAdvocate(ctx, date, advs, matched)

	summary := &Summary{
		Date:                 date,
		PageCount:            doc.PageCount,
		Blocks:               len(blocks),
		Advocates:            len(advs),
		AdvocatesWithMatches: withMatches,
		SourceURL:            fetched.SourceURL,
		ArchivePath:          fetched.ArchivePath,
	}

	for _, adv := range advs {
		result := results[adv.ID]
		if result == nil {
			continue
		}

		allowed := causelist.AllowedCaseNumbers(matched[adv.ID])
		if len(allowed) == 0 && len(result.Listings) > 0 {
			// The model only ever sees matched blocks, so listings without
			// any deterministic case number should be impossible
			d.logger.Warn("Listings without deterministic ground truth passed through",
				"advocateID", adv.ID,
				"listings", len(result.Listings),
			)
		}

		result.Listings = causelist.ReconcileListings(result.Listings, allowed)
		// The model's own count is never trusted
		result.TotalListings = len(result.Listings)

		if result.ParseError != "" {
			summary.ParseErrors++
		}
		summary.TotalListings += result.TotalListings

		if err := d.upsertResult(ctx, result); err != nil {
			return summary, err
		}
	}

	mediationBlocks := mediation.ExtractMediationBlocks(blocks)
	summary.MediationBlocks = len(mediationBlocks)
	if len(mediationBlocks) > 0 {
		created, err := d.mediation.StoreMediationCases(ctx, date, mediationBlocks)
		if err != nil {
			return summary, err
		}
		summary.MediationNew = created
	}

	d.logger.Info("Daily cause-list job finished",
		"date", date,
		"totalListings", summary.TotalListings,
		"parseErrors", summary.ParseErrors,
		"mediationNew", summary.MediationNew,
	)

	return summary, nil
}

// upsertResult writes one advocate's result keyed (advocate_id, date),
// last-write-wins.
func (d *Daily) upsertResult(ctx context.Context, result *llm.ParseResult) error {
	payload, err := json.Marshal(resultPayload{
		Listings:     result.Listings,
		ParseError:   result.ParseError,
		ErrorRawText: result.ErrorRawText,
	})
	if err != nil {
		return fmt.Errorf("failed to encode result for %s: %w", result.AdvocateID, err)
	}

	row := database.ListingResult{
		AdvocateID:    result.AdvocateID,
		Date:          result.Date,
		TotalListings: result.TotalListings,
		ResultJSON:    string(payload),
	}

	if err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "advocate_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_listings", "result_json", "updated_at"}),
		}).
		Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert result for %s: %w", result.AdvocateID, err)
	}

	return nil
}

func (d *Daily) recordJobRun(date string, started time.Time, summary *Summary, runErr error) {
	run := database.JobRun{
		Date:       date,
		Success:    runErr == nil,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	if summary != nil {
		if data, err := json.Marshal(summary); err == nil {
			run.SummaryJSON = string(data)
		}
	}

	if err := d.db.Create(&run).Error; err != nil {
		d.logger.Error("Failed to record job run", "date", date, "error", err)
	}
}
