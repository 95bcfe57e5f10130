package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/pkg/logger"
)

// errorRawTextBlocks is how many matched blocks' raw text is attached to a
// JSON parse failure for manual reprocessing.
const errorRawTextBlocks = 5

// ParseResult is the per-advocate outcome of the LLM stage.
type ParseResult struct {
	AdvocateID    string              `json:"advocate_id"`
	Date          string              `json:"date"`
	TotalListings int                 `json:"total_listings"`
	Listings      []causelist.Listing `json:"listings"`
	ParseError    string              `json:"parse_error,omitempty"`
	ErrorRawText  string              `json:"error_raw_text,omitempty"`
}

// Parser runs the structured-listing extraction: one model call per
// advocate with matched blocks, bounded concurrency, isolated failures.
type Parser struct {
	client         ChatClient
	log            *logger.Logger
	maxConcurrent  int
	blockTextLimit int
}

func NewParser(client ChatClient, log *logger.Logger, maxConcurrent, blockTextLimit int) *Parser {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if blockTextLimit <= 0 {
		blockTextLimit = 5000
	}
	return &Parser{
		client:         client,
		log:            log,
		maxConcurrent:  maxConcurrent,
		blockTextLimit: blockTextLimit,
	}
}

// ParsePerAdvocate fans out one model call per advocate with matched
// blocks, capped at maxConcurrent in-flight calls. Advocates with zero
// matched blocks synthesize an immediate empty result without a network
// call. A failure for one advocate is recorded on that advocate's result
// and never affects the others; no error escapes this method.
func (p *Parser) ParsePerAdvocate(ctx context.Context, date string, advocates []causelist.Advocate, matched map[string][]causelist.CaseBlock) map[string]*ParseResult {
	results := make(map[string]*ParseResult, len(advocates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for _, adv := range advocates {
		blocks := matched[adv.ID]
		if len(blocks) == 0 {
			// No token cost for advocates the matcher found nothing for.
			// Earlier iterations may already have workers writing the map.
			mu.Lock()
			results[adv.ID] = &ParseResult{
				AdvocateID: adv.ID,
				Date:       date,
				Listings:   []causelist.Listing{},
			}
			mu.Unlock()
			continue
		}

		adv := adv
		g.Go(func() error {
			result := p.parseOne(gctx, date, adv, blocks)
			mu.Lock()
			results[adv.ID] = result
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes completion
	_ = g.Wait()

	return results
}

// parseOne builds the prompt for one advocate, calls the model and parses
// the reply. Every failure mode collapses to a ParseError on the result.
func (p *Parser) parseOne(ctx context.Context, date string, adv causelist.Advocate, blocks []causelist.CaseBlock) (result *ParseResult) {
	result = &ParseResult{
		AdvocateID: adv.ID,
		Date:       date,
		Listings:   []causelist.Listing{},
	}

	defer func() {
		if r := recover(); r != nil {
			result.TotalListings = 0
			result.Listings = []causelist.Listing{}
			result.ParseError = fmt.Sprintf("panic during parse: %v", r)
		}
	}()

	user := p.buildUserPrompt(date, adv, blocks)

	reply, err := p.client.Complete(ctx, systemPrompt, user)
	if err != nil {
		result.ParseError = err.Error()
		p.log.Warn("LLM call failed", "advocateID", adv.ID, "error", err)
		return result
	}

	raw, err := ExtractJSONObject(reply)
	if err != nil {
		result.ParseError = err.Error()
		result.ErrorRawText = rawTextSample(blocks)
		p.log.Warn("No JSON object in LLM reply", "advocateID", adv.ID, "error", err)
		return result
	}

	var envelope struct {
		TotalListings json.RawMessage `json:"total_listings"`
		Listings      json.RawMessage `json:"listings"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		result.ParseError = fmt.Sprintf("malformed JSON: %v", err)
		result.ErrorRawText = rawTextSample(blocks)
		p.log.Warn("Malformed JSON in LLM reply", "advocateID", adv.ID, "error", err)
		return result
	}

	// A missing or non-list listings key is treated as empty, not an error
	var listings []causelist.Listing
	if len(envelope.Listings) > 0 {
		if err := json.Unmarshal(envelope.Listings, &listings); err != nil {
			listings = nil
		}
	}
	for i := range listings {
		listings[i].NormalizeEnums()
	}
	if listings == nil {
		listings = []causelist.Listing{}
	}
	result.Listings = listings

	// total_listings defaults to the listings count when absent or invalid
	result.TotalListings = len(listings)
	if len(envelope.TotalListings) > 0 {
		var total int
		if err := json.Unmarshal(envelope.TotalListings, &total); err == nil && total >= 0 {
			result.TotalListings = total
		}
	}

	return result
}

// buildUserPrompt serializes the advocate's matched blocks compactly. Each
// block's raw text is truncated to blockTextLimit characters with an
// explicit marker so the loss is visible in the transcript.
func (p *Parser) buildUserPrompt(date string, adv causelist.Advocate, blocks []causelist.CaseBlock) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Advocate: %s\nListing date: %s\nMatched cause-list blocks: %d\n\n", adv.Name, date, len(blocks))

	truncated := 0
	for _, b := range blocks {
		fmt.Fprintf(&sb, "--- BLOCK serial=%s case=%s", b.SerialNumber, b.CaseNumberRaw)
		if b.PageNumber > 0 {
			fmt.Fprintf(&sb, " page=%d", b.PageNumber)
		}
		if b.CourtNumber != "" {
			fmt.Fprintf(&sb, " court=%s", b.CourtNumber)
		}
		if b.CourtCode != "" {
			fmt.Fprintf(&sb, " court_code=%s", b.CourtCode)
		}
		if b.SectionLabel != "" {
			fmt.Fprintf(&sb, " section=%q", b.SectionLabel)
		}
		if len(b.Judges) > 0 {
			fmt.Fprintf(&sb, " judges=%q", strings.Join(b.Judges, "; "))
		}
		sb.WriteString(" ---\n")

		// Character limit, not bytes; a byte slice could split a rune
		if runes := []rune(b.Text); len(runes) > p.blockTextLimit {
			sb.WriteString(string(runes[:p.blockTextLimit]))
			sb.WriteString("\n[TRUNCATED]\n")
			truncated++
		} else {
			sb.WriteString(b.Text)
			sb.WriteString("\n")
		}
	}

	if truncated > 0 {
		p.log.Debug("Truncated block text in prompt",
			"advocateID", adv.ID,
			"truncatedBlocks", truncated,
			"limit", p.blockTextLimit,
		)
	}

	sb.WriteString("\nReturn the JSON object now.")
	return sb.String()
}

// rawTextSample joins the first few blocks' raw text for the
// error_raw_text payload used in manual reprocessing.
func rawTextSample(blocks []causelist.CaseBlock) string {
	n := len(blocks)
	if n > errorRawTextBlocks {
		n = errorRawTextBlocks
	}
	parts := make([]string, 0, n)
	for _, b := range blocks[:n] {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n\n")
}
