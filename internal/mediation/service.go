package mediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/internal/database"
	"github.com/lexops/causelist/pkg/logger"
)

// The Mediation List section carries no inline advocate names, so the name
// matcher cannot process it. Its cases are stored raw and enriched later
// through the case-status portal; advocate resolution happens at query
// time against the enriched advocate strings.

// ExtractMediationBlocks isolates blocks listed under a mediation section.
func ExtractMediationBlocks(blocks []causelist.CaseBlock) []causelist.CaseBlock {
	var out []causelist.CaseBlock
	for _, b := range blocks {
		if strings.Contains(strings.ToUpper(b.SectionLabel), "MEDIATION") {
			out = append(out, b)
		}
	}
	return out
}

// Service owns the mediation-case store and its enrichment.
type Service struct {
	db          *gorm.DB
	portal      CaseStatusClient
	logger      *logger.Logger
	maxAttempts int
}

func NewService(db *gorm.DB, portal CaseStatusClient, logger *logger.Logger, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Service{
		db:          db,
		portal:      portal,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// StoreMediationCases persists newly discovered mediation blocks as pending
// rows keyed by (listing_date, case_number_raw). Existing pairs are left
// untouched, so re-running a day's job is idempotent. Returns how many rows
// were newly created.
func (s *Service) StoreMediationCases(ctx context.Context, listingDate string, blocks []causelist.CaseBlock) (int, error) {
	created := 0
	for _, b := range blocks {
		row := database.MediationCase{
			ListingDate:   listingDate,
			CaseNumberRaw: b.CaseNumberRaw,
			SerialNumber:  b.SerialNumber,
			CourtNumber:   b.CourtNumber,
			RawText:       b.Text,
			FetchStatus:   database.FetchStatusPending,
		}

		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "listing_date"}, {Name: "case_number_raw"}},
				DoNothing: true,
			}).
			Create(&row)
		if result.Error != nil {
			return created, fmt.Errorf("failed to store mediation case %s: %w", b.CaseNumberRaw, result.Error)
		}
		created += int(result.RowsAffected)
	}

	return created, nil
}

// EnrichSummary reports one enrichment batch.
type EnrichSummary struct {
	Processed   int  `json:"processed"`
	Fetched     int  `json:"fetched"`
	Failed      int  `json:"failed"`
	RateLimited bool `json:"rate_limited"`
}

// EnrichPending processes up to maxCases rows still awaiting enrichment
// (pending or failed, under the attempt cap), sequentially. Each case's
// error is recorded on its own row; a rate-limit signal from the portal
// aborts the remaining batch, leaving the untouched rows pending for the
// next invocation.
func (s *Service) EnrichPending(ctx context.Context, maxCases int) (*EnrichSummary, error) {
	// Rows stranded in fetching by an interrupted run go back to pending so
	// they become eligible again
	if err := s.db.WithContext(ctx).
		Model(&database.MediationCase{}).
		Where("fetch_status = ?", database.FetchStatusFetching).
		Update("fetch_status", database.FetchStatusPending).Error; err != nil {
		return nil, fmt.Errorf("failed to reset stale mediation cases: %w", err)
	}

	var rows []database.MediationCase
	if err := s.db.WithContext(ctx).
		Where("fetch_status IN ? AND fetch_attempts < ?",
			[]string{database.FetchStatusPending, database.FetchStatusFailed}, s.maxAttempts).
		Order("id").
		Limit(maxCases).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending mediation cases: %w", err)
	}

	summary := &EnrichSummary{}
	for i := range rows {
		row := &rows[i]

		row.FetchStatus = database.FetchStatusFetching
		if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
			return summary, fmt.Errorf("failed to mark mediation case fetching: %w", err)
		}

		detail, err := s.portal.CaseStatus(ctx, row.CaseNumberRaw)
		if errors.Is(err, ErrRateLimited) {
			// Put the row back; it never consumed an attempt
			row.FetchStatus = database.FetchStatusPending
			if saveErr := s.db.WithContext(ctx).Save(row).Error; saveErr != nil {
				s.logger.Error("Failed to restore rate-limited case to pending",
					"caseNumber", row.CaseNumberRaw,
					"error", saveErr,
				)
			}
			summary.RateLimited = true
			s.logger.Warn("Mediation enrichment rate limited, aborting batch",
				"caseNumber", row.CaseNumberRaw,
				"remaining", len(rows)-i,
			)
			break
		}

		summary.Processed++
		if err != nil {
			row.FetchAttempts++
			row.FetchStatus = database.FetchStatusFailed
			row.LastFetchError = err.Error()
			summary.Failed++
			s.logger.Warn("Mediation case fetch failed",
				"caseNumber", row.CaseNumberRaw,
				"attempts", row.FetchAttempts,
				"error", err,
			)
		} else {
			row.FetchStatus = database.FetchStatusFetched
			row.LastFetchError = ""
			row.PetitionerAdvocates = marshalNames(detail.PetitionerAdvocates)
			row.RespondentAdvocates = marshalNames(detail.RespondentAdvocates)
			row.CaseDetailRaw = string(detail.Raw)
			summary.Fetched++
		}

		if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
			return summary, fmt.Errorf("failed to save mediation case: %w", err)
		}
	}

	return summary, nil
}

// MediationListing is a query-time resolved mediation entry for an advocate.
type MediationListing struct {
	CaseNumberRaw string                 `json:"case_number_raw"`
	SerialNumber  string                 `json:"serial_number"`
	CourtNumber   string                 `json:"court_number,omitempty"`
	ListingDate   string                 `json:"listing_date"`
	AdvocateRole  causelist.AdvocateRole `json:"advocate_role"`
	MatchedName   string                 `json:"matched_name"`
}

// ListingsForAdvocate resolves which fetched mediation cases on a date
// involve the advocate. Resolution uses the same honorific-stripped
// normalization as block matching but with substring containment, since
// portal advocate strings often carry office or seniority suffixes.
// Petitioner side is checked before respondent; first match wins.
func (s *Service) ListingsForAdvocate(ctx context.Context, advocate causelist.Advocate, date string) ([]MediationListing, error) {
	normalized := causelist.NormalizeName(advocate.Name)
	if normalized == "" {
		return []MediationListing{}, nil
	}

	var rows []database.MediationCase
	if err := s.db.WithContext(ctx).
		Where("listing_date = ? AND fetch_status = ?", date, database.FetchStatusFetched).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load mediation cases: %w", err)
	}

	listings := make([]MediationListing, 0)
	for _, row := range rows {
		role, matchedName := matchAdvocate(normalized, row)
		if role == "" {
			continue
		}
		listings = append(listings, MediationListing{
			CaseNumberRaw: row.CaseNumberRaw,
			SerialNumber:  row.SerialNumber,
			CourtNumber:   row.CourtNumber,
			ListingDate:   row.ListingDate,
			AdvocateRole:  role,
			MatchedName:   matchedName,
		})
	}

	return listings, nil
}

func matchAdvocate(normalized string, row database.MediationCase) (causelist.AdvocateRole, string) {
	for _, name := range unmarshalNames(row.PetitionerAdvocates) {
		if strings.Contains(causelist.NormalizeName(name), normalized) {
			return causelist.RolePetitionerAdvocate, name
		}
	}
	for _, name := range unmarshalNames(row.RespondentAdvocates) {
		if strings.Contains(causelist.NormalizeName(name), normalized) {
			return causelist.RoleRespondentAdvocate, name
		}
	}
	return "", ""
}

func marshalNames(names []string) string {
	if len(names) == 0 {
		return ""
	}
	data, err := json.Marshal(names)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalNames(data string) []string {
	if data == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil
	}
	return names
}
