package mediation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/internal/database"
	"github.com/lexops/causelist/pkg/logger"
)

type stubPortal struct {
	calls int
	fn    func(caseNumber string) (*CaseDetail, error)
}

func (s *stubPortal) CaseStatus(ctx context.Context, caseNumber string) (*CaseDetail, error) {
	s.calls++
	return s.fn(caseNumber)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error", "text")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func mediationBlocks(n int) []causelist.CaseBlock {
	blocks := make([]causelist.CaseBlock, 0, n)
	for i := 1; i <= n; i++ {
		blocks = append(blocks, causelist.CaseBlock{
			SerialNumber:  fmt.Sprintf("%d", i),
			CaseNumberRaw: fmt.Sprintf("OP(MED) %d/2024", i),
			CourtNumber:   "401",
			SectionLabel:  "MEDIATION LIST",
			Text:          fmt.Sprintf("%d OP(MED) %d/2024\nparty v party\n", i, i),
		})
	}
	return blocks
}

func TestExtractMediationBlocks(t *testing.T) {
	blocks := []causelist.CaseBlock{
		{CaseNumberRaw: "WP(C) 1/2024", SectionLabel: "FOR HEARING"},
		{CaseNumberRaw: "OP(MED) 2/2024", SectionLabel: "MEDIATION LIST"},
		{CaseNumberRaw: "WA 3/2024", SectionLabel: ""},
	}

	got := ExtractMediationBlocks(blocks)
	if len(got) != 1 || got[0].CaseNumberRaw != "OP(MED) 2/2024" {
		t.Errorf("expected only the mediation block, got %v", got)
	}
}

func TestStoreMediationCasesIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &stubPortal{}, testLogger(t), 3)
	ctx := context.Background()

	created, err := svc.StoreMediationCases(ctx, "2026-08-21", mediationBlocks(2))
	if err != nil {
		t.Fatalf("first store failed: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 created, got %d", created)
	}

	// Re-running the same day discovers the same blocks again
	created, err = svc.StoreMediationCases(ctx, "2026-08-21", mediationBlocks(2))
	if err != nil {
		t.Fatalf("second store failed: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 created on re-run, got %d", created)
	}

	var count int64
	db.Model(&database.MediationCase{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}

	// The same case number on another date is a distinct row
	created, err = svc.StoreMediationCases(ctx, "2026-08-22", mediationBlocks(1))
	if err != nil {
		t.Fatalf("third store failed: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 created for new date, got %d", created)
	}
}

func TestEnrichPendingSuccess(t *testing.T) {
	db := testDB(t)
	portal := &stubPortal{fn: func(caseNumber string) (*CaseDetail, error) {
		return &CaseDetail{
			PetitionerAdvocates: []string{"Adv. Sanjay Johnson (Sr.)"},
			RespondentAdvocates: []string{"Smt. Meera Nair"},
			Raw:                 []byte(`{"case_number":"` + caseNumber + `"}`),
		}, nil
	}}
	svc := NewService(db, portal, testLogger(t), 3)
	ctx := context.Background()

	if _, err := svc.StoreMediationCases(ctx, "2026-08-21", mediationBlocks(2)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	summary, err := svc.EnrichPending(ctx, 10)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if summary.Processed != 2 || summary.Fetched != 2 || summary.Failed != 0 || summary.RateLimited {
		t.Errorf("unexpected summary: %+v", summary)
	}

	var rows []database.MediationCase
	db.Order("id").Find(&rows)
	for _, row := range rows {
		if row.FetchStatus != database.FetchStatusFetched {
			t.Errorf("case %s: status %q, want fetched", row.CaseNumberRaw, row.FetchStatus)
		}
		if row.PetitionerAdvocates == "" || row.CaseDetailRaw == "" {
			t.Errorf("case %s: enrichment payload missing", row.CaseNumberRaw)
		}
	}

	// Honorific and suffix noise must not break advocate resolution
	listings, err := svc.ListingsForAdvocate(ctx, causelist.Advocate{ID: "a1", Name: "Sanjay Johnson"}, "2026-08-21")
	if err != nil {
		t.Fatalf("listings lookup failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 mediation listings, got %d", len(listings))
	}
	if listings[0].AdvocateRole != causelist.RolePetitionerAdvocate {
		t.Errorf("expected petitioner role, got %q", listings[0].AdvocateRole)
	}

	respondent, err := svc.ListingsForAdvocate(ctx, causelist.Advocate{ID: "a2", Name: "Meera Nair"}, "2026-08-21")
	if err != nil {
		t.Fatalf("respondent lookup failed: %v", err)
	}
	if len(respondent) != 2 || respondent[0].AdvocateRole != causelist.RoleRespondentAdvocate {
		t.Errorf("unexpected respondent listings: %v", respondent)
	}

	none, err := svc.ListingsForAdvocate(ctx, causelist.Advocate{ID: "a3", Name: "Nobody Known"}, "2026-08-21")
	if err != nil {
		t.Fatalf("empty lookup failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no listings for unknown advocate, got %v", none)
	}
}

func TestEnrichPendingRateLimitAbortsBatch(t *testing.T) {
	db := testDB(t)
	portal := &stubPortal{}
	portal.fn = func(caseNumber string) (*CaseDetail, error) {
		if portal.calls == 3 {
			return nil, fmt.Errorf("case %s: %w", caseNumber, ErrRateLimited)
		}
		return &CaseDetail{Raw: []byte(`{}`)}, nil
	}
	svc := NewService(db, portal, testLogger(t), 3)
	ctx := context.Background()

	if _, err := svc.StoreMediationCases(ctx, "2026-08-21", mediationBlocks(5)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	summary, err := svc.EnrichPending(ctx, 10)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if !summary.RateLimited {
		t.Error("expected rate-limited summary")
	}
	if summary.Processed != 2 || summary.Fetched != 2 {
		t.Errorf("expected 2 processed before abort, got %+v", summary)
	}
	if portal.calls != 3 {
		t.Errorf("expected 3 portal calls, got %d", portal.calls)
	}

	var rows []database.MediationCase
	db.Order("id").Find(&rows)
	for i, row := range rows {
		switch {
		case i < 2:
			if row.FetchStatus != database.FetchStatusFetched {
				t.Errorf("row %d: status %q, want fetched", i, row.FetchStatus)
			}
		default:
			// The in-flight row and the untouched tail stay pending with no
			// attempt consumed
			if row.FetchStatus != database.FetchStatusPending {
				t.Errorf("row %d: status %q, want pending", i, row.FetchStatus)
			}
			if row.FetchAttempts != 0 {
				t.Errorf("row %d: attempts %d, want 0", i, row.FetchAttempts)
			}
		}
	}
}

func TestEnrichPendingRecoversStaleFetching(t *testing.T) {
	db := testDB(t)
	portal := &stubPortal{fn: func(caseNumber string) (*CaseDetail, error) {
		return &CaseDetail{Raw: []byte(`{}`)}, nil
	}}
	svc := NewService(db, portal, testLogger(t), 3)
	ctx := context.Background()

	if _, err := svc.StoreMediationCases(ctx, "2026-08-21", mediationBlocks(1)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	// Simulate a run that died mid-fetch
	if err := db.Model(&database.MediationCase{}).
		Where("case_number_raw = ?", "OP(MED) 1/2024").
		Update("fetch_status", database.FetchStatusFetching).Error; err != nil {
		t.Fatalf("failed to strand row: %v", err)
	}

	summary, err := svc.EnrichPending(ctx, 10)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if summary.Processed != 1 || summary.Fetched != 1 {
		t.Errorf("stranded row not re-processed: %+v", summary)
	}

	var row database.MediationCase
	db.First(&row)
	if row.FetchStatus != database.FetchStatusFetched {
		t.Errorf("expected fetched, got %q", row.FetchStatus)
	}
}

func TestEnrichPendingAttemptCap(t *testing.T) {
	db := testDB(t)
	portal := &stubPortal{fn: func(caseNumber string) (*CaseDetail, error) {
		return nil, errors.New("portal parse error")
	}}
	svc := NewService(db, portal, testLogger(t), 3)
	ctx := context.Background()

	if _, err := svc.StoreMediationCases(ctx, "2026-08-21", mediationBlocks(1)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		summary, err := svc.EnrichPending(ctx, 10)
		if err != nil {
			t.Fatalf("enrich %d failed: %v", i, err)
		}
		if summary.Processed != 1 || summary.Failed != 1 {
			t.Errorf("enrich %d: unexpected summary %+v", i, summary)
		}
	}

	var row database.MediationCase
	db.First(&row)
	if row.FetchStatus != database.FetchStatusFailed || row.FetchAttempts != 3 {
		t.Fatalf("expected failed with 3 attempts, got %q/%d", row.FetchStatus, row.FetchAttempts)
	}
	if row.LastFetchError == "" {
		t.Error("expected last fetch error recorded")
	}

	// Attempt cap reached, the row is no longer eligible
	summary, err := svc.EnrichPending(ctx, 10)
	if err != nil {
		t.Fatalf("final enrich failed: %v", err)
	}
	if summary.Processed != 0 {
		t.Errorf("expected no eligible rows, got %+v", summary)
	}
	if portal.calls != 3 {
		t.Errorf("expected 3 portal calls total, got %d", portal.calls)
	}
}
