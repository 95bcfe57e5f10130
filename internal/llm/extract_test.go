package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/pkg/logger"
)

type stubChat struct {
	mu    sync.Mutex
	calls int
	fn    func(system, user string) (string, error)
}

func (s *stubChat) Complete(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(system, user)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error", "text")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func blockFor(name, caseNumber string) causelist.CaseBlock {
	return causelist.CaseBlock{
		SerialNumber:  "1",
		CaseNumberRaw: caseNumber,
		Text:          "1 " + caseNumber + "\nparty v party\n" + name + "\n",
	}
}

func TestParsePerAdvocateIsolatesFailures(t *testing.T) {
	chat := &stubChat{fn: func(system, user string) (string, error) {
		if strings.Contains(user, "BROKEN ADVOCATE") {
			return "", errors.New("model unavailable")
		}
		return `{"total_listings": 1, "listings": [{"case_number_raw": "WP(C) 100/2024"}]}`, nil
	}}

	parser := NewParser(chat, testLogger(t), 4, 5000)

	advocates := []causelist.Advocate{
		{ID: "ok", Name: "GOOD ADVOCATE"},
		{ID: "bad", Name: "BROKEN ADVOCATE"},
		{ID: "idle", Name: "UNLISTED ADVOCATE"},
	}
	matched := map[string][]causelist.CaseBlock{
		"ok":  {blockFor("GOOD ADVOCATE", "WP(C) 100/2024")},
		"bad": {blockFor("BROKEN ADVOCATE", "WA 55/2023")},
	}

	results := parser.ParsePerAdvocate(context.Background(), "2026-08-21", advocates, matched)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	ok := results["ok"]
	if ok.ParseError != "" {
		t.Errorf("ok advocate should not carry an error: %q", ok.ParseError)
	}
	if len(ok.Listings) != 1 || ok.Listings[0].CaseNumberRaw != "WP(C) 100/2024" {
		t.Errorf("ok advocate listings wrong: %v", ok.Listings)
	}

	bad := results["bad"]
	if bad.ParseError == "" {
		t.Error("bad advocate should carry a parse error")
	}
	if len(bad.Listings) != 0 {
		t.Errorf("bad advocate should have empty listings, got %v", bad.Listings)
	}

	// Zero matched blocks means no model call at all
	idle := results["idle"]
	if idle.ParseError != "" || len(idle.Listings) != 0 || idle.TotalListings != 0 {
		t.Errorf("idle advocate should be an empty result: %+v", idle)
	}
	if chat.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", chat.calls)
	}
}

func TestParsePerAdvocateMixedZeroBlockAndMatched(t *testing.T) {
	chat := &stubChat{fn: func(system, user string) (string, error) {
		return `{"total_listings": 1, "listings": [{"case_number_raw": "WP(C) 1/2024"}]}`, nil
	}}
	parser := NewParser(chat, testLogger(t), 8, 5000)

	// Interleave advocates with and without matched blocks so synchronous
	// empty-result writes overlap in-flight worker writes
	var advocates []causelist.Advocate
	matched := make(map[string][]causelist.CaseBlock)
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("adv-%03d", i)
		advocates = append(advocates, causelist.Advocate{ID: id, Name: "ADVOCATE " + id})
		if i%2 == 0 {
			matched[id] = []causelist.CaseBlock{blockFor("ADVOCATE "+id, "WP(C) 1/2024")}
		}
	}

	results := parser.ParsePerAdvocate(context.Background(), "2026-08-21", advocates, matched)

	if len(results) != 200 {
		t.Fatalf("expected 200 results, got %d", len(results))
	}
	for i, adv := range advocates {
		result := results[adv.ID]
		if result == nil {
			t.Fatalf("missing result for %s", adv.ID)
		}
		wantListings := 0
		if i%2 == 0 {
			wantListings = 1
		}
		if len(result.Listings) != wantListings {
			t.Errorf("%s: %d listings, want %d", adv.ID, len(result.Listings), wantListings)
		}
	}
	if chat.calls != 100 {
		t.Errorf("expected 100 model calls, got %d", chat.calls)
	}
}

func TestParsePerAdvocateConcurrencyCap(t *testing.T) {
	var mu sync.Mutex
	current, peak := 0, 0

	chat := &stubChat{fn: func(system, user string) (string, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return `{"total_listings": 0, "listings": []}`, nil
	}}

	parser := NewParser(chat, testLogger(t), 2, 5000)

	var advocates []causelist.Advocate
	matched := make(map[string][]causelist.CaseBlock)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		advocates = append(advocates, causelist.Advocate{ID: id, Name: "ADVOCATE " + id})
		matched[id] = []causelist.CaseBlock{blockFor("ADVOCATE "+id, "WP(C) 1/2024")}
	}

	parser.ParsePerAdvocate(context.Background(), "2026-08-21", advocates, matched)

	if peak > 2 {
		t.Errorf("in-flight calls peaked at %d, cap is 2", peak)
	}
	if chat.calls != 6 {
		t.Errorf("expected 6 calls, got %d", chat.calls)
	}
}

func TestParseOneRecoversMalformedReply(t *testing.T) {
	cases := []struct {
		name        string
		reply       string
		wantErr     bool
		wantRawText bool
	}{
		{"prose only", "Sorry, I cannot produce JSON today.", true, true},
		{"unbalanced", `{"listings": [`, true, true},
		{"fenced valid", "```json\n{\"total_listings\": 0, \"listings\": []}\n```", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat := &stubChat{fn: func(system, user string) (string, error) {
				return tc.reply, nil
			}}
			parser := NewParser(chat, testLogger(t), 1, 5000)

			results := parser.ParsePerAdvocate(context.Background(), "2026-08-21",
				[]causelist.Advocate{{ID: "a1", Name: "SOME ADVOCATE"}},
				map[string][]causelist.CaseBlock{"a1": {blockFor("SOME ADVOCATE", "WP(C) 1/2024")}})

			result := results["a1"]
			if tc.wantErr && result.ParseError == "" {
				t.Error("expected parse error")
			}
			if !tc.wantErr && result.ParseError != "" {
				t.Errorf("unexpected parse error: %q", result.ParseError)
			}
			if tc.wantRawText && result.ErrorRawText == "" {
				t.Error("expected raw block text on parse failure")
			}
			if result.Listings == nil {
				t.Error("listings must never be nil")
			}
		})
	}
}

func TestParseOneTotalListings(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  int
	}{
		{"explicit total", `{"total_listings": 3, "listings": [{"case_number_raw": "A 1/2024"}]}`, 3},
		{"missing total defaults to count", `{"listings": [{"case_number_raw": "A 1/2024"}, {"case_number_raw": "B 2/2024"}]}`, 2},
		{"invalid total defaults to count", `{"total_listings": "lots", "listings": [{"case_number_raw": "A 1/2024"}]}`, 1},
		{"negative total defaults to count", `{"total_listings": -5, "listings": []}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat := &stubChat{fn: func(system, user string) (string, error) {
				return tc.reply, nil
			}}
			parser := NewParser(chat, testLogger(t), 1, 5000)

			results := parser.ParsePerAdvocate(context.Background(), "2026-08-21",
				[]causelist.Advocate{{ID: "a1", Name: "SOME ADVOCATE"}},
				map[string][]causelist.CaseBlock{"a1": {blockFor("SOME ADVOCATE", "WP(C) 1/2024")}})

			if got := results["a1"].TotalListings; got != tc.want {
				t.Errorf("total_listings = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestParseOneNormalizesEnums(t *testing.T) {
	chat := &stubChat{fn: func(system, user string) (string, error) {
		return `{"listings": [{"case_number_raw": "A 1/2024", "section_type": "SPECIAL_BENCH", "advocate_role": "amicus"}]}`, nil
	}}
	parser := NewParser(chat, testLogger(t), 1, 5000)

	results := parser.ParsePerAdvocate(context.Background(), "2026-08-21",
		[]causelist.Advocate{{ID: "a1", Name: "SOME ADVOCATE"}},
		map[string][]causelist.CaseBlock{"a1": {blockFor("SOME ADVOCATE", "WP(C) 1/2024")}})

	l := results["a1"].Listings[0]
	if l.SectionType != causelist.SectionUnknown {
		t.Errorf("section_type = %q, want UNKNOWN", l.SectionType)
	}
	if l.AdvocateRole != causelist.RoleOther {
		t.Errorf("advocate_role = %q, want OTHER", l.AdvocateRole)
	}
}

func TestBuildUserPromptTruncation(t *testing.T) {
	chat := &stubChat{fn: func(system, user string) (string, error) {
		if !strings.Contains(user, "[TRUNCATED]") {
			t.Error("oversized block text should carry a truncation marker")
		}
		return `{"total_listings": 0, "listings": []}`, nil
	}}
	parser := NewParser(chat, testLogger(t), 1, 100)

	long := blockFor("SOME ADVOCATE", "WP(C) 1/2024")
	long.Text = strings.Repeat("x", 500)

	parser.ParsePerAdvocate(context.Background(), "2026-08-21",
		[]causelist.Advocate{{ID: "a1", Name: "SOME ADVOCATE"}},
		map[string][]causelist.CaseBlock{"a1": {long}})

	if chat.calls != 1 {
		t.Fatalf("expected 1 call, got %d", chat.calls)
	}
}

func TestBuildUserPromptTruncationIsRuneAware(t *testing.T) {
	chat := &stubChat{fn: func(system, user string) (string, error) {
		if !utf8.ValidString(user) {
			t.Error("truncation produced invalid UTF-8")
		}
		if !strings.Contains(user, "[TRUNCATED]") {
			t.Error("expected truncation marker")
		}
		return `{"total_listings": 0, "listings": []}`, nil
	}}
	parser := NewParser(chat, testLogger(t), 1, 50)

	// Devanagari party names are multi-byte; a byte cut would split a rune
	long := blockFor("SOME ADVOCATE", "WP(C) 1/2024")
	long.Text = strings.Repeat("याचिकाकर्ता", 20)

	parser.ParsePerAdvocate(context.Background(), "2026-08-21",
		[]causelist.Advocate{{ID: "a1", Name: "SOME ADVOCATE"}},
		map[string][]causelist.CaseBlock{"a1": {long}})

	if chat.calls != 1 {
		t.Fatalf("expected 1 call, got %d", chat.calls)
	}
}
