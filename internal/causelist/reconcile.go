package causelist

import "strings"

// NormalizeCaseNumber uppercases a case number and removes all whitespace,
// making deterministic and LLM-produced case numbers directly comparable.
func NormalizeCaseNumber(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), "")
}

// AllowedCaseNumbers collects the normalized case numbers of an advocate's
// deterministically matched blocks.
func AllowedCaseNumbers(blocks []CaseBlock) map[string]struct{} {
	allowed := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		if n := NormalizeCaseNumber(b.CaseNumberRaw); n != "" {
			allowed[n] = struct{}{}
		}
	}
	return allowed
}

// ReconcileListings drops every listing whose case number was not found in
// the advocate's matched blocks. With an empty allowed set there is nothing
// to reconcile against and listings pass through unchanged (the caller is
// expected to flag that state). Precision over recall: a true positive with
// divergent case-number formatting is discarded along with hallucinations.
func ReconcileListings(listings []Listing, allowed map[string]struct{}) []Listing {
	if len(allowed) == 0 {
		return listings
	}

	kept := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := allowed[NormalizeCaseNumber(l.CaseNumberRaw)]; ok {
			kept = append(kept, l)
		}
	}
	return kept
}
