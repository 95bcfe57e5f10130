package causelist

import (
	"regexp"
	"strings"
)

// Advocate is the identity used for deterministic name matching.
type Advocate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	honorificRe = regexp.MustCompile(`\b(?:SHRI|SMT|SRI|KUM|DR|MR|MS|MRS|ADV)\b\.?`)
	nonAlnumRe  = regexp.MustCompile(`[^A-Z0-9]+`)
)

// NormalizeName uppercases a display name, strips honorifics, collapses all
// non-alphanumeric runs to single spaces and trims. An unusable name (empty
// or punctuation only) normalizes to "".
func NormalizeName(name string) string {
	upper := strings.ToUpper(name)
	upper = honorificRe.ReplaceAllString(upper, " ")
	upper = nonAlnumRe.ReplaceAllString(upper, " ")
	return strings.TrimSpace(upper)
}

// NameTokens returns the normalized token list for a display name.
func NameTokens(name string) []string {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// namePattern compiles the boundary-safe match pattern for an advocate:
// the tokens must appear consecutively, not preceded by an alphanumeric
// character, and followed only by punctuation or whitespace until the end of
// their line. "SANJAY JOHNSON." matches; a line ending "SANJAY JOHNSON
// MATHEW" must not, since the extra token is alphanumeric.
func namePattern(tokens []string) (*regexp.Regexp, error) {
	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped[i] = regexp.QuoteMeta(tok)
	}
	expr := `(?i)(?:^|[^A-Z0-9])` + strings.Join(escaped, `\s+`) + `[^A-Z0-9\r\n]*(?:\r?\n|\z)`
	return regexp.Compile(expr)
}

// MatchBlocksByAdvocate finds which blocks textually contain each advocate's
// full name. Every advocate appears in the result; zero matches map to an
// empty slice. This is the deterministic ground truth later used to veto
// LLM output.
func MatchBlocksByAdvocate(blocks []CaseBlock, advocates []Advocate) map[string][]CaseBlock {
	matched := make(map[string][]CaseBlock, len(advocates))

	for _, adv := range advocates {
		matched[adv.ID] = []CaseBlock{}

		tokens := NameTokens(adv.Name)
		if len(tokens) == 0 {
			// A null/garbage name must never match everything
			continue
		}

		pattern, err := namePattern(tokens)
		if err != nil {
			continue
		}

		for _, block := range blocks {
			if pattern.MatchString(block.Text) {
				matched[adv.ID] = append(matched[adv.ID], block)
			}
		}
	}

	return matched
}
