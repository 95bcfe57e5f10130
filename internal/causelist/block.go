package causelist

import (
	"regexp"
	"strings"
)

// CaseBlock is one serial-numbered case-listing entry extracted from the
// page-tagged text of a cause-list PDF, with the court/section/judge context
// in effect at its position.
type CaseBlock struct {
	SerialNumber  string   `json:"serial_number"`
	CaseNumberRaw string   `json:"case_number_raw"`
	PageNumber    int      `json:"page_number,omitempty"`
	CourtNumber   string   `json:"court_number,omitempty"`
	CourtCode     string   `json:"court_code,omitempty"`
	SectionLabel  string   `json:"section_label,omitempty"`
	Judges        []string `json:"judges,omitempty"`
	Text          string   `json:"text"`
}

// contextWindow is how many lines before a block start are scanned for
// court, section and judge context.
const contextWindow = 120

// maxJudges caps how many preceding judge lines are attached to a block.
const maxJudges = 3

var (
	pageMarkerRe = regexp.MustCompile(`^\[PAGE (\d+)\]`)

	// A block starts with a serial number (integer, optional decimal
	// sub-item suffix) followed by a case-number token: an uppercase
	// abbreviation, digits, "/" and a 2-4 digit year.
	blockStartRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s+([A-Z][A-Z()]*\s*\.?\s*\d+\s*/\s*\d{2,4})`)

	courtLineRe = regexp.MustCompile(`(?i)COURT\s+NO\.?\s*:?\s*(\d+)\s*[-–]\s*(\d+)`)

	sectionLineRe = regexp.MustCompile(`(?i)\b(ADMISSION|FOR\s+HEARING|SEPARATE\s+LIST\s*\d*|URGENT\s+MEMO|MEDIATION\s+LIST|ARBITRATION\s+LIST|SUPPLEMENTARY\s+LIST\s*\d*|DAILY\s+LIST)\b`)

	judgeLineRe = regexp.MustCompile(`(?i)^\s*HON'?BLE\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SplitBlocks segments page-tagged plain text into CaseBlocks. It is a pure
// function: malformed input yields fewer blocks, never an error. Blocks are
// returned in document order and do not overlap.
func SplitBlocks(text string) []CaseBlock {
	lines := strings.Split(text, "\n")

	// Locate block-start lines and the page in effect at each line
	page := 0
	pageAt := make([]int, len(lines))
	var starts []int
	for i, line := range lines {
		if m := pageMarkerRe.FindStringSubmatch(line); m != nil {
			page = atoiSafe(m[1])
		}
		pageAt[i] = page
		if blockStartRe.MatchString(line) {
			starts = append(starts, i)
		}
	}

	blocks := make([]CaseBlock, 0, len(starts))
	for si, start := range starts {
		end := len(lines)
		if si+1 < len(starts) {
			end = starts[si+1]
		}

		m := blockStartRe.FindStringSubmatch(lines[start])
		block := CaseBlock{
			SerialNumber:  m[1],
			CaseNumberRaw: normalizeCaseToken(m[2]),
			PageNumber:    pageAt[start],
			Text:          strings.Join(lines[start:end], "\n"),
		}
		applyContext(&block, lines, start)
		blocks = append(blocks, block)
	}

	return blocks
}

// applyContext scans up to contextWindow lines before the block start for
// the most recent court line, section heading and judge lines. Missing
// context stays empty; it is never fabricated.
func applyContext(block *CaseBlock, lines []string, start int) {
	low := start - contextWindow
	if low < 0 {
		low = 0
	}

	seenJudges := make(map[string]bool)
	for i := start - 1; i >= low; i-- {
		line := lines[i]

		if block.CourtNumber == "" {
			if m := courtLineRe.FindStringSubmatch(line); m != nil {
				block.CourtCode = m[1]
				block.CourtNumber = m[2]
			}
		}

		if block.SectionLabel == "" {
			// Section headings stand alone; a block-start line that
			// happens to mention a list name is not a heading.
			if !blockStartRe.MatchString(line) {
				if m := sectionLineRe.FindStringSubmatch(line); m != nil {
					block.SectionLabel = strings.ToUpper(whitespaceRe.ReplaceAllString(m[1], " "))
				}
			}
		}

		if len(block.Judges) < maxJudges && judgeLineRe.MatchString(line) {
			name := strings.TrimSpace(line)
			key := strings.ToUpper(name)
			if !seenJudges[key] {
				seenJudges[key] = true
				block.Judges = append(block.Judges, name)
			}
		}
	}
}

// normalizeCaseToken uppercases and whitespace-collapses a case number so
// downstream comparisons are exact-match safe.
func normalizeCaseToken(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
