package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the page-tagged text layer of a cause-list PDF
type Document struct {
	// Text contains all pages concatenated, each preceded by a
	// "[PAGE n]" marker line
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
}

// Extract reads the text layer of a PDF from raw bytes and returns it with
// [PAGE n] markers interspersed. Pages whose text cannot be read are kept
// as empty pages rather than failing the whole document.
func Extract(data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}

	// The pdf package panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		sb.WriteString(fmt.Sprintf("[PAGE %d]\n", i))

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades that page only
			continue
		}

		text = strings.TrimRight(text, "\n")
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}

	return &Document{
		Text:      sb.String(),
		PageCount: pageCount,
	}, nil
}
