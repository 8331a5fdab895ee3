// Package extract turns unstructured filing-document text into
// discrete trade records. It is a best-effort heuristic text miner,
// not a verified parser: two strategies encode two known document
// layouts, and input neither can read degrades to a diagnostic
// placeholder record instead of an error.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/finwatch/disclosure-tracker/pkg/models"
)

const (
	// unknownField is the default for any field a strategy cannot locate.
	unknownField = "Unknown"

	// sampleLimit bounds the text sample carried by diagnostic records.
	sampleLimit = 500

	noteUnparsed     = "Automatic parsing could not identify specific trades."
	noteManualReview = "Failed to parse PDF. Manual review required."

	// transactionsHeader marks the section of a labeled-layout
	// document that holds the trade details.
	transactionsHeader = "Transactions"
)

// reDate matches MM/DD/YYYY-shaped digit groups. Dates are never
// validated as real calendar dates.
var reDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// Extractor turns extracted document text into trade records. Extract
// never fails: inconclusive input produces a single diagnostic record,
// and any internal failure produces a single error record.
type Extractor interface {
	Name() string
	Extract(text string) []models.Trade
}

// New returns the default extractor, which dispatches on document
// layout: labeled-block for documents with a Transactions section,
// ticker-anchored otherwise.
func New() Extractor { return autoExtractor{} }

type autoExtractor struct{}

func (autoExtractor) Name() string { return "auto" }

func (autoExtractor) Extract(text string) []models.Trade {
	if strings.Contains(text, transactionsHeader) {
		return NewLabeledBlock().Extract(text)
	}
	return NewTickerAnchored().Extract(text)
}

// ByName returns the strategy named "labeled", "anchored" or "auto".
func ByName(name string) (Extractor, error) {
	switch name {
	case "labeled":
		return NewLabeledBlock(), nil
	case "anchored":
		return NewTickerAnchored(), nil
	case "auto", "":
		return New(), nil
	}
	return nil, fmt.Errorf("unknown extraction strategy %q", name)
}

// FromPDF extracts the plain text of a PDF document and runs the
// extractor over it. A text-extraction failure degrades to a single
// error record; this function never fails.
func FromPDF(data []byte, e Extractor) []models.Trade {
	text, err := Text(data)
	if err != nil {
		return errorRecord(err)
	}
	return e.Extract(text)
}

var reWhitespace = regexp.MustCompile(`\s+`)

// collapseWhitespace folds whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// unparsedRecord is the diagnostic placeholder emitted when a strategy
// locates no trade-shaped text.
func unparsedRecord(text string) []models.Trade {
	sample := text
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit] + "..."
	}
	return []models.Trade{{Note: noteUnparsed, PDFTextSample: sample}}
}

// errorRecord is the diagnostic placeholder for extraction failures.
func errorRecord(err error) []models.Trade {
	return []models.Trade{{Err: err.Error(), Note: noteManualReview}}
}

// recovered converts a panic inside a strategy into an error record.
func recovered(r any) []models.Trade {
	return errorRecord(fmt.Errorf("extraction failed: %v", r))
}
