package extract

import (
	"regexp"
	"strings"

	"github.com/finwatch/disclosure-tracker/pkg/models"
)

// Labeled-block layout: the document carries a "Transactions" section
// whose entries are asset lines with labeled "Filing Status:" and
// "Description:" fields.
var (
	// reAssetMarker locates the start of a candidate transaction
	// block: an asset keyword, optionally followed by a parenthesized
	// ticker.
	reAssetMarker = regexp.MustCompile(`(?:Common Stock|Stock|ASSET:)(?:\s*\(([A-Z]+)\))?`)

	// reStockTicker captures a stock display name immediately followed
	// by its parenthesized ticker.
	reStockTicker = regexp.MustCompile(`([A-Za-z0-9\s.,&\-]+)\(([A-Z]+)\)`)

	reFilingStatus = regexp.MustCompile(`Filing Status:\s*([^\n]+)`)
	reDescription  = regexp.MustCompile(`Description:\s*([^\n]+)`)
)

// Block window around an asset marker. The filer metadata precedes
// the marker, the labeled fields and dates follow it.
const (
	labeledLookBehind = 200
	labeledLookAhead  = 500
)

// LabeledBlockExtractor scans for asset markers and reads the labeled
// fields around each one. Fields that cannot be located default to
// "Unknown" rather than dropping the record.
type LabeledBlockExtractor struct{}

// NewLabeledBlock creates the labeled-block strategy.
func NewLabeledBlock() *LabeledBlockExtractor { return &LabeledBlockExtractor{} }

// Name implements Extractor.
func (*LabeledBlockExtractor) Name() string { return "labeled-block" }

// Extract implements Extractor.
func (*LabeledBlockExtractor) Extract(text string) (trades []models.Trade) {
	defer func() {
		if r := recover(); r != nil {
			trades = recovered(r)
		}
	}()

	// Skip the title and filer information sections when the document
	// has an explicit Transactions header.
	section := text
	if idx := strings.Index(text, transactionsHeader); idx >= 0 {
		section = text[idx+len(transactionsHeader):]
	}

	for _, loc := range reAssetMarker.FindAllStringIndex(section, -1) {
		start := loc[0] - labeledLookBehind
		if start < 0 {
			start = 0
		}
		end := loc[1] + labeledLookAhead
		if end > len(section) {
			end = len(section)
		}
		block := section[start:end]

		stockName, ticker := unknownField, unknownField
		if m := reStockTicker.FindStringSubmatch(block); m != nil {
			stockName = strings.TrimSpace(m[1])
			ticker = m[2]
		}

		status := unknownField
		if m := reFilingStatus.FindStringSubmatch(block); m != nil {
			status = strings.TrimSpace(m[1])
		}

		description := unknownField
		if m := reDescription.FindStringSubmatch(block); m != nil {
			description = collapseWhitespace(m[1])
		}

		transactionDate, notificationDate := unknownField, unknownField
		dates := reDate.FindAllString(block, 2)
		if len(dates) >= 1 {
			transactionDate = dates[0]
		}
		if len(dates) >= 2 {
			notificationDate = dates[1]
		}

		trades = append(trades, models.Trade{
			StockName:        stockName,
			Ticker:           ticker,
			FilingStatus:     status,
			Description:      description,
			TransactionDate:  transactionDate,
			NotificationDate: notificationDate,
		})
	}

	if len(trades) == 0 {
		return unparsedRecord(text)
	}
	return trades
}
