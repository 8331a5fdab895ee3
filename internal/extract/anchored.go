package extract

import (
	"regexp"
	"strings"

	"github.com/finwatch/disclosure-tracker/pkg/models"
)

// Ticker-anchored layout: no labeled fields, trades are located by
// their parenthesized ticker symbols, with the description on a "D:"
// line nearby.
var (
	reAnchorTicker = regexp.MustCompile(`\(([A-Z]+)\)`)

	reDescMarker = regexp.MustCompile(`D:\s*([^\n]+)`)

	// Some filings render the status line between the ticker and the
	// description marker.
	reAltDescMarker = regexp.MustCompile(`(?:New|Amended)\s*\n\s*D:?\s*([^\n]+)`)
)

// Context window around a ticker occurrence.
const (
	anchoredLookBehind = 200
	anchoredLookAhead  = 400
)

// TickerAnchoredExtractor locates every parenthesized all-caps ticker
// and mines its surrounding context. Candidates missing a resolvable
// description or transaction date are dropped rather than emitted as
// "Unknown". Duplicate candidates are collapsed by (ticker, dates,
// description), so multiple same-day filings for one ticker survive
// when their descriptions differ.
type TickerAnchoredExtractor struct{}

// NewTickerAnchored creates the ticker-anchored strategy.
func NewTickerAnchored() *TickerAnchoredExtractor { return &TickerAnchoredExtractor{} }

// Name implements Extractor.
func (*TickerAnchoredExtractor) Name() string { return "ticker-anchored" }

// Extract implements Extractor.
func (*TickerAnchoredExtractor) Extract(text string) (trades []models.Trade) {
	defer func() {
		if r := recover(); r != nil {
			trades = recovered(r)
		}
	}()

	type tradeKey struct {
		ticker, transactionDate, notificationDate, description string
	}
	seen := make(map[tradeKey]bool)

	for _, m := range reAnchorTicker.FindAllStringSubmatchIndex(text, -1) {
		ticker := text[m[2]:m[3]]

		start := m[0] - anchoredLookBehind
		if start < 0 {
			start = 0
		}
		end := m[0] + anchoredLookAhead
		if end > len(text) {
			end = len(text)
		}
		context := text[start:end]

		// Owner-prefixed company name line, e.g. "SP Nvidia Corp (NVDA)".
		stockName := unknownField
		companyRe := regexp.MustCompile(`SP\s+([^(]+)\(` + ticker + `\)`)
		if cm := companyRe.FindStringSubmatch(context); cm != nil {
			stockName = strings.TrimSpace(cm[1])
		}

		dates := reDate.FindAllString(context, -1)
		if len(dates) < 2 {
			continue
		}
		transactionDate, notificationDate := dates[0], dates[1]

		description := extractDescription(context)

		key := tradeKey{ticker, transactionDate, notificationDate, description}
		if seen[key] {
			continue
		}
		seen[key] = true

		if description == unknownField || transactionDate == unknownField {
			continue
		}

		trades = append(trades, models.Trade{
			StockName:        stockName,
			Ticker:           ticker,
			FilingStatus:     "New",
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

// extractDescription resolves the "D:" description near a ticker.
// Fallback order: direct "D:" marker, status line followed by "D:",
// then a line scan for a line ending in "New" whose successor starts
// with "D:".
func extractDescription(context string) string {
	if m := reDescMarker.FindStringSubmatch(context); m != nil {
		return collapseWhitespace(m[1])
	}
	if m := reAltDescMarker.FindStringSubmatch(context); m != nil {
		return collapseWhitespace(m[1])
	}

	lines := strings.Split(context, "\n")
	for i, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), "New") && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if strings.HasPrefix(next, "D:") {
				return collapseWhitespace(next[2:])
			}
		}
	}
	return unknownField
}
