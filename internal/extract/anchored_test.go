package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerAnchoredBasic(t *testing.T) {
	text := `SP Nvidia Corporation (NVDA)
01/02/2025 01/06/2025
New
D: Purchased 500 shares of common stock
`

	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, "Nvidia Corporation", tr.StockName)
	assert.Equal(t, "NVDA", tr.Ticker)
	assert.Equal(t, "New", tr.FilingStatus)
	assert.Equal(t, "Purchased 500 shares of common stock", tr.Description)
	assert.Equal(t, "01/02/2025", tr.TransactionDate)
	assert.Equal(t, "01/06/2025", tr.NotificationDate)
}

func TestTickerAnchoredSkipsCandidateWithoutTwoDates(t *testing.T) {
	text := `SP Apple Inc (AAPL)
01/02/2025
D: only one date nearby
`

	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].IsDiagnostic(), "a candidate without two dates is dropped, leaving a placeholder")
}

func TestTickerAnchoredDropsUnresolvedDescription(t *testing.T) {
	text := `SP Apple Inc (AAPL)
01/02/2025 01/06/2025
no description marker anywhere near
`

	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].IsDiagnostic())
}

func TestTickerAnchoredCollapsesDescriptionWhitespace(t *testing.T) {
	text := "SP Tesla Inc (TSLA)\n01/02/2025 01/06/2025\nD: Sold    1,000\t shares \n"

	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 1)
	assert.Equal(t, "Sold 1,000 shares", trades[0].Description)
}

func TestTickerAnchoredNewLineDescriptionFallback(t *testing.T) {
	// Status line ends in "New" with the description marker on the
	// following line.
	text := `SP Tesla Inc (TSLA)
01/02/2025 01/06/2025 New
D: Exercised options
`
	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 1)
	assert.Equal(t, "Exercised options", trades[0].Description)
}

func TestTickerAnchoredDedupesIdenticalTrades(t *testing.T) {
	block := `SP Nvidia Corporation (NVDA)
01/02/2025 01/06/2025
D: Purchased 500 shares
`
	// The same trade rendered twice in the document text collapses to
	// one record.
	trades := NewTickerAnchored().Extract(block + "\n" + block)
	require.Len(t, trades, 1)
}

func TestTickerAnchoredKeepsSameDayTradesWithDistinctDescriptions(t *testing.T) {
	text := `SP Nvidia Corporation (NVDA)
01/02/2025 01/06/2025
D: Purchased 500 shares
` + strings.Repeat(" ", 450) + `
SP Nvidia Corporation (NVDA)
01/02/2025 01/06/2025
D: Sold 200 call options
`

	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 2, "same ticker and dates with different descriptions are distinct trades")
	assert.Equal(t, "Purchased 500 shares", trades[0].Description)
	assert.Equal(t, "Sold 200 call options", trades[1].Description)
}

func TestTickerAnchoredNoTickersYieldsDiagnostic(t *testing.T) {
	text := "nothing resembling a trade in here"

	trades := NewTickerAnchored().Extract(text)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].IsDiagnostic())
	assert.Equal(t, text, trades[0].PDFTextSample)
}
