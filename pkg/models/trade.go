package models

// Trade is one transaction extracted from a filing document, or a
// diagnostic placeholder when extraction was inconclusive. A Trade is
// exactly one of the two variants, never a mix: parsed records carry
// the stock fields, diagnostic records carry Note (and optionally
// PDFTextSample or Err).
type Trade struct {
	StockName        string `json:"stock_name,omitempty"`
	Ticker           string `json:"ticker,omitempty"`
	FilingStatus     string `json:"filing_status,omitempty"`
	Description      string `json:"description,omitempty"`
	TransactionDate  string `json:"transaction_date,omitempty"` // MM/DD/YYYY, pattern-matched, never calendar-validated
	NotificationDate string `json:"notification_date,omitempty"`

	Note          string `json:"note,omitempty"`
	PDFTextSample string `json:"pdf_text_sample,omitempty"`
	Err           string `json:"error,omitempty"`
}

// IsDiagnostic reports whether this record is a placeholder rather
// than a parsed transaction.
func (t Trade) IsDiagnostic() bool {
	return t.Note != ""
}
