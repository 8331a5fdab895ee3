package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts the plain text of a PDF document held in memory,
// concatenating pages in order. Library panics, common on malformed
// filings, are recovered into errors.
func Text(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		// NUL bytes from embedded fonts break the line-oriented
		// patterns downstream.
		b.WriteString(strings.ReplaceAll(pageText, "\x00", ""))
		b.WriteString("\n")
	}
	return b.String(), nil
}
