// Package models defines the value types shared across the disclosure
// tracker: filings discovered on the disclosure site and trade records
// extracted from filing documents.
package models

// Filing is one disclosure entry from the site's search results
// listing.
type Filing struct {
	Name        string // filer name as displayed
	Office      string
	FilingYear  string // free text as displayed by the site, not necessarily the query year
	FilingType  string
	DocumentURL string // absolute URL of the filing document
}

// identitySep joins the identity tuple. Matches the key format of
// state files written by earlier deployments.
const identitySep = "_"

// Identity returns the deduplication key for this filing. Two filings
// with the same (name, filing type, document URL) are the same filing.
func (f Filing) Identity() string {
	return f.Name + identitySep + f.FilingType + identitySep + f.DocumentURL
}
