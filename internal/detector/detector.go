// Package detector queries the disclosure site's search listing and
// identifies filings that have not yet been recorded in the document
// repository. It combines two change signals: an aggregate entry-count
// heuristic (cheap early warning, may be stale) and exact row-level
// identity dedup (the authority that drives notification).
package detector

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/finwatch/disclosure-tracker/internal/config"
	"github.com/finwatch/disclosure-tracker/internal/repository"
	"github.com/finwatch/disclosure-tracker/pkg/models"
)

var (
	// Aggregate count phrasings on the results page, in precedence
	// order. The bare "of N entries" form appears on some renderings
	// that drop the "Showing" clause.
	reShowingEntries = regexp.MustCompile(`Showing\s+\d+\s+to\s+\d+\s+of\s+(\d+)\s+entries`)
	reOfEntries      = regexp.MustCompile(`of\s+(\d+)\s+entries`)
)

// Detector checks the disclosure site for filings not yet present in
// the repository.
type Detector struct {
	session *Session
	repo    *repository.Repository
	cfg     config.TrackerConfig
	host    string // scheme://host of the site, for absolutizing hrefs
	log     *slog.Logger
}

// New creates a detector for the configured site backed by the given
// repository.
func New(cfg config.TrackerConfig, repo *repository.Repository, log *slog.Logger) *Detector {
	host := ""
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		host = u.Scheme + "://" + u.Host
	}
	return &Detector{
		session: NewSession(),
		repo:    repo,
		cfg:     cfg,
		host:    host,
		log:     log,
	}
}

// Check queries the site and returns filings whose identities are not
// yet recorded, in the site's listing order, together with a flag
// reporting whether the aggregate entry count for the configured year
// rose since the last observation. A count increase is persisted
// immediately even when no individual new filing is identified; that
// state means "something changed upstream, recheck next cycle".
//
// Transport errors abort the check with (nil, false); they are logged,
// never returned.
func (d *Detector) Check(ctx context.Context) ([]models.Filing, bool) {
	d.log.Info("checking for new disclosures", "year", d.cfg.FilingYear)

	if err := d.session.Prime(ctx, d.cfg.BaseURL); err != nil {
		d.log.Error("error priming disclosure site session", "error", err)
		return nil, false
	}

	page, err := d.session.Search(ctx, d.cfg.SearchURL, d.cfg.FilingYear, d.cfg.LastName)
	if err != nil {
		d.log.Error("error searching disclosures", "error", err)
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		d.log.Error("error parsing search results", "error", err)
		return nil, false
	}

	year := strconv.Itoa(d.cfg.FilingYear)
	currentCount := extractTotalCount(page, doc)
	expectedCount := d.repo.ExpectedCount(year)
	countIncreased := currentCount > expectedCount

	if countIncreased {
		d.log.Info("detected potential new entries",
			"year", year,
			"previous_count", expectedCount,
			"current_count", currentCount)
		d.repo.SetExpectedCount(year, currentCount)
		d.repo.Persist()
	} else {
		d.log.Info("no count change detected", "year", year, "count", currentCount)
	}

	return d.parseRows(doc), countIncreased
}

// Download fetches raw document bytes through the detector's session,
// so document requests carry the same cookies as the search.
func (d *Detector) Download(ctx context.Context, docURL string) ([]byte, error) {
	return d.session.Download(ctx, docURL)
}

// parseRows walks the results table and returns candidate filings not
// yet recorded in the repository. Rows with fewer than 4 cells, or
// whose filing-type cell contains no hyperlink, are skipped silently.
func (d *Detector) parseRows(doc *goquery.Document) []models.Filing {
	table := doc.Find("table.table").First()
	if table.Length() == 0 {
		d.log.Info("no results table found")
		return nil
	}

	var filings []models.Filing
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		filingCell := cells.Eq(3)
		href, ok := filingCell.Find("a").First().Attr("href")
		if !ok {
			return
		}

		f := models.Filing{
			Name:        strings.TrimSpace(cells.Eq(0).Text()),
			Office:      strings.TrimSpace(cells.Eq(1).Text()),
			FilingYear:  strings.TrimSpace(cells.Eq(2).Text()),
			FilingType:  strings.TrimSpace(filingCell.Text()),
			DocumentURL: d.absoluteURL(href),
		}

		if d.repo.Contains(f.Identity()) {
			return
		}
		d.log.Info("found new disclosure", "identity", f.Identity())
		filings = append(filings, f)
	})

	return filings
}

// absoluteURL prefixes the site host when the extracted href is
// relative.
func (d *Detector) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return d.host + href
}

// extractTotalCount extracts the aggregate total shown by a results
// page. Precedence: the "Showing X to Y of N entries" phrase, then a
// bare "of N entries" phrase, then the data-row count of the results
// table, then 0 when no table is present.
func extractTotalCount(page string, doc *goquery.Document) int {
	if m := reShowingEntries.FindStringSubmatch(page); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := reOfEntries.FindStringSubmatch(page); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}

	table := doc.Find("table.table").First()
	if table.Length() == 0 {
		return 0
	}
	rows := table.Find("tr").Length()
	if rows <= 1 {
		return 0
	}
	return rows - 1 // exclude header
}
