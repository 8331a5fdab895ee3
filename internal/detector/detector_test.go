package detector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch/disclosure-tracker/internal/config"
	"github.com/finwatch/disclosure-tracker/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractTotalCount(t *testing.T) {
	tests := []struct {
		name string
		page string
		want int
	}{
		{
			name: "showing clause",
			page: `<p>Showing 1 to 10 of 233 entries</p>`,
			want: 233,
		},
		{
			name: "bare of-entries clause",
			page: `<p>of 45 entries</p>`,
			want: 45,
		},
		{
			name: "row count fallback",
			page: `<table class="table">
				<tr><th>Name</th></tr>
				<tr><td>a</td></tr>
				<tr><td>b</td></tr>
				<tr><td>c</td></tr>
			</table>`,
			want: 3,
		},
		{
			name: "no table no phrase",
			page: `<p>nothing here</p>`,
			want: 0,
		},
		{
			name: "showing clause wins over table",
			page: `<p>Showing 1 to 2 of 99 entries</p>
				<table class="table"><tr><th>h</th></tr><tr><td>a</td></tr></table>`,
			want: 99,
		},
		{
			name: "header-only table",
			page: `<table class="table"><tr><th>Name</th></tr></table>`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.page))
			require.NoError(t, err)
			assert.Equal(t, tt.want, extractTotalCount(tt.page, doc))
		})
	}
}

// resultsPage renders a search results page with the given count
// phrase and data rows.
func resultsPage(countPhrase string, rows ...string) string {
	return fmt.Sprintf(`<html><body>
		<p>%s</p>
		<table class="table">
			<tr><th>Name</th><th>Office</th><th>Filing Year</th><th>Filing</th></tr>
			%s
		</table>
	</body></html>`, countPhrase, strings.Join(rows, "\n"))
}

func newTestDetector(t *testing.T, page string) (*Detector, *repository.Repository, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/FinancialDisclosure", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	})
	mux.HandleFunc("/FinancialDisclosure/ViewDisclosurePTP", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "2025", r.Form.Get("FilingYear"))
		fmt.Fprint(w, page)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	repo := repository.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	repo.Load("2025")

	cfg := config.TrackerConfig{
		BaseURL:    srv.URL + "/FinancialDisclosure",
		SearchURL:  srv.URL + "/FinancialDisclosure/ViewDisclosurePTP",
		FilingYear: 2025,
	}
	return New(cfg, repo, testLogger()), repo, srv
}

func TestCheckFindsNewFilings(t *testing.T) {
	page := resultsPage("Showing 1 to 2 of 2 entries",
		`<tr><td> Pelosi, Nancy </td><td>CA-11</td><td>2025</td><td><a href="/public_disc/ptr-pdfs/2025/20026335.pdf">PTR Original</a></td></tr>`,
		`<tr><td>Short, Row</td><td>only three cells</td><td>2025</td></tr>`,
		`<tr><td>No, Link</td><td>TX-02</td><td>2025</td><td>PTR Original</td></tr>`,
	)
	d, repo, srv := newTestDetector(t, page)

	filings, countIncreased := d.Check(context.Background())

	assert.True(t, countIncreased, "first observation of count 2 should report an increase")
	require.Len(t, filings, 1, "short rows and link-less rows must be skipped")

	f := filings[0]
	assert.Equal(t, "Pelosi, Nancy", f.Name)
	assert.Equal(t, "CA-11", f.Office)
	assert.Equal(t, "2025", f.FilingYear)
	assert.Equal(t, "PTR Original", f.FilingType)
	assert.Equal(t, srv.URL+"/public_disc/ptr-pdfs/2025/20026335.pdf", f.DocumentURL,
		"relative href must be absolutized against the site host")

	// The count is persisted even before any filing is committed.
	assert.Equal(t, 2, repo.ExpectedCount("2025"))
}

func TestCheckFiltersKnownIdentities(t *testing.T) {
	page := resultsPage("Showing 1 to 1 of 1 entries",
		`<tr><td>Pelosi, Nancy</td><td>CA-11</td><td>2025</td><td><a href="/doc.pdf">PTR Original</a></td></tr>`,
	)
	d, repo, srv := newTestDetector(t, page)

	filings, _ := d.Check(context.Background())
	require.Len(t, filings, 1)

	repo.Record(filings[0].Identity())

	again, countIncreased := d.Check(context.Background())
	assert.Empty(t, again, "recorded identity must never be returned as new")
	assert.False(t, countIncreased, "unchanged count must not report an increase")
	_ = srv
}

func TestCheckCountIncrease(t *testing.T) {
	page := resultsPage("Showing 1 to 10 of 6 entries")
	d, repo, _ := newTestDetector(t, page)
	repo.SetExpectedCount("2025", 5)

	_, countIncreased := d.Check(context.Background())
	assert.True(t, countIncreased)
	assert.Equal(t, 6, repo.ExpectedCount("2025"))

	// Observing the same total again is not an increase and leaves the
	// stored count unchanged.
	_, countIncreased = d.Check(context.Background())
	assert.False(t, countIncreased)
	assert.Equal(t, 6, repo.ExpectedCount("2025"))
}

func TestCheckPrimingFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	repo := repository.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	repo.Load("2025")
	d := New(config.TrackerConfig{
		BaseURL:    srv.URL,
		SearchURL:  srv.URL + "/search",
		FilingYear: 2025,
	}, repo, testLogger())

	filings, countIncreased := d.Check(context.Background())
	assert.Empty(t, filings)
	assert.False(t, countIncreased)
}

func TestCheckLastNameFilter(t *testing.T) {
	var gotLastName string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotLastName = r.Form.Get("LastName")
		fmt.Fprint(w, resultsPage("of 0 entries"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	repo := repository.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	repo.Load("2025")
	d := New(config.TrackerConfig{
		BaseURL:    srv.URL,
		SearchURL:  srv.URL + "/search",
		LastName:   "pelosi",
		FilingYear: 2025,
	}, repo, testLogger())

	d.Check(context.Background())
	assert.Equal(t, "pelosi", gotLastName)
}

func TestIdentityDeterministic(t *testing.T) {
	page := resultsPage("of 1 entries",
		`<tr><td>Pelosi, Nancy</td><td>CA-11</td><td>2025</td><td><a href="/doc.pdf">PTR Original</a></td></tr>`,
	)
	d, _, srv := newTestDetector(t, page)

	first, _ := d.Check(context.Background())
	require.Len(t, first, 1)
	assert.Equal(t,
		"Pelosi, Nancy_PTR Original_"+srv.URL+"/doc.pdf",
		first[0].Identity())
}
