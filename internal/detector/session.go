package detector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Session is a cookie-carrying HTTP client for the disclosure site.
// The site issues session cookies on its landing page that the search
// endpoint expects, so all requests of one check share a jar.
type Session struct {
	client *http.Client
}

// NewSession creates a session with a fresh cookie jar.
func NewSession() *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Prime issues a GET against the site landing page to establish
// session-level cookies. The body is discarded.
func (s *Session) Prime(ctx context.Context, baseURL string) error {
	body, err := s.do(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return err
	}
	defer body.Close()
	_, _ = io.Copy(io.Discard, body)
	return nil
}

// Search posts the disclosure search form for the given filing year.
// lastName is optional; when empty the whole year's roster is queried.
// Returns the raw HTML of the results page.
func (s *Session) Search(ctx context.Context, searchURL string, filingYear int, lastName string) (string, error) {
	form := url.Values{
		"FilingYear": {strconv.Itoa(filingYear)},
		"State":      {""},
		"District":   {""},
	}
	if lastName != "" {
		form.Set("LastName", lastName)
	}

	body, err := s.do(ctx, http.MethodPost, searchURL, form)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	return string(data), nil
}

// Download fetches raw document bytes from an absolute URL.
func (s *Session) Download(ctx context.Context, docURL string) ([]byte, error) {
	body, err := s.do(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", docURL, err)
	}
	return data, nil
}

// do performs an HTTP request with default headers, returning the
// response body. The caller is responsible for closing it.
func (s *Session) do(ctx context.Context, method, reqURL string, form url.Values) (io.ReadCloser, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP %s %s: %w", method, reqURL, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
