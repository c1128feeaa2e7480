package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Paper is the normalized record all scholar sources map onto.
type Paper struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	Year          int      `json:"year,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	ArxivID       string   `json:"arxivId,omitempty"`
	URL           string   `json:"url,omitempty"`
	PDFURL        string   `json:"pdfUrl,omitempty"`
	CitationCount int      `json:"citationCount,omitempty"`
}

// APIError is returned for non-2xx responses from a scholar source.
type APIError struct {
	Source string
	Code   int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Source, e.Code, e.Body)
}

// NotFound reports whether err is a 404 from a scholar source.
func NotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// httpDoer is the transport shared by the scholar clients.
type httpDoer struct {
	client    *http.Client
	limiter   *Limiter
	userAgent string
	headers   map[string]string
}

func newHTTPDoer(limiter *Limiter, userAgent string, headers map[string]string) *httpDoer {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil

	return &httpDoer{
		client:    rc.StandardClient(),
		limiter:   limiter,
		userAgent: userAgent,
		headers:   headers,
	}
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
func (d *httpDoer) getJSON(ctx context.Context, source, url string, out any) error {
	body, err := d.get(ctx, source, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", source, err)
	}
	return nil
}

// get performs a rate-limited GET and returns the raw body.
func (d *httpDoer) get(ctx context.Context, source, url string) ([]byte, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", source, err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Source: source, Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
