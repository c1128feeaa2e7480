package scholar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const defaultSemanticScholarBaseURL = "https://api.semanticscholar.org"

const paperFields = "title,abstract,year,venue,authors,externalIds,url,openAccessPdf,citationCount"

// SemanticScholarClient talks to the Semantic Scholar Graph and
// Recommendations APIs.
type SemanticScholarClient struct {
	baseURL string
	doer    *httpDoer
}

// NewSemanticScholarClient creates a client. apiKey may be empty; the
// public endpoints work without one at a lower quota.
func NewSemanticScholarClient(limiter *Limiter, userAgent, apiKey string) *SemanticScholarClient {
	headers := map[string]string{}
	if apiKey != "" {
		headers["x-api-key"] = apiKey
	}
	return &SemanticScholarClient{
		baseURL: defaultSemanticScholarBaseURL,
		doer:    newHTTPDoer(limiter, userAgent, headers),
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *SemanticScholarClient) WithBaseURL(base string) *SemanticScholarClient {
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// Search finds papers matching the query, up to limit results.
func (c *SemanticScholarClient) Search(ctx context.Context, query string, limit int) ([]Paper, error) {
	endpoint := fmt.Sprintf("%s/graph/v1/paper/search?query=%s&limit=%d&fields=%s",
		c.baseURL, url.QueryEscape(query), limit, url.QueryEscape(paperFields))

	var result struct {
		Data []s2Paper `json:"data"`
	}
	if err := c.doer.getJSON(ctx, "semanticscholar", endpoint, &result); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(result.Data))
	for _, p := range result.Data {
		papers = append(papers, p.toPaper())
	}
	return papers, nil
}

// PaperByDOI fetches a single paper by DOI.
func (c *SemanticScholarClient) PaperByDOI(ctx context.Context, doi string) (*Paper, error) {
	endpoint := fmt.Sprintf("%s/graph/v1/paper/DOI:%s?fields=%s",
		c.baseURL, url.PathEscape(doi), url.QueryEscape(paperFields))

	var raw s2Paper
	if err := c.doer.getJSON(ctx, "semanticscholar", endpoint, &raw); err != nil {
		return nil, err
	}
	p := raw.toPaper()
	return &p, nil
}

// Recommendations returns papers related to the given paper ID. The ID
// may be a Semantic Scholar ID or a prefixed form like "DOI:..." or
// "ARXIV:...".
func (c *SemanticScholarClient) Recommendations(ctx context.Context, paperID string, limit int) ([]Paper, error) {
	endpoint := fmt.Sprintf("%s/recommendations/v1/papers/forpaper/%s?limit=%d&fields=%s",
		c.baseURL, url.PathEscape(paperID), limit, url.QueryEscape(paperFields))

	var result struct {
		RecommendedPapers []s2Paper `json:"recommendedPapers"`
	}
	if err := c.doer.getJSON(ctx, "semanticscholar", endpoint, &result); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(result.RecommendedPapers))
	for _, p := range result.RecommendedPapers {
		papers = append(papers, p.toPaper())
	}
	return papers, nil
}

// s2Paper mirrors the Semantic Scholar paper shape.
type s2Paper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
	Venue    string `json:"venue"`
	URL      string `json:"url"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ExternalIDs struct {
		DOI   string `json:"DOI"`
		ArXiv string `json:"ArXiv"`
	} `json:"externalIds"`
	OpenAccessPDF struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
	CitationCount int `json:"citationCount"`
}

func (p s2Paper) toPaper() Paper {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		authors = append(authors, a.Name)
	}
	return Paper{
		ID:            p.PaperID,
		Title:         p.Title,
		Authors:       authors,
		Abstract:      p.Abstract,
		Year:          p.Year,
		Venue:         p.Venue,
		DOI:           p.ExternalIDs.DOI,
		ArxivID:       p.ExternalIDs.ArXiv,
		URL:           p.URL,
		PDFURL:        p.OpenAccessPDF.URL,
		CitationCount: p.CitationCount,
	}
}
