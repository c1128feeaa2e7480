package scholar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const defaultCrossRefBaseURL = "https://api.crossref.org"

// CrossRefClient talks to the CrossRef works API. It is the fallback
// source when Semantic Scholar has no record for a DOI.
type CrossRefClient struct {
	baseURL string
	doer    *httpDoer
}

// NewCrossRefClient creates a client. mailto joins the polite pool and
// may be empty.
func NewCrossRefClient(limiter *Limiter, userAgent, mailto string) *CrossRefClient {
	ua := userAgent
	if mailto != "" {
		ua = fmt.Sprintf("%s (mailto:%s)", userAgent, mailto)
	}
	return &CrossRefClient{
		baseURL: defaultCrossRefBaseURL,
		doer:    newHTTPDoer(limiter, ua, nil),
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *CrossRefClient) WithBaseURL(base string) *CrossRefClient {
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// WorkByDOI fetches a single work by DOI.
func (c *CrossRefClient) WorkByDOI(ctx context.Context, doi string) (*Paper, error) {
	endpoint := fmt.Sprintf("%s/works/%s", c.baseURL, url.PathEscape(doi))

	var result struct {
		Message crossRefWork `json:"message"`
	}
	if err := c.doer.getJSON(ctx, "crossref", endpoint, &result); err != nil {
		return nil, err
	}
	p := result.Message.toPaper()
	return &p, nil
}

// SearchByTitle finds works whose title matches, up to rows results.
func (c *CrossRefClient) SearchByTitle(ctx context.Context, title string, rows int) ([]Paper, error) {
	endpoint := fmt.Sprintf("%s/works?query.title=%s&rows=%d",
		c.baseURL, url.QueryEscape(title), rows)

	var result struct {
		Message struct {
			Items []crossRefWork `json:"items"`
		} `json:"message"`
	}
	if err := c.doer.getJSON(ctx, "crossref", endpoint, &result); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(result.Message.Items))
	for _, item := range result.Message.Items {
		papers = append(papers, item.toPaper())
	}
	return papers, nil
}

// crossRefWork mirrors the CrossRef work shape.
type crossRefWork struct {
	DOI    string   `json:"DOI"`
	Title  []string `json:"title"`
	Author []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	ContainerTitle []string `json:"container-title"`
	URL            string   `json:"URL"`
	Issued         struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

func (w crossRefWork) toPaper() Paper {
	p := Paper{DOI: w.DOI, URL: w.URL}
	if len(w.Title) > 0 {
		p.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		p.Venue = w.ContainerTitle[0]
	}
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		p.Year = w.Issued.DateParts[0][0]
	}
	return p
}
