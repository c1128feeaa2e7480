package scholar

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

const defaultArxivBaseURL = "http://export.arxiv.org"

// ArxivClient talks to the arXiv Atom query API.
type ArxivClient struct {
	baseURL string
	doer    *httpDoer
}

// NewArxivClient creates a client.
func NewArxivClient(limiter *Limiter, userAgent string) *ArxivClient {
	return &ArxivClient{
		baseURL: defaultArxivBaseURL,
		doer:    newHTTPDoer(limiter, userAgent, nil),
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *ArxivClient) WithBaseURL(base string) *ArxivClient {
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// Search runs a free-text query sorted by relevance.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	endpoint := fmt.Sprintf("%s/api/query?search_query=%s&start=0&max_results=%d&sortBy=relevance",
		c.baseURL, url.QueryEscape("all:"+query), maxResults)

	body, err := c.doer.get(ctx, "arxiv", endpoint)
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv: failed to parse feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		papers = append(papers, e.toPaper())
	}
	return papers, nil
}

// arxivFeed mirrors the Atom feed returned by the arXiv API.
type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	} `xml:"link"`
	DOI string `xml:"doi"`
}

func (e arxivEntry) toPaper() Paper {
	p := Paper{
		Title:    collapseWhitespace(e.Title),
		Abstract: collapseWhitespace(e.Summary),
		URL:      e.ID,
		DOI:      e.DOI,
		ArxivID:  arxivIDFromURL(e.ID),
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
		}
	}
	if len(e.Published) >= 4 {
		fmt.Sscanf(e.Published[:4], "%d", &p.Year)
	}
	return p
}

// arxivIDFromURL strips the abs URL prefix and version suffix from an
// entry ID like http://arxiv.org/abs/1706.03762v5.
func arxivIDFromURL(u string) string {
	idx := strings.Index(u, "/abs/")
	if idx < 0 {
		return ""
	}
	id := u[idx+len("/abs/"):]
	if v := strings.LastIndex(id, "v"); v > 0 {
		digitsOnly := true
		for _, r := range id[v+1:] {
			if r < '0' || r > '9' {
				digitsOnly = false
				break
			}
		}
		if digitsOnly && v+1 < len(id) {
			id = id[:v]
		}
	}
	return id
}

// collapseWhitespace folds the newline-wrapped text arXiv returns into
// single-spaced prose.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
