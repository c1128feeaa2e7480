package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// --- Limiter ---

func TestLimiter_DisabledNeverBlocks(t *testing.T) {
	l := NewLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_SpacesRequests(t *testing.T) {
	l := NewLimiter(50) // 20ms apart
	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	// first slot is free, the remaining three wait 20ms each
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_CancelledContext(t *testing.T) {
	l := NewLimiter(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}

// --- Semantic Scholar ---

func TestSemanticScholarSearch(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"data": [{
			"paperId": "abc123",
			"title": "Attention Is All You Need",
			"abstract": "We propose the Transformer.",
			"year": 2017,
			"venue": "NeurIPS",
			"url": "https://example.org/paper",
			"authors": [{"name": "Ashish Vaswani"}, {"name": "Noam Shazeer"}],
			"externalIds": {"DOI": "10.1/xyz", "ArXiv": "1706.03762"},
			"openAccessPdf": {"url": "https://example.org/paper.pdf"},
			"citationCount": 90000
		}]
	}`)

	c := NewSemanticScholarClient(NewLimiter(0), "test/1.0", "").WithBaseURL(srv.URL)
	papers, err := c.Search(context.Background(), "transformers", 5)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, p.Authors)
	assert.Equal(t, 2017, p.Year)
	assert.Equal(t, "10.1/xyz", p.DOI)
	assert.Equal(t, "1706.03762", p.ArxivID)
	assert.Equal(t, "https://example.org/paper.pdf", p.PDFURL)
	assert.Equal(t, 90000, p.CitationCount)
}

func TestSemanticScholarPaperByDOI_NotFound(t *testing.T) {
	srv := jsonServer(t, 404, `{"error": "Paper not found"}`)

	c := NewSemanticScholarClient(NewLimiter(0), "test/1.0", "").WithBaseURL(srv.URL)
	_, err := c.PaperByDOI(context.Background(), "10.1/nope")
	require.Error(t, err)
	assert.True(t, NotFound(err))
}

func TestSemanticScholarRecommendations(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"recommendedPapers": [
			{"paperId": "r1", "title": "First", "year": 2020},
			{"paperId": "r2", "title": "Second", "year": 2021}
		]
	}`)

	c := NewSemanticScholarClient(NewLimiter(0), "test/1.0", "").WithBaseURL(srv.URL)
	papers, err := c.Recommendations(context.Background(), "DOI:10.1/xyz", 2)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, "Second", papers[1].Title)
}

func TestSemanticScholarAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	t.Cleanup(srv.Close)

	c := NewSemanticScholarClient(NewLimiter(0), "test/1.0", "sekrit").WithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", gotKey)
}

// --- CrossRef ---

func TestCrossRefWorkByDOI(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"message": {
			"DOI": "10.1038/nature14539",
			"title": ["Deep learning"],
			"author": [
				{"given": "Yann", "family": "LeCun"},
				{"given": "Yoshua", "family": "Bengio"}
			],
			"container-title": ["Nature"],
			"URL": "https://doi.org/10.1038/nature14539",
			"issued": {"date-parts": [[2015, 5]]}
		}
	}`)

	c := NewCrossRefClient(NewLimiter(0), "test/1.0", "dev@example.org").WithBaseURL(srv.URL)
	p, err := c.WorkByDOI(context.Background(), "10.1038/nature14539")
	require.NoError(t, err)
	assert.Equal(t, "Deep learning", p.Title)
	assert.Equal(t, []string{"Yann LeCun", "Yoshua Bengio"}, p.Authors)
	assert.Equal(t, "Nature", p.Venue)
	assert.Equal(t, 2015, p.Year)
}

func TestCrossRefSearchByTitle(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"message": {
			"items": [
				{"DOI": "10.1/a", "title": ["Paper A"]},
				{"DOI": "10.1/b", "title": ["Paper B"]}
			]
		}
	}`)

	c := NewCrossRefClient(NewLimiter(0), "test/1.0", "").WithBaseURL(srv.URL)
	papers, err := c.SearchByTitle(context.Background(), "paper", 2)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "10.1/a", papers[0].DOI)
}

// --- arXiv ---

const arxivFeedSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v5</id>
    <title>Attention Is All
 You Need</title>
    <summary>The dominant sequence transduction models are based on
 complex recurrent networks.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <link href="http://arxiv.org/abs/1706.03762v5" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v5" rel="related" type="application/pdf"/>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "max_results=3")
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(arxivFeedSample))
	}))
	t.Cleanup(srv.Close)

	c := NewArxivClient(NewLimiter(0), "test/1.0").WithBaseURL(srv.URL)
	papers, err := c.Search(context.Background(), "attention", 3)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Contains(t, p.Abstract, "sequence transduction models")
	assert.Equal(t, "1706.03762", p.ArxivID)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, p.Authors)
	assert.Equal(t, "http://arxiv.org/pdf/1706.03762v5", p.PDFURL)
	assert.Equal(t, 2017, p.Year)
}

func TestArxivIDFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/1706.03762", "1706.03762"},
		{"http://arxiv.org/abs/cs/0112017v1", "cs/0112017"},
		{"https://example.org/nothing", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, arxivIDFromURL(tt.in), tt.in)
	}
}

// --- APIError ---

func TestAPIErrorFormat(t *testing.T) {
	err := &APIError{Source: "crossref", Code: 500, Body: "boom"}
	assert.Equal(t, "crossref: 500 boom", err.Error())
	assert.False(t, NotFound(err))
}
