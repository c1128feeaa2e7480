package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/soyeahso/arena/internal/prompts"
	"github.com/soyeahso/arena/internal/scholar"
)

// SearchTool finds relevant papers: the model refines the topic into a
// search query, arXiv returns twice as many candidates as requested,
// and the model ranks them down to the final list.
type SearchTool struct {
	deps *Deps
}

// NewSearchTool creates the search_papers tool.
func NewSearchTool(deps *Deps) *SearchTool {
	return &SearchTool{deps: deps}
}

func (t *SearchTool) Name() string { return "search_papers" }

func (t *SearchTool) Description() string {
	return "Search arXiv for academic papers on a topic. Returns the most relevant papers with titles, authors, years, and abstracts."
}

func (t *SearchTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Research topic or question to search for"}
		},
		"required": ["query"]
	}`
}

func (t *SearchTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing input: %w", err)
	}

	limit := t.deps.Config.MaxSearchResults
	if limit <= 0 {
		limit = 5
	}

	refined, err := t.deps.complete(ctx, t.deps.render(prompts.QueryRefine, map[string]string{
		"topic": args.Query,
	}))
	if err != nil || refined == "" {
		// fall back to the raw topic rather than failing the search
		refined = args.Query
	}

	// over-fetch so the ranking step has candidates to discard
	candidates, err := t.deps.Arxiv.Search(ctx, refined, limit*2)
	if err != nil {
		return "", fmt.Errorf("arxiv search: %w", err)
	}
	if len(candidates) == 0 {
		return "No papers found for: " + args.Query, nil
	}

	ranked := t.rank(ctx, args.Query, candidates, limit)
	t.deps.savePapers(ranked)
	return formatPaperList(ranked), nil
}

// rank asks the model to order the candidates by relevance, falling
// back to arXiv's own order when the ranking reply is unusable.
func (t *SearchTool) rank(ctx context.Context, topic string, candidates []scholar.Paper, limit int) []scholar.Paper {
	if len(candidates) <= limit {
		return candidates
	}

	var b strings.Builder
	for i, p := range candidates {
		fmt.Fprintf(&b, "%d. %s (%d) - %s\n", i+1, p.Title, p.Year, firstSentence(p.Abstract))
	}

	reply, err := t.deps.complete(ctx, t.deps.render(prompts.PaperRank, map[string]string{
		"topic":      topic,
		"count":      strconv.Itoa(limit),
		"candidates": b.String(),
	}))
	if err != nil {
		t.deps.Log.Warn().Err(err).Msg("paper ranking failed, keeping arxiv order")
		return candidates[:limit]
	}

	picked := make([]scholar.Paper, 0, limit)
	seen := make(map[int]bool)
	for _, field := range strings.Split(reply, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 || n > len(candidates) || seen[n] {
			continue
		}
		seen[n] = true
		picked = append(picked, candidates[n-1])
		if len(picked) == limit {
			break
		}
	}
	if len(picked) == 0 {
		return candidates[:limit]
	}
	return picked
}

func firstSentence(s string) string {
	if idx := strings.Index(s, ". "); idx > 0 && idx < 300 {
		return s[:idx+1]
	}
	if len(s) > 300 {
		return s[:300]
	}
	return s
}

// formatPaperList renders papers for the model to read back.
func formatPaperList(papers []scholar.Paper) string {
	var b strings.Builder
	for i, p := range papers {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Title)
		if p.Year > 0 {
			fmt.Fprintf(&b, " (%d)", p.Year)
		}
		b.WriteString("\n")
		if len(p.Authors) > 0 {
			fmt.Fprintf(&b, "   Authors: %s\n", strings.Join(p.Authors, ", "))
		}
		if p.ArxivID != "" {
			fmt.Fprintf(&b, "   arXiv: %s\n", p.ArxivID)
		}
		if p.DOI != "" {
			fmt.Fprintf(&b, "   DOI: %s\n", p.DOI)
		}
		if p.Abstract != "" {
			fmt.Fprintf(&b, "   %s\n", firstSentence(p.Abstract))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
