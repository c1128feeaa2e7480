package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/arena/internal/prompts"
	"github.com/soyeahso/arena/internal/scholar"
)

// ExplainTool produces an accessible explanation of a paper found by
// title or arXiv ID.
type ExplainTool struct {
	deps *Deps
}

// NewExplainTool creates the explain_paper tool.
func NewExplainTool(deps *Deps) *ExplainTool {
	return &ExplainTool{deps: deps}
}

func (t *ExplainTool) Name() string { return "explain_paper" }

func (t *ExplainTool) Description() string {
	return "Explain an academic paper in accessible terms. Looks the paper up by title or arXiv ID and summarizes its problem, approach, and findings."
}

func (t *ExplainTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Paper title or arXiv ID"}
		},
		"required": ["title"]
	}`
}

func (t *ExplainTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing input: %w", err)
	}

	paper, err := lookupPaper(ctx, t.deps, args.Title)
	if err != nil {
		return "", err
	}

	return t.deps.complete(ctx, t.deps.render(prompts.Explainer, map[string]string{
		"paper": describePaper(paper),
	}))
}

// lookupPaper resolves a title or arXiv ID to a single paper, trying
// arXiv first and Semantic Scholar as the fallback.
func lookupPaper(ctx context.Context, deps *Deps, ref string) (*scholar.Paper, error) {
	papers, err := deps.Arxiv.Search(ctx, ref, 1)
	if err == nil && len(papers) > 0 {
		return &papers[0], nil
	}

	results, err := deps.Scholar.Search(ctx, ref, 1)
	if err != nil {
		return nil, fmt.Errorf("paper lookup: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no paper found for %q", ref)
	}
	return &results[0], nil
}

// describePaper renders a paper's metadata and abstract as prompt input.
func describePaper(p *scholar.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	if len(p.Authors) > 0 {
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(p.Authors, ", "))
	}
	if p.Year > 0 {
		fmt.Fprintf(&b, "Year: %d\n", p.Year)
	}
	if p.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", p.Venue)
	}
	if p.Abstract != "" {
		fmt.Fprintf(&b, "Abstract: %s\n", p.Abstract)
	}
	return b.String()
}
