package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// RecommendTool suggests related reading via the Semantic Scholar
// recommendations API, seeded by a DOI or arXiv ID.
type RecommendTool struct {
	deps *Deps
}

// NewRecommendTool creates the recommend_papers tool.
func NewRecommendTool(deps *Deps) *RecommendTool {
	return &RecommendTool{deps: deps}
}

func (t *RecommendTool) Name() string { return "recommend_papers" }

func (t *RecommendTool) Description() string {
	return "Recommend papers related to a given paper, identified by DOI or arXiv ID."
}

func (t *RecommendTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"identifier": {"type": "string", "description": "DOI (10.x/...) or arXiv ID (e.g. 1706.03762)"}
		},
		"required": ["identifier"]
	}`
}

func (t *RecommendTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing input: %w", err)
	}

	limit := t.deps.Config.MaxSearchResults
	if limit <= 0 {
		limit = 5
	}

	papers, err := t.deps.Scholar.Recommendations(ctx, paperID(args.Identifier), limit)
	if err != nil {
		return "", fmt.Errorf("recommendations: %w", err)
	}
	if len(papers) == 0 {
		return "No recommendations found for " + args.Identifier, nil
	}
	t.deps.savePapers(papers)
	return formatPaperList(papers), nil
}

// paperID prefixes the identifier the way the Semantic Scholar API
// expects: DOI:... for DOIs, ARXIV:... for arXiv IDs.
func paperID(identifier string) string {
	id := strings.TrimSpace(identifier)
	switch {
	case strings.Contains(id, ":"):
		return id
	case strings.HasPrefix(id, "10."):
		return "DOI:" + id
	default:
		return "ARXIV:" + id
	}
}
