package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/arena/internal/prompts"
)

// PostTool drafts a short social media post about a paper.
type PostTool struct {
	deps *Deps
}

// NewPostTool creates the write_post tool.
func NewPostTool(deps *Deps) *PostTool {
	return &PostTool{deps: deps}
}

func (t *PostTool) Name() string { return "write_post" }

func (t *PostTool) Description() string {
	return "Write a short social media post announcing a paper. Looks the paper up by title or arXiv ID first."
}

func (t *PostTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Paper title or arXiv ID"}
		},
		"required": ["title"]
	}`
}

func (t *PostTool) Execute(ctx context.Context, input string) (string, error) {
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

	return t.deps.complete(ctx, t.deps.render(prompts.SocialPost, map[string]string{
		"paper": describePaper(paper),
	}))
}
