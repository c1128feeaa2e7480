package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/prompts"
)

// InfographicTool turns a paper into an infographic image: the model
// distills the paper into a structured summary, expands that into a
// creative brief, and the image model renders it. When the provider
// cannot generate images and fallback is enabled, the structured
// summary becomes the output instead.
type InfographicTool struct {
	deps *Deps
}

// NewInfographicTool creates the generate_infographic tool.
func NewInfographicTool(deps *Deps) *InfographicTool {
	return &InfographicTool{deps: deps}
}

func (t *InfographicTool) Name() string { return "generate_infographic" }

func (t *InfographicTool) Description() string {
	return "Generate an infographic image summarizing a paper. Saves the image to disk and returns its path, or a text summary if image generation is unavailable."
}

func (t *InfographicTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "description": "Paper title or arXiv ID"}
		},
		"required": ["title"]
	}`
}

// infographicSpec is the structured summary the model produces.
type infographicSpec struct {
	Title     string   `json:"title"`
	KeyPoints []string `json:"key_points"`
	Takeaway  string   `json:"takeaway"`
}

func (t *InfographicTool) Execute(ctx context.Context, input string) (string, error) {
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

	specText, err := t.deps.complete(ctx, t.deps.render(prompts.InfographicSpec, map[string]string{
		"paper": describePaper(paper),
	}))
	if err != nil {
		return "", fmt.Errorf("summarizing paper: %w", err)
	}

	var spec infographicSpec
	if err := json.Unmarshal([]byte(stripCodeFence(specText)), &spec); err != nil {
		return "", fmt.Errorf("parsing summary: %w", err)
	}

	path, genErr := t.generateImage(ctx, spec)
	if genErr == nil {
		return fmt.Sprintf("Infographic saved to %s\n\n%s", path, spec.text()), nil
	}

	if !t.deps.Config.InfographicFallbackEnabled() {
		return "", fmt.Errorf("image generation: %w", genErr)
	}

	t.deps.Log.Warn().Err(genErr).Msg("image generation unavailable, returning text summary")
	return "Image generation unavailable; infographic content as text:\n\n" + spec.text(), nil
}

func (t *InfographicTool) generateImage(ctx context.Context, spec infographicSpec) (string, error) {
	gen, ok := t.deps.Client.(llm.ImageGenerator)
	if !ok {
		return "", fmt.Errorf("provider %s cannot generate images", t.deps.Client.Name())
	}

	summary, _ := json.Marshal(spec)
	brief, err := t.deps.complete(ctx, t.deps.render(prompts.InfographicBrief, map[string]string{
		"summary": string(summary),
	}))
	if err != nil {
		return "", err
	}

	data, err := gen.GenerateImage(ctx, brief)
	if err != nil {
		return "", err
	}

	dir := t.deps.InfographicDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("infographic-%d.jpg", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (s infographicSpec) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Title)
	for _, p := range s.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	if s.Takeaway != "" {
		fmt.Fprintf(&b, "Takeaway: %s\n", s.Takeaway)
	}
	return strings.TrimSpace(b.String())
}
