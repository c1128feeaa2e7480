// Package tools implements the research tools the agent can call:
// paper search, explanation, social posts, PDF analysis, infographic
// generation, source verification, and recommendations.
package tools

import (
	"context"
	"strings"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/prompts"
	"github.com/soyeahso/arena/internal/scholar"
)

// PaperSaver records papers the assistant has surfaced, so they can be
// browsed later. The SQLite library implements it.
type PaperSaver interface {
	SaveAll(papers []scholar.Paper) error
}

// Deps bundles the shared dependencies of the tool implementations.
type Deps struct {
	Client   llm.Client
	Prompts  *prompts.Store
	Arxiv    *scholar.ArxivClient
	Scholar  *scholar.SemanticScholarClient
	CrossRef *scholar.CrossRefClient
	Config   config.ToolsConfig
	// Library, when set, receives every paper returned to the model.
	Library PaperSaver
	// InfographicDir receives generated images. Empty disables saving.
	InfographicDir string
	Log            *logging.Logger
}

// complete runs a single-turn completion and returns the trimmed text.
func (d *Deps) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := d.Client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// render fills a named prompt template.
func (d *Deps) render(name string, vars map[string]string) string {
	return d.Prompts.Render(name, vars)
}

// savePapers records papers in the library, best effort.
func (d *Deps) savePapers(papers []scholar.Paper) {
	if d.Library == nil || len(papers) == 0 {
		return
	}
	if err := d.Library.SaveAll(papers); err != nil {
		d.Log.Warn().Err(err).Msg("saving papers to library failed")
	}
}

// stripCodeFence removes a surrounding markdown code fence, which
// models wrap around JSON despite instructions not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
