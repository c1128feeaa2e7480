package tools

import (
	"slices"

	"github.com/soyeahso/arena/internal/agent"
)

// All constructs every tool against the shared dependencies.
func All(deps *Deps) []agent.Tool {
	return []agent.Tool{
		NewSearchTool(deps),
		NewExplainTool(deps),
		NewPostTool(deps),
		NewPDFTool(deps),
		NewInfographicTool(deps),
		NewVerifyTool(deps),
		NewRecommendTool(deps),
	}
}

// Register adds all tools to the registry, skipping disabled names.
func Register(reg *agent.ToolRegistry, deps *Deps, disabled []string) error {
	for _, tool := range All(deps) {
		if slices.Contains(disabled, tool.Name()) {
			continue
		}
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
