package agent

import (
	"fmt"
	"strings"
	"time"
)

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	AgentName   string
	Model       string
	ToolNames   []string
	ExtraPrompt string
}

// BuildSystemPrompt constructs the system prompt for the LLM. Tool
// schemas are passed natively on the request, so the prompt only names
// the capabilities and sets expectations.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	name := cfg.AgentName
	if name == "" {
		name = "Arena"
	}
	fmt.Fprintf(&b, "You are %s, a research assistant for academic literature.\n", name)
	fmt.Fprintf(&b, "Current date: %s\n\n", time.Now().Format("2006-01-02"))

	b.WriteString("Guidelines:\n")
	b.WriteString("- Ground every claim about a paper in tool output; never invent citations.\n")
	b.WriteString("- When using tools, briefly tell the user what you're doing.\n")
	b.WriteString("- If a tool fails, work with what you have or ask the user to clarify.\n")

	if len(cfg.ToolNames) > 0 {
		fmt.Fprintf(&b, "\nAvailable tools: %s\n", strings.Join(cfg.ToolNames, ", "))
	}

	if cfg.ExtraPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.ExtraPrompt)
		b.WriteString("\n")
	}

	return b.String()
}
