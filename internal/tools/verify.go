package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// VerifyTool checks a piece of writing two ways: its references are
// resolved against the literature databases, and its factual claims
// are judged against published evidence.
type VerifyTool struct {
	deps *Deps
}

// NewVerifyTool creates the verify_sources tool.
func NewVerifyTool(deps *Deps) *VerifyTool {
	return &VerifyTool{deps: deps}
}

func (t *VerifyTool) Name() string { return "verify_sources" }

func (t *VerifyTool) Description() string {
	return "Verify the references and factual claims in a piece of text against Semantic Scholar and CrossRef. Returns a plain-text report."
}

func (t *VerifyTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"text": {"type": "string", "description": "The text whose references and claims should be verified"}
		},
		"required": ["text"]
	}`
}

func (t *VerifyTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing input: %w", err)
	}
	if strings.TrimSpace(args.Text) == "" {
		return "", fmt.Errorf("text is empty")
	}

	refs := extractReferences(ctx, t.deps, args.Text)
	refChecks := make([]refCheck, 0, len(refs))
	for _, ref := range refs {
		refChecks = append(refChecks, checkReference(ctx, t.deps, ref))
	}

	claims := extractClaims(ctx, t.deps, args.Text)
	claimChecks := make([]claimCheck, 0, len(claims))
	for _, claim := range claims {
		claimChecks = append(claimChecks, verifyClaim(ctx, t.deps, claim))
	}

	return formatReport(refChecks, claimChecks), nil
}

// formatReport renders the verification outcome as plain text.
func formatReport(refs []refCheck, claims []claimCheck) string {
	var b strings.Builder

	b.WriteString("SOURCE VERIFICATION REPORT\n\n")

	b.WriteString("References\n")
	if len(refs) == 0 {
		b.WriteString("  No references found.\n")
	}
	for _, rc := range refs {
		label := rc.Ref.Title
		if label == "" {
			label = rc.Ref.DOI
		}
		fmt.Fprintf(&b, "  [%s] %s\n", strings.ToUpper(rc.Status), label)
		if rc.Notes != "" {
			fmt.Fprintf(&b, "      %s\n", rc.Notes)
		}
	}

	b.WriteString("\nClaims\n")
	if len(claims) == 0 {
		b.WriteString("  No checkable claims found.\n")
	}
	for _, cc := range claims {
		fmt.Fprintf(&b, "  [%s] %s\n", strings.ToUpper(cc.Verdict), cc.Claim)
		if cc.Confidence > 0 {
			fmt.Fprintf(&b, "      confidence: %.2f\n", cc.Confidence)
		}
		if cc.Reasoning != "" {
			fmt.Fprintf(&b, "      %s\n", cc.Reasoning)
		}
	}

	verified := 0
	for _, rc := range refs {
		if rc.Status == "verified" {
			verified++
		}
	}
	supported := 0
	for _, cc := range claims {
		if cc.Verdict == "supported" {
			supported++
		}
	}
	fmt.Fprintf(&b, "\nSummary: %d/%d references verified, %d/%d claims supported.\n",
		verified, len(refs), supported, len(claims))

	return b.String()
}
