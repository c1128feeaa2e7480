package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/soyeahso/arena/internal/prompts"
)

// PDFTool extracts text from a local PDF and has the model analyze it.
// Extraction is capped so a thesis-sized document cannot blow up the
// prompt.
type PDFTool struct {
	deps *Deps
}

// NewPDFTool creates the analyze_pdf tool.
func NewPDFTool(deps *Deps) *PDFTool {
	return &PDFTool{deps: deps}
}

func (t *PDFTool) Name() string { return "analyze_pdf" }

func (t *PDFTool) Description() string {
	return "Analyze a PDF document on disk: extract its text and summarize the content, contributions, and methods."
}

func (t *PDFTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Filesystem path of the PDF to analyze"}
		},
		"required": ["path"]
	}`
}

func (t *PDFTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing input: %w", err)
	}

	maxChars := t.deps.Config.PDFMaxChars
	if maxChars <= 0 {
		maxChars = 10000
	}

	text, truncated, err := extractPDFText(args.Path, maxChars)
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no extractable text in %s", args.Path)
	}
	if truncated {
		text += "\n\n[Document truncated for analysis]"
	}

	return t.deps.complete(ctx, t.deps.render(prompts.PDFAnalysis, map[string]string{
		"text": text,
	}))
}

// extractPDFText pulls plain text out of the PDF, stopping once
// maxChars have been collected.
func extractPDFText(path string, maxChars int) (string, bool, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	var b strings.Builder
	truncated := false

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")

		if b.Len() >= maxChars {
			truncated = true
			break
		}
	}

	text := b.String()
	if len(text) > maxChars {
		runes := []rune(text)
		if len(runes) > maxChars {
			text = string(runes[:maxChars])
		}
		truncated = true
	}
	return text, truncated, nil
}
