package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/soyeahso/arena/internal/prompts"
	"github.com/soyeahso/arena/internal/scholar"
)

// reference is a bibliographic entry extracted from the input text.
type reference struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    int      `json:"year"`
	DOI     string   `json:"doi"`
}

// refCheck is the validation outcome for one reference.
type refCheck struct {
	Ref    reference
	Status string // "verified", "mismatch", "not_found"
	Found  *scholar.Paper
	Notes  string
}

// doiPattern matches DOIs in free text.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:a-zA-Z0-9]+`)

// extractReferences asks the model for structured references, falling
// back to a regex DOI scan when the reply is not parseable JSON.
func extractReferences(ctx context.Context, deps *Deps, text string) []reference {
	reply, err := deps.complete(ctx, deps.render(prompts.RefExtraction, map[string]string{
		"text": text,
	}))
	if err == nil {
		var refs []reference
		if jsonErr := json.Unmarshal([]byte(stripCodeFence(reply)), &refs); jsonErr == nil {
			return refs
		}
	}

	deps.Log.Warn().Msg("reference extraction fell back to DOI scan")
	var refs []reference
	seen := make(map[string]bool)
	for _, doi := range doiPattern.FindAllString(text, -1) {
		doi = strings.TrimRight(doi, ".,;)")
		if seen[doi] {
			continue
		}
		seen[doi] = true
		refs = append(refs, reference{DOI: doi})
	}
	return refs
}

// checkReference resolves one reference against the literature APIs:
// DOI lookup on Semantic Scholar, then CrossRef, then a title search.
func checkReference(ctx context.Context, deps *Deps, ref reference) refCheck {
	if ref.DOI != "" {
		if paper, err := deps.Scholar.PaperByDOI(ctx, ref.DOI); err == nil {
			return compareReference(ref, paper, "semantic scholar")
		} else if !scholar.NotFound(err) {
			deps.Log.Warn().Str("doi", ref.DOI).Err(err).Msg("semantic scholar lookup failed")
		}

		if paper, err := deps.CrossRef.WorkByDOI(ctx, ref.DOI); err == nil {
			return compareReference(ref, paper, "crossref")
		} else if !scholar.NotFound(err) {
			deps.Log.Warn().Str("doi", ref.DOI).Err(err).Msg("crossref lookup failed")
		}
	}

	if ref.Title != "" {
		if papers, err := deps.CrossRef.SearchByTitle(ctx, ref.Title, 1); err == nil && len(papers) > 0 {
			return compareReference(ref, &papers[0], "title search")
		}
	}

	return refCheck{
		Ref:    ref,
		Status: "not_found",
		Notes:  "no matching record in Semantic Scholar or CrossRef",
	}
}

// compareReference checks the cited metadata against the found record.
func compareReference(ref reference, paper *scholar.Paper, source string) refCheck {
	var problems []string

	if ref.Title != "" && paper.Title != "" && !titlesMatch(ref.Title, paper.Title) {
		problems = append(problems, fmt.Sprintf("title differs (record: %q)", paper.Title))
	}
	if ref.Year > 0 && paper.Year > 0 && absInt(ref.Year-paper.Year) > 1 {
		problems = append(problems, fmt.Sprintf("year differs (cited %d, record %d)", ref.Year, paper.Year))
	}

	check := refCheck{Ref: ref, Found: paper}
	if len(problems) == 0 {
		check.Status = "verified"
		check.Notes = "matched via " + source
	} else {
		check.Status = "mismatch"
		check.Notes = strings.Join(problems, "; ")
	}
	return check
}

// titlesMatch compares titles ignoring case, punctuation, and spacing.
func titlesMatch(a, b string) bool {
	return normalizeTitle(a) == normalizeTitle(b) ||
		strings.Contains(normalizeTitle(b), normalizeTitle(a)) ||
		strings.Contains(normalizeTitle(a), normalizeTitle(b))
}

func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
