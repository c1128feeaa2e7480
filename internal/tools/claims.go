package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/arena/internal/prompts"
)

// claimCheck is the verification outcome for one factual claim.
type claimCheck struct {
	Claim      string
	Verdict    string // "supported", "contradicted", "unverifiable"
	Confidence float64
	Reasoning  string
}

// extractClaims asks the model for the text's checkable factual claims.
func extractClaims(ctx context.Context, deps *Deps, text string) []string {
	reply, err := deps.complete(ctx, deps.render(prompts.ClaimExtraction, map[string]string{
		"text": text,
	}))
	if err != nil {
		deps.Log.Warn().Err(err).Msg("claim extraction failed")
		return nil
	}

	var claims []string
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &claims); err != nil {
		deps.Log.Warn().Err(err).Msg("claim extraction returned unparseable output")
		return nil
	}
	return claims
}

// verifyClaim gathers literature evidence for the claim and has the
// model judge it.
func verifyClaim(ctx context.Context, deps *Deps, claim string) claimCheck {
	check := claimCheck{Claim: claim, Verdict: "unverifiable"}

	papers, err := deps.Scholar.Search(ctx, claim, 3)
	if err != nil {
		deps.Log.Warn().Err(err).Msg("evidence search failed")
		check.Reasoning = "evidence search failed"
		return check
	}
	if len(papers) == 0 {
		check.Reasoning = "no related literature found"
		return check
	}

	var evidence strings.Builder
	for i, p := range papers {
		fmt.Fprintf(&evidence, "%d. %s (%d)\n", i+1, p.Title, p.Year)
		if p.Abstract != "" {
			fmt.Fprintf(&evidence, "%s\n", firstSentence(p.Abstract))
		}
	}

	reply, err := deps.complete(ctx, deps.render(prompts.ClaimVerdict, map[string]string{
		"claim":    claim,
		"evidence": evidence.String(),
	}))
	if err != nil {
		check.Reasoning = "judgment unavailable"
		return check
	}

	var verdict struct {
		Verdict    string  `json:"verdict"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &verdict); err != nil {
		check.Reasoning = "judgment was not parseable"
		return check
	}

	switch verdict.Verdict {
	case "supported", "contradicted", "unverifiable":
		check.Verdict = verdict.Verdict
	}
	check.Confidence = verdict.Confidence
	check.Reasoning = verdict.Reasoning
	return check
}
