// Copyright 2025 Certen Protocol
//
// Package guest implements the proven pipeline: the single-threaded,
// allocation-light program whose GuestOutput callers pass to the proving
// primitive, which commits it to a receipt's journal. It is the one place
// where the LLM's analysis JSON
// is parsed and re-evaluated against the Verdict Engine and Concern
// Fingerprint — the guest never trusts the caller's stated verdict.
package guest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mnemom/aip-verdict-prover/pkg/fingerprint"
	"github.com/mnemom/aip-verdict-prover/pkg/model"
	"github.com/mnemom/aip-verdict-prover/pkg/verdict"
)

// ExtractJSON returns the substring of s spanning from the first '{' to the
// last '}' inclusive. If either delimiter is absent, or the first '{' comes
// after the last '}', s is returned unchanged. This tolerates markdown
// code-fence wrappers around the LLM's JSON output.
func ExtractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || start > end {
		return s
	}
	return s[start : end+1]
}

// Run executes the full guest pipeline over a GuestInput and returns the
// committed GuestOutput. It fails only on JSON parse failure — a failure
// here means the caller must not produce a receipt; no partial commit is
// possible.
func Run(input model.GuestInput) (model.GuestOutput, error) {
	candidate := ExtractJSON(input.AnalysisJSON)

	var analysis model.AnalysisResponse
	if err := json.Unmarshal([]byte(candidate), &analysis); err != nil {
		return model.GuestOutput{}, fmt.Errorf("parse analysis response: %w", err)
	}

	truncated := make([]model.Concern, len(analysis.Concerns))
	for i, c := range analysis.Concerns {
		truncated[i] = c.TruncateEvidence()
	}

	v := verdict.Derive(truncated)
	action := verdict.MapToAction(v, truncated)

	concernsHash, err := fingerprint.HashConcerns(truncated)
	if err != nil {
		return model.GuestOutput{}, fmt.Errorf("fingerprint concerns: %w", err)
	}

	return model.GuestOutput{
		Verdict:      v,
		Action:       action,
		ConcernsHash: concernsHash,
		ThinkingHash: input.ThinkingHash,
		CardHash:     input.CardHash,
		ValuesHash:   input.ValuesHash,
		Model:        input.Model,
	}, nil
}
