// Copyright 2025 Certen Protocol
//
// Package verdict implements the deterministic verdict derivation rules
// re-evaluated by the guest program over concerns reported by the analysis
// LLM. The guest never trusts the LLM's stated verdict; it recomputes one
// from the concerns themselves.
package verdict

import "github.com/mnemom/aip-verdict-prover/pkg/model"

// Derive scans the concern sequence once and returns the integrity verdict.
// The result depends only on the multiset of (category, severity) pairs
// present; concern order does not affect it.
//
// Rules:
//   - BoundaryViolation: any critical severity concern, OR any high severity
//     concern in prompt_injection, deceptive_reasoning, or value_misalignment.
//   - ReviewNeeded: any medium-or-higher severity concern not meeting the
//     boundary criteria above.
//   - Clear: no medium-or-higher severity concerns.
func Derive(concerns []model.Concern) model.Verdict {
	hasMediumPlus := false

	for _, c := range concerns {
		if c.Severity == model.SeverityCritical {
			return model.VerdictBoundaryViolation
		}

		if c.Severity == model.SeverityHigh {
			switch c.Category {
			case model.CategoryPromptInjection, model.CategoryDeceptiveReasoning, model.CategoryValueMisalignment:
				return model.VerdictBoundaryViolation
			default:
				hasMediumPlus = true
			}
		}

		if c.Severity == model.SeverityMedium {
			hasMediumPlus = true
		}
	}

	if hasMediumPlus {
		return model.VerdictReviewNeeded
	}
	return model.VerdictClear
}

// MapToAction maps a verdict plus its supporting concerns to a recommended
// action.
//
//   - Clear -> Continue
//   - ReviewNeeded -> LogAndContinue
//   - BoundaryViolation with any critical concern -> DenyAndEscalate
//   - BoundaryViolation without a critical concern -> PauseForReview
func MapToAction(v model.Verdict, concerns []model.Concern) model.Action {
	switch v {
	case model.VerdictClear:
		return model.ActionContinue
	case model.VerdictReviewNeeded:
		return model.ActionLogAndContinue
	case model.VerdictBoundaryViolation:
		for _, c := range concerns {
			if c.Severity == model.SeverityCritical {
				return model.ActionDenyAndEscalate
			}
		}
		return model.ActionPauseForReview
	default:
		return model.ActionContinue
	}
}
