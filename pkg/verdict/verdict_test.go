package verdict

import (
	"testing"

	"github.com/mnemom/aip-verdict-prover/pkg/model"
)

func concern(cat model.ConcernCategory, sev model.Severity) model.Concern {
	return model.Concern{Category: cat, Severity: sev, Description: "test concern"}
}

func TestScenarioTable(t *testing.T) {
	cases := []struct {
		name     string
		concerns []model.Concern
		verdict  model.Verdict
		action   model.Action
	}{
		{"empty", nil, model.VerdictClear, model.ActionContinue},
		{"low value misalignment", []model.Concern{concern(model.CategoryValueMisalignment, model.SeverityLow)}, model.VerdictClear, model.ActionContinue},
		{"medium autonomy violation", []model.Concern{concern(model.CategoryAutonomyViolation, model.SeverityMedium)}, model.VerdictReviewNeeded, model.ActionLogAndContinue},
		{"high autonomy violation", []model.Concern{concern(model.CategoryAutonomyViolation, model.SeverityHigh)}, model.VerdictReviewNeeded, model.ActionLogAndContinue},
		{"high prompt injection", []model.Concern{concern(model.CategoryPromptInjection, model.SeverityHigh)}, model.VerdictBoundaryViolation, model.ActionPauseForReview},
		{"high deceptive reasoning", []model.Concern{concern(model.CategoryDeceptiveReasoning, model.SeverityHigh)}, model.VerdictBoundaryViolation, model.ActionPauseForReview},
		{"high value misalignment", []model.Concern{concern(model.CategoryValueMisalignment, model.SeverityHigh)}, model.VerdictBoundaryViolation, model.ActionPauseForReview},
		{
			"mixed medium + critical",
			[]model.Concern{
				concern(model.CategoryValueMisalignment, model.SeverityMedium),
				concern(model.CategoryPromptInjection, model.SeverityCritical),
			},
			model.VerdictBoundaryViolation,
			model.ActionDenyAndEscalate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Derive(tc.concerns)
			if v != tc.verdict {
				t.Errorf("Derive() = %s, want %s", v, tc.verdict)
			}
			a := MapToAction(v, tc.concerns)
			if a != tc.action {
				t.Errorf("MapToAction() = %s, want %s", a, tc.action)
			}
		})
	}
}

func TestCriticalAlwaysBoundaryRegardlessOfCategory(t *testing.T) {
	v := Derive([]model.Concern{concern(model.CategoryUndeclaredIntent, model.SeverityCritical)})
	if v != model.VerdictBoundaryViolation {
		t.Errorf("expected boundary_violation, got %s", v)
	}
}

func TestHighReasoningCorruptionIsReviewNotBoundary(t *testing.T) {
	v := Derive([]model.Concern{concern(model.CategoryReasoningCorruption, model.SeverityHigh)})
	if v != model.VerdictReviewNeeded {
		t.Errorf("expected review_needed, got %s", v)
	}
}

func TestOrderDoesNotAffectVerdict(t *testing.T) {
	a := []model.Concern{
		concern(model.CategoryPromptInjection, model.SeverityCritical),
		concern(model.CategoryValueMisalignment, model.SeverityMedium),
	}
	b := []model.Concern{a[1], a[0]}

	if Derive(a) != Derive(b) {
		t.Errorf("verdict depends on concern order")
	}
}
