package guest

import (
	"testing"

	"github.com/mnemom/aip-verdict-prover/pkg/model"
)

func TestExtractJSONStripsMarkdownFences(t *testing.T) {
	wrapped := "```json\n{\"verdict\":\"clear\",\"concerns\":[],\"confidence\":0.9,\"reasoning_summary\":\"ok\"}\n```"
	got := ExtractJSON(wrapped)
	want := `{"verdict":"clear","concerns":[],"confidence":0.9,"reasoning_summary":"ok"}`
	if got != want {
		t.Errorf("ExtractJSON() = %q, want %q", got, want)
	}
}

func TestExtractJSONNoDelimitersReturnsUnchanged(t *testing.T) {
	s := "not json at all"
	if got := ExtractJSON(s); got != s {
		t.Errorf("ExtractJSON() = %q, want unchanged %q", got, s)
	}
}

func TestExtractJSONBracesReversedReturnsUnchanged(t *testing.T) {
	s := "} some text {"
	if got := ExtractJSON(s); got != s {
		t.Errorf("ExtractJSON() = %q, want unchanged %q", got, s)
	}
}

func TestRunStatedVerdictIsDiscarded(t *testing.T) {
	input := model.GuestInput{
		AnalysisJSON: `{"verdict":"clear","concerns":[{"category":"prompt_injection","severity":"critical","description":"d","evidence":"e"}],"confidence":0.5,"reasoning_summary":"r"}`,
		ThinkingHash: "thash",
		CardHash:     "chash",
		ValuesHash:   "vhash",
		Model:        "claude-haiku-4-5-20251001",
	}

	out, err := Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Verdict != model.VerdictBoundaryViolation {
		t.Errorf("expected recomputed boundary_violation verdict, got %s (stated verdict was clear)", out.Verdict)
	}
	if out.Action != model.ActionDenyAndEscalate {
		t.Errorf("expected deny_and_escalate, got %s", out.Action)
	}
}

func TestRunPassesThroughHashesAndModelVerbatim(t *testing.T) {
	input := model.GuestInput{
		AnalysisJSON: `{"verdict":"clear","concerns":[],"confidence":1,"reasoning_summary":"r"}`,
		ThinkingHash: "aaaa",
		CardHash:     "bbbb",
		ValuesHash:   "cccc",
		Model:        "test-model",
	}
	out, err := Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.ThinkingHash != "aaaa" || out.CardHash != "bbbb" || out.ValuesHash != "cccc" || out.Model != "test-model" {
		t.Errorf("pass-through fields not copied verbatim: %+v", out)
	}
	if out.Verdict != model.VerdictClear || out.Action != model.ActionContinue {
		t.Errorf("expected clear/continue for no concerns, got %s/%s", out.Verdict, out.Action)
	}
}

func TestRunParseFailureReturnsError(t *testing.T) {
	input := model.GuestInput{AnalysisJSON: "no braces here"}
	if _, err := Run(input); err == nil {
		t.Errorf("expected parse failure error, got nil")
	}
}

func TestRunTruncatesEvidenceBeforeFingerprinting(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	analysisJSON := `{"verdict":"clear","concerns":[{"category":"undeclared_intent","severity":"low","description":"d","evidence":"` + string(long) + `"}],"confidence":1,"reasoning_summary":"r"}`

	out, err := Run(model.GuestInput{AnalysisJSON: analysisJSON})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.ConcernsHash) != 64 {
		t.Errorf("expected 64-char fingerprint, got %d", len(out.ConcernsHash))
	}

	// The same concern with evidence already cut to MaxEvidenceLength must
	// fingerprint identically.
	shortJSON := `{"verdict":"clear","concerns":[{"category":"undeclared_intent","severity":"low","description":"d","evidence":"` + string(long[:model.MaxEvidenceLength]) + `"}],"confidence":1,"reasoning_summary":"r"}`
	shortOut, err := Run(model.GuestInput{AnalysisJSON: shortJSON})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.ConcernsHash != shortOut.ConcernsHash {
		t.Errorf("500-char evidence hash %s != 200-char evidence hash %s", out.ConcernsHash, shortOut.ConcernsHash)
	}
}
