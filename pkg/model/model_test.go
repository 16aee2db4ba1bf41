package model

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	cases := []struct {
		lo, hi Severity
	}{
		{SeverityLow, SeverityMedium},
		{SeverityMedium, SeverityHigh},
		{SeverityHigh, SeverityCritical},
	}
	for _, c := range cases {
		if !c.lo.Less(c.hi) {
			t.Errorf("%s should be less than %s", c.lo, c.hi)
		}
		if c.hi.Less(c.lo) {
			t.Errorf("%s should not be less than %s", c.hi, c.lo)
		}
	}
}

func TestTruncateEvidenceUnderLimit(t *testing.T) {
	c := Concern{Evidence: "short"}
	out := c.TruncateEvidence()
	if out.Evidence != "short" {
		t.Errorf("expected unchanged evidence, got %q", out.Evidence)
	}
}

func TestTruncateEvidenceOverLimit(t *testing.T) {
	long := make([]rune, 500)
	for i := range long {
		long[i] = 'x'
	}
	c := Concern{Evidence: string(long)}
	out := c.TruncateEvidence()
	if len([]rune(out.Evidence)) != MaxEvidenceLength {
		t.Errorf("expected truncated length %d, got %d", MaxEvidenceLength, len([]rune(out.Evidence)))
	}
}

func TestConcernJSONFieldOrder(t *testing.T) {
	c := Concern{
		Category:    CategoryPromptInjection,
		Severity:    SeverityHigh,
		Description: "test",
		Evidence:    "ev",
	}
	// Field order is enforced by struct declaration order.
	got, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"category":"prompt_injection","severity":"high","description":"test","evidence":"ev"}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
