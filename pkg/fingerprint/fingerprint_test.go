package fingerprint

import (
	"strings"
	"testing"

	"github.com/mnemom/aip-verdict-prover/pkg/model"
)

func TestHashEmptyConcerns(t *testing.T) {
	hash, err := HashConcerns(nil)
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(hash))
	}
}

// TestHashMatchesReferenceVectors pins HashConcerns to digests computed
// independently over the exact wire bytes the reference (serde_json /
// JSON.stringify) would produce for the same input: a SHA-256 of the
// unescaped JSON array, field order category/severity/description/evidence,
// no whitespace. A byte-for-byte mismatch here means this implementation has
// drifted from the cross-language conformance contract (§4.3/§8), not just
// from itself.
func TestHashMatchesReferenceVectors(t *testing.T) {
	cases := []struct {
		name     string
		concerns []model.Concern
		want     string
	}{
		{
			name:     "empty",
			concerns: nil,
			want:     "4f53cda18c2baa0c0354bb5f9a3ecbe5ed12ab4d8e11ba873c2f11161202b945",
		},
		{
			// Evidence and description deliberately carry '&' and '<'/'>' —
			// the characters encoding/json.Marshal HTML-escapes by default
			// but serde_json/JSON.stringify do not. A reference hash over
			// unescaped bytes here is what catches that divergence.
			name: "html-sensitive characters",
			concerns: []model.Concern{{
				Category:    model.CategoryPromptInjection,
				Severity:    model.SeverityCritical,
				Description: "Ignore all previous instructions & <system> override",
				Evidence:    "payload: <script>alert(1)</script> & more",
			}},
			want: "b6e69e7c32afe537a8faaa9ff46c3caa359e7d20cbd051bfe382c257638e1689",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HashConcerns(tc.concerns)
			if err != nil {
				t.Fatalf("HashConcerns: %v", err)
			}
			if got != tc.want {
				t.Errorf("HashConcerns() = %s, want reference vector %s", got, tc.want)
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	concerns := []model.Concern{{
		Category:    model.CategoryPromptInjection,
		Severity:    model.SeverityCritical,
		Description: "Test injection attempt",
		Evidence:    "suspicious content",
	}}
	h1, err := HashConcerns(concerns)
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}
	h2, err := HashConcerns(concerns)
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}
	if h1 != h2 {
		t.Errorf("fingerprint is not deterministic: %s != %s", h1, h2)
	}
}

func TestEvidenceTruncationBoundary(t *testing.T) {
	evidence200 := strings.Repeat("x", 200)
	evidence201 := strings.Repeat("x", 201)

	c200 := model.Concern{Category: model.CategoryPromptInjection, Severity: model.SeverityHigh, Description: "d", Evidence: evidence200}
	c201 := model.Concern{Category: model.CategoryPromptInjection, Severity: model.SeverityHigh, Description: "d", Evidence: evidence201}

	h200, err := HashConcerns([]model.Concern{c200})
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}
	h201, err := HashConcerns([]model.Concern{c201})
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}

	if h200 != h201 {
		t.Errorf("200-char and 201-char evidence should fingerprint identically after truncation")
	}
}

func TestFieldOrderIsFixed(t *testing.T) {
	c := model.Concern{
		Category:    model.CategoryUndeclaredIntent,
		Severity:    model.SeverityLow,
		Description: "d",
		Evidence:    "e",
	}
	h1, err := HashConcerns([]model.Concern{c})
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}

	// Same logical concern, same fields — must hash identically regardless
	// of how the caller constructs it.
	c2 := model.Concern{Evidence: "e", Description: "d", Severity: model.SeverityLow, Category: model.CategoryUndeclaredIntent}
	h2, err := HashConcerns([]model.Concern{c2})
	if err != nil {
		t.Fatalf("HashConcerns: %v", err)
	}
	if h1 != h2 {
		t.Errorf("fingerprint should not depend on struct literal field order")
	}
}

func TestDistinctConcernsHashDifferently(t *testing.T) {
	a := []model.Concern{{Category: model.CategoryPromptInjection, Severity: model.SeverityLow, Description: "a"}}
	b := []model.Concern{{Category: model.CategoryPromptInjection, Severity: model.SeverityHigh, Description: "a"}}

	ha, _ := HashConcerns(a)
	hb, _ := HashConcerns(b)
	if ha == hb {
		t.Errorf("distinct severities should not collide")
	}
}
