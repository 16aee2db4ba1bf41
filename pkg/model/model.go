// Copyright 2025 Certen Protocol
//
// Package model defines the canonical read-only data model shared by the
// verdict engine, the concern fingerprint, and the guest pipeline. Every
// type here round-trips through JSON using the snake_case wire forms
// required for cross-language conformance with the TypeScript reference
// (@mnemom/agent-integrity-protocol).
package model

import "fmt"

// ConcernCategory is one of the six symbolic tags from the AIP specification.
type ConcernCategory string

const (
	CategoryPromptInjection     ConcernCategory = "prompt_injection"
	CategoryValueMisalignment   ConcernCategory = "value_misalignment"
	CategoryAutonomyViolation   ConcernCategory = "autonomy_violation"
	CategoryReasoningCorruption ConcernCategory = "reasoning_corruption"
	CategoryDeceptiveReasoning  ConcernCategory = "deceptive_reasoning"
	CategoryUndeclaredIntent    ConcernCategory = "undeclared_intent"
)

// Severity is a totally ordered set: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the total-order position of the severity, low=0..critical=3.
// Unknown severities rank below SeverityLow.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// Less reports whether s sorts strictly before other in the total order.
func (s Severity) Less(other Severity) bool {
	return s.Rank() < other.Rank()
}

// Verdict is the conclusion of an integrity analysis.
type Verdict string

const (
	VerdictClear             Verdict = "clear"
	VerdictReviewNeeded      Verdict = "review_needed"
	VerdictBoundaryViolation Verdict = "boundary_violation"
)

// Action is the recommended response derived from a Verdict.
type Action string

const (
	ActionContinue        Action = "continue"
	ActionLogAndContinue  Action = "log_and_continue"
	ActionPauseForReview  Action = "pause_for_review"
	ActionDenyAndEscalate Action = "deny_and_escalate"
)

// MaxEvidenceLength is the maximum number of characters of evidence text
// retained before fingerprinting or any downstream use.
const MaxEvidenceLength = 200

// Concern is a single issue raised during integrity analysis. Field order
// matches the fixed wire contract used by the fingerprint (§4.3): category,
// severity, description, evidence. A missing evidence field decodes as the
// empty string.
type Concern struct {
	Category    ConcernCategory `json:"category"`
	Severity    Severity        `json:"severity"`
	Description string          `json:"description"`
	Evidence    string          `json:"evidence,omitempty"`
}

// TruncateEvidence returns a copy of c with Evidence truncated to the first
// MaxEvidenceLength characters (rune-unit slicing, matching the reference's
// character-unit truncation rather than a byte slice).
func (c Concern) TruncateEvidence() Concern {
	runes := []rune(c.Evidence)
	if len(runes) <= MaxEvidenceLength {
		return c
	}
	c.Evidence = string(runes[:MaxEvidenceLength])
	return c
}

// AnalysisResponse is the LLM analysis response JSON consumed by the guest.
// Verdict here is explicitly untrusted and is never copied into GuestOutput;
// it exists only because the LLM emits it.
type AnalysisResponse struct {
	Verdict          string    `json:"verdict"`
	Concerns         []Concern `json:"concerns"`
	Confidence       float64   `json:"confidence"`
	ReasoningSummary string    `json:"reasoning_summary"`
}

// GuestInput is the input to the proving primitive's guest program.
type GuestInput struct {
	AnalysisJSON string `json:"analysis_json"`
	ThinkingHash string `json:"thinking_hash"`
	CardHash     string `json:"card_hash"`
	ValuesHash   string `json:"values_hash"`
	Model        string `json:"model"`
}

// GuestOutput is the committed journal payload produced by the guest.
type GuestOutput struct {
	Verdict      Verdict `json:"verdict"`
	Action       Action  `json:"action"`
	ConcernsHash string  `json:"concerns_hash"`
	ThinkingHash string  `json:"thinking_hash"`
	CardHash     string  `json:"card_hash"`
	ValuesHash   string  `json:"values_hash"`
	Model        string  `json:"model"`
}

// String implements fmt.Stringer for log-friendly output.
func (o GuestOutput) String() string {
	return fmt.Sprintf("verdict=%s action=%s concerns_hash=%s model=%s", o.Verdict, o.Action, o.ConcernsHash, o.Model)
}

// ProofStatus is the lifecycle state of a persisted proof record (§6).
type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "pending"
	ProofStatusProving  ProofStatus = "proving"
	ProofStatusComplete ProofStatus = "complete"
	ProofStatusFailed   ProofStatus = "failed"
)
