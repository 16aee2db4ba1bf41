// Copyright 2025 Certen Protocol
//
// Package fingerprint computes the concerns fingerprint: a canonical
// 32-byte digest over a normalized concerns sequence, identical across
// implementation languages. This is the one piece of the system whose
// byte form crosses the trust boundary, so it deliberately does NOT use
// pkg/commitment's general-purpose (alphabetically sorted) canonicalizer —
// the wire contract here requires a fixed, non-alphabetical field order
// matching the TypeScript/Rust reference.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mnemom/aip-verdict-prover/pkg/model"
)

// normalizedConcern mirrors the reference's serde struct field order
// exactly: category, severity, description, evidence. Go's encoding/json
// marshals struct fields in declaration order, so this ordering is load
// bearing and must not be reordered or alphabetized.
type normalizedConcern struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// HashConcerns computes the deterministic SHA-256 hex fingerprint over a
// sequence of concerns.
//
// Algorithm (§4.3):
//  1. For each concern in input order, truncate evidence to
//     model.MaxEvidenceLength characters and build a normalizedConcern.
//  2. Serialize the resulting sequence as a single JSON array, no
//     whitespace, fields in declaration order.
//  3. SHA-256 the UTF-8 bytes of that JSON.
//  4. Hex-encode the digest, lowercase.
//
// An empty concerns list hashes the two-byte string "[]".
func HashConcerns(concerns []model.Concern) (string, error) {
	normalized := make([]normalizedConcern, len(concerns))
	for i, c := range concerns {
		truncated := c.TruncateEvidence()
		normalized[i] = normalizedConcern{
			Category:    string(truncated.Category),
			Severity:    string(truncated.Severity),
			Description: truncated.Description,
			Evidence:    truncated.Evidence,
		}
	}

	// encoding/json.Marshal HTML-escapes '<', '>', '&' (and U+2028/U+2029) by
	// default; the reference serde_json/JSON.stringify implementations do
	// not. Evidence/description text quoting an attack payload plausibly
	// contains these bytes, so the default encoder would silently diverge
	// from the cross-language contract. SetEscapeHTML(false) matches the
	// reference's unescaped output; Encode appends a trailing newline that
	// the reference does not emit, so it is trimmed before hashing.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return "", err
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
