// Copyright 2025 Certen Protocol
//
// Proof record storage: the Go mirror of the Rust host's sqlx-backed
// verdict_proofs table and its complete_proof/fail_proof/get_pending_proofs
// SQL functions (migrations/0001_verdict_proofs.sql).

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ProofStore provides CRUD operations over the verdict_proofs table.
type ProofStore struct {
	client *Client
}

// NewProofStore wraps a Client with proof-record operations.
func NewProofStore(client *Client) *ProofStore {
	return &ProofStore{client: client}
}

// ProofStatusRecord is the subset of a proof record returned by status
// lookups — mirrors the Rust host's ProofStatusResponse.
type ProofStatusRecord struct {
	ProofID           string
	Status            string
	ProvingDurationMs sql.NullInt32
	Verified          bool
	ErrorMessage      sql.NullString
}

// PendingProof is a retryable proof (failed, or stuck in proving past the
// staleness window) with its stored input, as returned by get_pending_proofs.
type PendingProof struct {
	ProofID      string
	CheckpointID string
	RetryCount   int
	CreatedAt    time.Time
	AnalysisJSON sql.NullString
	ThinkingHash sql.NullString
	CardHash     sql.NullString
	ValuesHash   sql.NullString
	Model        sql.NullString
}

// CreateProof inserts a new pending proof record with its stored input, so
// the retry loop can re-attempt proving without the caller resubmitting.
func (s *ProofStore) CreateProof(ctx context.Context, proofID, checkpointID, analysisJSON, thinkingHash, cardHash, valuesHash, model string) error {
	_, err := s.client.ExecContext(ctx, `
		INSERT INTO verdict_proofs (proof_id, checkpoint_id, status, analysis_json, thinking_hash, card_hash, values_hash, model)
		VALUES ($1, $2, 'pending', $3, $4, $5, $6, $7)
		ON CONFLICT (proof_id) DO NOTHING`,
		proofID, checkpointID, analysisJSON, thinkingHash, cardHash, valuesHash, model)
	if err != nil {
		return fmt.Errorf("create proof: %w", err)
	}
	return nil
}

// MarkProving transitions a proof record to the proving state.
func (s *ProofStore) MarkProving(ctx context.Context, proofID string) error {
	_, err := s.client.ExecContext(ctx,
		`UPDATE verdict_proofs SET status = 'proving', updated_at = now() WHERE proof_id = $1`, proofID)
	if err != nil {
		return fmt.Errorf("mark proving: %w", err)
	}
	return nil
}

// CompleteProof records a successful proving run via the complete_proof SQL
// function.
func (s *ProofStore) CompleteProof(ctx context.Context, proofID, imageIDHex string, receipt, journal []byte, durationMs int, cost float64, verified bool, verifiedAt *time.Time) error {
	_, err := s.client.ExecContext(ctx,
		`SELECT complete_proof($1, $2, $3, $4, $5, $6, $7, $8)`,
		proofID, imageIDHex, receipt, journal, durationMs, cost, verified, verifiedAt)
	if err != nil {
		return fmt.Errorf("complete proof: %w", err)
	}
	return nil
}

// FailProof records a proving failure via the fail_proof SQL function,
// bumping the retry counter.
func (s *ProofStore) FailProof(ctx context.Context, proofID, errMsg string) error {
	_, err := s.client.ExecContext(ctx, `SELECT fail_proof($1, $2)`, proofID, errMsg)
	if err != nil {
		return fmt.Errorf("fail proof: %w", err)
	}
	return nil
}

// GetProofStatus returns a proof's current status, or ErrProofNotFound if
// no record exists for proofID.
func (s *ProofStore) GetProofStatus(ctx context.Context, proofID string) (*ProofStatusRecord, error) {
	row := s.client.QueryRowContext(ctx,
		`SELECT proof_id, status, proving_duration_ms, verified, error_message
		 FROM verdict_proofs WHERE proof_id = $1`, proofID)

	var rec ProofStatusRecord
	err := row.Scan(&rec.ProofID, &rec.Status, &rec.ProvingDurationMs, &rec.Verified, &rec.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, ErrProofNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get proof status: %w", err)
	}
	return &rec, nil
}

// GetPendingProofs fetches up to limit retryable proofs (failed, or stale in
// proving), oldest first, for the retry loop to re-attempt.
func (s *ProofStore) GetPendingProofs(ctx context.Context, limit int) ([]PendingProof, error) {
	rows, err := s.client.QueryContext(ctx, `
		SELECT proof_id, checkpoint_id, retry_count, created_at, analysis_json, thinking_hash, card_hash, values_hash, model
		FROM get_pending_proofs($1)`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending proofs: %w", err)
	}
	defer rows.Close()

	var pending []PendingProof
	for rows.Next() {
		var p PendingProof
		if err := rows.Scan(&p.ProofID, &p.CheckpointID, &p.RetryCount, &p.CreatedAt,
			&p.AnalysisJSON, &p.ThinkingHash, &p.CardHash, &p.ValuesHash, &p.Model); err != nil {
			return nil, fmt.Errorf("scan pending proof: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}
