// Copyright 2025 Certen Protocol
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mnemom/aip-verdict-prover/pkg/commitment"
	"github.com/mnemom/aip-verdict-prover/pkg/guest"
	"github.com/mnemom/aip-verdict-prover/pkg/model"
	"github.com/mnemom/aip-verdict-prover/pkg/zkproof"
)

// ProofRequest is the POST /prove request payload. ProofID is optional; if
// omitted, HandleProve mints one with uuid.New().
type ProofRequest struct {
	ProofID      string `json:"proof_id"`
	CheckpointID string `json:"checkpoint_id"`
	AnalysisJSON string `json:"analysis_json"`
	ThinkingHash string `json:"thinking_hash"`
	CardHash     string `json:"card_hash"`
	ValuesHash   string `json:"values_hash"`
	Model        string `json:"model"`
}

// ProofResponse is the POST /prove response payload.
type ProofResponse struct {
	ProofID string `json:"proof_id"`
	Status  string `json:"status"`
}

// ProofStatusResponse is the GET /prove/{id} response payload.
type ProofStatusResponse struct {
	ProofID           string  `json:"proof_id"`
	Status            string  `json:"status"`
	ProvingDurationMs *int32  `json:"proving_duration_ms,omitempty"`
	Verified          bool    `json:"verified"`
	ErrorMessage      *string `json:"error_message,omitempty"`
}

// VerifyRequest is the POST /prove/verify request payload.
type VerifyRequest struct {
	Receipt string `json:"receipt"` // base64-encoded receipt bytes
	ImageID string `json:"image_id,omitempty"`
}

// VerifyResponse is the POST /prove/verify response payload.
type VerifyResponse struct {
	Valid        bool    `json:"valid"`
	Verdict      *string `json:"verdict,omitempty"`
	Action       *string `json:"action,omitempty"`
	ConcernsHash *string `json:"concerns_hash,omitempty"`
	Error        *string `json:"error,omitempty"`
}

// HealthResponse is the GET /health response payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HandleProve accepts a proof request, persists the stored input, and
// spawns a background proving task, the same fire-and-forget idiom the
// Rust host uses with tokio::spawn.
func (h *Handlers) HandleProve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.checkAuth(r) {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AnalysisJSON == "" {
		h.writeError(w, http.StatusBadRequest, "analysis_json is required")
		return
	}
	if req.ProofID == "" {
		req.ProofID = uuid.New().String()
	}

	ctx := r.Context()
	if err := h.store.CreateProof(ctx, req.ProofID, req.CheckpointID, req.AnalysisJSON, req.ThinkingHash, req.CardHash, req.ValuesHash, req.Model); err != nil {
		h.logger.Printf("create proof %s: %v", req.ProofID, err)
		h.writeError(w, http.StatusInternalServerError, "failed to record proof request")
		return
	}
	if err := h.store.MarkProving(ctx, req.ProofID); err != nil {
		h.logger.Printf("mark proving %s: %v", req.ProofID, err)
	}

	analysisHash := commitment.HashHex([]byte(req.AnalysisJSON))
	h.logger.Printf("proof %s: accepted (checkpoint=%s analysis_hash=%s)", req.ProofID, req.CheckpointID, analysisHash)

	go h.runProvingTask(req.ProofID, model.GuestInput{
		AnalysisJSON: req.AnalysisJSON,
		ThinkingHash: req.ThinkingHash,
		CardHash:     req.CardHash,
		ValuesHash:   req.ValuesHash,
		Model:        req.Model,
	})

	h.writeJSON(w, http.StatusAccepted, ProofResponse{ProofID: req.ProofID, Status: "proving"})
}

// runProvingTask executes the guest pipeline and the Groth16 proof, then
// records the outcome. It never panics the caller's goroutine on a proving
// failure — that failure is recorded via FailProof instead.
func (h *Handlers) runProvingTask(proofID string, input model.GuestInput) {
	start := time.Now()
	ctx := context.Background()

	output, err := guest.Run(input)
	if err != nil {
		h.logger.Printf("proof %s: guest pipeline failed: %v", proofID, err)
		if ferr := h.store.FailProof(ctx, proofID, "guest pipeline failed: "+err.Error()); ferr != nil {
			h.logger.Printf("proof %s: fail_proof: %v", proofID, ferr)
		}
		return
	}

	receipt, err := h.prover.Prove(output)
	if err != nil {
		h.logger.Printf("proof %s: proving failed: %v", proofID, err)
		if ferr := h.store.FailProof(ctx, proofID, "proving failed: "+err.Error()); ferr != nil {
			h.logger.Printf("proof %s: fail_proof: %v", proofID, ferr)
		}
		return
	}

	receiptBytes, err := receipt.Serialize()
	if err != nil {
		h.logger.Printf("proof %s: serialize receipt failed: %v", proofID, err)
		if ferr := h.store.FailProof(ctx, proofID, "receipt serialization failed: "+err.Error()); ferr != nil {
			h.logger.Printf("proof %s: fail_proof: %v", proofID, ferr)
		}
		return
	}

	durationMs := int(time.Since(start).Milliseconds())
	imageIDHex := zkproof.ImageIDHex(receipt.ImageID)

	// Self-verify before persisting, the same defensive check the Rust
	// host performs before marking a proof complete.
	verified := false
	if _, verr := h.prover.Verify(receiptBytes); verr == nil {
		verified = true
	}

	var verifiedAt *time.Time
	if verified {
		now := time.Now()
		verifiedAt = &now
	}

	if err := h.store.CompleteProof(ctx, proofID, imageIDHex, receiptBytes, receipt.Journal, durationMs, 0.005, verified, verifiedAt); err != nil {
		h.logger.Printf("proof %s: persist failed: %v", proofID, err)
		return
	}

	h.logger.Printf("proof %s: completed verdict=%s action=%s duration_ms=%d verified=%v",
		proofID, output.Verdict, output.Action, durationMs, verified)
}

// HandleProofStatus handles GET /prove/{id}.
func (h *Handlers) HandleProofStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	proofID := strings.TrimPrefix(r.URL.Path, "/prove/")
	if proofID == "" || proofID == "verify" {
		h.writeError(w, http.StatusBadRequest, "proof id is required")
		return
	}

	status, err := h.store.GetProofStatus(r.Context(), proofID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "proof not found")
		return
	}

	resp := ProofStatusResponse{
		ProofID:  status.ProofID,
		Status:   status.Status,
		Verified: status.Verified,
	}
	if status.ProvingDurationMs.Valid {
		v := status.ProvingDurationMs.Int32
		resp.ProvingDurationMs = &v
	}
	if status.ErrorMessage.Valid {
		v := status.ErrorMessage.String
		resp.ErrorMessage = &v
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleVerify handles POST /prove/verify.
func (h *Handlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.checkAuth(r) {
		h.writeJSON(w, http.StatusOK, VerifyResponse{Valid: false, Error: strPtr("unauthorized")})
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusOK, VerifyResponse{Valid: false, Error: strPtr("invalid request body")})
		return
	}

	receiptBytes, err := base64.StdEncoding.DecodeString(req.Receipt)
	if err != nil {
		h.writeJSON(w, http.StatusOK, VerifyResponse{Valid: false, Error: strPtr("invalid receipt encoding: " + err.Error())})
		return
	}

	output, err := h.prover.Verify(receiptBytes)
	if err != nil {
		h.writeJSON(w, http.StatusOK, VerifyResponse{Valid: false, Error: strPtr("verification failed: " + err.Error())})
		return
	}

	h.writeJSON(w, http.StatusOK, VerifyResponse{
		Valid:        true,
		Verdict:      strPtr(string(output.Verdict)),
		Action:       strPtr(string(output.Action)),
		ConcernsHash: strPtr(output.ConcernsHash),
	})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

func strPtr(s string) *string { return &s }

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("error encoding response: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
