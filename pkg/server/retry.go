// Copyright 2025 Certen Protocol
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/mnemom/aip-verdict-prover/pkg/commitment"
	"github.com/mnemom/aip-verdict-prover/pkg/model"
)

// RetryLoop periodically re-attempts proving for retryable proofs (failed,
// or stuck in proving past the store's staleness window),
// mirroring the Rust host's retry_loop: every interval, ping this service's
// own health endpoint (a liveness sanity check before doing any work), then
// pull a batch of pending proofs and re-run the proving pipeline for each.
// The loop runs until ctx is canceled.
func RetryLoop(ctx context.Context, h *Handlers, listenAddr string, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 5 * time.Second}
	healthURL := "http://" + listenAddr + "/health"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if resp, err := client.Get(healthURL); err != nil {
				h.logger.Printf("retry loop: health self-check failed: %v", err)
				continue
			} else {
				resp.Body.Close()
			}

			pending, err := h.store.GetPendingProofs(ctx, batchSize)
			if err != nil {
				h.logger.Printf("retry loop: get pending proofs: %v", err)
				continue
			}
			if len(pending) == 0 {
				continue
			}

			h.logger.Printf("retry loop: retrying %d pending proof(s)", len(pending))
			for _, p := range pending {
				p := p
				if !p.AnalysisJSON.Valid || p.AnalysisJSON.String == "" {
					h.logger.Printf("retry loop: proof %s has no stored input data, skipping", p.ProofID)
					continue
				}
				if err := h.store.MarkProving(ctx, p.ProofID); err != nil {
					h.logger.Printf("retry loop: mark proving %s: %v", p.ProofID, err)
					continue
				}
				analysisHash := commitment.HashHex([]byte(p.AnalysisJSON.String))
				h.logger.Printf("retry loop: re-attempting proof %s (attempt=%d analysis_hash=%s)", p.ProofID, p.RetryCount+1, analysisHash)
				go h.runProvingTask(p.ProofID, model.GuestInput{
					AnalysisJSON: p.AnalysisJSON.String,
					ThinkingHash: p.ThinkingHash.String,
					CardHash:     p.CardHash.String,
					ValuesHash:   p.ValuesHash.String,
					Model:        p.Model.String,
				})
			}
		}
	}
}
