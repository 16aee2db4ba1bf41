// Copyright 2025 Certen Protocol
//
// Package server is the HTTP proving service: POST /prove accepts a
// verdict-derivation request and proves it in the background, GET
// /prove/{id} polls status, POST /prove/verify checks a receipt, and GET
// /health reports liveness. Routing follows the validator's plain
// net/http.ServeMux + manual path-parsing idiom (pkg/server/proof_handlers.go
// in the original validator); the route table itself mirrors the Rust
// host's Axum router (zkvm/host/src/server.rs).
package server

import (
	"log"
	"net/http"

	"github.com/mnemom/aip-verdict-prover/pkg/database"
	"github.com/mnemom/aip-verdict-prover/pkg/zkproof"
)

// Handlers holds the dependencies shared by every HTTP handler.
type Handlers struct {
	store   *database.ProofStore
	prover  *zkproof.Prover
	apiKey  string
	version string
	logger  *log.Logger
}

// NewHandlers constructs Handlers. An empty apiKey disables authentication
// entirely, matching the Rust host's check_auth behavior.
func NewHandlers(store *database.ProofStore, prover *zkproof.Prover, apiKey, version string, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(log.Writer(), "[ProverAPI] ", log.LstdFlags)
	}
	return &Handlers{store: store, prover: prover, apiKey: apiKey, version: version, logger: logger}
}

// BuildRouter wires every route to its handler.
func BuildRouter(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/prove", h.HandleProve)
	mux.HandleFunc("/prove/", h.HandleProofStatus)
	mux.HandleFunc("/prove/verify", h.HandleVerify)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// checkAuth validates the X-Prover-Key header against the configured API
// key. If no key is configured, authentication is disabled.
func (h *Handlers) checkAuth(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}
	return r.Header.Get("X-Prover-Key") == h.apiKey
}
