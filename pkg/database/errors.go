// Copyright 2025 Certen Protocol
//
// Package database provides sentinel errors for repository operations.

package database

import "errors"

// Sentinel errors for database operations.
var (
	// ErrProofNotFound is returned when a proof record is not found.
	ErrProofNotFound = errors.New("proof not found")
)
