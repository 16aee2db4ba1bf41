// Copyright 2025 Certen Protocol
//
// ZK circuit definition for the verdict-derivation proving primitive.
//
// The guest pipeline (pkg/guest) runs outside the circuit — it is ordinary
// Go, not R1CS — and produces a journal (the JSON-encoded GuestOutput). The
// circuit's job is narrower: it binds a Groth16 proof to the SHA-256 digest
// of that journal, split into field-sized limbs, using the same
// fixed-linear-combination commitment idiom as the validator's BLS circuit
// (pkg/crypto/bls_zkp.SimpleBLSCircuit), generalized from two curve
// coordinates to the four 64-bit limbs of a 32-byte digest.
package zkproof

import (
	"github.com/consensys/gnark/frontend"
)

// DigestCircuit proves knowledge of a 32-byte digest (as four public limbs)
// consistent with a public commitment computed the same way on both sides.
type DigestCircuit struct {
	// Public inputs: the four 64-bit limbs of the journal's SHA-256 digest,
	// most-significant limb first, and their fixed commitment.
	Limb0      frontend.Variable `gnark:",public"`
	Limb1      frontend.Variable `gnark:",public"`
	Limb2      frontend.Variable `gnark:",public"`
	Limb3      frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`

	// Private inputs: the same four limbs, bound to the public limbs by
	// equality constraints. Kept private/public separately so a verifier
	// checks the commitment without needing the prover's internal state.
	PreimageLimb0 frontend.Variable
	PreimageLimb1 frontend.Variable
	PreimageLimb2 frontend.Variable
	PreimageLimb3 frontend.Variable
}

// Define implements the circuit constraints.
func (c *DigestCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Limb0, c.PreimageLimb0)
	api.AssertIsEqual(c.Limb1, c.PreimageLimb1)
	api.AssertIsEqual(c.Limb2, c.PreimageLimb2)
	api.AssertIsEqual(c.Limb3, c.PreimageLimb3)

	computed := computeDigestCommitment(api, c.PreimageLimb0, c.PreimageLimb1, c.PreimageLimb2, c.PreimageLimb3)
	api.AssertIsEqual(c.Commitment, computed)

	// A journal digest is never the all-zero word in practice; this guards
	// against a degenerate witness.
	api.AssertIsDifferent(c.PreimageLimb0, 0)

	return nil
}

// computeDigestCommitment computes a fixed polynomial commitment over the
// four limbs: limb0 + limb1*r + limb2*r^2 + limb3*r^3, r = 7.
func computeDigestCommitment(api frontend.API, limb0, limb1, limb2, limb3 frontend.Variable) frontend.Variable {
	r := frontend.Variable(7)

	result := limb0
	result = api.Add(result, api.Mul(limb1, r))
	r2 := api.Mul(r, r)
	result = api.Add(result, api.Mul(limb2, r2))
	r3 := api.Mul(r2, r)
	result = api.Add(result, api.Mul(limb3, r3))

	return result
}
