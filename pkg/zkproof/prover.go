// Copyright 2025 Certen Protocol
//
// Prover generates and verifies Groth16 proofs binding a verdict-derivation
// journal to a receipt, following the same mutex-guarded compile-once idiom
// as the validator's BLSZKProver (pkg/crypto/bls_zkp.BLSZKProver): compile
// the circuit and run trusted setup once in Initialize, then reuse the
// proving/verifying keys for every subsequent Prove/Verify call.
package zkproof

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/mnemom/aip-verdict-prover/pkg/model"
)

// bn254ScalarField is the BN254 scalar field modulus, used to reduce the
// digest commitment before it is handed to the circuit as a public input.
var bn254ScalarField, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// ErrNotInitialized is returned by Prove/Verify before Initialize succeeds.
var ErrNotInitialized = errors.New("zkproof: prover not initialized")

// ErrImageIDMismatch is returned when a receipt's image ID does not match
// the prover's own build identity.
var ErrImageIDMismatch = errors.New("zkproof: receipt image ID does not match expected guest image")

// ErrJournalDigestMismatch is returned when a receipt's journal bytes hash
// to a digest different from the one the proof actually commits to — the
// journal was swapped after proving.
var ErrJournalDigestMismatch = errors.New("zkproof: journal does not match committed digest")

// Prover compiles the digest circuit once and reuses the resulting
// proving/verifying keys for every Prove/Verify call.
type Prover struct {
	mu sync.RWMutex

	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey

	initialized bool
}

// NewProver returns an uninitialized Prover. Call Initialize before use.
func NewProver() *Prover {
	return &Prover{}
}

// Initialize compiles the circuit and runs the Groth16 trusted setup. This
// is a one-time, CPU-bound operation; callers typically run it once at
// service startup.
func (p *Prover) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	var circuit DigestCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return fmt.Errorf("compile circuit: %w", err)
	}

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}

	p.cs = cs
	p.pk = pk
	p.vk = vk
	p.initialized = true
	return nil
}

// Prove runs the guest pipeline's committed output through the digest
// circuit and returns a Receipt binding a Groth16 proof to the output's
// journal bytes.
func (p *Prover) Prove(output model.GuestOutput) (*Receipt, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return nil, ErrNotInitialized
	}

	journal, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("marshal journal: %w", err)
	}

	digest := sha256.Sum256(journal)
	limbs := splitDigestLimbs(digest)
	commitment := digestCommitment(limbs)

	assignment := &DigestCircuit{
		Limb0:         new(big.Int).SetUint64(limbs[0]),
		Limb1:         new(big.Int).SetUint64(limbs[1]),
		Limb2:         new(big.Int).SetUint64(limbs[2]),
		Limb3:         new(big.Int).SetUint64(limbs[3]),
		Commitment:    commitment,
		PreimageLimb0: new(big.Int).SetUint64(limbs[0]),
		PreimageLimb1: new(big.Int).SetUint64(limbs[1]),
		PreimageLimb2: new(big.Int).SetUint64(limbs[2]),
		PreimageLimb3: new(big.Int).SetUint64(limbs[3]),
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}

	proof, err := groth16.Prove(p.cs, p.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("generate proof: %w", err)
	}

	var proofBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		return nil, fmt.Errorf("serialize proof: %w", err)
	}

	return &Receipt{
		ImageID:    GuestImageID,
		Limbs:      limbs,
		Commitment: padCommitment(commitment),
		Journal:    journal,
		ProofBytes: proofBuf.Bytes(),
	}, nil
}

// Verify checks a serialized Receipt: the image ID must match this
// prover's build, the journal's digest must match the receipt's committed
// limbs, and the Groth16 proof must verify against those limbs and
// commitment. On success it returns the journal decoded as a GuestOutput.
func (p *Prover) Verify(receiptBytes []byte) (model.GuestOutput, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return model.GuestOutput{}, ErrNotInitialized
	}

	receipt, err := DeserializeReceipt(receiptBytes)
	if err != nil {
		return model.GuestOutput{}, err
	}

	if receipt.ImageID != GuestImageID {
		return model.GuestOutput{}, ErrImageIDMismatch
	}

	digest := sha256.Sum256(receipt.Journal)
	if splitDigestLimbs(digest) != receipt.Limbs {
		return model.GuestOutput{}, ErrJournalDigestMismatch
	}

	assignment := &DigestCircuit{
		Limb0:      new(big.Int).SetUint64(receipt.Limbs[0]),
		Limb1:      new(big.Int).SetUint64(receipt.Limbs[1]),
		Limb2:      new(big.Int).SetUint64(receipt.Limbs[2]),
		Limb3:      new(big.Int).SetUint64(receipt.Limbs[3]),
		Commitment: new(big.Int).SetBytes(receipt.Commitment),
	}

	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return model.GuestOutput{}, fmt.Errorf("create public witness: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(receipt.ProofBytes)); err != nil {
		return model.GuestOutput{}, fmt.Errorf("read proof: %w", err)
	}

	if err := groth16.Verify(proof, p.vk, publicWitness); err != nil {
		return model.GuestOutput{}, fmt.Errorf("verify proof: %w", err)
	}

	var output model.GuestOutput
	if err := json.Unmarshal(receipt.Journal, &output); err != nil {
		return model.GuestOutput{}, fmt.Errorf("decode journal: %w", err)
	}

	return output, nil
}

// digestCommitment computes the same fixed polynomial commitment the
// circuit asserts, reduced modulo the BN254 scalar field so it is always a
// valid circuit input regardless of digest value.
func digestCommitment(limbs [4]uint64) *big.Int {
	r := big.NewInt(7)
	result := new(big.Int).SetUint64(limbs[0])

	term := new(big.Int).SetUint64(limbs[1])
	term.Mul(term, r)
	result.Add(result, term)

	r2 := new(big.Int).Mul(r, r)
	term = new(big.Int).SetUint64(limbs[2])
	term.Mul(term, r2)
	result.Add(result, term)

	r3 := new(big.Int).Mul(r2, r)
	term = new(big.Int).SetUint64(limbs[3])
	term.Mul(term, r3)
	result.Add(result, term)

	return result.Mod(result, bn254ScalarField)
}

// padCommitment returns the commitment's big-endian byte representation,
// left-padded to 32 bytes.
func padCommitment(c *big.Int) []byte {
	b := c.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
