// Copyright 2025 Certen Protocol
package zkproof

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"fmt"
)

// GuestImageID identifies this build of the guest pipeline, the same way
// RISC Zero's build-time ELF hash identifies a guest program. It is fixed
// at compile time as eight little-endian 32-bit words, matching the shape
// the TypeScript/Rust reference uses for its RISC0 image ID so the two
// remain format-compatible even though the underlying proof systems differ.
var GuestImageID = deriveGuestImageID("aip-verdict-prover/guest/v1")

func deriveGuestImageID(version string) [8]uint32 {
	sum := sha256.Sum256([]byte(version))
	var id [8]uint32
	for i := 0; i < 8; i++ {
		id[i] = binary.LittleEndian.Uint32(sum[i*4 : i*4+4])
	}
	return id
}

// ImageIDHex formats an image ID the way the host service reports it:
// each word's little-endian bytes, concatenated, lowercase hex.
func ImageIDHex(id [8]uint32) string {
	var buf bytes.Buffer
	var word [4]byte
	for _, w := range id {
		binary.LittleEndian.PutUint32(word[:], w)
		buf.WriteString(hex.EncodeToString(word[:]))
	}
	return buf.String()
}

// Receipt is the portable, serializable artifact a prove call returns: a
// Groth16 proof bound to the journal (the committed GuestOutput JSON) via
// the digest limbs and commitment, plus the image ID identifying which
// guest pipeline build produced it. It is the analogue of the Rust host's
// bincode-encoded zkVM receipt.
type Receipt struct {
	ImageID    [8]uint32
	Limbs      [4]uint64
	Commitment []byte
	Journal    []byte
	ProofBytes []byte
}

// Serialize encodes the receipt to a stable binary form.
func (r *Receipt) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeReceipt decodes a receipt previously produced by Serialize.
func DeserializeReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &r, nil
}

// splitDigestLimbs splits a 32-byte SHA-256 digest into four 64-bit
// big-endian limbs, most significant first.
func splitDigestLimbs(digest [32]byte) [4]uint64 {
	var limbs [4]uint64
	for i := 0; i < 4; i++ {
		limbs[i] = binary.BigEndian.Uint64(digest[i*8 : i*8+8])
	}
	return limbs
}
