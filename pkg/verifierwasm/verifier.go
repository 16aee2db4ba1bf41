// Copyright 2025 Certen Protocol
//
//go:build js && wasm

// Package verifierwasm is the browser verification shim: the Go mirror of
// the reference's wasm-verifier crate (init/version/verify_receipt exposed
// via wasm_bindgen), here exposed via syscall/js. It lets a receipt be
// checked client-side without trusting a server's /prove/verify response.
package verifierwasm

import (
	"encoding/base64"
	"fmt"
	"syscall/js"

	"github.com/mnemom/aip-verdict-prover/pkg/zkproof"
)

// version mirrors the reference's env!("CARGO_PKG_VERSION") — a fixed
// string since this module has no package-manager version stamping.
const version = "0.1.0"

var prover *zkproof.Prover

// Register installs the three JS-callable entry points on the global
// object: aipVerifierInit, aipVerifierVersion, aipVerifierVerifyReceipt.
// Call it once from a `//go:build js && wasm` main() after wasm_exec.js has
// loaded the module.
func Register() {
	js.Global().Set("aipVerifierInit", js.FuncOf(jsInit))
	js.Global().Set("aipVerifierVersion", js.FuncOf(jsVersion))
	js.Global().Set("aipVerifierVerifyReceipt", js.FuncOf(jsVerifyReceipt))
}

// jsInit compiles the verification circuit once. A production build would
// instead embed a pre-generated verifying key rather than re-running
// trusted setup in the browser; this mirrors the reference's shape while
// keeping the exercise's single prover/verifier implementation.
func jsInit(this js.Value, args []js.Value) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			consoleWarn(fmt.Sprintf("aip-verifier-wasm: panic in init: %v", r))
			result = false
		}
	}()

	p := zkproof.NewProver()
	if err := p.Initialize(); err != nil {
		consoleWarn(fmt.Sprintf("aip-verifier-wasm: init failed: %v", err))
		return false
	}
	prover = p
	return true
}

// jsVersion returns the build version string.
func jsVersion(this js.Value, args []js.Value) interface{} {
	return version
}

// jsVerifyReceipt verifies a base64-encoded receipt against a caller-supplied
// expected image ID (§6: verify_receipt(bytes, image_id_hex) -> bool), the
// same way the reference wasm-verifier refuses to trust whatever image ID
// the receipt itself claims. Returns true only if the supplied image_id_hex
// matches this build's guest image AND the proof verifies — any error,
// panic, or mismatch returns false, never throws back into JS.
func jsVerifyReceipt(this js.Value, args []js.Value) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			consoleWarn(fmt.Sprintf("aip-verifier-wasm: panic during verification: %v", r))
			result = false
		}
	}()

	if prover == nil {
		consoleWarn("aip-verifier-wasm: verify_receipt called before init")
		return false
	}
	if len(args) < 2 {
		consoleWarn("aip-verifier-wasm: verify_receipt requires a base64 receipt and an image_id_hex argument")
		return false
	}

	expectedImageIDHex := args[1].String()
	if expectedImageIDHex != zkproof.ImageIDHex(zkproof.GuestImageID) {
		consoleWarn("aip-verifier-wasm: image_id_hex does not match this build's guest image")
		return false
	}

	receiptB64 := args[0].String()
	receiptBytes, err := base64.StdEncoding.DecodeString(receiptB64)
	if err != nil {
		consoleWarn(fmt.Sprintf("aip-verifier-wasm: invalid base64 receipt: %v", err))
		return false
	}

	if _, err := prover.Verify(receiptBytes); err != nil {
		consoleWarn(fmt.Sprintf("aip-verifier-wasm: verification failed: %v", err))
		return false
	}
	return true
}

func consoleWarn(msg string) {
	js.Global().Get("console").Call("warn", msg)
}
