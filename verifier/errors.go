// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verifier dispatches a (verifier_id, program_id, proof_bytes)
// triple to a zk or native verifier and produces the HyleOutput(s) that
// the rest of the node applies to its contract state.
package verifier

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownVerifier is returned by VerifyProof for any verifier tag
	// that isn't one of the recognized zk backends.
	ErrUnknownVerifier = errors.New("verifier: unknown verifier")
	// ErrProofDecodeError wraps a malformed journal or proof payload.
	ErrProofDecodeError = errors.New("verifier: proof decode error")
)
