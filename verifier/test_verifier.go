// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build hyletest

package verifier

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/hyle-network/hyle-node/types"
)

const verifierTestTag = "test"

// verifyTestProof decodes a canned list of HyleOutputs from proof. It only
// exists in builds tagged hyletest, so test harnesses cannot end up wired
// into a production binary.
func verifyTestProof(proof []byte) ([]types.HyleOutput, error) {
	var outputs []types.HyleOutput
	if err := cbor.Unmarshal(proof, &outputs); err != nil {
		return nil, errors.Wrap(ErrProofDecodeError, "parsing test proof")
	}
	return outputs, nil
}
