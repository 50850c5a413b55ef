// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build !hyletest

package verifier

import (
	"github.com/cockroachdb/errors"

	"github.com/hyle-network/hyle-node/types"
)

const verifierTestTag = "test"

// verifyTestProof is unavailable outside hyletest builds: the "test"
// verifier tag behaves like any other unrecognized verifier.
func verifyTestProof([]byte) ([]types.HyleOutput, error) {
	return nil, errors.Wrap(ErrUnknownVerifier, verifierTestTag)
}
