// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/hyle-network/hyle-node/types"
)

type recursiveEntry struct {
	ProgramID []byte `cbor:"program_id"`
	Journal   []byte `cbor:"journal"`
}

// VerifyRecursiveProof decodes a journal whose payload is a sequence of
// (embedded program id, sub-journal) pairs and returns the parallel lists
// of program ids and decoded outputs, in order. Recursion is one level
// only: a sub-journal is never itself treated as a recursive proof.
func (d *Dispatcher) VerifyRecursiveProof(proof []byte, verifierTag string, programID []byte) ([][]byte, []types.HyleOutput, error) {
	if verifierTag != verifierRisc0 {
		return nil, nil, errors.Wrapf(ErrUnknownVerifier, "%q recursive verifier not implemented", verifierTag)
	}
	if d.Risc0 == nil {
		return nil, nil, errors.Wrap(ErrUnknownVerifier, verifierRisc0)
	}

	journal, err := d.Risc0.Verify(proof, programID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "risc0 recursive proof verification")
	}

	var entries []recursiveEntry
	if err := cbor.Unmarshal(journal, &entries); err != nil {
		return nil, nil, errors.Wrap(ErrProofDecodeError, "failed to extract HyleOutput from risc0 journal")
	}

	programIDs := make([][]byte, 0, len(entries))
	outputs := make([]types.HyleOutput, 0, len(entries))
	for _, e := range entries {
		var out types.HyleOutput
		if err := cbor.Unmarshal(e.Journal, &out); err != nil {
			return nil, nil, errors.Wrap(ErrProofDecodeError, "failed to decode HyleOutput")
		}
		programIDs = append(programIDs, e.ProgramID)
		outputs = append(outputs, out)
	}
	return programIDs, outputs, nil
}
