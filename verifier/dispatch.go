// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package verifier

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/hyle-network/hyle-node/types"
)

// JournalVerifier checks a zk proof against a program id and returns the
// raw journal bytes for the dispatcher to decode. It is the seam the node
// uses to consume a zk backend as an opaque collaborator.
type JournalVerifier interface {
	Verify(proof, programID []byte) (journal []byte, err error)
}

// OutputVerifier checks a zk proof and decodes its own journal, returning
// HyleOutputs directly.
type OutputVerifier interface {
	Verify(proof, programID []byte) ([]types.HyleOutput, error)
}

// ProgramIDValidator validates a program identifier's structural shape for
// a specific zk backend (e.g. risc0's fixed 32-byte image id length).
type ProgramIDValidator interface {
	ValidateProgramID(programID []byte) error
}

// Dispatcher routes verify_proof/verify_recursive_proof/validate_program_id
// calls to the configured zk backends. A nil backend means that verifier
// tag is not available in this build; dispatching to it fails the same way
// an unrecognized tag would.
type Dispatcher struct {
	Risc0 interface {
		JournalVerifier
		ProgramIDValidator
	}
	Noir OutputVerifier
	SP1  OutputVerifier
}

const (
	verifierRisc0 = "risc0-1"
	verifierNoir  = "noir"
	verifierSP1   = "sp1-4"
)

// VerifyProof dispatches proof against verifierTag, returning the resulting
// HyleOutputs. Unknown tags fail with ErrUnknownVerifier.
func (d *Dispatcher) VerifyProof(proof []byte, verifierTag string, programID []byte) ([]types.HyleOutput, error) {
	switch verifierTag {
	case verifierTestTag:
		return verifyTestProof(proof)
	case verifierRisc0:
		if d.Risc0 == nil {
			return nil, errors.Wrap(ErrUnknownVerifier, verifierRisc0)
		}
		journal, err := d.Risc0.Verify(proof, programID)
		if err != nil {
			return nil, errors.Wrap(err, "risc0 proof verification")
		}
		return decodeRisc0Journal(journal)
	case verifierNoir:
		if d.Noir == nil {
			return nil, errors.Wrap(ErrUnknownVerifier, verifierNoir)
		}
		return d.Noir.Verify(proof, programID)
	case verifierSP1:
		if d.SP1 == nil {
			return nil, errors.Wrap(ErrUnknownVerifier, verifierSP1)
		}
		return d.SP1.Verify(proof, programID)
	default:
		return nil, errors.Wrapf(ErrUnknownVerifier, "%q", verifierTag)
	}
}

// decodeRisc0Journal first tries to decode the journal as a single
// HyleOutput; a risc0 guest that emits exactly one output encodes it
// directly rather than as a one-element list. Falling back, it decodes the
// journal as a list of opaque byte sequences and then decodes each element
// individually as a HyleOutput; if any element fails to decode, the whole
// journal is rejected with ErrProofDecodeError.
func decodeRisc0Journal(journal []byte) ([]types.HyleOutput, error) {
	var single types.HyleOutput
	if err := cbor.Unmarshal(journal, &single); err == nil {
		return []types.HyleOutput{single}, nil
	}

	var raw [][]byte
	if err := cbor.Unmarshal(journal, &raw); err != nil {
		return nil, errors.Wrap(ErrProofDecodeError, "failed to extract HyleOutput from risc0 journal")
	}

	outputs := make([]types.HyleOutput, 0, len(raw))
	for _, elem := range raw {
		var out types.HyleOutput
		if err := cbor.Unmarshal(elem, &out); err != nil {
			return nil, errors.Wrap(ErrProofDecodeError, "failed to decode HyleOutput")
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// ValidateProgramID accepts any program id for the native verifiers, and
// delegates to the matching zk backend for verifiers with a structural
// constraint on theirs.
func (d *Dispatcher) ValidateProgramID(verifierTag string, programID []byte) error {
	if native, ok := NativeVerifierName(verifierTag); ok {
		return ValidateNativeProgramID(native)
	}
	switch verifierTag {
	case verifierRisc0:
		if d.Risc0 == nil {
			return errors.Wrap(ErrUnknownVerifier, verifierRisc0)
		}
		return d.Risc0.ValidateProgramID(programID)
	default:
		return nil
	}
}
