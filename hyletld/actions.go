// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hyletld implements the governance contract every chain carries
// by construction: the "hyle" TLD, whose blobs register, delete or amend
// the contracts the rest of the node verifies blobs against. It owns no
// storage of its own; callers supply the current registry and receive
// back the set of changes one blob transaction's "hyle" blobs would make.
package hyletld

import "github.com/hyle-network/hyle-node/types"

// ContractName is the name every blob here is addressed to.
const ContractName = "hyle"

// ActionKind enumerates the blob actions the "hyle" contract understands.
type ActionKind int

const (
	ActionRegister ActionKind = iota
	ActionDelete
	ActionUpdateProgramID
	ActionUpdateTimeoutWindow
)

// RegisterAction registers a new contract under name, or re-registers the
// reserved "hyle" name itself at genesis.
type RegisterAction struct {
	ContractName        string
	Verifier            string
	ProgramID           []byte
	StateCommitment     []byte
	TimeoutWindow       *uint64
	ConstructorMetadata []byte
}

// DeleteAction removes a previously registered contract.
type DeleteAction struct {
	ContractName string
}

// UpdateProgramIDAction rebinds a contract to a new program identifier,
// leaving its committed state untouched.
type UpdateProgramIDAction struct {
	ContractName string
	ProgramID    []byte
}

// UpdateTimeoutWindowAction changes a contract's blob settlement timeout.
type UpdateTimeoutWindowAction struct {
	ContractName  string
	TimeoutWindow *uint64
}

// Action is the decoded form of one "hyle"-addressed blob: exactly one of
// the four pointer fields is non-nil.
type Action struct {
	Kind                ActionKind
	Register            *RegisterAction
	Delete              *DeleteAction
	UpdateProgramID     *UpdateProgramIDAction
	UpdateTimeoutWindow *UpdateTimeoutWindowAction
}

// Status records what a Change does to a contract: either replace it with
// the carried record, or remove it entirely.
type Status int

const (
	StatusUpdated Status = iota
	StatusDeleted
)

// Change is the effect one "hyle" blob has on the registry: the resulting
// contract state (when Status is StatusUpdated) and the onchain effects a
// verifier's HyleOutput should report for it.
type Change struct {
	ContractName string
	Status       Status
	Contract     types.Contract
	Effects      []types.EffectKind
	// ConstructorMetadata is carried through from a Register action so the
	// resulting onchain effect can seed the new contract's first state.
	ConstructorMetadata []byte
}
