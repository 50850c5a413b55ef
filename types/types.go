// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types holds the data model shared across the verifier, genesis
// and hyletld packages: contract records, blob transactions and the
// verifier's HyleOutput.
package types

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/ids"
	"golang.org/x/crypto/sha3"
)

// TxHash identifies a blob transaction. It wraps ids.ID the way the
// validator set keys everything off ids.NodeID, giving it typed equality
// and a stable hex String() for logging.
type TxHash ids.ID

// String renders the hash as hex.
func (h TxHash) String() string {
	return ids.ID(h).String()
}

// Identity is a user-facing account reference of the form "name@domain".
type Identity string

// HyliWalletIdentity is the single identity authorized to update or delete
// contracts registered against the "hyle" TLD.
const HyliWalletIdentity Identity = "hyli@wallet"

// Blob is one opaque action within a BlobTransaction, addressed to a
// contract by name.
type Blob struct {
	ContractName string
	Data         []byte
}

// BlobTransaction carries an identity and an ordered list of blobs, each
// destined for verification against its target contract's verifier.
type BlobTransaction struct {
	Identity Identity
	Blobs    []Blob
}

// Hash derives the transaction's identity on chain: the SHA3-256 digest of
// its canonical encoding.
func (tx *BlobTransaction) Hash() (TxHash, error) {
	data, err := cbor.Marshal(tx)
	if err != nil {
		return TxHash{}, err
	}
	return TxHash(sha3.Sum256(data)), nil
}

// Contract is a registered on-chain state machine: a name bound to a
// verifier, a program identifier and the committed state it last reached.
type Contract struct {
	Name            string
	Verifier        string
	ProgramID       []byte
	StateCommitment []byte
	TimeoutWindow   *uint64 // nil means "no timeout"
}

// TxContext carries transaction-scoped metadata threaded through to
// HyleOutput for contracts that need it (e.g. block height, timestamp).
type TxContext struct {
	BlockHeight uint64
	Timestamp   uint64
}

// OnchainEffect describes a side effect a verified blob applies to the
// contract registry: registering, deleting or updating a contract.
// Metadata is only set on Register effects, carrying the constructor
// arguments the new contract's first state is derived from.
type OnchainEffect struct {
	Kind         EffectKind
	ContractName string
	Contract     *Contract
	Metadata     []byte
}

// EffectKind enumerates the onchain effect variants a HyleOutput can carry.
type EffectKind int

const (
	EffectRegister EffectKind = iota
	EffectDelete
	EffectUpdateProgramID
	EffectUpdateTimeoutWindow
)

// HyleOutput is the verifier's unit of work: the result of checking one
// blob in a transaction against its contract's program.
type HyleOutput struct {
	Version        uint32
	InitialState   []byte
	NextState      []byte
	Identity       Identity
	BlobIndex      int
	Blobs          []Blob
	Success        bool
	TxHash         TxHash
	TxCtx          TxContext
	OnchainEffects []OnchainEffect
	ProgramOutputs []byte
}

// FailedOutput builds the canonical failure shape required by the native
// verifiers: success=false, default identity, empty commitments and no
// effects, but the output still exists so consensus observes the failure
// rather than a silently missing result.
func FailedOutput(txHash TxHash, blobIndex int, blobs []Blob) HyleOutput {
	return HyleOutput{
		Identity:  "",
		BlobIndex: blobIndex,
		Blobs:     blobs,
		Success:   false,
		TxHash:    txHash,
	}
}
