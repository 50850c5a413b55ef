// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import "github.com/hyle-network/hyle-node/types"

// TransactionKind distinguishes the two shapes of transaction the genesis
// block carries.
type TransactionKind int

const (
	TransactionBlob TransactionKind = iota
	TransactionVerifiedProof
)

// Transaction is either a BlobTransaction proper, or the synthetic
// recursive proof transaction appended after it.
type Transaction struct {
	Kind  TransactionKind
	Blob  *types.BlobTransaction
	Proof *VerifiedProofTransaction
}

// VerifiedProofTransaction stands in for a real zk proof transaction.
// Genesis is executed identically on every validator, so no real proof is
// needed: it claims the risc0-1 verifier with a zero-length proof and
// carries the HyleOutputs the transaction's blobs are known to produce.
type VerifiedProofTransaction struct {
	ContractName string
	ProgramID    []byte
	Verifier     string
	BlobTxHash   types.TxHash
	Outputs      []types.HyleOutput
	IsRecursive  bool
}

// Validator is a genesis-time staker: its node identity, BLS public key
// and configured stake amount.
type Validator struct {
	Name        string
	PubKey      []byte
	StakeAmount uint64
}

// DataProposal bundles a batch of transactions under one lane.
type DataProposal struct {
	Transactions []Transaction
}

// AggregateSignature is a fake multi-validator signature: genesis is
// agreed by construction, not by an actual signing round.
type AggregateSignature struct {
	Signature  []byte
	Validators [][]byte
}

// StakingAction records a validator's genesis candidacy.
type StakingAction struct {
	ValidatorPubKey []byte
}

// ConsensusProposal is the metadata block consensus attaches to a lane's
// data proposal.
type ConsensusProposal struct {
	Slot           uint64
	TimestampMs    uint64
	Cut            []CutEntry
	StakingActions []StakingAction
	ParentHash     string
}

// CutEntry would reference a lane's data proposal hash; genesis leaves the
// cut empty (see the design note on the data-availability race this
// avoids).
type CutEntry struct {
	LaneLeader []byte
	DataHash   []byte
}

// SignedBlock is the first block of the chain: one lane (led by the
// lowest-sorted validator) carrying every genesis transaction, with a
// fake aggregate signature naming every validator.
type SignedBlock struct {
	LaneLeader        []byte
	DataProposals     []DataProposal
	Certificate       AggregateSignature
	ConsensusProposal ConsensusProposal
}
