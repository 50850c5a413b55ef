// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

// assembleGenesisBlock builds the first block of the chain: one lane, led
// by the lowest-sorted validator, carrying every genesis transaction, with
// a fake aggregate signature naming every validator and one staking
// candidacy action per validator. The cut is left empty: genesis does not
// disseminate its data proposal through the mempool, so there is nothing
// yet for a cut entry to reference.
func assembleGenesisBlock(txs []Transaction, validators []Validator, genesisTimestamp int64) *SignedBlock {
	leader := []byte{}
	if len(validators) > 0 {
		leader = validators[0].PubKey
	}

	validatorKeys := make([][]byte, len(validators))
	stakingActions := make([]StakingAction, len(validators))
	for i, v := range validators {
		validatorKeys[i] = v.PubKey
		stakingActions[i] = StakingAction{ValidatorPubKey: v.PubKey}
	}

	return &SignedBlock{
		LaneLeader: leader,
		DataProposals: []DataProposal{
			{Transactions: txs},
		},
		Certificate: AggregateSignature{
			Signature:  []byte("fake"),
			Validators: validatorKeys,
		},
		ConsensusProposal: ConsensusProposal{
			Slot:           0,
			TimestampMs:    uint64(genesisTimestamp) * 1000,
			Cut:            nil,
			StakingActions: stakingActions,
			ParentHash:     "genesis",
		},
	}
}
