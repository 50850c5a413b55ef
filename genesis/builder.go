// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/hyle-network/hyle-node/hyletld"
	"github.com/hyle-network/hyle-node/types"
)

// faucetIdentity is the well-known identity the genesis faucet transactions
// operate as.
const faucetIdentity types.Identity = "hyle-faucet"

// recursionContractName is the reserved contract every synthetic proof
// transaction below claims to be a recursive aggregate of.
const recursionContractName = "risc0-recursion"

// Token amounts mirror the source's genesis policy: every validator is
// given its configured stake plus a fixed operating balance, and the
// SMT-backed bonus tokens are minted with a fixed total supply.
const (
	operatingBalance          = 100_000_000_000
	smtTotalSupply            = 100_000_000_000_000
	faucetInitialHyllarSupply = 1_000_000_000_000_000
)

var smtBonusTokens = []string{"oranj", "oxygen", "vitamin"}

// buildGenesisTransactions assembles the full deterministic sequence of
// genesis transactions: contract registration, identity registration,
// faucet funding, staking/delegation, and (unless configured to keep
// tokens in the faucet) the final token drain to the Hyli wallet. Every
// blob transaction but the initial contract-registration one is followed
// by a synthetic risc0-1 recursive-proof transaction, standing in for the
// real proof every validator would otherwise have to generate identically.
func buildGenesisTransactions(validators []Validator, keepTokensInFaucet bool) ([]Transaction, error) {
	programIDs, txs, err := contractRegistrationTxs()
	if err != nil {
		return nil, err
	}

	registerTxs, err := identityRegistrationTxs(validators)
	if err != nil {
		return nil, err
	}
	faucetTxs, totalFauceted, err := faucetTxs(validators)
	if err != nil {
		return nil, err
	}
	stakeTxs, err := stakeTxs(validators)
	if err != nil {
		return nil, err
	}

	builders := append(append(registerTxs, faucetTxs...), stakeTxs...)
	if !keepTokensInFaucet {
		drainTxs, err := tokenDrainTxs(totalFauceted)
		if err != nil {
			return nil, err
		}
		builders = append(builders, drainTxs...)
	}

	for _, tx := range builders {
		proof, err := recursiveProofFor(tx, programIDs)
		if err != nil {
			return nil, err
		}
		txs = append(txs, Transaction{Kind: TransactionBlob, Blob: tx})
		txs = append(txs, Transaction{Kind: TransactionVerifiedProof, Proof: proof})
	}

	return txs, nil
}

// recursiveProofFor builds the synthetic risc0-1 proof transaction that
// follows a genesis blob transaction: one HyleOutput per blob, each
// claiming success, since every validator executes genesis identically and
// no real proof ever crosses the wire.
func recursiveProofFor(tx *types.BlobTransaction, programIDs map[string][]byte) (*VerifiedProofTransaction, error) {
	txHash, err := tx.Hash()
	if err != nil {
		return nil, errors.Wrap(err, "hashing genesis blob transaction")
	}

	outputs := make([]types.HyleOutput, 0, len(tx.Blobs))
	for i := range tx.Blobs {
		outputs = append(outputs, types.HyleOutput{
			Version:   1,
			Identity:  tx.Identity,
			BlobIndex: i,
			Blobs:     tx.Blobs,
			Success:   true,
			TxHash:    txHash,
		})
	}

	return &VerifiedProofTransaction{
		ContractName: recursionContractName,
		Verifier:     "risc0-1",
		ProgramID:    programIDs[recursionContractName],
		BlobTxHash:   txHash,
		IsRecursive:  true,
		Outputs:      outputs,
	}, nil
}

// contractRegistrationTxs builds the single transaction registering every
// reserved genesis contract: the "hyle" TLD itself, the three native
// verifiers, the token and identity contracts, staking, and the recursive
// proof aggregator. It also returns each registered contract's program id,
// looked up by the proof-transaction builders above.
func contractRegistrationTxs() (map[string][]byte, []Transaction, error) {
	programIDs := map[string][]byte{
		"hyle":                {0, 0, 0, 0},
		"blst":                nil,
		"sha3_256":            nil,
		"secp256k1":           nil,
		"staking":             {1, 1, 1, 1},
		"hyllar":              {2, 2, 2, 2},
		"oranj":               {3, 3, 3, 3},
		"oxygen":              {3, 3, 3, 3},
		"vitamin":             {3, 3, 3, 3},
		"hydentity":           {4, 4, 4, 4},
		recursionContractName: {5, 5, 5, 5},
	}

	registrations := []hyletld.RegisterAction{
		{ContractName: "hyle", Verifier: "hyle", ProgramID: programIDs["hyle"]},
		{ContractName: "blst", Verifier: "blst"},
		{ContractName: "sha3_256", Verifier: "sha3_256"},
		{ContractName: "secp256k1", Verifier: "secp256k1"},
		{ContractName: "staking", Verifier: "risc0-1", ProgramID: programIDs["staking"]},
		{ContractName: "hyllar", Verifier: "risc0-1", ProgramID: programIDs["hyllar"]},
	}
	for _, token := range smtBonusTokens {
		registrations = append(registrations, hyletld.RegisterAction{
			ContractName: token, Verifier: "risc0-1", ProgramID: programIDs[token],
		})
	}
	registrations = append(registrations,
		hyletld.RegisterAction{ContractName: "hydentity", Verifier: "risc0-1", ProgramID: programIDs["hydentity"]},
		hyletld.RegisterAction{ContractName: recursionContractName, Verifier: "risc0-1", ProgramID: programIDs[recursionContractName]},
	)

	blobs := make([]types.Blob, 0, len(registrations))
	for _, reg := range registrations {
		data, err := hyletld.Encode(hyletld.Action{Kind: hyletld.ActionRegister, Register: &reg})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "encoding registration for %q", reg.ContractName)
		}
		blobs = append(blobs, types.Blob{ContractName: hyletld.ContractName, Data: data})
	}

	tx := &types.BlobTransaction{Identity: "hyle@hyle", Blobs: blobs}
	return programIDs, []Transaction{{Kind: TransactionBlob, Blob: tx}}, nil
}

// identityRegistrationTxs registers the faucet identity, then one
// "{validator}@hydentity" identity per sorted validator, each with the
// fixed genesis password.
func identityRegistrationTxs(validators []Validator) ([]*types.BlobTransaction, error) {
	txs := make([]*types.BlobTransaction, 0, len(validators)+1)

	blob, err := registerIdentityBlob()
	if err != nil {
		return nil, err
	}
	txs = append(txs, &types.BlobTransaction{Identity: faucetIdentity, Blobs: []types.Blob{blob}})

	for _, v := range validators {
		txs = append(txs, &types.BlobTransaction{
			Identity: validatorIdentity(v),
			Blobs:    []types.Blob{blob},
		})
	}
	return txs, nil
}

// faucetTxs grants each validator its configured stake plus the fixed
// operating balance, from the faucet identity. It returns the total
// amount fauceted out so the token drain below can size the remainder.
func faucetTxs(validators []Validator) ([]*types.BlobTransaction, uint64, error) {
	txs := make([]*types.BlobTransaction, 0, len(validators))
	var total uint64

	verify, err := verifyIdentityBlob()
	if err != nil {
		return nil, 0, err
	}

	for _, v := range validators {
		amount := v.StakeAmount + operatingBalance
		total += amount

		transfer, err := actionBlob("hyllar", "transfer", map[string]any{
			"recipient": string(validatorIdentity(v)),
			"amount":    amount,
		})
		if err != nil {
			return nil, 0, err
		}

		txs = append(txs, &types.BlobTransaction{
			Identity: faucetIdentity,
			Blobs:    []types.Blob{verify, transfer},
		})
	}
	return txs, total, nil
}

// stakeTxs has each validator verify its identity, stake its configured
// amount, transfer it plus a fixed fee deposit to the staking contract,
// and register its delegation.
func stakeTxs(validators []Validator) ([]*types.BlobTransaction, error) {
	txs := make([]*types.BlobTransaction, 0, len(validators))

	verify, err := verifyIdentityBlob()
	if err != nil {
		return nil, err
	}

	for _, v := range validators {
		stake, err := actionBlob("staking", "stake", map[string]any{"amount": v.StakeAmount})
		if err != nil {
			return nil, err
		}
		transferStake, err := actionBlob("hyllar", "transfer", map[string]any{"recipient": "staking", "amount": v.StakeAmount})
		if err != nil {
			return nil, err
		}
		deposit, err := actionBlob("staking", "deposit_for_fees", map[string]any{
			"holder": fmt.Sprintf("%x", v.PubKey), "amount": uint64(operatingBalance),
		})
		if err != nil {
			return nil, err
		}
		transferFees, err := actionBlob("hyllar", "transfer", map[string]any{"recipient": "staking", "amount": uint64(operatingBalance)})
		if err != nil {
			return nil, err
		}
		delegate, err := actionBlob("staking", "delegate", map[string]any{"validator": fmt.Sprintf("%x", v.PubKey)})
		if err != nil {
			return nil, err
		}

		txs = append(txs, &types.BlobTransaction{
			Identity: validatorIdentity(v),
			Blobs:    []types.Blob{verify, stake, transferStake, deposit, transferFees, delegate},
		})
	}
	return txs, nil
}

// tokenDrainTxs sweeps the faucet's remaining hyllar balance and the full
// supply of each SMT-backed bonus token to the Hyli wallet, closing off
// the faucet identity as a source of funds once genesis stakers are paid.
func tokenDrainTxs(totalFauceted uint64) ([]*types.BlobTransaction, error) {
	txs := make([]*types.BlobTransaction, 0, 1+len(smtBonusTokens))

	verify, err := verifyIdentityBlob()
	if err != nil {
		return nil, err
	}

	remaining := uint64(0)
	if faucetInitialHyllarSupply > totalFauceted {
		remaining = faucetInitialHyllarSupply - totalFauceted
	}
	hyllarDrain, err := actionBlob("hyllar", "transfer", map[string]any{
		"recipient": string(types.HyliWalletIdentity), "amount": remaining,
	})
	if err != nil {
		return nil, err
	}
	txs = append(txs, &types.BlobTransaction{Identity: faucetIdentity, Blobs: []types.Blob{verify, hyllarDrain}})

	for _, token := range smtBonusTokens {
		drain, err := actionBlob(token, "transfer", map[string]any{
			"recipient": string(types.HyliWalletIdentity), "amount": uint64(smtTotalSupply),
		})
		if err != nil {
			return nil, err
		}
		txs = append(txs, &types.BlobTransaction{Identity: faucetIdentity, Blobs: []types.Blob{verify, drain}})
	}

	return txs, nil
}

func validatorIdentity(v Validator) types.Identity {
	return types.Identity(v.Name + "@hydentity")
}

type contractActionPayload struct {
	Kind string         `cbor:"kind"`
	Args map[string]any `cbor:"args"`
}

func actionBlob(contract, kind string, args map[string]any) (types.Blob, error) {
	// Canonical mode sorts map keys, so the encoded bytes do not depend on
	// Go's map iteration order.
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return types.Blob{}, errors.Wrap(err, "building canonical cbor encoder")
	}
	data, err := em.Marshal(contractActionPayload{Kind: kind, Args: args})
	if err != nil {
		return types.Blob{}, errors.Wrapf(err, "encoding %s action for %s", kind, contract)
	}
	return types.Blob{ContractName: contract, Data: data}, nil
}

func registerIdentityBlob() (types.Blob, error) {
	return actionBlob("hydentity", "register_identity", map[string]any{"password": "password"})
}

func verifyIdentityBlob() (types.Blob, error) {
	return actionBlob("hydentity", "verify_identity", map[string]any{"password": "password"})
}
