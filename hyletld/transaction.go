// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package hyletld

import (
	"github.com/cockroachdb/errors"

	"github.com/hyle-network/hyle-node/types"
)

// ActionsIn decodes every blob in tx addressed to the "hyle" contract, in
// blob order. A malformed "hyle" blob fails the whole transaction.
func ActionsIn(tx *types.BlobTransaction) ([]Action, error) {
	var actions []Action
	for i, blob := range tx.Blobs {
		if blob.ContractName != ContractName {
			continue
		}
		action, err := Decode(blob.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "blob %d", i)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// ApplyTransaction decodes and authorizes tx's "hyle" blobs against
// registry, returning the registry changes they produce. It is a no-op,
// returning a nil map and no error, if tx addresses no "hyle" blobs.
func ApplyTransaction(registry Registry, tx *types.BlobTransaction) (map[string]Change, error) {
	actions, err := ActionsIn(tx)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}

	if err := Authorize(tx.Identity, actions); err != nil {
		return nil, err
	}

	return ApplyAll(registry, actions)
}

// EffectsFor converts a Change into the OnchainEffect list a verifier's
// HyleOutput should carry for the blob that produced it.
func EffectsFor(change Change) []types.OnchainEffect {
	effects := make([]types.OnchainEffect, 0, len(change.Effects))
	for _, kind := range change.Effects {
		effect := types.OnchainEffect{Kind: kind, ContractName: change.ContractName}
		if change.Status == StatusUpdated {
			contract := change.Contract
			effect.Contract = &contract
		}
		if kind == types.EffectRegister {
			effect.Metadata = change.ConstructorMetadata
		}
		effects = append(effects, effect)
	}
	return effects
}
