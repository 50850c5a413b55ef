// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package hyletld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyle-network/hyle-node/types"
)

// Registering "foo" twice within one batch: the second fails.
func TestRegisterSameNameTwiceInSameBatchFails(t *testing.T) {
	registry := MapRegistry{}

	fooAction := Action{Kind: ActionRegister, Register: &RegisterAction{ContractName: "foo", Verifier: "risc0-1"}}
	actions := []Action{fooAction, fooAction}

	_, err := ApplyAll(registry, actions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

// Registering "foo" when it's already in the registry also fails.
func TestRegisterAlreadyInRegistryFails(t *testing.T) {
	registry := MapRegistry{"foo": types.Contract{Name: "foo", Verifier: "risc0-1"}}

	_, err := Apply(registry, map[string]Change{}, Action{
		Kind:     ActionRegister,
		Register: &RegisterAction{ContractName: "foo", Verifier: "risc0-1"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

// Deleting "hyle" itself always fails.
func TestDeleteHyleFails(t *testing.T) {
	registry := MapRegistry{}
	_, err := Apply(registry, map[string]Change{}, Action{
		Kind:   ActionDelete,
		Delete: &DeleteAction{ContractName: ContractName},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCannotTouchHyle)
}

// Deleting "foo" while registered and from the hyli wallet identity succeeds.
func TestDeleteRegisteredContractSucceeds(t *testing.T) {
	registry := MapRegistry{"foo": types.Contract{Name: "foo", Verifier: "risc0-1"}}
	tx := &types.BlobTransaction{Identity: types.HyliWalletIdentity}
	data, err := Encode(Action{Kind: ActionDelete, Delete: &DeleteAction{ContractName: "foo"}})
	require.NoError(t, err)
	tx.Blobs = []types.Blob{{ContractName: ContractName, Data: data}}

	changes, err := ApplyTransaction(registry, tx)
	require.NoError(t, err)
	require.Contains(t, changes, "foo")
	assert.Equal(t, StatusDeleted, changes["foo"].Status)
}

// Deleting a contract that was never registered reuses the
// ContractAlreadyRegistered error kind.
func TestDeleteUnregisteredContractFails(t *testing.T) {
	registry := MapRegistry{}
	_, err := Apply(registry, map[string]Change{}, Action{
		Kind:   ActionDelete,
		Delete: &DeleteAction{ContractName: "foo"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

// UpdateProgramId on "foo" from an identity other than hyli@wallet is
// rejected before the action is even applied.
func TestUpdateProgramIDUnauthorizedIdentityRejected(t *testing.T) {
	action := Action{
		Kind:            ActionUpdateProgramID,
		UpdateProgramID: &UpdateProgramIDAction{ContractName: "foo", ProgramID: []byte{1, 2, 3}},
	}

	err := Authorize("alice@x", []Action{action})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// Register actions need no authorization regardless of identity.
func TestRegisterRequiresNoAuthorization(t *testing.T) {
	action := Action{Kind: ActionRegister, Register: &RegisterAction{ContractName: "foo", Verifier: "risc0-1"}}
	assert.NoError(t, Authorize("alice@x", []Action{action}))
}

// An UpdateProgramId following an UpdateTimeoutWindow on the same contract
// within one transaction merges onto that earlier change, rather than
// starting over from the registry.
func TestUpdateProgramIDMergesWithinTransaction(t *testing.T) {
	registry := MapRegistry{"foo": types.Contract{Name: "foo", Verifier: "risc0-1", ProgramID: []byte{0}}}

	actions := []Action{
		{Kind: ActionUpdateTimeoutWindow, UpdateTimeoutWindow: &UpdateTimeoutWindowAction{ContractName: "foo", TimeoutWindow: uint64Ptr(10)}},
		{Kind: ActionUpdateProgramID, UpdateProgramID: &UpdateProgramIDAction{ContractName: "foo", ProgramID: []byte{9, 9}}},
	}

	staged, err := ApplyAll(registry, actions)
	require.NoError(t, err)
	change := staged["foo"]
	assert.Equal(t, []byte{9, 9}, change.Contract.ProgramID)
	assert.Equal(t, uint64(10), *change.Contract.TimeoutWindow)
	assert.Equal(t, []types.EffectKind{types.EffectUpdateTimeoutWindow, types.EffectUpdateProgramID}, change.Effects)
}

// Constructor metadata given at registration rides through to the Register
// effect, and only to it.
func TestRegisterEffectCarriesConstructorMetadata(t *testing.T) {
	registry := MapRegistry{}
	staged, err := ApplyAll(registry, []Action{{
		Kind: ActionRegister,
		Register: &RegisterAction{
			ContractName:        "foo",
			Verifier:            "risc0-1",
			ConstructorMetadata: []byte("initial supply"),
		},
	}})
	require.NoError(t, err)

	effects := EffectsFor(staged["foo"])
	require.Len(t, effects, 1)
	assert.Equal(t, types.EffectRegister, effects[0].Kind)
	assert.Equal(t, []byte("initial supply"), effects[0].Metadata)
}

func TestApplyTransactionNoOpWithoutHyleBlobs(t *testing.T) {
	registry := MapRegistry{}
	tx := &types.BlobTransaction{
		Identity: "alice@x",
		Blobs:    []types.Blob{{ContractName: "hyllar", Data: []byte("transfer")}},
	}
	changes, err := ApplyTransaction(registry, tx)
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Action{Kind: ActionRegister, Register: &RegisterAction{ContractName: "foo", Verifier: "risc0-1"}}
	data, err := Encode(original)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original.Kind, decoded.Kind)
	assert.Equal(t, original.Register.ContractName, decoded.Register.ContractName)
}

func TestValidNameRejectsDottedNames(t *testing.T) {
	assert.True(t, ValidName("hyle"))
	assert.True(t, ValidName("hyllar"))
	assert.False(t, ValidName("a.b"))
	assert.False(t, ValidName(""))
}

func uint64Ptr(v uint64) *uint64 { return &v }
