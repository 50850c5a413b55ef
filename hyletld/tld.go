// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package hyletld

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hyle-network/hyle-node/types"
)

// Registry is the read side the TLD handler consults: the contracts known
// before this transaction started applying.
type Registry interface {
	Contract(name string) (types.Contract, bool)
}

// MapRegistry is a Registry backed by a plain map, sufficient for tests
// and for any caller that snapshots the registry before applying a block.
type MapRegistry map[string]types.Contract

func (r MapRegistry) Contract(name string) (types.Contract, bool) {
	c, ok := r[name]
	return c, ok
}

// Apply applies one "hyle"-addressed blob's action against registry and
// the changes already staged earlier in the same transaction, returning
// the resulting Change or an error that should fail the whole transaction.
func Apply(registry Registry, staged map[string]Change, action Action) (Change, error) {
	switch action.Kind {
	case ActionRegister:
		return applyRegister(registry, staged, action.Register)
	case ActionDelete:
		return applyDelete(registry, staged, action.Delete)
	case ActionUpdateProgramID:
		return applyUpdateProgramID(registry, staged, action.UpdateProgramID)
	case ActionUpdateTimeoutWindow:
		return applyUpdateTimeoutWindow(registry, staged, action.UpdateTimeoutWindow)
	default:
		return Change{}, errors.New("unsupported action on hyle contract")
	}
}

// ValidName reports whether name may be registered: the reserved TLD
// itself, a fresh single-label TLD with no ".", or a direct subdomain of
// the TLD ("<label>.hyle", with exactly one label before it).
func ValidName(name string) bool {
	if name == ContractName {
		return true
	}
	if label, ok := strings.CutSuffix(name, "."+ContractName); ok {
		name = label
	}
	return name != "" && !strings.Contains(name, ".")
}

func applyRegister(registry Registry, staged map[string]Change, reg *RegisterAction) (Change, error) {
	if !ValidName(reg.ContractName) {
		return Change{}, errors.Wrapf(ErrInvalidName, "%q", reg.ContractName)
	}

	if _, exists := staged[reg.ContractName]; exists {
		return Change{}, errors.Wrapf(ErrAlreadyRegistered, "%q", reg.ContractName)
	}
	if reg.ContractName != ContractName {
		if _, exists := registry.Contract(reg.ContractName); exists {
			return Change{}, errors.Wrapf(ErrAlreadyRegistered, "%q", reg.ContractName)
		}
	}

	return Change{
		ContractName: reg.ContractName,
		Status:       StatusUpdated,
		Contract: types.Contract{
			Name:            reg.ContractName,
			Verifier:        reg.Verifier,
			ProgramID:       reg.ProgramID,
			StateCommitment: reg.StateCommitment,
			TimeoutWindow:   reg.TimeoutWindow,
		},
		Effects:             []types.EffectKind{types.EffectRegister},
		ConstructorMetadata: reg.ConstructorMetadata,
	}, nil
}

func applyDelete(registry Registry, staged map[string]Change, del *DeleteAction) (Change, error) {
	if del.ContractName == ContractName {
		return Change{}, ErrCannotTouchHyle
	}

	if _, exists := staged[del.ContractName]; !exists {
		if _, exists := registry.Contract(del.ContractName); !exists {
			return Change{}, errors.Wrapf(ErrAlreadyRegistered, "%q", del.ContractName)
		}
	}

	return Change{
		ContractName: del.ContractName,
		Status:       StatusDeleted,
		Effects:      []types.EffectKind{types.EffectDelete},
	}, nil
}

func applyUpdateProgramID(registry Registry, staged map[string]Change, upd *UpdateProgramIDAction) (Change, error) {
	if upd.ContractName == ContractName {
		return Change{}, ErrCannotTouchHyle
	}

	change, err := resolveExisting(registry, staged, upd.ContractName)
	if err != nil {
		return Change{}, err
	}
	change.Contract.ProgramID = upd.ProgramID
	change.Effects = append(change.Effects, types.EffectUpdateProgramID)
	return change, nil
}

func applyUpdateTimeoutWindow(registry Registry, staged map[string]Change, upd *UpdateTimeoutWindowAction) (Change, error) {
	if upd.ContractName == ContractName {
		return Change{}, ErrCannotTouchHyle
	}

	change, err := resolveExisting(registry, staged, upd.ContractName)
	if err != nil {
		return Change{}, err
	}
	change.Contract.TimeoutWindow = upd.TimeoutWindow
	change.Effects = append(change.Effects, types.EffectUpdateTimeoutWindow)
	return change, nil
}

// resolveExisting returns the change-in-progress for name, merging onto a
// prior change staged earlier in this transaction if one exists, or
// seeding one from the registry's current record otherwise.
func resolveExisting(registry Registry, staged map[string]Change, name string) (Change, error) {
	if change, exists := staged[name]; exists {
		return change, nil
	}
	contract, exists := registry.Contract(name)
	if !exists {
		return Change{}, errors.Wrapf(ErrAlreadyRegistered, "%q", name)
	}
	return Change{
		ContractName: name,
		Status:       StatusUpdated,
		Contract:     contract,
	}, nil
}

// ApplyAll runs every action from one transaction's "hyle" blobs in order,
// threading the staged changes so later actions in the same transaction
// see earlier ones. It fails the whole batch on the first error.
func ApplyAll(registry Registry, actions []Action) (map[string]Change, error) {
	staged := make(map[string]Change, len(actions))
	for _, action := range actions {
		change, err := Apply(registry, staged, action)
		if err != nil {
			return nil, err
		}
		staged[change.ContractName] = change
	}
	return staged, nil
}

// Authorize checks that a transaction's blobs addressed to the "hyle"
// contract are all either Register (open to anyone) or one of the
// privileged actions issued by identity. It returns the first
// unauthorized action it finds.
func Authorize(identity types.Identity, actions []Action) error {
	if identity == types.HyliWalletIdentity {
		return nil
	}
	for _, action := range actions {
		if action.Kind != ActionRegister {
			return errors.Wrapf(ErrUnauthorized, "from identity %q", string(identity))
		}
	}
	return nil
}
