// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package hyletld

import "github.com/cockroachdb/errors"

var (
	// ErrAlreadyRegistered covers both Register naming an existing contract
	// and Delete/Update targeting a name that was never registered: the
	// error table names one ContractAlreadyRegistered kind for the TLD, so
	// both checks report it.
	ErrAlreadyRegistered = errors.New("contract is already registered")
	// ErrCannotTouchHyle is returned when Delete, UpdateProgramID or
	// UpdateTimeoutWindow targets the "hyle" contract itself.
	ErrCannotTouchHyle = errors.New("cannot delete or update the hyle contract")
	// ErrUnauthorized is returned when a privileged action's transaction
	// identity is not types.HyliWalletIdentity.
	ErrUnauthorized = errors.New("unauthorized action for hyle TLD")
	// ErrInvalidName is returned when Register's contract name is neither
	// "hyle", a fresh single-label TLD, nor a direct subdomain of "hyle".
	ErrInvalidName = errors.New("invalid contract name for registration")
)
