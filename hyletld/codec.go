// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package hyletld

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
)

// envelope is the wire shape of a blob addressed to the "hyle" contract:
// a kind discriminator plus exactly one populated action, the same
// structured-blob-data idiom the verifier package uses for native blobs.
type envelope struct {
	Kind                ActionKind                 `cbor:"kind"`
	Register            *RegisterAction            `cbor:"register,omitempty"`
	Delete              *DeleteAction              `cbor:"delete,omitempty"`
	UpdateProgramID     *UpdateProgramIDAction     `cbor:"update_program_id,omitempty"`
	UpdateTimeoutWindow *UpdateTimeoutWindowAction `cbor:"update_timeout_window,omitempty"`
}

// Encode serializes action as a "hyle" contract blob payload.
func Encode(action Action) ([]byte, error) {
	env := envelope{
		Kind:                action.Kind,
		Register:            action.Register,
		Delete:              action.Delete,
		UpdateProgramID:     action.UpdateProgramID,
		UpdateTimeoutWindow: action.UpdateTimeoutWindow,
	}
	data, err := cbor.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "encoding hyle tld action")
	}
	return data, nil
}

// Decode parses a "hyle" contract blob payload back into an Action.
func Decode(data []byte) (Action, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return Action{}, errors.Wrap(err, "decoding hyle tld action")
	}

	switch env.Kind {
	case ActionRegister:
		if env.Register == nil {
			return Action{}, errors.New("register action missing parameters")
		}
	case ActionDelete:
		if env.Delete == nil {
			return Action{}, errors.New("delete action missing parameters")
		}
	case ActionUpdateProgramID:
		if env.UpdateProgramID == nil {
			return Action{}, errors.New("update program id action missing parameters")
		}
	case ActionUpdateTimeoutWindow:
		if env.UpdateTimeoutWindow == nil {
			return Action{}, errors.New("update timeout window action missing parameters")
		}
	default:
		return Action{}, errors.Newf("unrecognized hyle tld action kind %d", env.Kind)
	}

	return Action{
		Kind:                env.Kind,
		Register:            env.Register,
		Delete:              env.Delete,
		UpdateProgramID:     env.UpdateProgramID,
		UpdateTimeoutWindow: env.UpdateTimeoutWindow,
	}, nil
}
