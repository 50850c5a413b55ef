// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrChannelFull is returned by Send when the channel's unread queue
	// has reached the soft high-water mark.
	ErrChannelFull = errors.New("bus: channel is full")
	// ErrNoMessage is returned by TryRecv when no message is pending.
	ErrNoMessage = errors.New("bus: no message available")
)

// Lagged is returned by Recv/TryRecv when a subscriber fell far enough
// behind that the ring buffer overwrote messages it had not yet read. The
// subscriber's cursor is advanced past the gap; it resumes with the next
// available message rather than missing silently.
type Lagged struct {
	N uint64
}

func (e *Lagged) Error() string {
	return fmt.Sprintf("bus: receiver lagged by %d messages", e.N)
}
