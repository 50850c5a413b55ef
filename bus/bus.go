// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import (
	"reflect"
	"sync"

	"github.com/luxfi/log"
)

// Bus is the process-wide registry mapping a message type to its single
// broadcast channel. Acquiring a Sender or Receiver is safe for concurrent
// use; the first acquisition for a type creates the channel lazily with
// that type's declared capacity, subsequent acquisitions share it. The
// registry mutex is held only during type lookup/insertion — the channels
// themselves are lock-free from the registry's point of view.
type Bus struct {
	mu       sync.Mutex
	channels map[reflect.Type]*channel

	metrics *Metrics
	log     log.Logger
}

// New builds a Bus. metrics may be nil (no-op instrumentation); logger may
// be nil, in which case a no-op logger is used.
func New(metrics *Metrics, logger log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Bus{
		channels: make(map[reflect.Type]*channel),
		metrics:  metrics,
		log:      logger,
	}
}

func (b *Bus) channelFor(t reflect.Type, capacity, capacityIfWaiting int) *channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[t]
	if !ok {
		ch = newChannel(capacity, capacityIfWaiting)
		b.channels[t] = ch
	}
	ch.refs++
	return ch
}

func (b *Bus) release(t reflect.Type, ch *channel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch.refs--
	if ch.refs <= 0 {
		delete(b.channels, t)
	}
}
