// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
)

// highAttemptWarnEvery is how many 100ms back-pressure attempts elapse
// between warning logs: 100 attempts is roughly every 10s.
const highAttemptWarnEvery = 100

// backpressureInterval is the sleep between SendWaiting retry attempts.
const backpressureInterval = 100 * time.Millisecond

// Sender publishes values of type M onto the bus. Senders are acquired
// through SenderFor and must be released with Close once the owning module
// no longer needs them, so the channel can be reclaimed when the last
// holder goes away.
type Sender[M Message] struct {
	bus        *Bus
	ch         *channel
	typ        reflect.Type
	clientType string
}

// SenderFor acquires a Sender for message type M, creating the underlying
// channel on first use. clientType identifies the bus client for metrics.
func SenderFor[M Message](b *Bus, clientType string) *Sender[M] {
	var zero M
	t := reflect.TypeOf(zero)
	ch := b.channelFor(t, zero.Capacity(), zero.CapacityIfWaiting())
	return &Sender[M]{bus: b, ch: ch, typ: t, clientType: clientType}
}

// Send publishes msg. It fails with ErrChannelFull when the slowest
// subscriber's unread queue has reached the soft high-water mark, and
// succeeds as a no-op when there are no receivers.
func (s *Sender[M]) Send(msg M) error {
	enqueued, err := s.ch.send(msg)
	if enqueued {
		s.bus.metrics.send(s.typ.String(), s.clientType)
	}
	return err
}

// SendWaiting publishes msg, sleeping 100ms between attempts while the
// channel is full, logging a warning every 100 attempts (~10s). It never
// blocks when there are no receivers, and is safe to cancel via ctx.
func (s *Sender[M]) SendWaiting(ctx context.Context, msg M) error {
	if s.ch.receiverCount() == 0 {
		return nil
	}

	attempts := 0
	for {
		enqueued, err := s.ch.send(msg)
		if err == nil {
			if enqueued {
				s.bus.metrics.send(s.typ.String(), s.clientType)
			}
			return nil
		}
		if !errors.Is(err, ErrChannelFull) {
			return err
		}

		if attempts%highAttemptWarnEvery == 0 {
			s.bus.log.Warn("channel full, waiting to send",
				"message_type", s.typ.String(),
				"client_type", s.clientType,
				"attempts", attempts,
			)
		}
		attempts++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backpressureInterval):
		}
	}
}

// Close releases this handle's reference on the underlying channel.
func (s *Sender[M]) Close() {
	s.bus.release(s.typ, s.ch)
}
