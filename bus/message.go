// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bus implements the process-wide typed broadcast bus that modules
// use to exchange events: a registry mapping a message type to a single,
// reference-counted broadcast channel, with backpressure and lag detection.
package bus

// Message is implemented by every value eligible for bus transport. Capacity
// and CapacityIfWaiting are the type's compile-time ring size and soft
// high-water mark; embed DefaultCapacity or LargeCapacity to pick up the
// standard pair, or implement both methods directly to override them.
type Message interface {
	Capacity() int
	CapacityIfWaiting() int
}

const (
	// DefaultChannelCapacity is the ring size for ordinary messages.
	DefaultChannelCapacity = 100_000
	// DefaultCapacityIfWaiting is the soft high-water mark for ordinary
	// messages, kept below DefaultChannelCapacity to tolerate the TOCTOU
	// race between the length check and the enqueue.
	DefaultCapacityIfWaiting = DefaultChannelCapacity - 10

	// LargeChannelCapacity is the ring size for large event payloads.
	LargeChannelCapacity = 10_000
	// LargeCapacityIfWaiting is the soft high-water mark for large event
	// payloads.
	LargeCapacityIfWaiting = LargeChannelCapacity - 10
)

// DefaultCapacity gives an embedding message type the standard
// 100000/99990 bus capacity pair.
type DefaultCapacity struct{}

func (DefaultCapacity) Capacity() int { return DefaultChannelCapacity }

func (DefaultCapacity) CapacityIfWaiting() int { return DefaultCapacityIfWaiting }

// LargeCapacity gives an embedding message type the reduced 10000/9990 bus
// capacity pair, for types carrying large payloads.
type LargeCapacity struct{}

func (LargeCapacity) Capacity() int { return LargeChannelCapacity }

func (LargeCapacity) CapacityIfWaiting() int { return LargeCapacityIfWaiting }
