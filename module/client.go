// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"reflect"
	"sync"

	"github.com/hyle-network/hyle-node/bus"
)

// Client aggregates the typed senders and receivers one module uses, bound
// to that module's name for metrics and signal routing. A module can only
// send or receive a type it declared through the client: handles are
// acquired with Sender/Receiver below and nowhere else, and the client
// releases every declared handle on Close. Every client also receives the
// ShutdownModule and PersistModule signals, whether or not the module
// declares anything else.
type Client struct {
	name string
	bus  *bus.Bus

	mu        sync.Mutex
	senders   map[reflect.Type]any
	receivers map[reflect.Type]any
	closers   []func()

	shutdown *bus.Receiver[ShutdownModule]
	persist  *bus.Receiver[PersistModule]
}

// NewClient builds a bus client for the module named name. The shutdown and
// persist signal subscriptions are opened immediately so the module cannot
// miss a signal sent between its construction and its first Recv.
func NewClient(b *bus.Bus, name string) *Client {
	c := &Client{
		name:      name,
		bus:       b,
		senders:   make(map[reflect.Type]any),
		receivers: make(map[reflect.Type]any),
	}
	c.shutdown = bus.ReceiverFor[ShutdownModule](b, name)
	c.persist = bus.ReceiverFor[PersistModule](b, name)
	c.closers = append(c.closers, c.shutdown.Close, c.persist.Close)
	return c
}

// Name returns the module name this client is bound to.
func (c *Client) Name() string { return c.name }

// ShutdownReceiver returns the implicit ShutdownModule subscription.
func (c *Client) ShutdownReceiver() *bus.Receiver[ShutdownModule] { return c.shutdown }

// PersistReceiver returns the implicit PersistModule subscription.
func (c *Client) PersistReceiver() *bus.Receiver[PersistModule] { return c.persist }

// Close releases every handle the client declared, in reverse declaration
// order, allowing the underlying channels to be reclaimed.
func (c *Client) Close() {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.senders = make(map[reflect.Type]any)
	c.receivers = make(map[reflect.Type]any)
	c.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// Sender declares message type M as one the module sends and returns the
// shared typed sender, acquiring it on first use. Declaring the same type
// twice returns the same handle.
func Sender[M bus.Message](c *Client) *bus.Sender[M] {
	var zero M
	t := reflect.TypeOf(zero)

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.senders[t]; ok {
		return s.(*bus.Sender[M])
	}
	s := bus.SenderFor[M](c.bus, c.name)
	c.senders[t] = s
	c.closers = append(c.closers, s.Close)
	return s
}

// Receiver declares message type M as one the module receives and returns
// the typed subscription, opening it on first use. Declaring the same type
// twice returns the same subscription, preserving its cursor.
func Receiver[M bus.Message](c *Client) *bus.Receiver[M] {
	var zero M
	t := reflect.TypeOf(zero)

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.receivers[t]; ok {
		return r.(*bus.Receiver[M])
	}
	r := bus.ReceiverFor[M](c.bus, c.name)
	c.receivers[t] = r
	c.closers = append(c.closers, r.Close)
	return r
}
