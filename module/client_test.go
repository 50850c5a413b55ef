// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyle-network/hyle-node/bus"
)

type clientEvent struct {
	bus.DefaultCapacity
	n int
}

func TestClientSenderReceiverRoundTrip(t *testing.T) {
	b := bus.New(nil, nil)

	producer := NewClient(b, "producer")
	defer producer.Close()
	consumer := NewClient(b, "consumer")
	defer consumer.Close()

	r := Receiver[clientEvent](consumer)
	s := Sender[clientEvent](producer)

	require.NoError(t, s.Send(clientEvent{n: 7}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, msg.n)
}

func TestClientReturnsSameHandleForRepeatedDeclaration(t *testing.T) {
	b := bus.New(nil, nil)
	c := NewClient(b, "m")
	defer c.Close()

	assert.Same(t, Sender[clientEvent](c), Sender[clientEvent](c))
	assert.Same(t, Receiver[clientEvent](c), Receiver[clientEvent](c))
}

// Every client receives the shutdown and persist signals without declaring
// them.
func TestClientImplicitlyReceivesLifecycleSignals(t *testing.T) {
	b := bus.New(nil, nil)
	c := NewClient(b, "m")
	defer c.Close()

	shutdownSender := bus.SenderFor[ShutdownModule](b, "test")
	defer shutdownSender.Close()
	persistSender := bus.SenderFor[PersistModule](b, "test")
	defer persistSender.Close()

	require.NoError(t, shutdownSender.Send(ShutdownModule{Module: "m"}))
	require.NoError(t, persistSender.Send(PersistModule{}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, err := c.ShutdownReceiver().Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m", msg.Module)

	_, err = c.PersistReceiver().Recv(ctx)
	require.NoError(t, err)
}

func TestClientCloseReleasesChannels(t *testing.T) {
	b := bus.New(nil, nil)
	c := NewClient(b, "m")
	Receiver[clientEvent](c)
	c.Close()

	// A fresh subscription on the same type after Close starts with
	// nothing pending. (A new subscriber starts at the current write
	// position either way, so this does not by itself show that the old
	// channel was reclaimed.)
	r := bus.ReceiverFor[clientEvent](b, "fresh")
	defer r.Close()
	_, err := r.TryRecv()
	assert.ErrorIs(t, err, bus.ErrNoMessage)
}
