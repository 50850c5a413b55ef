// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyle-network/hyle-node/bus"
	"github.com/hyle-network/hyle-node/config"
)

func newTestModule(t *testing.T, b *bus.Bus, id string, pubKey []byte, cfg func(*config.Config)) *Module {
	t.Helper()
	c := config.Default()
	c.ID = id
	c.DataDirectory = t.TempDir()
	if cfg != nil {
		cfg(c)
	}
	return NewModule(c, b, pubKey, nil)
}

func runAndAwait(t *testing.T, b *bus.Bus, m *Module) GenesisEvent {
	t.Helper()
	recv := bus.ReceiverFor[GenesisEvent](b, "test")
	defer recv.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	event, err := recv.Recv(ctx)
	require.NoError(t, err)

	require.NoError(t, <-errCh)
	return event
}

// A node not listed among the configured genesis stakers defers to peers.
func TestNotPartOfGenesis(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-4", []byte("node-4-key"), func(c *config.Config) {
		c.Consensus.Solo = false
		c.Genesis.Stakers = map[string]uint64{"node-1": 100}
	})

	event := runAndAwait(t, b, m)
	assert.Equal(t, GenesisEventNoGenesis, event.Kind)
}

// A solo node bootstraps immediately without waiting on any peer.
func TestGenesisSingleNode(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-1", []byte("node-1-key"), func(c *config.Config) {
		c.Consensus.Solo = true
		c.Consensus.GenesisTimestamp = 1700000000
		c.Genesis.Stakers = map[string]uint64{"node-1": 100}
	})

	event := runAndAwait(t, b, m)
	require.Equal(t, GenesisEventGenesisBlock, event.Kind)
	require.NotNil(t, event.Block)
	assert.Equal(t, uint64(0), event.Block.ConsensusProposal.Slot)
	assert.Equal(t, uint64(1700000000000), event.Block.ConsensusProposal.TimestampMs)
	assert.Len(t, event.Block.ConsensusProposal.StakingActions, 1)
	assert.NotEmpty(t, event.Block.DataProposals[0].Transactions)
}

// A multi-staker node waits for every configured peer before building the
// block, whether it learns of itself as the lowest-sorted (leader) key or
// not.
func TestGenesisMultiNodeAsLeader(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-1", []byte{0x01}, func(c *config.Config) {
		c.Consensus.Solo = false
		c.Genesis.Stakers = map[string]uint64{"node-1": 100, "node-2": 200}
	})

	sender := bus.SenderFor[PeerEvent](b, "test")
	defer sender.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-2", PubKey: []byte{0x02}, Height: 0}))
	}()

	event := runAndAwait(t, b, m)
	require.Equal(t, GenesisEventGenesisBlock, event.Kind)
	assert.Equal(t, []byte{0x01}, event.Block.LaneLeader)
	assert.Len(t, event.Block.Certificate.Validators, 2)
	assert.Len(t, event.Block.ConsensusProposal.StakingActions, 2)
}

// The same quorum, but this node sorts second: it still builds the block,
// naming the other peer as leader.
func TestGenesisMultiNodeAsFollower(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-2", []byte{0x02}, func(c *config.Config) {
		c.Consensus.Solo = false
		c.Genesis.Stakers = map[string]uint64{"node-1": 100, "node-2": 200}
	})

	sender := bus.SenderFor[PeerEvent](b, "test")
	defer sender.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-1", PubKey: []byte{0x01}, Height: 0}))
	}()

	event := runAndAwait(t, b, m)
	require.Equal(t, GenesisEventGenesisBlock, event.Kind)
	assert.Equal(t, []byte{0x01}, event.Block.LaneLeader)
}

// Peer announcements not in the staker set are ignored; the block is only
// assembled once every *configured* staker has joined, regardless of
// connection order.
func TestGenesisIgnoresUnknownPeersRegardlessOfOrder(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-1", []byte{0x01}, func(c *config.Config) {
		c.Consensus.Solo = false
		c.Genesis.Stakers = map[string]uint64{"node-1": 100, "node-2": 200}
	})

	sender := bus.SenderFor[PeerEvent](b, "test")
	defer sender.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-99", PubKey: []byte{0x99}, Height: 0}))
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-2", PubKey: []byte{0x02}, Height: 0}))
	}()

	event := runAndAwait(t, b, m)
	require.Equal(t, GenesisEventGenesisBlock, event.Kind)
	assert.Len(t, event.Block.Certificate.Validators, 2)
}

// A peer already past block height zero means the network has already
// bootstrapped: this node must catch up instead of building a new block.
func TestGenesisSkippedWhenPeerHeightAlreadyAdvanced(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-1", []byte{0x01}, func(c *config.Config) {
		c.Consensus.Solo = false
		c.Genesis.Stakers = map[string]uint64{"node-1": 100, "node-2": 200}
	})

	sender := bus.SenderFor[PeerEvent](b, "test")
	defer sender.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-2", PubKey: []byte{0x02}, Height: 42}))
	}()

	event := runAndAwait(t, b, m)
	assert.Equal(t, GenesisEventNoGenesis, event.Kind)
}

// Once every staker has joined at height zero, the block is emitted even
// if other, non-staker peers never show up.
func TestGenesisEmittedOnceQuorumReachedAtZeroHeight(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-1", []byte{0x01}, func(c *config.Config) {
		c.Consensus.Solo = false
		c.Genesis.Stakers = map[string]uint64{"node-1": 10, "node-2": 20, "node-3": 30}
	})

	sender := bus.SenderFor[PeerEvent](b, "test")
	defer sender.Close()

	go func() {
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-2", PubKey: []byte{0x02}, Height: 0}))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, sender.Send(PeerEvent{Kind: PeerEventNewPeer, Name: "node-3", PubKey: []byte{0x03}, Height: 0}))
	}()

	event := runAndAwait(t, b, m)
	require.Equal(t, GenesisEventGenesisBlock, event.Kind)
	assert.Len(t, event.Block.Certificate.Validators, 3)
}

// Four stakers joining in any permutation produce a byte-identical genesis
// block: the module sorts validators by public key before assembling any
// transaction or the aggregate signature, so arrival order must not leak
// into the result.
func TestGenesisBlockDeterministicAcrossPeerArrivalOrder(t *testing.T) {
	stakers := map[string]uint64{"node-1": 10, "node-2": 20, "node-3": 30, "node-4": 40}
	pubKeys := map[string][]byte{
		"node-1": {0x01}, "node-2": {0x02}, "node-3": {0x03}, "node-4": {0x04},
	}

	buildFrom := func(t *testing.T, selfName string, arrivalOrder []string) *SignedBlock {
		b := bus.New(nil, nil)
		m := newTestModule(t, b, selfName, pubKeys[selfName], func(c *config.Config) {
			c.Consensus.Solo = false
			c.Genesis.Stakers = stakers
		})

		sender := bus.SenderFor[PeerEvent](b, "test")
		defer sender.Close()

		go func() {
			for _, name := range arrivalOrder {
				if name == selfName {
					continue
				}
				time.Sleep(time.Millisecond)
				require.NoError(t, sender.Send(PeerEvent{
					Kind: PeerEventNewPeer, Name: name, PubKey: pubKeys[name], Height: 0,
				}))
			}
		}()

		event := runAndAwait(t, b, m)
		require.Equal(t, GenesisEventGenesisBlock, event.Kind)
		return event.Block
	}

	first := buildFrom(t, "node-1", []string{"node-2", "node-3", "node-4"})
	second := buildFrom(t, "node-3", []string{"node-4", "node-1", "node-2"})

	assert.Equal(t, first, second)
}

// After Persist writes the marker, a fresh Run reports genesis already
// handled (NoGenesis).
func TestPersistMakesGenesisIdempotent(t *testing.T) {
	b := bus.New(nil, nil)
	m := newTestModule(t, b, "node-1", []byte("node-1-key"), func(c *config.Config) {
		c.Consensus.Solo = true
		c.Genesis.Stakers = map[string]uint64{"node-1": 100}
	})

	require.NoError(t, m.Persist(context.Background()))

	m2 := NewModule(m.cfg, b, m.pubKey, nil)
	event := runAndAwait(t, b, m2)
	assert.Equal(t, GenesisEventNoGenesis, event.Kind)
}
