// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis implements the deterministic bootstrap protocol: it
// waits for the configured validator set to announce itself on the bus,
// then assembles the canonical sequence of register/identity/faucet/stake
// transactions and the resulting genesis block.
package genesis

import "github.com/hyle-network/hyle-node/bus"

// PeerEvent is the inbound signal from the (out-of-scope) p2p layer
// announcing a peer's identity and chain height.
type PeerEvent struct {
	bus.DefaultCapacity
	Kind      PeerEventKind
	Name      string
	PubKey    []byte
	Height    uint64
	DAAddress string
}

// PeerEventKind enumerates PeerEvent variants; NewPeer is the only one the
// bootstrap protocol currently reacts to.
type PeerEventKind int

const (
	PeerEventNewPeer PeerEventKind = iota
)

// GenesisEventKind enumerates GenesisEvent variants.
type GenesisEventKind int

const (
	// GenesisEventNoGenesis means this node is not responsible for
	// bootstrapping: either it already has, or it must catch up from
	// peers instead.
	GenesisEventNoGenesis GenesisEventKind = iota
	// GenesisEventGenesisBlock carries the freshly assembled first block.
	GenesisEventGenesisBlock
)

// GenesisEvent is the one-shot outbound signal the rest of the node
// consumes to either proceed with a fresh genesis block or skip straight
// to catching up from peers.
type GenesisEvent struct {
	bus.LargeCapacity
	Kind  GenesisEventKind
	Block *SignedBlock
}
