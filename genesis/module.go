// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/luxfi/log"

	"github.com/hyle-network/hyle-node/bus"
	"github.com/hyle-network/hyle-node/config"
	"github.com/hyle-network/hyle-node/internal/atomicfile"
	"github.com/hyle-network/hyle-node/module"
)

const markerFileName = "genesis.bin"

// Module implements the deterministic bootstrap protocol as a supervised
// module: on Run it either finds genesis already handled on disk, finds
// this node isn't a genesis staker, waits for its configured peers to
// announce themselves, or (once the full staker set is known) assembles
// and emits the genesis block.
type Module struct {
	cfg    *config.Config
	bus    *bus.Bus
	log    log.Logger
	pubKey []byte

	peerPubkey map[string][]byte
}

// NewModule builds the genesis module. pubKey is this node's own
// validator public key, learned from the (out-of-scope) key-management
// layer before the module starts.
func NewModule(cfg *config.Config, b *bus.Bus, pubKey []byte, logger log.Logger) *Module {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Module{
		cfg:        cfg,
		bus:        b,
		log:        logger,
		pubKey:     pubKey,
		peerPubkey: map[string][]byte{},
	}
}

// Run implements module.Module.
func (m *Module) Run(ctx context.Context) error {
	client := module.NewClient(m.bus, module.Name(m))
	defer client.Close()
	sender := module.Sender[GenesisEvent](client)

	handled, err := m.alreadyHandled()
	if err != nil {
		return err
	}
	if handled {
		m.log.Debug("genesis already handled, skipping")
		_ = sender.Send(GenesisEvent{Kind: GenesisEventNoGenesis})
		return nil
	}

	return m.doGenesis(ctx, client, sender)
}

func (m *Module) doGenesis(ctx context.Context, client *module.Client, sender *bus.Sender[GenesisEvent]) error {
	solo := m.cfg.Consensus.Solo

	if !solo {
		if _, ok := m.cfg.Genesis.Stakers[m.cfg.ID]; !ok {
			m.log.Info("not a genesis staker, need to catch up from peers")
			_ = sender.Send(GenesisEvent{Kind: GenesisEventNoGenesis})
			return nil
		}
	}

	m.log.Info("building genesis block")
	m.peerPubkey[m.cfg.ID] = m.pubKey

	if !solo && len(m.cfg.Genesis.Stakers) > 1 {
		noGenesis, err := m.awaitPeers(ctx, client)
		if err != nil {
			return err
		}
		if noGenesis {
			_ = sender.Send(GenesisEvent{Kind: GenesisEventNoGenesis})
			return nil
		}
	}

	validators := m.sortedValidators()

	txs, err := buildGenesisTransactions(validators, m.cfg.Genesis.KeepTokensInFaucet)
	if err != nil {
		return errors.Wrap(err, "generating genesis transactions")
	}

	block := assembleGenesisBlock(txs, validators, m.cfg.Consensus.GenesisTimestamp)
	_ = sender.Send(GenesisEvent{Kind: GenesisEventGenesisBlock, Block: block})
	return nil
}

// awaitPeers blocks on PeerEvent until every configured staker has
// announced itself, reporting noGenesis=true if any announced staker is
// already past block height zero (meaning the network already exists and
// this node should catch up instead of re-bootstrapping it). A shutdown
// signal for this module aborts the wait.
func (m *Module) awaitPeers(ctx context.Context, client *module.Client) (noGenesis bool, err error) {
	m.log.Info("waiting on other genesis peers to join")

	recv := module.Receiver[PeerEvent](client)

	return module.ShutdownAware(ctx, client.ShutdownReceiver(), client.Name(), func(ctx context.Context) (bool, error) {
		for {
			msg, err := recv.Recv(ctx)
			if err != nil {
				if _, ok := err.(*bus.Lagged); ok {
					continue
				}
				return false, err
			}
			if msg.Kind != PeerEventNewPeer {
				continue
			}
			if _, ok := m.cfg.Genesis.Stakers[msg.Name]; !ok {
				continue
			}

			if msg.Height > 0 {
				m.log.Info("peer already past genesis height, skipping genesis",
					"peer", msg.Name, "height", msg.Height)
				return true, nil
			}

			m.log.Info("new peer added to genesis", "peer", msg.Name)
			m.peerPubkey[msg.Name] = msg.PubKey

			if len(m.peerPubkey) == len(m.cfg.Genesis.Stakers) {
				m.log.Info("all genesis peers joined, creating genesis block")
				return false, nil
			}
		}
	})
}

func (m *Module) sortedValidators() []Validator {
	validators := make([]Validator, 0, len(m.peerPubkey))
	for name, pubKey := range m.peerPubkey {
		validators = append(validators, Validator{
			Name:        name,
			PubKey:      pubKey,
			StakeAmount: m.cfg.Genesis.Stakers[name],
		})
	}
	sort.Slice(validators, func(i, j int) bool {
		return bytes.Compare(validators[i].PubKey, validators[j].PubKey) < 0
	})
	return validators
}

// Persist implements module.Module: it records that genesis has been
// handled so a restart does not re-run the bootstrap protocol.
func (m *Module) Persist(ctx context.Context) error {
	return atomicfile.Write(m.markerPath(), "genesis", func(w *bufio.Writer) error {
		return w.WriteByte(1)
	})
}

func (m *Module) alreadyHandled() (bool, error) {
	var handled bool
	ok, err := atomicfile.Read(m.markerPath(), func(f *os.File) error {
		b := make([]byte, 1)
		n, err := f.Read(b)
		if err != nil {
			return err
		}
		handled = n == 1 && b[0] == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok && handled, nil
}

func (m *Module) markerPath() string {
	return filepath.Join(m.cfg.DataDirectory, markerFileName)
}
