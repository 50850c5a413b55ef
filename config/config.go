// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the node's YAML configuration file.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Consensus holds the bootstrap-time consensus parameters.
type Consensus struct {
	Solo             bool  `yaml:"solo"`
	GenesisTimestamp int64 `yaml:"genesis_timestamp"`
}

// Genesis holds the fixed validator set and faucet policy used when
// bootstrapping the first block.
type Genesis struct {
	Stakers            map[string]uint64 `yaml:"stakers"`
	KeepTokensInFaucet bool              `yaml:"keep_tokens_in_faucet"`
}

// Config is the node's top-level configuration.
type Config struct {
	ID            string    `yaml:"id"`
	DataDirectory string    `yaml:"data_directory"`
	Consensus     Consensus `yaml:"consensus"`
	Genesis       Genesis   `yaml:"genesis"`
}

// Default returns a Config with the same defaults a fresh node would run
// with before any file is read: solo mode, no stakers configured.
func Default() *Config {
	return &Config{
		DataDirectory: ".",
		Consensus: Consensus{
			Solo: true,
		},
		Genesis: Genesis{
			Stakers: map[string]uint64{},
		},
	}
}

// Load reads and parses the YAML config file at path, starting from
// Default() so unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}
