// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the single explicit configuration value a resolver
// process is started with: protocol parameters, the DID method namespace,
// and the fee-sample grouping used by the ledger observer. The value is
// loaded once at startup and threaded through the parser, processor and
// resolver rather than looked up from global state.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decentralized-identity/sidetree-resolver/pkg/protocol"
)

// Config is the top-level shape of a resolver's YAML configuration file.
type Config struct {
	// Namespace is the DID method namespace this resolver serves, e.g.
	// "ion" or "elem".
	Namespace string `yaml:"namespace"`

	// Protocol carries the multihash, signature and sizing parameters
	// this deployment enforces.
	Protocol protocol.Protocol `yaml:"protocol"`

	// FeeGroupSize is the number of anchored transactions the ledger
	// observer folds into a single quantile sample group.
	FeeGroupSize int `yaml:"feeGroupSize"`
}

// Load reads and parses a Config from r.
func Load(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// LoadFile reads and parses a Config from the file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return Load(f)
}

func (c *Config) validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	if len(c.Protocol.MultihashAlgorithms) == 0 {
		return fmt.Errorf("protocol.multihashAlgorithms is required")
	}

	if c.FeeGroupSize <= 0 {
		return fmt.Errorf("feeGroupSize must be positive")
	}

	return nil
}
