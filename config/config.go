// Package config defines the devnet engine's configuration record: a typed
// struct with a Default() constructor and a Validate() method, grounded on
// carmen.Configuration/Properties (carmen/configurations.go,
// carmen/database.go) moving from an untyped property bag to a typed,
// validated record.
package config

import (
	"fmt"

	"github.com/0xSpaceShard/starknet-devnet-go/core/archive"
	"github.com/0xSpaceShard/starknet-devnet-go/core/block"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/pipeline"
)

// DumpPolicy selects when the engine persists its dump file. Dump/load
// file I/O itself is out of this module's scope; this type only records
// operator intent for the component that will eventually act on it.
type DumpPolicy int

const (
	DumpNever DumpPolicy = iota
	DumpOnExit
	DumpOnBlock
	DumpOnRequest
)

// ForkConfig configures the Forking Overlay. A zero-value ForkConfig (empty
// URL) disables forking.
type ForkConfig struct {
	URL         string
	BlockNumber uint64
}

// Config is the devnet engine's complete configuration record.
type Config struct {
	StartingBlockNumber uint64
	ChainID             felt.Felt

	InitialGasPrices block.GasPrices

	Seed                int64
	InitialBalance      uint64
	PredeployedAccounts int
	AccountClassHash    felt.ClassHash

	Fork ForkConfig

	ArchivePolicy archive.Policy

	GenerationMode pipeline.GenerationMode

	LiteMode bool

	DumpPath   string
	DumpPolicy DumpPolicy
}

// Default returns the engine's out-of-the-box configuration: a fresh
// chain starting at block zero with no fork, no archive, and one block
// sealed per transaction, matching the real devnet's defaults closely
// enough for local development use.
func Default() Config {
	return Config{
		StartingBlockNumber: 0,
		ChainID:             felt.FromBytes([]byte("SN_DEVNET")),
		InitialGasPrices: block.GasPrices{
			L1Gas:     block.ResourcePrice{InWei: felt.FromUint64(100_000_000_000), InFri: felt.FromUint64(100_000_000_000)},
			L1DataGas: block.ResourcePrice{InWei: felt.FromUint64(100_000_000_000), InFri: felt.FromUint64(100_000_000_000)},
			L2Gas:     block.ResourcePrice{InWei: felt.FromUint64(100_000_000_000), InFri: felt.FromUint64(100_000_000_000)},
		},
		Seed:                0,
		InitialBalance:      1_000_000_000_000_000_000,
		PredeployedAccounts: 10,
		ArchivePolicy:       archive.None,
		GenerationMode:      pipeline.GenerateOnTransaction,
		DumpPolicy:          DumpNever,
	}
}

// Validate reports the first configuration inconsistency found, matching
// carmen's openDatabase precondition checks (carmen/database.go).
func (c Config) Validate() error {
	if c.PredeployedAccounts < 0 {
		return fmt.Errorf("config: predeployed account count must not be negative")
	}
	if c.Fork.URL == "" && c.Fork.BlockNumber != 0 {
		return fmt.Errorf("config: fork block number set without a fork URL")
	}
	if c.DumpPolicy != DumpNever && c.DumpPath == "" {
		return fmt.Errorf("config: dump policy %v requires a dump path", c.DumpPolicy)
	}
	if c.ArchivePolicy != archive.None && c.ArchivePolicy != archive.Full {
		return fmt.Errorf("config: unknown archive policy %v", c.ArchivePolicy)
	}
	return nil
}

// Forking reports whether the configuration enables the fork overlay.
func (c Config) Forking() bool {
	return c.Fork.URL != ""
}
