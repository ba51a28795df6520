package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the beacon node's full root-flag surface (§6 CLI
// surface). The zero value is never valid; build one with
// DefaultConfig and apply flags over it.
type Config struct {
	DataDir          string
	LogFile          string
	NetworkDir       string
	ListenAddress    string
	Port             uint64
	MaxPeers         uint64
	BootNodes        string
	DiscPort         uint64
	DiscoveryAddress string
	Topics           string
	Libp2pAddresses  string
	RPC              bool
	RPCAddress       string
	RPCPort          uint64
	API              bool
	APIAddress       string
	APIPort          uint64
	DB               string
	DebugLevel       string
	Verbosity        int

	Metrics        bool
	MetricsAddress string
	MetricsPort    uint64
}

// DefaultConfig returns the flag defaults a bare invocation runs with.
func DefaultConfig() Config {
	return Config{
		DataDir:          defaultDataDir(),
		NetworkDir:       "network",
		ListenAddress:    "0.0.0.0",
		Port:             9000,
		MaxPeers:         50,
		DiscPort:         9000,
		DiscoveryAddress: "0.0.0.0",
		RPCAddress:       "127.0.0.1",
		RPCPort:          5052,
		APIAddress:       "127.0.0.1",
		APIPort:          5051,
		DB:               "disk",
		DebugLevel:       "info",
		MetricsAddress:   "127.0.0.1",
		MetricsPort:      5054,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".beacon"
	}
	return filepath.Join(home, ".beacon")
}

// Config validation errors.
var (
	ErrEmptyDataDir  = errors.New("config: datadir must not be empty")
	ErrInvalidDBKind = errors.New("config: db must be \"disk\" or \"memory\"")
	ErrZeroAPIPort   = errors.New("config: api-port must be nonzero when --api is set")
	ErrZeroRPCPort   = errors.New("config: rpc-port must be nonzero when --rpc is set")
)

// Validate checks the structural invariants a Config must hold before
// the node starts any subsystem.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrEmptyDataDir
	}
	if c.DB != "disk" && c.DB != "memory" {
		return ErrInvalidDBKind
	}
	if c.API && c.APIPort == 0 {
		return ErrZeroAPIPort
	}
	if c.RPC && c.RPCPort == 0 {
		return ErrZeroRPCPort
	}
	return nil
}

// InitDataDir creates the on-disk directory structure the node's
// persisted state (the validator key store, network identity) lives
// under. A no-op when DB is "memory", since nothing touches disk.
func (c Config) InitDataDir() error {
	if c.DB == "memory" {
		return nil
	}
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return fmt.Errorf("config: creating datadir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(c.DataDir, c.NetworkDir), 0o700); err != nil {
		return fmt.Errorf("config: creating network-dir: %w", err)
	}
	return nil
}

// ValidatorDBPath is where the validator key store's LevelDB lives
// when DB is "disk".
func (c Config) ValidatorDBPath() string {
	return filepath.Join(c.DataDir, "validators")
}
