package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/rpc"
	"github.com/chainbound/beaconcore/pkg/ssz"
)

// runTestnet dispatches the `testnet --spec ... <command>` subcommand
// tree (§6 CLI surface).
func runTestnet(args []string) int {
	var specName string
	var randomDataDir, force bool
	fs := newCustomFlagSet("beacon-node testnet")
	fs.StringVar(&specName, "spec", "mainnet", "chain spec preset: mainnet, minimal, interop")
	fs.BoolVar(&randomDataDir, "random-datadir", false, "use a randomly generated datadir")
	fs.BoolVar(&force, "force", false, "overwrite an existing datadir")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := chainspec.PresetByName(specName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "Error: testnet requires a command: bootstrap, recent, yaml-genesis-state")
		return 2
	}

	dataDir := defaultDataDir()
	if randomDataDir {
		dataDir = filepath.Join(os.TempDir(), fmt.Sprintf("beacon-testnet-%d", time.Now().UnixNano()))
	}
	if !force {
		if _, err := os.Stat(dataDir); err == nil {
			fmt.Fprintf(os.Stderr, "Error: datadir %s already exists; pass --force to overwrite\n", dataDir)
			return 1
		}
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating datadir: %v\n", err)
		return 1
	}

	switch rest[0] {
	case "bootstrap":
		return runTestnetBootstrap(cfg, dataDir, rest[1:])
	case "recent":
		return runTestnetRecent(cfg, dataDir, rest[1:])
	case "yaml-genesis-state":
		return runTestnetYAMLGenesisState(cfg, rest[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown testnet command %q\n", rest[0])
		return 2
	}
}

// runTestnetRecent builds a fresh genesis with VALIDATOR_COUNT
// deterministic validators and writes its SSZ encoding into dataDir.
func runTestnetRecent(cfg chainspec.Config, dataDir string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: recent requires exactly one argument: VALIDATOR_COUNT")
		return 2
	}
	count, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || count == 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid VALIDATOR_COUNT %q\n", args[0])
		return 2
	}

	state, err := buildGenesisState(cfg, count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: building genesis state: %v\n", err)
		return 1
	}

	encoded, err := state.MarshalSSZ()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encoding genesis state: %v\n", err)
		return 1
	}
	genesisPath := filepath.Join(dataDir, "genesis.ssz")
	if err := os.WriteFile(genesisPath, encoded, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing genesis state: %v\n", err)
		return 1
	}

	root := state.HashTreeRoot(ssz.DefaultHashFn)
	fmt.Printf("genesis written to %s\n", genesisPath)
	fmt.Printf("validators:   %d\n", count)
	fmt.Printf("genesis root: %x\n", root)
	return 0
}

// genesisYAML is the on-disk shape for `yaml-genesis-state`: a
// human-editable summary of a genesis state, not a full SSZ dump.
type genesisYAML struct {
	Slot               uint64  `yaml:"slot"`
	GenesisTime        uint64  `yaml:"genesis_time"`
	GenesisForkVersion [4]byte `yaml:"genesis_fork_version"`
	ValidatorCount     int     `yaml:"validator_count"`
	GenesisRoot        string  `yaml:"genesis_root"`
}

// runTestnetYAMLGenesisState builds a minimal-committee-size genesis
// and writes a human-readable YAML summary to file — useful for
// interop test fixtures that don't need the full binary state.
func runTestnetYAMLGenesisState(cfg chainspec.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: yaml-genesis-state requires exactly one argument: FILE")
		return 2
	}

	state, err := buildGenesisState(cfg, cfg.MinCommitteeSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: building genesis state: %v\n", err)
		return 1
	}
	root := state.HashTreeRoot(ssz.DefaultHashFn)

	doc := genesisYAML{
		Slot:               uint64(state.Slot),
		GenesisTime:        state.GenesisTime,
		GenesisForkVersion: cfg.GenesisForkVersion,
		ValidatorCount:     len(state.ValidatorRegistry),
		GenesisRoot:        fmt.Sprintf("%x", root),
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: marshaling genesis YAML: %v\n", err)
		return 1
	}
	if err := os.WriteFile(args[0], out, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing %s: %v\n", args[0], err)
		return 1
	}
	fmt.Printf("genesis summary written to %s\n", args[0])
	return 0
}

// runTestnetBootstrap fetches genesis data from a running beacon
// node's HTTP bootstrap interface and writes it into dataDir.
func runTestnetBootstrap(cfg chainspec.Config, dataDir string, args []string) int {
	fs := newCustomFlagSet("beacon-node testnet bootstrap")
	var port uint64
	fs.Uint64Var(&port, "port", 0, "override the bootstrap server's port")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: bootstrap requires exactly one argument: HTTP_SERVER")
		return 2
	}
	server := fs.Arg(0)
	if port != 0 {
		server = fmt.Sprintf("%s:%d", server, port)
	}

	client, err := rpc.NewBootstrapClient(server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	checkpoint, err := client.LatestFinalizedCheckpoint(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: fetching latest finalized checkpoint: %v\n", err)
		return 1
	}
	state, err := client.State(ctx, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: fetching genesis state: %v\n", err)
		return 1
	}

	encoded, err := state.MarshalSSZ()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encoding genesis state: %v\n", err)
		return 1
	}
	if err := os.WriteFile(filepath.Join(dataDir, "genesis.ssz"), encoded, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing genesis state: %v\n", err)
		return 1
	}

	fmt.Printf("bootstrapped from %s into %s\n", server, dataDir)
	fmt.Printf("latest finalized epoch: %d\n", checkpoint.Epoch)
	return 0
}
