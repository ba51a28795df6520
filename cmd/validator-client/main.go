// Command validator-client polls a running beacon-node for the duties
// of a contiguous range of validator indices (§6) and keeps the local
// duties cache current for as long as the process runs.
//
// Usage:
//
//	validator-client [flags] <first-validator> <last-validator>
//
// Flags:
//
//	--server            Beacon node bootstrap URL
//	--auto-register     Generate and register local keys for any index
//	                     in range that isn't already known
//	--allow-unsynced    Start even if the beacon node reports no
//	                     finalized checkpoint yet
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chainbound/beaconcore/pkg/duties"
	"github.com/chainbound/beaconcore/pkg/keystore"
	"github.com/chainbound/beaconcore/pkg/log"
	"github.com/chainbound/beaconcore/pkg/rpc"
	"github.com/chainbound/beaconcore/pkg/types"
)

const pollTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in
// isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	logger := log.Default().Module("validator-client")

	if err := cfg.Validate(); err != nil {
		logger.Crit("invalid configuration", "err", err)
		return 1
	}

	client, err := rpc.NewBootstrapClient(cfg.Server)
	if err != nil {
		logger.Crit("invalid --server", "err", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	if err := checkSynced(ctx, client, cfg.AllowUnsynced); err != nil {
		logger.Crit("beacon node is not ready", "err", err)
		return 1
	}

	slotsPerEpoch, err := client.SlotsPerEpoch(ctx)
	if err != nil {
		logger.Crit("failed to fetch slots_per_epoch", "err", err)
		return 1
	}
	genesisState, err := client.State(ctx, 0)
	if err != nil {
		logger.Crit("failed to fetch genesis state", "err", err)
		return 1
	}

	store := keystore.NewValidatorStore(keystore.NewMemoryStore())
	pubkeys, err := loadOrRegisterValidators(cfg, store)
	if err != nil {
		logger.Crit("failed to resolve validator set", "err", err)
		return 1
	}
	logger.Info("validator set resolved",
		"count", len(pubkeys),
		"first", cfg.FirstValidator,
		"last", cfg.LastValidator,
		"auto_register", cfg.AutoRegister,
	)

	clock := newGenesisClock(genesisState.GenesisTime)
	manager := duties.NewManager(clock, client, slotsPerEpoch)

	logger.Info("validator-client starting", "server", cfg.Server, "slots_per_epoch", slotsPerEpoch)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(secondsPerSlot * time.Second)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			return 0
		case <-ticker.C:
			pollDuties(logger, manager, pubkeys)
		}
	}
}

// checkSynced treats the absence of a finalized checkpoint as "not
// synced yet"; allowUnsynced downgrades that specific case to a
// warning so a brand-new testnet beacon node isn't a hard failure.
func checkSynced(ctx context.Context, client *rpc.BootstrapClient, allowUnsynced bool) error {
	_, err := client.LatestFinalizedCheckpoint(ctx)
	if err == nil {
		return nil
	}
	var httpErr *rpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound && allowUnsynced {
		return nil
	}
	return err
}

func pollDuties(logger *log.Logger, manager *duties.Manager, pubkeys []types.PublicKey) {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	outcomes, err := manager.PollMany(ctx, pubkeys)
	if err != nil {
		logger.Error("poll failed", "err", err)
		return
	}
	for i, outcome := range outcomes {
		if outcome == duties.NoChange {
			continue
		}
		logger.Info("duties updated", "pubkey", pubkeyHex(pubkeys[i]), "outcome", outcome.String())
	}
}

// parseFlags parses the root-level CLI arguments into a Config,
// including the two positional validator-index arguments.
func parseFlags(args []string) (Config, bool, int) {
	cfg := Config{}
	fs := newCustomFlagSet("validator-client")
	fs.StringVar(&cfg.Server, "server", "http://127.0.0.1:8001", "beacon node bootstrap URL")
	fs.BoolVar(&cfg.AutoRegister, "auto-register", false, "generate and register local keys for validators not already known")
	fs.BoolVar(&cfg.AllowUnsynced, "allow-unsynced", false, "start even if the beacon node reports no finalized checkpoint yet")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	positional := fs.Args()
	if len(positional) != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly two arguments: <first-validator> <last-validator>")
		return cfg, true, 2
	}
	first, err := strconv.ParseUint(positional[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid first-validator %q: %v\n", positional[0], err)
		return cfg, true, 2
	}
	last, err := strconv.ParseUint(positional[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid last-validator %q: %v\n", positional[1], err)
		return cfg, true, 2
	}
	cfg.FirstValidator = first
	cfg.LastValidator = last
	return cfg, false, 0
}
