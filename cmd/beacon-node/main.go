// Command beacon-node runs the phase0 beacon chain node: it serves the
// HTTP bootstrap interface (§6) a new node or validator client uses to
// fetch chain spec, finality, and state/block snapshots, and drives
// the `testnet` genesis-construction subcommands.
//
// Usage:
//
//	beacon-node [flags]
//	beacon-node testnet --spec mainnet|minimal|interop [flags] <command> [args]
//
// Flags:
//
//	--datadir              Data directory path
//	--logfile               Log output file (default: stderr)
//	--network-dir           Network identity subdirectory under datadir
//	--listen-address        P2P listen address
//	--port                  P2P listening port
//	--maxpeers              Max P2P peers
//	--boot-nodes            Comma-separated boot node list
//	--disc-port             Discovery port
//	--discovery-address     Discovery listen address
//	--topics                Comma-separated gossip topics
//	--libp2p-addresses      Comma-separated libp2p multiaddrs
//	--rpc                   Enable the RPC server
//	--rpc-address           RPC listen address
//	--rpc-port              RPC listen port
//	--api                   Enable the HTTP bootstrap API
//	--api-address           API listen address
//	--api-port              API listen port
//	--db                    Validator store backend: disk, memory
//	--debug-level           Log level: info, debug, trace, warn, error, crit
//	--metrics               Enable the Prometheus metrics endpoint
//	--metrics-address       Metrics listen address
//	--metrics-port          Metrics listen port
//	-v                      Increase verbosity (repeatable)
//
// --logfile, -v, the --rpc flags, and the P2P and discovery flags are
// parsed into the node's Config but change nothing it runs: logs always
// go to stderr at the --debug-level level, and the only listeners
// started are the --api and --metrics servers.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/keystore"
	"github.com/chainbound/beaconcore/pkg/log"
	"github.com/chainbound/beaconcore/pkg/metrics"
	"github.com/chainbound/beaconcore/pkg/rpc"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in
// isolation.
func run(args []string) int {
	if len(args) > 0 && args[0] == "testnet" {
		return runTestnet(args[1:])
	}

	cfg, exit, code := parseRootFlags(args)
	if exit {
		return code
	}

	level, err := log.ParseLevel(cfg.DebugLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	logger := log.New(level)
	log.SetDefault(logger)

	logger.Info("beacon-node starting",
		"datadir", cfg.DataDir,
		"db", cfg.DB,
		"api", cfg.API,
		"rpc", cfg.RPC,
		"metrics", cfg.Metrics,
		"debug_level", cfg.DebugLevel,
	)

	if err := cfg.Validate(); err != nil {
		logger.Crit("invalid configuration", "err", err)
		return 1
	}
	if err := cfg.InitDataDir(); err != nil {
		logger.Crit("failed to initialize datadir", "err", err)
		return 1
	}

	specCfg := chainspec.Mainnet()

	validatorBackend, closeBackend, err := openValidatorBackend(cfg)
	if err != nil {
		logger.Crit("failed to open validator store", "err", err)
		return 1
	}
	defer closeBackend()
	validators := keystore.NewValidatorStore(validatorBackend)
	logger.Info("validator store opened", "backend", cfg.DB)
	if indices, err := validators.Indices(); err != nil {
		logger.Error("failed to list validator indices", "err", err)
	} else {
		logger.Info("validator store loaded", "count", len(indices))
	}

	store := rpc.NewMemoryChainStore(specCfg.SlotsPerEpoch)

	var servers []*http.Server
	if cfg.API {
		dutiesSource := rpc.NewStateDutiesSource(store, specCfg)
		bootstrap := rpc.NewBootstrapServer(store, dutiesSource)
		addr := fmt.Sprintf("%s:%d", cfg.APIAddress, cfg.APIPort)
		srv := &http.Server{Addr: addr, Handler: bootstrap.Handler()}
		servers = append(servers, srv)
		go serveUntilClosed(logger, "api", srv)
	}
	if cfg.Metrics {
		exporter, err := metrics.NewExporter(metrics.DefaultRegistry, metrics.DefaultExporterConfig())
		if err != nil {
			logger.Crit("failed to start metrics exporter", "err", err)
			return 1
		}
		addr := fmt.Sprintf("%s:%d", cfg.MetricsAddress, cfg.MetricsPort)
		srv := &http.Server{Addr: addr, Handler: exporter.Handler()}
		servers = append(servers, srv)
		go serveUntilClosed(logger, "metrics", srv)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	for _, srv := range servers {
		shutdownServer(logger, srv)
	}

	logger.Info("shutdown complete")
	return 0
}

func serveUntilClosed(logger *log.Logger, name string, srv *http.Server) {
	logger.Info("server listening", "server", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "server", name, "err", err)
	}
}

func shutdownServer(logger *log.Logger, srv *http.Server) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Close()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Error("server close timed out", "addr", srv.Addr)
	}
}

func openValidatorBackend(cfg Config) (keystore.Store, func(), error) {
	if cfg.DB == "memory" {
		return keystore.NewMemoryStore(), func() {}, nil
	}
	backend, err := keystore.OpenLevelDBStore(cfg.ValidatorDBPath())
	if err != nil {
		return nil, func() {}, err
	}
	return backend, func() { backend.Close() }, nil
}

// parseRootFlags parses the root-level CLI arguments into a Config.
// Returns the config, whether the caller should exit immediately, and
// the exit code.
func parseRootFlags(args []string) (Config, bool, int) {
	cfg := DefaultConfig()
	fs := newRootFlagSet(&cfg)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}
	return cfg, false, 0
}

// newRootFlagSet binds every root flag (§6 CLI surface) to cfg.
func newRootFlagSet(cfg *Config) *flagSet {
	fs := newCustomFlagSet("beacon-node")
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "data directory path")
	fs.StringVar(&cfg.LogFile, "logfile", cfg.LogFile, "log output file (default: stderr)")
	fs.StringVar(&cfg.NetworkDir, "network-dir", cfg.NetworkDir, "network identity subdirectory")
	fs.StringVar(&cfg.ListenAddress, "listen-address", cfg.ListenAddress, "P2P listen address")
	fs.Uint64Var(&cfg.Port, "port", cfg.Port, "P2P listening port")
	fs.Uint64Var(&cfg.MaxPeers, "maxpeers", cfg.MaxPeers, "maximum number of P2P peers")
	fs.StringVar(&cfg.BootNodes, "boot-nodes", cfg.BootNodes, "comma-separated boot node list")
	fs.Uint64Var(&cfg.DiscPort, "disc-port", cfg.DiscPort, "discovery port")
	fs.StringVar(&cfg.DiscoveryAddress, "discovery-address", cfg.DiscoveryAddress, "discovery listen address")
	fs.StringVar(&cfg.Topics, "topics", cfg.Topics, "comma-separated gossip topics")
	fs.StringVar(&cfg.Libp2pAddresses, "libp2p-addresses", cfg.Libp2pAddresses, "comma-separated libp2p multiaddrs")
	fs.BoolVar(&cfg.RPC, "rpc", cfg.RPC, "enable the RPC server")
	fs.StringVar(&cfg.RPCAddress, "rpc-address", cfg.RPCAddress, "RPC listen address")
	fs.Uint64Var(&cfg.RPCPort, "rpc-port", cfg.RPCPort, "RPC listen port")
	fs.BoolVar(&cfg.API, "api", cfg.API, "enable the HTTP bootstrap API")
	fs.StringVar(&cfg.APIAddress, "api-address", cfg.APIAddress, "API listen address")
	fs.Uint64Var(&cfg.APIPort, "api-port", cfg.APIPort, "API listen port")
	fs.StringVar(&cfg.DB, "db", cfg.DB, "validator store backend (disk, memory)")
	fs.StringVar(&cfg.DebugLevel, "debug-level", cfg.DebugLevel, "log level (info, debug, trace, warn, error, crit)")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "enable the Prometheus metrics endpoint")
	fs.StringVar(&cfg.MetricsAddress, "metrics-address", cfg.MetricsAddress, "metrics listen address")
	fs.Uint64Var(&cfg.MetricsPort, "metrics-port", cfg.MetricsPort, "metrics listen port")
	fs.Var(&verboseCount{n: &cfg.Verbosity}, "v", "increase verbosity (repeatable)")
	return fs
}
