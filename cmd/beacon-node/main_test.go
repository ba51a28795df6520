package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRootFlagsDefaults(t *testing.T) {
	cfg, exit, code := parseRootFlags([]string{})
	if exit {
		t.Fatalf("unexpected exit with code %d", code)
	}

	defaults := DefaultConfig()
	if cfg.DataDir != defaults.DataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, defaults.DataDir)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.DB != "disk" {
		t.Errorf("DB = %q, want disk", cfg.DB)
	}
	if cfg.API {
		t.Error("API should be false by default")
	}
	if cfg.Verbosity != 0 {
		t.Errorf("Verbosity = %d, want 0", cfg.Verbosity)
	}
}

func TestParseRootFlagsAllFlags(t *testing.T) {
	args := []string{
		"--datadir", "/tmp/beacon-testdata",
		"--port", "9100",
		"--maxpeers", "25",
		"--rpc",
		"--rpc-port", "6000",
		"--api",
		"--api-port", "6001",
		"--db", "memory",
		"--debug-level", "debug",
		"--metrics",
		"--metrics-port", "6002",
		"-v", "-v", "-v",
	}

	cfg, exit, code := parseRootFlags(args)
	if exit {
		t.Fatalf("unexpected exit with code %d", code)
	}

	if cfg.DataDir != "/tmp/beacon-testdata" {
		t.Errorf("DataDir = %q, want /tmp/beacon-testdata", cfg.DataDir)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.MaxPeers != 25 {
		t.Errorf("MaxPeers = %d, want 25", cfg.MaxPeers)
	}
	if !cfg.RPC || cfg.RPCPort != 6000 {
		t.Errorf("RPC = %v, RPCPort = %d, want true, 6000", cfg.RPC, cfg.RPCPort)
	}
	if !cfg.API || cfg.APIPort != 6001 {
		t.Errorf("API = %v, APIPort = %d, want true, 6001", cfg.API, cfg.APIPort)
	}
	if cfg.DB != "memory" {
		t.Errorf("DB = %q, want memory", cfg.DB)
	}
	if cfg.DebugLevel != "debug" {
		t.Errorf("DebugLevel = %q, want debug", cfg.DebugLevel)
	}
	if !cfg.Metrics || cfg.MetricsPort != 6002 {
		t.Errorf("Metrics = %v, MetricsPort = %d, want true, 6002", cfg.Metrics, cfg.MetricsPort)
	}
	if cfg.Verbosity != 3 {
		t.Errorf("Verbosity = %d, want 3", cfg.Verbosity)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
}

func TestParseRootFlagsRejectsUnknownFlag(t *testing.T) {
	_, exit, code := parseRootFlags([]string{"--not-a-real-flag"})
	if !exit || code != 2 {
		t.Fatalf("exit=%v code=%d, want exit=true code=2", exit, code)
	}
}

func TestConfigValidateRejectsBadDBKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DB = "postgres"
	if err := cfg.Validate(); err != ErrInvalidDBKind {
		t.Fatalf("Validate() = %v, want %v", err, ErrInvalidDBKind)
	}
}

func TestConfigValidateRejectsZeroAPIPortWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API = true
	cfg.APIPort = 0
	if err := cfg.Validate(); err != ErrZeroAPIPort {
		t.Fatalf("Validate() = %v, want %v", err, ErrZeroAPIPort)
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestConfigInitDataDirIsNoopForMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DB = "memory"
	cfg.DataDir = "/nonexistent/path/that/must/not/be/created"
	if err := cfg.InitDataDir(); err != nil {
		t.Fatalf("InitDataDir() = %v, want nil", err)
	}
}

func TestConfigInitDataDirCreatesDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.NetworkDir = "network"
	if err := cfg.InitDataDir(); err != nil {
		t.Fatalf("InitDataDir() = %v, want nil", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, cfg.NetworkDir)); err != nil {
		t.Fatalf("network-dir was not created: %v", err)
	}
}
