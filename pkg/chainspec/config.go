// Package chainspec holds the immutable, process-wide chain configuration
// consumed by every other component: cycle length, shard count, committee
// sizing, epoch length, and the signing-domain tags.
package chainspec

import (
	"crypto/sha256"
	"errors"
)

// DomainType tags a signing domain: beacon_proposer, beacon_attester, randao,
// deposit, or voluntary_exit.
type DomainType [4]byte

// Well-known domain tags.
var (
	DomainBeaconProposer = DomainType{0x00, 0x00, 0x00, 0x00}
	DomainBeaconAttester = DomainType{0x01, 0x00, 0x00, 0x00}
	DomainRandao         = DomainType{0x02, 0x00, 0x00, 0x00}
	DomainDeposit        = DomainType{0x03, 0x00, 0x00, 0x00}
	DomainVoluntaryExit  = DomainType{0x04, 0x00, 0x00, 0x00}
)

// ForkVersion is a 4-byte fork identifier.
type ForkVersion [4]byte

// Fork describes a chain fork boundary: the previous and current wire
// versions and the epoch at which current_version became active.
type Fork struct {
	PreviousVersion ForkVersion
	CurrentVersion  ForkVersion
	Epoch           uint64
}

// VersionAt returns the fork version active at the given epoch.
func (f Fork) VersionAt(epoch uint64) ForkVersion {
	if epoch < f.Epoch {
		return f.PreviousVersion
	}
	return f.CurrentVersion
}

// DomainTags bundles the five signing-domain tags the spec names.
type DomainTags struct {
	BeaconProposer DomainType
	BeaconAttester DomainType
	Randao         DomainType
	Deposit        DomainType
	VoluntaryExit  DomainType
}

// DefaultDomainTags returns the canonical tag assignment.
func DefaultDomainTags() DomainTags {
	return DomainTags{
		BeaconProposer: DomainBeaconProposer,
		BeaconAttester: DomainBeaconAttester,
		Randao:         DomainRandao,
		Deposit:        DomainDeposit,
		VoluntaryExit:  DomainVoluntaryExit,
	}
}

// Config is the immutable, process-wide chain configuration (C10). Build one
// with NewConfig or a named preset and never mutate it afterward; it is safe
// for concurrent read access without synchronization.
type Config struct {
	CycleLength        uint64
	ShardCount         uint64
	MinCommitteeSize   uint64
	EpochLength        uint64
	SlotsPerEpoch      uint64
	GenesisForkVersion ForkVersion
	DomainTags         DomainTags
}

// Config validation errors.
var (
	ErrZeroCycleLength      = errors.New("chainspec: cycle_length must be positive")
	ErrZeroShardCount       = errors.New("chainspec: shard_count must be positive")
	ErrZeroMinCommitteeSize = errors.New("chainspec: min_committee_size must be positive")
	ErrZeroEpochLength      = errors.New("chainspec: epoch_length must be positive")
	ErrShardCountTooSmall   = errors.New("chainspec: shard_count must be at least cycle_length")
)

// NewConfig validates and returns a Config. The zero value of Config is never
// valid; callers must go through NewConfig or a preset.
func NewConfig(cycleLength, shardCount, minCommitteeSize, epochLength, slotsPerEpoch uint64, genesisForkVersion ForkVersion, tags DomainTags) (Config, error) {
	cfg := Config{
		CycleLength:        cycleLength,
		ShardCount:         shardCount,
		MinCommitteeSize:   minCommitteeSize,
		EpochLength:        epochLength,
		SlotsPerEpoch:      slotsPerEpoch,
		GenesisForkVersion: genesisForkVersion,
		DomainTags:         tags,
	}
	return cfg, cfg.Validate()
}

// Validate checks the structural invariants a Config must hold before it is
// handed to any other component.
func (c Config) Validate() error {
	if c.CycleLength == 0 {
		return ErrZeroCycleLength
	}
	if c.ShardCount == 0 {
		return ErrZeroShardCount
	}
	if c.MinCommitteeSize == 0 {
		return ErrZeroMinCommitteeSize
	}
	if c.EpochLength == 0 {
		return ErrZeroEpochLength
	}
	if c.ShardCount/c.CycleLength == 0 {
		return ErrShardCountTooSmall
	}
	return nil
}

// Mainnet returns a production-scale preset.
func Mainnet() Config {
	cfg, err := NewConfig(64, 1024, 128, 64, 64, ForkVersion{0, 0, 0, 0}, DefaultDomainTags())
	if err != nil {
		panic(err) // unreachable: constants above are self-consistent
	}
	return cfg
}

// Minimal returns a small preset suited to fast unit tests.
func Minimal() Config {
	cfg, err := NewConfig(8, 8, 4, 8, 8, ForkVersion{0, 0, 0, 1}, DefaultDomainTags())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Interop returns the preset used for local multi-client interop testing.
func Interop() Config {
	cfg, err := NewConfig(20, 10, 10, 20, 20, ForkVersion{0, 0, 0, 2}, DefaultDomainTags())
	if err != nil {
		panic(err)
	}
	return cfg
}

// PresetByName resolves "mainnet", "minimal", or "interop" to a Config.
func PresetByName(name string) (Config, error) {
	switch name {
	case "mainnet":
		return Mainnet(), nil
	case "minimal":
		return Minimal(), nil
	case "interop":
		return Interop(), nil
	default:
		return Config{}, errors.New("chainspec: unknown preset " + name)
	}
}

// GetDomain computes the 32-byte signing-domain separator for the given
// epoch, domain tag, fork, and genesis validators root:
//
//	domain_tag (4 bytes) ∥ fork_version_at(epoch, fork) (4 bytes) ∥
//	first 24 bytes of hash(genesis_validators_root)
func (c Config) GetDomain(epoch uint64, tag DomainType, fork Fork, genesisValidatorsRoot [32]byte) [32]byte {
	var out [32]byte
	copy(out[0:4], tag[:])
	version := fork.VersionAt(epoch)
	copy(out[4:8], version[:])
	h := sha256.Sum256(genesisValidatorsRoot[:])
	copy(out[8:32], h[:24])
	return out
}

// EpochOf returns the epoch containing the given slot.
func (c Config) EpochOf(slot uint64) uint64 {
	if c.SlotsPerEpoch == 0 {
		return 0
	}
	return slot / c.SlotsPerEpoch
}
