// Package rpc implements the HTTP bootstrap interface (§6): the handful
// of plain JSON-over-HTTP endpoints a new node or validator client uses
// to fetch chain spec, finality, and state/block snapshots from a
// running beacon node, plus the duties-polling endpoint the validator
// client consumes.
package rpc

import (
	"sync"

	"github.com/chainbound/beaconcore/pkg/types"
)

// ChainStore is the read-only view of local chain state the bootstrap
// server serves over HTTP. A production beacon node backs this with its
// actual state/block database; tests and the testnet subcommands back
// it with MemoryChainStore.
type ChainStore interface {
	SlotsPerEpoch() uint64
	LatestFinalizedCheckpoint() (types.Checkpoint, bool)
	StateAtSlot(slot types.Slot) (types.BeaconState, bool)
	BlockAtSlot(slot types.Slot) (types.BeaconBlock, bool)
	ENR() string
	ListenPort() int
}

// MemoryChainStore is an in-process ChainStore backed by plain maps,
// suitable for the testnet subcommands and for tests.
type MemoryChainStore struct {
	mu sync.RWMutex

	slotsPerEpoch uint64
	finalized     *types.Checkpoint
	states        map[types.Slot]types.BeaconState
	blocks        map[types.Slot]types.BeaconBlock
	enr           string
	listenPort    int
}

// NewMemoryChainStore creates an empty store for the given slots-per-epoch.
func NewMemoryChainStore(slotsPerEpoch uint64) *MemoryChainStore {
	return &MemoryChainStore{
		slotsPerEpoch: slotsPerEpoch,
		states:        make(map[types.Slot]types.BeaconState),
		blocks:        make(map[types.Slot]types.BeaconBlock),
	}
}

func (s *MemoryChainStore) SlotsPerEpoch() uint64 {
	return s.slotsPerEpoch
}

func (s *MemoryChainStore) LatestFinalizedCheckpoint() (types.Checkpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.finalized == nil {
		return types.Checkpoint{}, false
	}
	return *s.finalized, true
}

func (s *MemoryChainStore) SetLatestFinalizedCheckpoint(cp types.Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = &cp
}

func (s *MemoryChainStore) StateAtSlot(slot types.Slot) (types.BeaconState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[slot]
	return st, ok
}

func (s *MemoryChainStore) SetStateAtSlot(slot types.Slot, st types.BeaconState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[slot] = st
}

func (s *MemoryChainStore) BlockAtSlot(slot types.Slot) (types.BeaconBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[slot]
	return b, ok
}

func (s *MemoryChainStore) SetBlockAtSlot(slot types.Slot, b types.BeaconBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[slot] = b
}

func (s *MemoryChainStore) ENR() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enr
}

func (s *MemoryChainStore) SetENR(enr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enr = enr
}

func (s *MemoryChainStore) ListenPort() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenPort
}

func (s *MemoryChainStore) SetListenPort(port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenPort = port
}
