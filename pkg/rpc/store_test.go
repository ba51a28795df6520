package rpc

import (
	"testing"

	"github.com/chainbound/beaconcore/pkg/types"
)

func TestMemoryChainStoreLatestFinalizedCheckpointUnsetByDefault(t *testing.T) {
	store := NewMemoryChainStore(32)
	if _, ok := store.LatestFinalizedCheckpoint(); ok {
		t.Fatal("expected no finalized checkpoint on a fresh store")
	}
}

func TestMemoryChainStoreRoundTrips(t *testing.T) {
	store := NewMemoryChainStore(32)

	cp := types.Checkpoint{Epoch: 3, Root: types.Hash256{9}}
	store.SetLatestFinalizedCheckpoint(cp)
	got, ok := store.LatestFinalizedCheckpoint()
	if !ok || got != cp {
		t.Fatalf("LatestFinalizedCheckpoint = (%+v, %v), want (%+v, true)", got, ok, cp)
	}

	st := types.BeaconState{Slot: 10}
	store.SetStateAtSlot(10, st)
	if gotSt, ok := store.StateAtSlot(10); !ok || gotSt.Slot != 10 {
		t.Fatalf("StateAtSlot(10) = (%+v, %v)", gotSt, ok)
	}
	if _, ok := store.StateAtSlot(11); ok {
		t.Fatal("StateAtSlot(11) should be absent")
	}

	blk := types.BeaconBlock{Slot: 10}
	store.SetBlockAtSlot(10, blk)
	if gotBlk, ok := store.BlockAtSlot(10); !ok || gotBlk.Slot != 10 {
		t.Fatalf("BlockAtSlot(10) = (%+v, %v)", gotBlk, ok)
	}

	store.SetENR("enr:-xyz")
	if store.ENR() != "enr:-xyz" {
		t.Fatalf("ENR() = %q, want enr:-xyz", store.ENR())
	}

	store.SetListenPort(30303)
	if store.ListenPort() != 30303 {
		t.Fatalf("ListenPort() = %d, want 30303", store.ListenPort())
	}

	if store.SlotsPerEpoch() != 32 {
		t.Fatalf("SlotsPerEpoch() = %d, want 32", store.SlotsPerEpoch())
	}
}
