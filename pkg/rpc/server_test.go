package rpc

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/chainbound/beaconcore/pkg/duties"
	"github.com/chainbound/beaconcore/pkg/types"
)

type fakeDutiesSource struct {
	duties map[types.Epoch]*duties.EpochDuties
}

func (f *fakeDutiesSource) Cached(pubkey types.PublicKey, epoch types.Epoch) (*duties.EpochDuties, bool, error) {
	d, ok := f.duties[epoch]
	return d, ok, nil
}

func samplePubkey() types.PublicKey {
	var pk types.PublicKey
	for i := range pk {
		pk[i] = byte(i)
	}
	return pk
}

func TestBootstrapServerSlotsPerEpoch(t *testing.T) {
	store := NewMemoryChainStore(32)
	srv := NewBootstrapServer(store, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, err := NewBootstrapClient(ts.URL)
	if err != nil {
		t.Fatalf("NewBootstrapClient: %v", err)
	}
	n, err := client.SlotsPerEpoch(context.Background())
	if err != nil {
		t.Fatalf("SlotsPerEpoch: %v", err)
	}
	if n != 32 {
		t.Fatalf("SlotsPerEpoch = %d, want 32", n)
	}
}

func TestBootstrapServerLatestFinalizedCheckpointMissing(t *testing.T) {
	store := NewMemoryChainStore(32)
	srv := NewBootstrapServer(store, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, _ := NewBootstrapClient(ts.URL)
	_, err := client.LatestFinalizedCheckpoint(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing checkpoint")
	}
	var httpErr *HTTPError
	if !isNotFound(err, &httpErr) {
		t.Fatalf("err = %v, want a 404 HTTPError", err)
	}
}

func TestBootstrapServerLatestFinalizedCheckpointPresent(t *testing.T) {
	store := NewMemoryChainStore(32)
	want := types.Checkpoint{Epoch: 7, Root: types.Hash256{1, 2, 3}}
	store.SetLatestFinalizedCheckpoint(want)
	srv := NewBootstrapServer(store, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, _ := NewBootstrapClient(ts.URL)
	got, err := client.LatestFinalizedCheckpoint(context.Background())
	if err != nil {
		t.Fatalf("LatestFinalizedCheckpoint: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestBootstrapServerStateAndBlockBySlot(t *testing.T) {
	store := NewMemoryChainStore(32)
	st := types.BeaconState{Slot: 5, GenesisTime: 1000}
	blk := types.BeaconBlock{Slot: 5}
	store.SetStateAtSlot(5, st)
	store.SetBlockAtSlot(5, blk)
	srv := NewBootstrapServer(store, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, _ := NewBootstrapClient(ts.URL)

	gotState, err := client.State(context.Background(), 5)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if gotState.Slot != 5 || gotState.GenesisTime != 1000 {
		t.Fatalf("State = %+v, want Slot=5 GenesisTime=1000", gotState)
	}

	gotBlock, err := client.Block(context.Background(), 5)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if gotBlock.Slot != 5 {
		t.Fatalf("Block.Slot = %d, want 5", gotBlock.Slot)
	}

	if _, err := client.State(context.Background(), 99); err == nil {
		t.Fatal("expected an error for an unknown slot")
	}
}

func TestBootstrapServerNetworkEndpoints(t *testing.T) {
	store := NewMemoryChainStore(32)
	store.SetENR("enr:-abc123")
	store.SetListenPort(9000)
	srv := NewBootstrapServer(store, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, _ := NewBootstrapClient(ts.URL)

	enr, err := client.ENR(context.Background())
	if err != nil || enr != "enr:-abc123" {
		t.Fatalf("ENR = (%q, %v), want enr:-abc123", enr, err)
	}
	port, err := client.ListenPort(context.Background())
	if err != nil || port != 9000 {
		t.Fatalf("ListenPort = (%d, %v), want 9000", port, err)
	}
}

func TestBootstrapServerRequestShufflingKnownAndUnknown(t *testing.T) {
	pubkey := samplePubkey()
	slot := types.Slot(64)
	shard := types.Shard(3)
	source := &fakeDutiesSource{duties: map[types.Epoch]*duties.EpochDuties{
		5: {BlockProductionSlot: &slot, Shard: &shard},
	}}
	store := NewMemoryChainStore(32)
	srv := NewBootstrapServer(store, source)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, _ := NewBootstrapClient(ts.URL)

	got, err := client.RequestShuffling(context.Background(), 5, pubkey)
	if err != nil {
		t.Fatalf("RequestShuffling: %v", err)
	}
	if got == nil || got.BlockProductionSlot == nil || *got.BlockProductionSlot != slot {
		t.Fatalf("RequestShuffling = %+v, want BlockProductionSlot=%d", got, slot)
	}

	got, err = client.RequestShuffling(context.Background(), 6, pubkey)
	if err != nil {
		t.Fatalf("RequestShuffling(unknown epoch): %v", err)
	}
	if got != nil {
		t.Fatalf("RequestShuffling(unknown epoch) = %+v, want nil", got)
	}
}

func TestBootstrapServerRequestShufflingWithoutDutiesSource(t *testing.T) {
	store := NewMemoryChainStore(32)
	srv := NewBootstrapServer(store, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, _ := NewBootstrapClient(ts.URL)
	if _, err := client.RequestShuffling(context.Background(), 1, samplePubkey()); err == nil {
		t.Fatal("expected an error when no duties source is wired")
	}
}

func TestNewBootstrapClientRejectsEmptyAndGarbageURLs(t *testing.T) {
	if _, err := NewBootstrapClient(""); err != ErrInvalidURL {
		t.Fatalf("NewBootstrapClient(\"\") = %v, want %v", err, ErrInvalidURL)
	}
	if _, err := NewBootstrapClient("://not a url"); err != ErrInvalidURL {
		t.Fatalf("NewBootstrapClient(garbage) = %v, want %v", err, ErrInvalidURL)
	}
}

func TestNewBootstrapClientAcceptsBareHostPort(t *testing.T) {
	client, err := NewBootstrapClient("localhost:8080")
	if err != nil {
		t.Fatalf("NewBootstrapClient: %v", err)
	}
	if client.baseURL != "http://localhost:8080" {
		t.Fatalf("baseURL = %q, want http://localhost:8080", client.baseURL)
	}
}
