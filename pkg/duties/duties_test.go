package duties

import (
	"context"
	"errors"
	"testing"

	"github.com/chainbound/beaconcore/pkg/types"
)

type fixedClock struct {
	slot types.Slot
	err  error
}

func (c fixedClock) CurrentSlot() (types.Slot, error) {
	return c.slot, c.err
}

type stubNode struct {
	duties *EpochDuties
	err    error
}

func (s *stubNode) RequestShuffling(ctx context.Context, epoch types.Epoch, pubkey types.PublicKey) (*EpochDuties, error) {
	return s.duties, s.err
}

func slotPtr(s types.Slot) *types.Slot { return &s }
func shardPtr(s types.Shard) *types.Shard { return &s }

func testPubkey(b byte) types.PublicKey {
	var pk types.PublicKey
	pk[0] = b
	return pk
}

// TestPollScenarioSequence reproduces scenario S5 verbatim.
func TestPollScenarioSequence(t *testing.T) {
	clock := fixedClock{slot: 160} // epoch 5 at epochLength=32
	node := &stubNode{duties: &EpochDuties{BlockProductionSlot: slotPtr(10), Shard: shardPtr(12)}}
	mgr := NewManager(clock, node, 32)
	pubkey := testPubkey(1)
	ctx := context.Background()

	outcome, err := mgr.Poll(ctx, pubkey)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if outcome != NewDuties {
		t.Fatalf("first poll = %v, want NewDuties", outcome)
	}

	outcome, err = mgr.Poll(ctx, pubkey)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if outcome != NoChange {
		t.Fatalf("second poll = %v, want NoChange", outcome)
	}

	node.duties = &EpochDuties{BlockProductionSlot: slotPtr(11), Shard: shardPtr(12)}
	outcome, err = mgr.Poll(ctx, pubkey)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if outcome != DutiesChanged {
		t.Fatalf("third poll = %v, want DutiesChanged", outcome)
	}

	node.duties = nil
	outcome, err = mgr.Poll(ctx, pubkey)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if outcome != UnknownValidatorOrEpoch {
		t.Fatalf("fourth poll = %v, want UnknownValidatorOrEpoch", outcome)
	}
}

func TestPollRejectsZeroEpochLength(t *testing.T) {
	mgr := NewManager(fixedClock{slot: 0}, &stubNode{}, 0)
	_, err := mgr.Poll(context.Background(), testPubkey(1))
	if err != ErrEpochLengthIsZero {
		t.Fatalf("Poll with epoch_length=0 = %v, want %v", err, ErrEpochLengthIsZero)
	}
}

func TestPollPropagatesClockFailure(t *testing.T) {
	mgr := NewManager(fixedClock{err: ErrSlotClockFailure}, &stubNode{}, 32)
	_, err := mgr.Poll(context.Background(), testPubkey(1))
	if err != ErrSlotClockFailure {
		t.Fatalf("Poll with failing clock = %v, want %v", err, ErrSlotClockFailure)
	}
}

func TestPollWrapsBeaconNodeError(t *testing.T) {
	node := &stubNode{err: errors.New("connection reset")}
	mgr := NewManager(fixedClock{slot: 0}, node, 32)
	_, err := mgr.Poll(context.Background(), testPubkey(1))
	var beaconErr *BeaconNodeError
	if !errors.As(err, &beaconErr) {
		t.Fatalf("Poll with failing node = %v, want *BeaconNodeError", err)
	}
	if beaconErr.Kind != "request_shuffling" {
		t.Fatalf("BeaconNodeError.Kind = %q, want %q", beaconErr.Kind, "request_shuffling")
	}
}

func TestPollManyFansOutAcrossPubkeys(t *testing.T) {
	node := &stubNode{duties: &EpochDuties{BlockProductionSlot: slotPtr(3), Shard: shardPtr(1)}}
	mgr := NewManager(fixedClock{slot: 0}, node, 32)
	pubkeys := []types.PublicKey{testPubkey(1), testPubkey(2), testPubkey(3)}

	outcomes, err := mgr.PollMany(context.Background(), pubkeys)
	if err != nil {
		t.Fatalf("PollMany: %v", err)
	}
	for i, outcome := range outcomes {
		if outcome != NewDuties {
			t.Fatalf("outcomes[%d] = %v, want NewDuties", i, outcome)
		}
	}
}

func TestPollManyPropagatesFirstError(t *testing.T) {
	node := &stubNode{err: errors.New("down")}
	mgr := NewManager(fixedClock{slot: 0}, node, 32)
	pubkeys := []types.PublicKey{testPubkey(1), testPubkey(2)}

	if _, err := mgr.PollMany(context.Background(), pubkeys); err == nil {
		t.Fatalf("expected PollMany to propagate the beacon node error")
	}
}

func TestCachedReflectsLastStoredValue(t *testing.T) {
	node := &stubNode{duties: &EpochDuties{BlockProductionSlot: slotPtr(7), Shard: shardPtr(2)}}
	mgr := NewManager(fixedClock{slot: 64}, node, 32)
	pubkey := testPubkey(9)

	if _, ok, _ := mgr.Cached(pubkey, 2); ok {
		t.Fatalf("Cached on fresh manager reported a value")
	}

	if _, err := mgr.Poll(context.Background(), pubkey); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	duties, ok, err := mgr.Cached(pubkey, 2)
	if err != nil {
		t.Fatalf("Cached: %v", err)
	}
	if !ok || duties == nil || *duties.BlockProductionSlot != 7 {
		t.Fatalf("Cached = (%+v, %v), want block slot 7", duties, ok)
	}
}

// TestWriteLockPanicPoisonsCache exercises the §5 lock-poisoning
// discipline directly: a panicking holder of the exclusive view must
// leave every subsequent caller observing ErrCachePoisoned.
func TestWriteLockPanicPoisonsCache(t *testing.T) {
	mgr := NewManager(fixedClock{slot: 0}, &stubNode{}, 32)

	func() {
		defer func() { recover() }()
		mgr.withWriteLock(func() { panic("simulated holder panic") })
	}()

	if !mgr.poisoned.Load() {
		t.Fatalf("cache not marked poisoned after a panicking write")
	}
	if _, err := mgr.Poll(context.Background(), testPubkey(1)); err != ErrCachePoisoned {
		t.Fatalf("Poll after poisoning = %v, want %v", err, ErrCachePoisoned)
	}
	if _, _, err := mgr.Cached(testPubkey(1), 0); err != ErrCachePoisoned {
		t.Fatalf("Cached after poisoning = %v, want %v", err, ErrCachePoisoned)
	}
}
