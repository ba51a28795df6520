// Package duties implements the validator duties manager (C8): a
// per-(pubkey, epoch) cache of upcoming block-production and shard
// assignments, kept current by polling an abstract beacon endpoint.
package duties

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chainbound/beaconcore/pkg/metrics"
	"github.com/chainbound/beaconcore/pkg/types"
)

// Duties-manager errors (§4.8, §7).
var (
	ErrSlotUnknowable   = errors.New("duties: current slot is unknowable")
	ErrSlotClockFailure = errors.New("duties: slot clock failed")
	ErrEpochLengthIsZero = errors.New("duties: epoch_length must be positive")
	ErrCachePoisoned    = errors.New("duties: cache poisoned by a panicking holder")
)

// BeaconNodeError wraps an error surfaced by the abstract beacon
// endpoint with the call that produced it (§7).
type BeaconNodeError struct {
	Kind   string
	Detail string
}

func (e *BeaconNodeError) Error() string {
	return fmt.Sprintf("duties: beacon node error (%s): %s", e.Kind, e.Detail)
}

// SlotClock abstracts "read current slot" so the manager never depends
// on wall-clock time directly; production callers back this with the
// chain's genesis-time-derived clock, tests with a fake.
type SlotClock interface {
	CurrentSlot() (types.Slot, error)
}

// EpochDuties is a validator's assignment for a single epoch. Either
// field may be nil, meaning the validator is known to the beacon node
// but has no duty of that kind this epoch.
type EpochDuties struct {
	BlockProductionSlot *types.Slot
	Shard               *types.Shard
}

func (d *EpochDuties) equal(other *EpochDuties) bool {
	if d == nil || other == nil {
		return d == other
	}
	if (d.BlockProductionSlot == nil) != (other.BlockProductionSlot == nil) {
		return false
	}
	if d.BlockProductionSlot != nil && *d.BlockProductionSlot != *other.BlockProductionSlot {
		return false
	}
	if (d.Shard == nil) != (other.Shard == nil) {
		return false
	}
	if d.Shard != nil && *d.Shard != *other.Shard {
		return false
	}
	return true
}

// BeaconNode abstracts the single validator-client endpoint the duties
// manager consumes. A nil *EpochDuties with a nil error means the
// validator or epoch is unknown to the beacon node.
type BeaconNode interface {
	RequestShuffling(ctx context.Context, epoch types.Epoch, pubkey types.PublicKey) (*EpochDuties, error)
}

// PollOutcome classifies the result of comparing a fresh duties lookup
// against the cached value (§4.8 step 3).
type PollOutcome uint8

const (
	NoChange PollOutcome = iota
	NewDuties
	DutiesChanged
	UnknownValidatorOrEpoch
)

func (o PollOutcome) String() string {
	switch o {
	case NoChange:
		return "NoChange"
	case NewDuties:
		return "NewDuties"
	case DutiesChanged:
		return "DutiesChanged"
	case UnknownValidatorOrEpoch:
		return "UnknownValidatorOrEpoch"
	default:
		return "Unknown"
	}
}

type dutyKey struct {
	pubkey types.PublicKey
	epoch  types.Epoch
}

// Manager owns the duties cache: one polling goroutine (or several, via
// PollMany) takes the exclusive view to insert or update; any number of
// readers take the shared view via Cached. A panic while the exclusive
// view is held poisons the cache (§5); every subsequent call returns
// ErrCachePoisoned rather than risk reading a partially-updated map.
type Manager struct {
	mu          sync.RWMutex
	clock       SlotClock
	node        BeaconNode
	epochLength uint64
	cache       map[dutyKey]*EpochDuties
	poisoned    atomic.Bool
}

// NewManager constructs a fresh, empty duties manager. epochLength is
// the chain's slots-per-epoch; a zero value makes every Poll fail with
// ErrEpochLengthIsZero rather than divide by zero.
func NewManager(clock SlotClock, node BeaconNode, epochLength uint64) *Manager {
	return &Manager{
		clock:       clock,
		node:        node,
		epochLength: epochLength,
		cache:       make(map[dutyKey]*EpochDuties),
	}
}

// Poll runs one duty lookup for pubkey at the clock's current epoch:
// read the slot, call the beacon node, compare against the cache, and
// store the new value on NewDuties or DutiesChanged.
func (m *Manager) Poll(ctx context.Context, pubkey types.PublicKey) (PollOutcome, error) {
	if m.poisoned.Load() {
		return 0, ErrCachePoisoned
	}
	if m.epochLength == 0 {
		return 0, ErrEpochLengthIsZero
	}

	slot, err := m.clock.CurrentSlot()
	if err != nil {
		metrics.DutiesPollErrors.Inc()
		return 0, err
	}
	epoch := types.Epoch(uint64(slot) / m.epochLength)

	duties, err := m.node.RequestShuffling(ctx, epoch, pubkey)
	if err != nil {
		metrics.DutiesPollErrors.Inc()
		var beaconErr *BeaconNodeError
		if errors.As(err, &beaconErr) {
			return 0, err
		}
		return 0, &BeaconNodeError{Kind: "request_shuffling", Detail: err.Error()}
	}

	if duties == nil {
		metrics.DutiesPollOutcomes.WithLabelValues(UnknownValidatorOrEpoch.String()).Inc()
		return UnknownValidatorOrEpoch, nil
	}

	key := dutyKey{pubkey: pubkey, epoch: epoch}
	var outcome PollOutcome
	if err := m.withWriteLock(func() {
		prev, ok := m.cache[key]
		switch {
		case !ok:
			outcome = NewDuties
			m.cache[key] = duties
		case prev.equal(duties):
			outcome = NoChange
		default:
			outcome = DutiesChanged
			m.cache[key] = duties
		}
	}); err != nil {
		metrics.DutiesPollErrors.Inc()
		return 0, err
	}
	metrics.DutiesPollOutcomes.WithLabelValues(outcome.String()).Inc()
	return outcome, nil
}

// PollMany polls every pubkey concurrently, fanning out with errgroup
// and propagating the first error; a failure for one pubkey aborts the
// rest via the derived context, leaving the cache unchanged for any
// poll that had not yet reached its write (§5 cancellation policy).
func (m *Manager) PollMany(ctx context.Context, pubkeys []types.PublicKey) ([]PollOutcome, error) {
	outcomes := make([]PollOutcome, len(pubkeys))
	g, gctx := errgroup.WithContext(ctx)
	for i, pubkey := range pubkeys {
		i, pubkey := i, pubkey
		g.Go(func() error {
			outcome, err := m.Poll(gctx, pubkey)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Cached returns the duties currently stored for (pubkey, epoch)
// without polling. ok is false if no value has ever been stored for
// that key.
func (m *Manager) Cached(pubkey types.PublicKey, epoch types.Epoch) (duties *EpochDuties, ok bool, err error) {
	if m.poisoned.Load() {
		return nil, false, ErrCachePoisoned
	}
	err = m.withReadLock(func() {
		duties, ok = m.cache[dutyKey{pubkey: pubkey, epoch: epoch}]
	})
	return duties, ok, err
}

// withWriteLock runs fn holding the exclusive view. A panic inside fn
// poisons the cache before propagating, matching the lock-poisoning
// discipline §5 requires: no later caller may observe a map left
// half-updated by a panicking holder.
func (m *Manager) withWriteLock(fn func()) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			m.poisoned.Store(true)
			panic(r)
		}
	}()
	fn()
	return nil
}

func (m *Manager) withReadLock(fn func()) (err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			m.poisoned.Store(true)
			panic(r)
		}
	}()
	fn()
	return nil
}
