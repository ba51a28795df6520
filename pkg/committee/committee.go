// Package committee implements the committee assigner (C5): it turns a
// shuffled validator registry into a Cycle of per-slot shard committee
// assignments.
package committee

import (
	"errors"

	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/shuffle"
	"github.com/chainbound/beaconcore/pkg/types"
)

// ErrInvalidInput is returned when the supplied config cannot produce a
// well-formed cycle: shard_count/cycle_length must be at least one, or
// every shard would go un-crosslinked for entire cycles.
var ErrInvalidInput = errors.New("committee: shard_count/cycle_length must be at least one")

// Cycle is an ordered sequence of per-slot committee assignments, one
// entry per slot in a cycle_length-slot cycle.
type Cycle struct {
	Slots [][]types.ShardAndCommittee
}

// FlattenValidators concatenates every committee in Cycle, in slot then
// sub-committee order, back into a single validator index sequence —
// the inverse of the split DelegateValidators performs, useful for
// asserting a cycle covers every active validator exactly once.
func FlattenValidators(c Cycle) []types.ValidatorIndex {
	var out []types.ValidatorIndex
	for _, slot := range c.Slots {
		for _, sc := range slot {
			out = append(out, sc.Committee...)
		}
	}
	return out
}

// FlattenShards returns, for each slot, the ordered list of shard IDs
// assigned that slot — the `shards_in_slots` shape the testable
// scenarios are phrased against.
func FlattenShards(c Cycle) [][]types.Shard {
	out := make([][]types.Shard, len(c.Slots))
	for i, slot := range c.Slots {
		shards := make([]types.Shard, len(slot))
		for j, sc := range slot {
			shards[j] = sc.ShardID
		}
		out[i] = shards
	}
	return out
}

// DelegateValidators computes a full committee-assignment cycle:
// filters validators active at dynasty, shuffles them by seed, and
// partitions the result into cycle_length slots of committees_per_slot
// committees each, assigning shard IDs round-robin from
// crosslinkingShardStart.
func DelegateValidators(
	seed [32]byte,
	validators []types.ValidatorRecord,
	dynasty types.Epoch,
	crosslinkingShardStart types.Shard,
	cfg chainspec.Config,
) (Cycle, error) {
	if cfg.ShardCount/cfg.CycleLength == 0 {
		return Cycle{}, ErrInvalidInput
	}

	active := make([]types.ValidatorIndex, 0, len(validators))
	for i, v := range validators {
		if v.IsActive(dynasty) {
			active = append(active, types.ValidatorIndex(i))
		}
	}

	shuffled, err := shuffle.Shuffle(seed, active)
	if err != nil {
		return Cycle{}, err
	}

	committeesPerSlot, slotsPerCommittee := committeeDimensions(uint64(len(shuffled)), cfg)

	slotChunks := honeyBadgerSplit(shuffled, cfg.CycleLength)
	slots := make([][]types.ShardAndCommittee, cfg.CycleLength)
	for i, chunk := range slotChunks {
		committees := honeyBadgerSplit(chunk, committeesPerSlot)
		row := make([]types.ShardAndCommittee, committeesPerSlot)
		for j, committee := range committees {
			shardID := (uint64(crosslinkingShardStart) + uint64(i)*committeesPerSlot/slotsPerCommittee + uint64(j)) % cfg.ShardCount
			row[j] = types.ShardAndCommittee{
				ShardID:   types.Shard(shardID),
				Committee: committee,
			}
		}
		slots[i] = row
	}
	return Cycle{Slots: slots}, nil
}

// committeeDimensions computes (committees_per_slot, slots_per_committee)
// from the active validator count per the two-branch formula (§4.5).
func committeeDimensions(activeCount uint64, cfg chainspec.Config) (committeesPerSlot, slotsPerCommittee uint64) {
	if activeCount >= cfg.CycleLength*cfg.MinCommitteeSize {
		committeesPerSlot = min64(
			activeCount/cfg.CycleLength/(2*cfg.MinCommitteeSize)+1,
			cfg.ShardCount/cfg.CycleLength,
		)
		if committeesPerSlot == 0 {
			committeesPerSlot = 1
		}
		return committeesPerSlot, 1
	}

	committeesPerSlot = 1
	slotsPerCommittee = 1
	for activeCount*slotsPerCommittee < cfg.CycleLength*cfg.MinCommitteeSize && slotsPerCommittee < cfg.CycleLength {
		slotsPerCommittee *= 2
	}
	return committeesPerSlot, slotsPerCommittee
}

// honeyBadgerSplit divides list into n ordered, contiguous chunks whose
// boundaries are ⌊|list|·i/n⌋ for i in [0, n]. Always defined for n > 0;
// some chunks may be empty when n exceeds len(list).
func honeyBadgerSplit[T any](list []T, n uint64) [][]T {
	out := make([][]T, n)
	total := uint64(len(list))
	for i := uint64(0); i < n; i++ {
		start := total * i / n
		end := total * (i + 1) / n
		out[i] = list[start:end]
	}
	return out
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
