package main

import (
	"time"

	"github.com/chainbound/beaconcore/pkg/duties"
	"github.com/chainbound/beaconcore/pkg/types"
)

// secondsPerSlot is the wall-clock slot duration. spec.md fixes the
// slot/epoch counters but not their real-time duration, so this value
// is the validator client's own choice (§9 design note); 8 matches the
// earliest phase0 testnets this CLI surface is modeled after.
const secondsPerSlot = 8

// genesisClock implements duties.SlotClock by deriving the current
// slot from wall-clock time and a fixed genesis timestamp.
type genesisClock struct {
	genesisTime uint64
	now         func() time.Time
}

// newGenesisClock builds a clock anchored at genesisTime (Unix
// seconds).
func newGenesisClock(genesisTime uint64) *genesisClock {
	return &genesisClock{genesisTime: genesisTime, now: time.Now}
}

// CurrentSlot implements duties.SlotClock.
func (c *genesisClock) CurrentSlot() (types.Slot, error) {
	nowUnix := uint64(c.now().Unix())
	if nowUnix < c.genesisTime {
		return 0, duties.ErrSlotUnknowable
	}
	return types.Slot((nowUnix - c.genesisTime) / secondsPerSlot), nil
}
