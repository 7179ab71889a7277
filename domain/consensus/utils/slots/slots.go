// Package slots maps timestamps to forging slots and heights to rounds.
//
// Timestamps are whole seconds since the network epoch. A slot is one
// BlockTime long, and slot s is forged by the delegate at position
// s mod ActiveDelegates of its round's delegate list. Rounds are counted by
// height: round r holds heights ((r-1)*ActiveDelegates, r*ActiveDelegates].
package slots

import (
	"time"
)

// Clock converts between wall-clock time, epoch timestamps and slots
type Clock struct {
	epoch           time.Time
	blockTime       int64
	activeDelegates uint64
}

// New returns a Clock for a network with the given epoch, block time in
// seconds and number of active delegates
func New(epoch time.Time, blockTime int64, activeDelegates uint64) *Clock {
	return &Clock{
		epoch:           epoch,
		blockTime:       blockTime,
		activeDelegates: activeDelegates,
	}
}

// EpochTime returns the number of whole seconds between the network epoch
// and t
func (c *Clock) EpochTime(t time.Time) int64 {
	return int64(t.Sub(c.epoch) / time.Second)
}

// RealTime returns the wall-clock time of an epoch timestamp
func (c *Clock) RealTime(timestamp int64) time.Time {
	return c.epoch.Add(time.Duration(timestamp) * time.Second)
}

// SlotNumber returns the slot containing timestamp
func (c *Clock) SlotNumber(timestamp int64) int64 {
	return floorDiv(timestamp, c.blockTime)
}

// SlotTime returns the timestamp at which slot starts
func (c *Clock) SlotTime(slot int64) int64 {
	return slot * c.blockTime
}

// NextSlot returns the first slot after the one containing timestamp
func (c *Clock) NextSlot(timestamp int64) int64 {
	return c.SlotNumber(timestamp) + 1
}

// LastSlotInRound returns the last slot a delegate list starting at slot
// can forge
func (c *Clock) LastSlotInRound(slot int64) int64 {
	return slot + int64(c.activeDelegates)
}

// ForgerIndex returns the position in the delegate list of the delegate
// forging slot
func (c *Clock) ForgerIndex(slot int64) int {
	return int(floorMod(slot, int64(c.activeDelegates)))
}

// RoundOf returns the round a height belongs to. The genesis height 1
// belongs to round 1.
func (c *Clock) RoundOf(height uint64) uint64 {
	if height == 0 {
		return 0
	}
	return (height + c.activeDelegates - 1) / c.activeDelegates
}

// FirstInRound returns the first height of round
func (c *Clock) FirstInRound(round uint64) uint64 {
	return (round-1)*c.activeDelegates + 1
}

// LastInRound returns the last height of round
func (c *Clock) LastInRound(round uint64) uint64 {
	return round * c.activeDelegates
}

// IsLastInRound returns whether height closes its round
func (c *Clock) IsLastInRound(height uint64) bool {
	return height%c.activeDelegates == 0
}

// ActiveDelegates returns the number of forging slots in a round
func (c *Clock) ActiveDelegates() uint64 {
	return c.activeDelegates
}

// BlockTime returns the slot duration in seconds
func (c *Clock) BlockTime() int64 {
	return c.blockTime
}

func floorDiv(a, b int64) int64 {
	quotient := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		quotient--
	}
	return quotient
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
