package engine

import "sync/atomic"

// Clock is the monotonic logical clock that numbers runs and replays.
//
// Seq values are strictly increasing and unique per clock. A store-backed
// engine seeds its clock with NewClockAt(store.NextSeq()-1) so seq stays
// unique across processes appending to the same log.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock whose next value is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
