package notify

import "sync"

// Cursor tracks the last sequence number seen per stream so a subscriber
// can tell when it missed events and has to re-read the store.
type Cursor struct {
	mu    sync.Mutex
	last  map[Stream]uint64
	known bool
}

// NewCursor starts a cursor at the given positions, usually taken from
// Notifier.Positions right before subscribing. A nil map starts from
// whatever event arrives first; with a non-nil map, streams missing from
// it are taken to be at zero.
func NewCursor(start map[Stream]uint64) *Cursor {
	c := &Cursor{}
	c.Reset(start)
	return c
}

// Observe records ev and reports whether events of its stream were
// skipped since the previous observation.
func (c *Cursor) Observe(ev Event) (gap bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream := ev.Type.Stream()
	prev, seen := c.last[stream]
	if ev.Seq <= prev {
		return false
	}
	c.last[stream] = ev.Seq
	return (seen || c.known) && ev.Seq > prev+1
}

// Reset moves the cursor to the given positions after a resync.
func (c *Cursor) Reset(positions map[Stream]uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known = positions != nil
	c.last = make(map[Stream]uint64, len(positions))
	for k, v := range positions {
		c.last[k] = v
	}
}
