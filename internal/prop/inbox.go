package prop

import "sync"

// Inbox buffers readings for one sensor device.
//
// The router appends from the MQTT delivery goroutine and exactly one prop
// task consumes. Every method takes the lock, so a consumer never sees a
// half-appended batch.
type Inbox struct {
	mu    sync.Mutex
	items []Reading
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Append adds a reading at the tail.
func (in *Inbox) Append(r Reading) {
	in.mu.Lock()
	in.items = append(in.items, r)
	in.mu.Unlock()
}

// Len returns the number of buffered readings.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.items)
}

// Drain removes and returns everything buffered.
func (in *Inbox) Drain() []Reading {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := in.items
	in.items = nil
	return out
}

// TakeRetainLast returns a copy of the buffer when it holds at least atLeast
// readings, leaving only the newest one behind as the seed for the next
// window. With fewer than atLeast readings nothing changes and ok is false.
func (in *Inbox) TakeRetainLast(atLeast int) (batch []Reading, ok bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.items) < atLeast || len(in.items) == 0 {
		return nil, false
	}

	batch = make([]Reading, len(in.items))
	copy(batch, in.items)
	in.items = []Reading{in.items[len(in.items)-1]}
	return batch, true
}

// Clear discards everything buffered and reports how many were dropped.
func (in *Inbox) Clear() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	n := len(in.items)
	in.items = nil
	return n
}
