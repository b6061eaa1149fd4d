package events

import "sync"

// Buffer is the owned pending-event queue. All mutations happen under one
// lock so concurrent Track calls cannot lose events; Drain is a single
// snapshot-and-clear step so a failed upload can requeue exactly what it
// took.
type Buffer struct {
	mu      sync.Mutex
	pending []Interaction
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends events and returns the resulting size.
func (b *Buffer) Add(evs ...Interaction) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, evs...)
	return len(b.pending)
}

// Requeue prepends a failed snapshot ahead of anything tracked since the
// upload attempt began: oldest events are retried first.
func (b *Buffer) Requeue(evs []Interaction) {
	if len(evs) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	merged := make([]Interaction, 0, len(evs)+len(b.pending))
	merged = append(merged, evs...)
	merged = append(merged, b.pending...)
	b.pending = merged
}

// Drain atomically snapshots and clears the buffer.
func (b *Buffer) Drain() []Interaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	snapshot := b.pending
	b.pending = nil
	return snapshot
}

func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
