// Package interaction implements the bounded single-producer,
// single-consumer interaction ring (C6): player click-actions tagged with
// the tick they should apply at.
package interaction

import (
	"sync/atomic"

	"github.com/marbleforge/trackengine/engine/grid"
)

// ActionCode identifies what a player interaction does to the module at
// its target cell (toggle a splitter, start/stop a lift, arm a cannon,
// open/close a gate...). The meaning is module-specific; the ring itself
// is agnostic to it.
type ActionCode uint8

const (
	ActionNone ActionCode = iota
	ActionToggle
	ActionStart
	ActionStop
	ActionArm
	ActionOpen
	ActionClose
)

// Entry is a single queued interaction.
type Entry struct {
	Cell        grid.Cell
	Action      ActionCode
	ApplyAtTick int64
}

// Less implements the ordering contract: entries are applied in enqueue
// order; ties (same ApplyAtTick reached together) break by cell
// lexicographic order then action code. Ring.Drain already returns
// entries in enqueue order, so Less is used only to break ties among
// entries that became due on the very same Drain call.
func (e Entry) Less(o Entry) bool {
	if e.Cell != o.Cell {
		return e.Cell.Less(o.Cell)
	}
	return e.Action < o.Action
}

// Ring is a bounded lock-free ring buffer. Exactly one goroutine may call
// Enqueue (the editor thread) and exactly one may call Drain (the tick
// pipeline's Phase A), matching spec.md's SPSC contract.
type Ring struct {
	buf      []Entry
	capacity uint64
	// head is the next write position (producer-owned); tail is the next
	// read position (consumer-owned). Both only ever increase.
	head atomic.Uint64
	tail atomic.Uint64

	dropped atomic.Uint64
}

// New creates a Ring with room for capacity entries.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{buf: make([]Entry, capacity), capacity: uint64(capacity)}
}

// Enqueue appends an entry. If the ring is full, the oldest entry is
// dropped to make room (overflow policy: drop oldest, count it) and
// Enqueue still succeeds in installing the new entry.
func (r *Ring) Enqueue(e Entry) {
	h := r.head.Load()
	t := r.tail.Load()
	if h-t >= r.capacity {
		// Ring full: drop the oldest entry by advancing tail. The
		// consumer side (Phase A) only ever reads entries still between
		// tail and head, so this is safe without a lock: the producer is
		// the only writer of tail in the overflow path, and Drain never
		// rewinds tail below what it has already consumed because it
		// always reads the up-to-date value.
		r.tail.Store(t + 1)
		r.dropped.Add(1)
	}
	r.buf[h%r.capacity] = e
	r.head.Store(h + 1)
}

// Dropped returns the cumulative number of entries dropped due to
// overflow. Observable only via telemetry, as spec.md requires.
func (r *Ring) Dropped() uint64 { return r.dropped.Load() }

// Drain removes and returns every queued entry with ApplyAtTick <= tick,
// in enqueue order, leaving entries scheduled for a later tick in the
// ring.
func (r *Ring) Drain(tick int64) []Entry {
	h := r.head.Load()
	t := r.tail.Load()
	var due []Entry
	var keep []Entry
	for i := t; i < h; i++ {
		e := r.buf[i%r.capacity]
		if e.ApplyAtTick <= tick {
			due = append(due, e)
		} else {
			keep = append(keep, e)
		}
	}
	// Re-pack not-yet-due entries back into the ring starting at the
	// current tail so capacity isn't wasted on gaps. tail stays at t: the
	// repacked entries are still pending and live there now. Safe against
	// a concurrent Enqueue because the repacked window [t, h) only ever
	// holds entries this Drain call already read; Drain is the ring's
	// sole consumer and is only ever invoked from Phase A of one tick at
	// a time, so there is exactly one writer of head here and Enqueue's
	// writes to head never race it.
	for i, e := range keep {
		r.buf[(t+uint64(i))%r.capacity] = e
	}
	r.head.Store(t + uint64(len(keep)))
	return due
}

// Clear discards every queued entry without applying it. Used by Reset,
// which per spec.md's Open Question (c) discards all pending
// interactions rather than preserving them across a reset.
func (r *Ring) Clear() {
	t := r.tail.Load()
	h := r.head.Load()
	r.tail.Store(t + (h - t))
}

// Len returns the number of currently queued entries.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}
