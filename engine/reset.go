package engine

import "github.com/marbleforge/trackengine/engine/marble"

// Reset clears all marbles, debris and module queues between ticks.
// Module mode/upgrade state and board placements are preserved. Per
// spec.md's Open Question (c), all interactions still pending in the ring
// are discarded rather than replayed after the reset.
func (e *Engine) Reset() {
	e.marbles = marble.New()
	e.index.Reconcile(nil)
	for cell := range e.debris {
		delete(e.debris, cell)
	}
	e.modules.ResetQueues()
	e.ring.Clear()
	e.faulted.Store(nil)
	e.publisher.Publish(e.buildSnapshot(nil))
}
