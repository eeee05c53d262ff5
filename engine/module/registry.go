package module

import (
	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/marble"
)

// Registry owns the live State for every module cell on the board. It is
// reconciled whenever the board's track graph is rebuilt: cells that
// gained a module get a fresh State, cells that lost theirs are dropped.
type Registry struct {
	states map[grid.Cell]State
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[grid.Cell]State)}
}

// Get returns the state for cell, if any.
func (r *Registry) Get(cell grid.Cell) (State, bool) {
	s, ok := r.states[cell]
	return s, ok
}

// Reconcile syncs the registry against the current graph: every module
// node gets a State (created fresh if missing), and states for cells that
// no longer hold a module are removed. Existing states are left untouched
// so mode, upgrade and queue contents survive a reconcile.
func (r *Registry) Reconcile(b *board.Board, g *board.Graph) {
	seen := make(map[grid.Cell]struct{}, len(g.Palette))
	for _, node := range g.Palette {
		p, ok := b.Get(node.Cell)
		if !ok {
			continue
		}
		def, ok := b.Catalog().Lookup(p.Part)
		if !ok || def.Kind != board.KindModule {
			continue
		}
		seen[node.Cell] = struct{}{}
		if _, exists := r.states[node.Cell]; !exists {
			r.states[node.Cell] = NewState(def.Module)
		}
	}
	for cell := range r.states {
		if _, ok := seen[cell]; !ok {
			delete(r.states, cell)
		}
	}
}

// ResetQueues clears every queue-bearing module's pending marbles, called
// by the engine's Reset, and also clears each cannon's Armed flag.
// Collector mode, splitter exit, gate open state and cannon cooldown and
// force are preserved, matching spec.md's reset semantics.
func (r *Registry) ResetQueues() {
	for _, s := range r.states {
		switch st := s.(type) {
		case *CollectorState:
			st.Queue = nil
		case *LiftState:
			st.Queue = nil
			st.StepCursor = 0
		case *CannonState:
			st.Armed = false
		}
	}
}

// RemapIDs rewrites every queued marble id a Collector or Lift holds
// through remap, called once per tick after Phase E's Compact renumbers
// surviving marbles. A queued id absent from remap belonged to a marble
// that died while parked and is dropped from the queue.
func (r *Registry) RemapIDs(remap map[marble.ID]marble.ID) {
	for _, s := range r.states {
		switch st := s.(type) {
		case *CollectorState:
			st.Queue = remapQueue(st.Queue, remap)
		case *LiftState:
			st.Queue = remapQueue(st.Queue, remap)
		}
	}
}

func remapQueue(queue []marble.ID, remap map[marble.ID]marble.ID) []marble.ID {
	out := queue[:0]
	for _, id := range queue {
		if newID, ok := remap[id]; ok {
			out = append(out, newID)
		}
	}
	return out
}

// CellsInOrder returns every module cell currently registered, in
// deterministic cell-lexicographic order, for Phase D iteration.
func (r *Registry) CellsInOrder() []grid.Cell {
	cells := make([]grid.Cell, 0, len(r.states))
	for c := range r.states {
		cells = append(cells, c)
	}
	sortCellsLex(cells)
	return cells
}

// sortCellsLex sorts cells using grid.Cell.Less, insertion sort for the
// same reasons board.sortCellsDeterministic chooses it: small batches,
// stability, no allocation.
func sortCellsLex(cells []grid.Cell) {
	for i := 1; i < len(cells); i++ {
		j := i
		for j > 0 && cells[j].Less(cells[j-1]) {
			cells[j-1], cells[j] = cells[j], cells[j-1]
			j--
		}
	}
}
