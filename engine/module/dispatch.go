package module

import (
	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/marble"
	"github.com/marbleforge/trackengine/engine/spatial"
)

// Counters accumulates Phase D outcomes for the snapshot's diagnostics
// block. Every field is a plain count; nothing here ever aborts a tick.
type Counters struct {
	SplitterRoutes   uint64
	CollectorReleases uint64
	LiftAdvances     uint64
	CannonFires      uint64
	GateRejections   uint64
}

// Context bundles the dependencies Phase D's handlers need: the track
// graph for socket/geometry lookups, the marble store for resident and
// spawned marbles, and the spatial index for residency checks. Handlers
// never touch the board directly — placements are immutable once the
// graph has been built for this tick.
type Context struct {
	Graph   *board.Graph
	Marbles *marble.Store
	Index   *spatial.Index
	Counts  *Counters
}

// Dispatch runs Phase D: every registered module, visited in cell
// lexicographic order, is updated according to its concrete State type.
// This switch is the sum type's single dispatch point — extending the
// module set only ever means adding a case here and a constructor in
// NewState.
func Dispatch(ctx *Context, r *Registry) {
	for _, cell := range r.CellsInOrder() {
		state, ok := r.Get(cell)
		if !ok {
			continue
		}
		switch s := state.(type) {
		case *SplitterState:
			dispatchSplitter(ctx, cell, s)
		case *CollectorState:
			dispatchCollector(ctx, cell, s)
		case *LiftState:
			dispatchLift(ctx, cell, s)
		case *CannonState:
			dispatchCannon(ctx, cell, s)
		case *GateState:
			dispatchGate(ctx, cell, s)
		}
	}
}

// residentMarble returns the id of the live marble occupying cell, if any.
func residentMarble(ctx *Context, cell grid.Cell) (marble.ID, bool) {
	occ, ok := ctx.Index.Get(cell)
	if !ok || occ.Kind != spatial.Marble {
		return 0, false
	}
	return marble.ID(occ.MarbleID), true
}
