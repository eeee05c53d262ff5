package module

import (
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/marble"
	"github.com/marbleforge/trackengine/engine/spatial"
)

// Enqueue parks a marble that has arrived at the lift's base, awaiting its
// turn to be carried upward.
func (s *LiftState) Enqueue(id marble.ID) {
	s.Queue = append(s.Queue, id)
}

// dispatchLift advances the queue's front marble one cell along the
// lift's axis per tick while Running, provided the destination cell is
// free; otherwise the lift stalls for this tick and queue order is
// preserved untouched (spec.md §4.7).
func dispatchLift(ctx *Context, cell grid.Cell, s *LiftState) {
	if !s.Running || len(s.Queue) == 0 {
		return
	}

	node, ok := ctx.Graph.NodeAt(cell)
	if !ok || len(node.Exit) == 0 {
		return
	}
	axis := node.Exit[0]
	dest := cell.Add(axis)

	if occ, occupied := ctx.Index.Get(dest); occupied && occ.Kind != spatial.Module {
		return // stalled: destination occupied, queue order untouched.
	}

	id := s.Queue[0]
	ctx.Marbles.SetCell(id, dest)
	ctx.Marbles.SetOffset(id, fixed.Zero)
	ctx.Marbles.SetHeading(id, axis)
	ctx.Marbles.SetParked(id, false)
	s.Queue = s.Queue[1:]
	s.StepCursor++
	ctx.Counts.LiftAdvances++
}
