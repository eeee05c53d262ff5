package module

import "github.com/marbleforge/trackengine/engine/grid"

// dispatchGate has no per-tick time evolution of its own — Open/Closed
// only changes via ApplyInteraction in Phase A. Phase D still visits it so
// a closed gate's rejection of a resident marble (one that entered the
// instant before a Close interaction landed) is counted rather than left
// as an invisible stall.
func dispatchGate(ctx *Context, cell grid.Cell, s *GateState) {
	if s.Open {
		return
	}
	if _, ok := residentMarble(ctx, cell); ok {
		ctx.Counts.GateRejections++
	}
}
