package module

import (
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
)

// dispatchSplitter implements spec.md §4.7's splitter rule: a marble
// resident on the splitter's input cell is routed to CurrentExit, then
// CurrentExit alternates round-robin, unless a pending interaction
// override from Phase A flips it for exactly this release.
func dispatchSplitter(ctx *Context, cell grid.Cell, s *SplitterState) {
	id, ok := residentMarble(ctx, cell)
	if !ok {
		// An armed toggle with no marble to apply to still takes effect on
		// the state so the next arrival sees it, matching the "toggle
		// flips current-exit" rule independent of arrivals.
		if s.PendingToggle {
			s.CurrentExit = s.CurrentExit.other()
			s.PendingToggle = false
		}
		return
	}

	exit := s.CurrentExit
	if s.PendingToggle {
		exit = exit.other()
	}

	node, ok := ctx.Graph.NodeAt(cell)
	if ok {
		dir := exitDirection(node.Exit, exit)
		ctx.Marbles.SetHeading(id, dir)
		ctx.Marbles.SetOffset(id, fixed.Zero)
	}
	ctx.Counts.SplitterRoutes++

	// Round-robin advances from the exit actually used, so after a
	// toggled release the sequence resumes from the toggled state
	// (spec.md scenario 5).
	s.CurrentExit = exit.other()
	s.PendingToggle = false
}

// exitDirection maps a logical splitter exit (A/B) onto the resolved
// rotated direction the track graph recorded for the cell. Splitters are
// defined with exactly two exit sockets in their catalog entry; A is the
// first declared, B the second.
func exitDirection(exits []grid.Direction, exit SplitterExit) grid.Direction {
	if len(exits) == 0 {
		return grid.PosX
	}
	idx := 0
	if exit == ExitB && len(exits) > 1 {
		idx = 1
	}
	return exits[idx]
}
