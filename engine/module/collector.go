package module

import (
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/marble"
)

// Enqueue parks a marble inside a collector's internal queue. Called by
// the tick pipeline when Phase C resolves a marble's arrival at a
// collector cell: the marble stops being track-resident and waits for
// Phase D to release it according to the collector's Mode.
func (s *CollectorState) Enqueue(id marble.ID) {
	s.Queue = append(s.Queue, id)
}

// dispatchCollector drains s's queue according to Mode:
//   - Basic releases every queued marble this tick.
//   - FIFO releases at most one.
//   - Burst releases up to BurstSize.
//
// Released marbles are repositioned to the collector's natural exit
// heading with zero offset; Phase E's spatial-index reconciliation picks
// up their new residency, matching the deferred-index-update discipline
// every Phase D handler follows.
func dispatchCollector(ctx *Context, cell grid.Cell, s *CollectorState) {
	if len(s.Queue) == 0 {
		return
	}
	n := releaseCount(s)
	if n > len(s.Queue) {
		n = len(s.Queue)
	}
	if n == 0 {
		return
	}

	node, hasNode := ctx.Graph.NodeAt(cell)
	var heading grid.Direction
	if hasNode && len(node.Exit) > 0 {
		heading = node.Exit[0]
	}

	for i := 0; i < n; i++ {
		id := s.Queue[i]
		ctx.Marbles.SetCell(id, cell)
		ctx.Marbles.SetOffset(id, fixed.Zero)
		ctx.Marbles.SetHeading(id, heading)
		ctx.Marbles.SetParked(id, false)
		ctx.Counts.CollectorReleases++
	}
	s.Queue = s.Queue[n:]
}

func releaseCount(s *CollectorState) int {
	switch s.Mode {
	case CollectorBasic:
		return len(s.Queue)
	case CollectorFIFO:
		return 1
	case CollectorBurst:
		if s.BurstSize == 0 {
			return 1
		}
		return int(s.BurstSize)
	default:
		return 0
	}
}
