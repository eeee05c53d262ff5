package module

import (
	"testing"

	"github.com/google/uuid"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/interaction"
	"github.com/marbleforge/trackengine/engine/marble"
	"github.com/marbleforge/trackengine/engine/spatial"
)

func newTestContext(cat *board.Catalog, origin grid.Cell, partID board.PartID, rot grid.Rotation) (*board.Board, *board.Graph, *Registry, *Context) {
	b := board.New(cat)
	if err := b.Place(partID, origin, rot, 0); err != nil {
		panic(err)
	}
	g := board.NewGraph()
	if err := g.Rebuild(b); err != nil {
		panic(err)
	}
	reg := NewRegistry()
	reg.Reconcile(b, g)

	store := marble.New()
	idx := spatial.New(8)
	ctx := &Context{Graph: g, Marbles: store, Index: idx, Counts: &Counters{}}
	return b, g, reg, ctx
}

func splitterCatalog() (*board.Catalog, board.PartID) {
	id := uuid.New()
	cat := board.NewCatalog([]board.PartDef{
		{
			ID:     id,
			Name:   "splitter",
			Kind:   board.KindModule,
			Module: board.ModuleSplitter,
			Sockets: board.SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX, grid.PosZ},
			},
		},
	})
	return cat, id
}

func TestSplitterRoundRobin(t *testing.T) {
	cat, id := splitterCatalog()
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)

	var exits []grid.Direction
	for i := 0; i < 3; i++ {
		m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.FromInt(1))
		ctx.Index.Insert(grid.C(0, 0, 0), spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(m)})

		Dispatch(ctx, reg)

		exits = append(exits, ctx.Marbles.Heading(m))
		ctx.Index.EvictMarble(uint32(m))
	}

	want := []grid.Direction{grid.PosX, grid.PosZ, grid.PosX}
	for i := range want {
		if exits[i] != want[i] {
			t.Fatalf("release %d exit = %v, want %v (all exits: %v)", i, exits[i], want[i], exits)
		}
	}
}

func TestSplitterToggleInteraction(t *testing.T) {
	cat, id := splitterCatalog()
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)

	state, _ := reg.Get(grid.C(0, 0, 0))
	splitter := state.(*SplitterState)
	reg.ApplyInteraction(interaction.Entry{Cell: grid.C(0, 0, 0), Action: interaction.ActionToggle})
	if !splitter.PendingToggle {
		t.Fatal("expected PendingToggle to be set")
	}

	m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.FromInt(1))
	ctx.Index.Insert(grid.C(0, 0, 0), spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(m)})
	Dispatch(ctx, reg)

	if got := ctx.Marbles.Heading(m); got != grid.PosZ {
		t.Fatalf("toggled release exit = %v, want PosZ", got)
	}
	if splitter.PendingToggle {
		t.Fatal("PendingToggle should clear after being consumed")
	}

	ctx.Index.EvictMarble(uint32(m))
	m2 := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.FromInt(1))
	ctx.Index.Insert(grid.C(0, 0, 0), spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(m2)})
	Dispatch(ctx, reg)
	if got := ctx.Marbles.Heading(m2); got != grid.PosX {
		t.Fatalf("resumed round robin exit = %v, want PosX", got)
	}
}

func collectorCatalog(mode CollectorMode) (*board.Catalog, board.PartID) {
	id := uuid.New()
	cat := board.NewCatalog([]board.PartDef{
		{
			ID:     id,
			Name:   "collector",
			Kind:   board.KindModule,
			Module: board.ModuleCollector,
			Sockets: board.SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
	})
	return cat, id
}

func TestCollectorBasicReleasesAll(t *testing.T) {
	cat, id := collectorCatalog(CollectorBasic)
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	c := state.(*CollectorState)

	var ids []marble.ID
	for i := 0; i < 5; i++ {
		m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.Zero)
		ids = append(ids, m)
		c.Enqueue(m)
	}

	Dispatch(ctx, reg)

	if len(c.Queue) != 0 {
		t.Fatalf("expected queue drained, got %d remaining", len(c.Queue))
	}
	if ctx.Counts.CollectorReleases != 5 {
		t.Fatalf("CollectorReleases = %d, want 5", ctx.Counts.CollectorReleases)
	}
}

func TestCollectorFIFOReleasesOnePerTick(t *testing.T) {
	cat, id := collectorCatalog(CollectorFIFO)
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	c := state.(*CollectorState)
	c.Mode = CollectorFIFO

	for i := 0; i < 5; i++ {
		m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.Zero)
		c.Enqueue(m)
	}

	for tick := 0; tick < 5; tick++ {
		Dispatch(ctx, reg)
		if len(c.Queue) != 4-tick {
			t.Fatalf("tick %d: queue len = %d, want %d", tick, len(c.Queue), 4-tick)
		}
	}
	if ctx.Counts.CollectorReleases != 5 {
		t.Fatalf("CollectorReleases = %d, want 5", ctx.Counts.CollectorReleases)
	}
}

func TestCollectorBurstReleasesUpToK(t *testing.T) {
	cat, id := collectorCatalog(CollectorBurst)
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	c := state.(*CollectorState)
	c.Mode = CollectorBurst
	c.BurstSize = 2

	for i := 0; i < 5; i++ {
		m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.Zero)
		c.Enqueue(m)
	}

	wantRemaining := []int{3, 1, 0}
	for i, want := range wantRemaining {
		Dispatch(ctx, reg)
		if len(c.Queue) != want {
			t.Fatalf("tick %d: queue len = %d, want %d", i, len(c.Queue), want)
		}
	}
}

func TestCollectorModeUpgradePreservesQueueOrder(t *testing.T) {
	cat, id := collectorCatalog(CollectorBasic)
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	c := state.(*CollectorState)

	var ids []marble.ID
	for i := 0; i < 3; i++ {
		m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.NegX, fixed.Zero)
		ids = append(ids, m)
		c.Enqueue(m)
	}

	c.Mode = CollectorFIFO // upgrade mid-queue

	for i, want := range ids {
		if c.Queue[0] != want {
			t.Fatalf("queue order disturbed by upgrade at position %d", i)
		}
		Dispatch(ctx, reg)
	}
}
