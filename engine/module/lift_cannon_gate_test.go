package module

import (
	"testing"

	"github.com/google/uuid"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/interaction"
	"github.com/marbleforge/trackengine/engine/spatial"
)

func liftCatalog() (*board.Catalog, board.PartID) {
	id := uuid.New()
	cat := board.NewCatalog([]board.PartDef{
		{
			ID:     id,
			Name:   "lift",
			Kind:   board.KindModule,
			Module: board.ModuleLift,
			Sockets: board.SocketTemplate{
				Entry: []grid.Direction{grid.NegY},
				Exit:  []grid.Direction{grid.PosY},
			},
		},
	})
	return cat, id
}

func TestLiftStallsWhenBlockedAndAdvancesWhenClear(t *testing.T) {
	cat, id := liftCatalog()
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	lift := state.(*LiftState)
	lift.Running = true

	m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.PosY, fixed.Zero)
	lift.Enqueue(m)

	// Block the destination cell.
	ctx.Index.Insert(grid.C(0, 1, 0), spatial.Occupant{Kind: spatial.Debris})
	Dispatch(ctx, reg)
	if len(lift.Queue) != 1 {
		t.Fatal("lift should stall while destination is occupied")
	}

	ctx.Index.Evict(grid.C(0, 1, 0))
	Dispatch(ctx, reg)
	if len(lift.Queue) != 0 {
		t.Fatal("lift should advance once destination clears")
	}
	if got := ctx.Marbles.Cell(m); got != grid.C(0, 1, 0) {
		t.Fatalf("marble cell after lift advance = %v, want (0,1,0)", got)
	}
}

func cannonCatalog() (*board.Catalog, board.PartID) {
	id := uuid.New()
	cat := board.NewCatalog([]board.PartDef{
		{
			ID:     id,
			Name:   "cannon",
			Kind:   board.KindModule,
			Module: board.ModuleCannon,
			Sockets: board.SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
	})
	return cat, id
}

func TestCannonFiresOnceThenCoolsDown(t *testing.T) {
	cat, id := cannonCatalog()
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	cannon := state.(*CannonState)
	cannon.Force = fixed.FromInt(3)
	cannon.Armed = true

	m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.PosX, fixed.FromInt(1))
	ctx.Index.Insert(grid.C(0, 0, 0), spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(m)})

	Dispatch(ctx, reg)
	if got := ctx.Marbles.Velocity(m); got != fixed.FromInt(4) {
		t.Fatalf("velocity after first fire = %v, want 4", got)
	}
	if ctx.Counts.CannonFires != 1 {
		t.Fatalf("CannonFires = %d, want 1", ctx.Counts.CannonFires)
	}

	// Still resident, cooldown now nonzero: a second dispatch must not
	// re-impart force (Open Question b).
	Dispatch(ctx, reg)
	if got := ctx.Marbles.Velocity(m); got != fixed.FromInt(4) {
		t.Fatalf("velocity after second dispatch = %v, want unchanged 4", got)
	}
	if ctx.Counts.CannonFires != 1 {
		t.Fatalf("CannonFires after cooldown tick = %d, want still 1", ctx.Counts.CannonFires)
	}
}

func gateCatalog() (*board.Catalog, board.PartID) {
	id := uuid.New()
	cat := board.NewCatalog([]board.PartDef{
		{
			ID:     id,
			Name:   "gate",
			Kind:   board.KindModule,
			Module: board.ModuleGate,
			Sockets: board.SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
	})
	return cat, id
}

func TestGateOpenCloseViaInteraction(t *testing.T) {
	cat, id := gateCatalog()
	_, _, reg, _ := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)

	if !reg.IsOpenForEntry(grid.C(0, 0, 0)) {
		t.Fatal("gate should start open")
	}
	reg.ApplyInteraction(interaction.Entry{Cell: grid.C(0, 0, 0), Action: interaction.ActionClose})
	if reg.IsOpenForEntry(grid.C(0, 0, 0)) {
		t.Fatal("gate should be closed after ActionClose")
	}
	reg.ApplyInteraction(interaction.Entry{Cell: grid.C(0, 0, 0), Action: interaction.ActionOpen})
	if !reg.IsOpenForEntry(grid.C(0, 0, 0)) {
		t.Fatal("gate should reopen after ActionOpen")
	}
}

func TestGateRejectsResidentMarbleWhileClosed(t *testing.T) {
	cat, id := gateCatalog()
	_, _, reg, ctx := newTestContext(cat, grid.C(0, 0, 0), id, grid.Rot0)
	state, _ := reg.Get(grid.C(0, 0, 0))
	gate := state.(*GateState)
	gate.Open = false

	m := ctx.Marbles.Spawn(grid.C(0, 0, 0), grid.PosX, fixed.Zero)
	ctx.Index.Insert(grid.C(0, 0, 0), spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(m)})
	Dispatch(ctx, reg)

	if ctx.Counts.GateRejections != 1 {
		t.Fatalf("GateRejections = %d, want 1", ctx.Counts.GateRejections)
	}
}
