package module

import (
	"testing"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/grid"
)

func TestRegistryReconcileAddsAndRemovesStates(t *testing.T) {
	cat, id := splitterCatalog()
	b := board.New(cat)
	if err := b.Place(id, grid.C(0, 0, 0), grid.Rot0, 0); err != nil {
		t.Fatalf("place: %v", err)
	}
	g := board.NewGraph()
	if err := g.Rebuild(b); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	reg := NewRegistry()
	reg.Reconcile(b, g)

	if _, ok := reg.Get(grid.C(0, 0, 0)); !ok {
		t.Fatal("expected a state to be created for the placed splitter")
	}

	if err := b.Remove(grid.C(0, 0, 0)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := g.Rebuild(b); err != nil {
		t.Fatalf("rebuild after remove: %v", err)
	}
	reg.Reconcile(b, g)
	if _, ok := reg.Get(grid.C(0, 0, 0)); ok {
		t.Fatal("expected state to be removed once its cell is cleared")
	}
}

func TestRegistryReconcilePreservesExistingState(t *testing.T) {
	cat, id := collectorCatalog(CollectorBasic)
	b := board.New(cat)
	_ = b.Place(id, grid.C(0, 0, 0), grid.Rot0, 0)
	g := board.NewGraph()
	_ = g.Rebuild(b)
	reg := NewRegistry()
	reg.Reconcile(b, g)

	state, _ := reg.Get(grid.C(0, 0, 0))
	c := state.(*CollectorState)
	c.Mode = CollectorFIFO

	// Reconciling again (e.g. after an unrelated placement elsewhere) must
	// not reset the collector's mode.
	reg.Reconcile(b, g)
	state2, _ := reg.Get(grid.C(0, 0, 0))
	if state2.(*CollectorState).Mode != CollectorFIFO {
		t.Fatal("reconcile must preserve existing module state")
	}
}

func TestResetQueuesClearsQueuesPreservesLatchState(t *testing.T) {
	cat, id := collectorCatalog(CollectorFIFO)
	b := board.New(cat)
	_ = b.Place(id, grid.C(0, 0, 0), grid.Rot0, 0)
	g := board.NewGraph()
	_ = g.Rebuild(b)
	reg := NewRegistry()
	reg.Reconcile(b, g)

	state, _ := reg.Get(grid.C(0, 0, 0))
	c := state.(*CollectorState)
	c.Mode = CollectorFIFO
	c.Queue = append(c.Queue, 1, 2, 3)

	reg.ResetQueues()
	if len(c.Queue) != 0 {
		t.Fatal("ResetQueues must clear the collector's queue")
	}
	if c.Mode != CollectorFIFO {
		t.Fatal("ResetQueues must preserve mode")
	}
}
