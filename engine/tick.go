package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/marble"
	"github.com/marbleforge/trackengine/engine/module"
	"github.com/marbleforge/trackengine/engine/snapshot"
	"github.com/marbleforge/trackengine/engine/spatial"
)

// moveIntent is one marble's Phase B outcome: the cell it should occupy
// once Phase C resolves collisions, or a request to remove it from play.
type moveIntent struct {
	id        marble.ID
	cell      grid.Cell
	terminate bool
}

// phaseDiag accumulates the counted, non-fatal outcomes a single Step
// produces, folded into the published snapshot's Diagnostics at Phase E.
type phaseDiag struct {
	collisions     uint64
	marblesKilled  uint64
	marblesSpawned uint64
	counts         module.Counters
}

// Step runs exactly one tick of the five-phase pipeline (spec.md §4). If
// the engine is already Faulted, Step is a no-op: only Reset or LoadBoard
// clears a fault. A fatal fault encountered mid-tick (a track graph that
// no longer parses) leaves T unadvanced and this tick's work undone.
func (e *Engine) Step() {
	if e.faulted.Load() != nil {
		return
	}

	e.drainPendingEdits()
	if e.board.Dirty() {
		if err := e.graph.Rebuild(e.board); err != nil {
			e.fault(err)
			e.log.Error("tick: track graph rebuild failed, engine faulted", "err", err)
			return
		}
		e.modules.Reconcile(e.board, e.graph)
	}

	var diag phaseDiag

	e.phaseA()
	intents, err := e.phaseB()
	if err != nil {
		e.fault(err)
		e.log.Error("tick: fixed-point overflow during integration, engine faulted", "err", err)
		return
	}
	e.phaseC(intents, &diag)
	e.phaseD(&diag)
	e.phaseE(&diag)

	e.tick++
}

// RunUntil advances the engine by calling Step repeatedly until Tick() ==
// target, bounded by Config.MaxOverrunTicks: if target is more than
// MaxOverrunTicks ahead of the current tick, the excess is dropped (an
// *OverrunError is logged, not returned, since overruns are a telemetry
// concern, not a caller-facing failure) rather than simulated, mirroring
// spec.md §5's catch-up policy for a pacing loop that fell behind.
func (e *Engine) RunUntil(target int64) {
	remaining := target - e.tick
	if remaining <= 0 {
		return
	}
	if remaining > int64(e.conf.MaxOverrunTicks) {
		dropped := remaining - int64(e.conf.MaxOverrunTicks)
		e.log.Warn("tick: overrun, dropping backlog", "err", (&OverrunError{Ticks: int(dropped)}).Error())
		remaining = int64(e.conf.MaxOverrunTicks)
	}
	for i := int64(0); i < remaining; i++ {
		if e.faulted.Load() != nil {
			return
		}
		e.Step()
	}
}

// phaseA drains every interaction due by this tick and applies it to the
// module registry. Entries targeting a cell with no registered module are
// silently dropped, per spec.md's race-is-normal-outcome rule.
func (e *Engine) phaseA() {
	due := e.ring.Drain(e.tick)
	sort.SliceStable(due, func(i, j int) bool { return due[i].Less(due[j]) })
	for _, entry := range due {
		e.modules.ApplyInteraction(entry)
	}
}

// phaseB integrates every live marble's motion one tick forward, fanned
// out across Config.IntegrationWorkers goroutines over disjoint,
// contiguous ranges of the ascending live-id list — grounded on the
// errgroup.WithContext fan-out idiom the example pack uses for bounded
// parallel work. Each worker only ever writes the marble-store rows in
// its own range, so no synchronization is needed there; the spatial
// index is untouched until Phase C.
//
// A fixed-point overflow inside a worker's integration math panics with
// *fixed.OverflowError (engine/fixed); each worker recovers its own panic
// and reports it as an error instead of letting it cross the goroutine
// boundary and crash the process, matching spec.md §7's "faulted, tick
// not applied" contract for every fatal condition, not just graph
// rebuilds.
func (e *Engine) phaseB() ([]moveIntent, error) {
	ids := activeIDs(e.marbles)
	if len(ids) == 0 {
		return nil, nil
	}

	workers := e.conf.IntegrationWorkers
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([][]moveIntent, workers)
	chunk := (len(ids) + workers - 1) / workers

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunk
		end := start + chunk
		if start >= len(ids) {
			continue
		}
		if end > len(ids) {
			end = len(ids)
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					oe, ok := r.(*fixed.OverflowError)
					if !ok {
						panic(r)
					}
					err = oe
				}
			}()
			out := make([]moveIntent, 0, end-start)
			for _, id := range ids[start:end] {
				out = append(out, e.integrateMarble(id))
			}
			results[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	intents := make([]moveIntent, 0, len(ids))
	for _, r := range results {
		intents = append(intents, r...)
	}
	return intents, nil
}

// activeIDs returns every live marble not currently parked in a
// Collector/Lift queue, in ascending order — the set Phase B is allowed
// to move. A parked marble's cell, offset and heading are owned by the
// module holding it until that module's dispatch releases it.
func activeIDs(s *marble.Store) []marble.ID {
	live := s.LiveIDs()
	out := live[:0]
	for _, id := range live {
		if !s.Parked(id) {
			out = append(out, id)
		}
	}
	return out
}

// integrateMarble advances one marble by exactly one tick's worth of
// motion (spec.md §4.7): slope or friction acceleration depending on the
// track node it currently occupies, velocity clamped to the node's speed
// cap (or the configured default), offset accumulation, and cell-crossing
// with heading rotation taken from the destination node's exit sockets. A
// crossing into a cell the track graph does not recognise, whose sockets
// reject the approach direction, or whose module currently refuses entry
// (a closed gate) terminates the marble in place rather than completing
// the crossing.
func (e *Engine) integrateMarble(id marble.ID) moveIntent {
	cell := e.marbles.Cell(id)
	heading := e.marbles.Heading(id)
	v := e.marbles.Velocity(id)

	node, onTrack := e.graph.NodeAt(cell)
	vmax := e.conf.DefaultSpeedCap
	var accel fixed.F
	switch {
	case onTrack && node.IsRamp:
		accel = e.conf.Gravity.Mul(node.RampSin)
	default:
		accel = e.conf.Friction.Neg()
	}
	if onTrack && node.HasSpeedCap {
		vmax = node.SpeedCap
	}

	v = v.Add(accel.Mul(fixed.TickDelta)).Clamp(vmax.Neg(), vmax)
	offset := e.marbles.Offset(id).Add(v.Mul(fixed.TickDelta))

	terminate := false
	for offset >= fixed.One {
		dest := cell.Add(heading)
		destNode, ok := e.graph.NodeAt(dest)
		if !ok || !neighbourAccepts(destNode, heading.Opposite()) || !e.modules.IsOpenForEntry(dest) {
			terminate = true
			offset = fixed.One - fixed.FromRat(1, 1<<16)
			break
		}
		cell = dest
		offset = offset.Sub(fixed.One)
		if len(destNode.Exit) > 0 {
			heading = destNode.Exit[0]
		}
	}
	for !terminate && offset <= -fixed.One {
		back := heading.Opposite()
		dest := cell.Add(back)
		destNode, ok := e.graph.NodeAt(dest)
		if !ok || !neighbourAccepts(destNode, heading) || !e.modules.IsOpenForEntry(dest) {
			terminate = true
			offset = -(fixed.One - fixed.FromRat(1, 1<<16))
			break
		}
		cell = dest
		offset = offset.Add(fixed.One)
		heading = back
	}

	e.marbles.SetVelocity(id, v)
	e.marbles.SetOffset(id, offset)
	e.marbles.SetHeading(id, heading)

	return moveIntent{id: id, cell: cell, terminate: terminate}
}

func neighbourAccepts(node *board.Node, fromDir grid.Direction) bool {
	if node == nil {
		return false
	}
	for _, d := range node.Entry {
		if d == fromDir {
			return true
		}
	}
	return false
}

// phaseC resolves Phase B's claimed destinations against the spatial
// index (spec.md §4.7 step 5 / §4.8's collision rules): a cell already
// marked debris kills its claimant; a cell claimed by exactly one marble
// installs it; a cell claimed by more than one kills every claimant and
// the cell itself becomes debris. Marbles resolving onto a collector or
// lift cell are hired into that module's queue and removed from the
// index, parked until Phase D releases them back onto the track.
func (e *Engine) phaseC(intents []moveIntent, diag *phaseDiag) {
	live := make([]moveIntent, 0, len(intents))
	for _, mv := range intents {
		e.index.EvictMarble(uint32(mv.id))
		if mv.terminate {
			e.marbles.Kill(mv.id)
			diag.marblesKilled++
			continue
		}
		live = append(live, mv)
	}

	byCell := make(map[grid.Cell][]marble.ID, len(live))
	for _, mv := range live {
		byCell[mv.cell] = append(byCell[mv.cell], mv.id)
	}

	cells := make([]grid.Cell, 0, len(byCell))
	for c := range byCell {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

	for _, cell := range cells {
		claimants := byCell[cell]

		if _, isDebris := e.debris[cell]; isDebris {
			for _, id := range claimants {
				e.marbles.Kill(id)
			}
			diag.marblesKilled += uint64(len(claimants))
			diag.collisions++
			continue
		}

		if len(claimants) > 1 {
			for _, id := range claimants {
				e.marbles.Kill(id)
			}
			diag.marblesKilled += uint64(len(claimants))
			diag.collisions++
			e.markDebris(cell)
			continue
		}

		id := claimants[0]
		e.marbles.SetCell(id, cell)
		e.index.Insert(cell, spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(id)})
		e.hireIntoModule(cell, id)
	}
	e.index.EndPhase()
}

// hireIntoModule parks an arriving marble into a collector or lift's
// queue and evicts it from the spatial index, matching the design
// boundary that Phase D handlers only ever mutate marble-store rows and
// module state, never the index directly.
func (e *Engine) hireIntoModule(cell grid.Cell, id marble.ID) {
	state, ok := e.modules.Get(cell)
	if !ok {
		return
	}
	switch s := state.(type) {
	case *module.CollectorState:
		s.Enqueue(id)
		e.marbles.SetParked(id, true)
		e.index.EvictMarble(uint32(id))
	case *module.LiftState:
		s.Enqueue(id)
		e.marbles.SetParked(id, true)
		e.index.EvictMarble(uint32(id))
	}
}

func (e *Engine) markDebris(cell grid.Cell) {
	if _, exists := e.debris[cell]; exists {
		return
	}
	e.debris[cell] = struct{}{}
	e.index.Insert(cell, spatial.Occupant{Kind: spatial.Debris})
	e.pendingDebris = append(e.pendingDebris, cell)
}

// phaseD runs every module's per-tick update via module.Dispatch, then
// folds the resulting counters into this tick's diagnostics.
func (e *Engine) phaseD(diag *phaseDiag) {
	ctx := &module.Context{
		Graph:   e.graph,
		Marbles: e.marbles,
		Index:   e.index,
		Counts:  &diag.counts,
	}
	module.Dispatch(ctx, e.modules)
}

// phaseE compacts the marble store, remaps every held weak reference
// (the module registry's collector/lift queues) against the resulting
// id map, rebuilds the spatial index from the final resting positions,
// and publishes the tick's snapshot.
func (e *Engine) phaseE(diag *phaseDiag) {
	remap := e.marbles.Compact()
	e.modules.RemapIDs(remap)

	occupants := make(map[grid.Cell]spatial.Occupant, e.marbles.LiveCount()+len(e.debris))
	for cell := range e.debris {
		occupants[cell] = spatial.Occupant{Kind: spatial.Debris}
	}
	for _, id := range e.marbles.LiveIDs() {
		if e.marbles.Parked(id) {
			continue
		}
		occupants[e.marbles.Cell(id)] = spatial.Occupant{Kind: spatial.Marble, MarbleID: uint32(id)}
	}
	e.index.Reconcile(occupants)

	e.publisher.Publish(e.buildSnapshot(diag))
}

// buildSnapshot assembles the renderer-facing view of the engine's state
// at the end of the current tick.
func (e *Engine) buildSnapshot(diag *phaseDiag) *snapshot.Snapshot {
	ids := e.marbles.LiveIDs()
	marbles := make([]snapshot.MarbleView, len(ids))
	for i, id := range ids {
		marbles[i] = snapshot.MarbleView{
			Cell:    e.marbles.Cell(id),
			Offset:  e.marbles.Offset(id),
			Heading: e.marbles.Heading(id),
		}
	}

	cells := e.modules.CellsInOrder()
	modules := make([]snapshot.ModuleView, 0, len(cells))
	for _, cell := range cells {
		state, ok := e.modules.Get(cell)
		if !ok {
			continue
		}
		modules = append(modules, viewOf(cell, state))
	}

	debrisAdded := e.pendingDebris
	e.pendingDebris = nil

	d := snapshot.Diagnostics{
		InteractionsDropped: e.ring.Dropped(),
	}
	if diag != nil {
		d.Collisions = diag.collisions
		d.MarblesKilled = diag.marblesKilled
		d.MarblesSpawned = diag.marblesSpawned
		d.SplitterRoutes = diag.counts.SplitterRoutes
		d.CollectorReleases = diag.counts.CollectorReleases
		d.LiftAdvances = diag.counts.LiftAdvances
		d.CannonFires = diag.counts.CannonFires
		d.GateRejections = diag.counts.GateRejections
	}

	return &snapshot.Snapshot{
		Tick:        e.tick,
		Marbles:     marbles,
		Modules:     modules,
		DebrisAdded: debrisAdded,
		Diagnostics: d,
	}
}

func viewOf(cell grid.Cell, state module.State) snapshot.ModuleView {
	v := snapshot.ModuleView{Cell: cell}
	switch s := state.(type) {
	case *module.SplitterState:
		v.Kind = snapshot.ModuleSplitter
		v.Bool1 = s.CurrentExit == module.ExitB
	case *module.CollectorState:
		v.Kind = snapshot.ModuleCollector
		v.U16 = uint16(len(s.Queue))
	case *module.LiftState:
		v.Kind = snapshot.ModuleLift
		v.Bool1 = s.Running
		v.U16 = uint16(len(s.Queue))
	case *module.CannonState:
		v.Kind = snapshot.ModuleCannon
		v.U16 = s.CooldownTicksRemaining
	case *module.GateState:
		v.Kind = snapshot.ModuleGate
		v.Bool1 = s.Open
	}
	return v
}
