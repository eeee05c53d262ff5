// Package engine implements the deterministic marble-track tick engine:
// the board model, track graph, marble store, spatial index, interaction
// ring, module state machines and the five-phase tick pipeline that ties
// them together, plus the read-only snapshot publisher the renderer
// consumes. See SPEC_FULL.md for the full component breakdown.
package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/interaction"
	"github.com/marbleforge/trackengine/engine/marble"
	"github.com/marbleforge/trackengine/engine/module"
	"github.com/marbleforge/trackengine/engine/snapshot"
	"github.com/marbleforge/trackengine/engine/spatial"
)

// editFunc is a staged structural edit, applied to the board between
// ticks. Place/Remove/Upgrade already validate atomically, so a failed
// edit never leaves the board half-changed; drainPendingEdits just logs
// failures rather than aborting the batch.
type editFunc func(*board.Board) error

// Engine is the deterministic tick engine (spec.md's core). Exactly one
// goroutine may call Step/RunUntil at a time; StagePlacement,
// StageRemoval, StageUpgrade and EnqueueInteraction are safe to call
// concurrently with that goroutine, matching spec.md §5's "editor on a
// separate thread, staged list, applied between ticks" model.
type Engine struct {
	conf Config
	log  *slog.Logger

	editMu       sync.Mutex
	pendingEdits []editFunc

	catalog *board.Catalog
	board   *board.Board
	graph   *board.Graph
	marbles *marble.Store
	index   *spatial.Index
	ring    *interaction.Ring
	modules *module.Registry

	debris map[grid.Cell]struct{}
	// pendingDebris lists cells that became debris since the last
	// published snapshot, drained into Snapshot.DebrisAdded at Phase E.
	pendingDebris []grid.Cell

	publisher *snapshot.Publisher

	tick    int64
	faulted atomic.Pointer[FaultedError]
	// tps holds the most recent rolling-average tick rate sampled by Run,
	// as math.Float64bits, 0 before the first full sampling window.
	tps atomic.Uint64
}

func newEngine(conf Config) *Engine {
	e := &Engine{
		conf:      conf,
		log:       conf.Logger,
		catalog:   conf.Catalog,
		board:     board.New(conf.Catalog),
		graph:     board.NewGraph(),
		marbles:   marble.New(),
		index:     spatial.New(1024),
		ring:      interaction.New(conf.RingCapacity),
		modules:   module.NewRegistry(),
		debris:    make(map[grid.Cell]struct{}),
		publisher: snapshot.NewPublisher(),
	}
	return e
}

// Tick returns the current tick counter T.
func (e *Engine) Tick() int64 { return e.tick }

// Faulted returns the engine's fatal fault, if any. Only Reset or
// LoadBoard clears it.
func (e *Engine) Faulted() *FaultedError { return e.faulted.Load() }

func (e *Engine) fault(cause error) *FaultedError {
	f := &FaultedError{Cause: cause}
	e.faulted.Store(f)
	return f
}

// Snapshot returns the most recently published snapshot, or nil if no
// tick has run yet.
func (e *Engine) Snapshot() *snapshot.Snapshot { return e.publisher.Current() }

// StagePlacement stages a Place edit for application before the next
// tick. Returns immediately; the actual accept/reject outcome is only
// observable through the board state after the next Step call drains it
// (a caller that needs synchronous feedback should call Step with no
// interactions in between, or inspect Board via a test harness).
func (e *Engine) StagePlacement(part board.PartID, cell grid.Cell, rot grid.Rotation, upgrade uint8) {
	e.stage(func(b *board.Board) error {
		return b.Place(part, cell, rot, upgrade)
	})
}

// StageRemoval stages a Remove edit.
func (e *Engine) StageRemoval(cell grid.Cell) {
	e.stage(func(b *board.Board) error {
		return b.Remove(cell)
	})
}

// StageUpgrade stages an Upgrade edit.
func (e *Engine) StageUpgrade(cell grid.Cell, level uint8) {
	e.stage(func(b *board.Board) error {
		return b.Upgrade(cell, level)
	})
}

func (e *Engine) stage(f editFunc) {
	e.editMu.Lock()
	e.pendingEdits = append(e.pendingEdits, f)
	e.editMu.Unlock()
}

// drainPendingEdits applies every staged edit in submission order. Each
// edit validates and commits independently; a rejected edit is logged and
// skipped rather than aborting the rest of the batch.
func (e *Engine) drainPendingEdits() {
	e.editMu.Lock()
	edits := e.pendingEdits
	e.pendingEdits = nil
	e.editMu.Unlock()

	for _, edit := range edits {
		if err := edit(e.board); err != nil {
			e.log.Warn("board edit rejected", "err", err)
		}
	}
}

// EnqueueInteraction submits a player click-action to the interaction
// ring. Non-blocking; overflow silently drops the oldest queued entry and
// is only observable through diagnostics, per spec.md §4.6.
func (e *Engine) EnqueueInteraction(cell grid.Cell, action interaction.ActionCode, applyAtTick int64) {
	e.ring.Enqueue(interaction.Entry{Cell: cell, Action: action, ApplyAtTick: applyAtTick})
}

// SpawnMarble creates a new marble at cell with the given heading and
// velocity and returns its id (spec.md's spawn(cell, heading, velocity)
// operation). Not safe to call concurrently with Step: a caller drives
// spawns either before the tick loop starts or from the same goroutine
// that calls Step, the same discipline the marble store's SoA layout
// assumes for Phase B's per-worker row ownership.
func (e *Engine) SpawnMarble(cell grid.Cell, heading grid.Direction, velocity fixed.F) marble.ID {
	return e.marbles.Spawn(cell, heading, velocity)
}

// Board exposes the authoritative placement map for read-only inspection
// (tests, tooling). Structural edits must go through StagePlacement et al.
func (e *Engine) Board() *board.Board { return e.board }

// Graph exposes the current derived track graph for read-only inspection.
func (e *Engine) Graph() *board.Graph { return e.graph }
