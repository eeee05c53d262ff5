// Package snapshot implements the read-only, wait-free view of engine
// state the renderer consumes (C9): published atomically at the end of
// every tick's Phase E, versioned by tick counter, never mutated once
// published.
package snapshot

import (
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
)

// MarbleView is one marble's renderer-observable state, packed densely in
// marble id order.
type MarbleView struct {
	Cell    grid.Cell
	Offset  fixed.F
	Heading grid.Direction
}

// ModuleView is one module's renderer-observable state. Exactly one of
// the typed fields is meaningful, selected by Kind; the rest are zero.
type ModuleView struct {
	Cell  grid.Cell
	Kind  ModuleKind
	Bool1 bool   // splitter current-exit==B, lift running, gate open
	U16   uint16 // collector queue depth, cannon cooldown remaining
}

// ModuleKind mirrors board.ModuleKind without importing it, so the
// snapshot package stays a leaf with no dependency on the board/module
// packages that produce it.
type ModuleKind uint8

const (
	ModuleSplitter ModuleKind = iota
	ModuleCollector
	ModuleLift
	ModuleCannon
	ModuleGate
)

// Diagnostics accumulates the tick's counted, non-fatal outcomes, per
// spec.md §7's transient-fault taxonomy: nothing here aborts a tick, but
// every occurrence is observable in the published snapshot.
type Diagnostics struct {
	Collisions          uint64
	MarblesKilled       uint64
	MarblesSpawned      uint64
	InteractionsDropped uint64
	SplitterRoutes      uint64
	CollectorReleases   uint64
	LiftAdvances        uint64
	CannonFires         uint64
	GateRejections      uint64
	TickOverrunsDropped int64
}

// Snapshot is one published, immutable tick view. Callers must never
// mutate the slices; Publisher hands out a fresh Snapshot value every
// tick rather than reusing buffers the caller could see torn.
type Snapshot struct {
	Tick int64

	Marbles []MarbleView
	Modules []ModuleView

	// DebrisAdded lists cells that became debris since the previous
	// published snapshot; debris is permanent, so there is no
	// DebrisRemoved (only Reset clears it, and Reset republishes a full
	// snapshot rather than a delta).
	DebrisAdded []grid.Cell

	Diagnostics Diagnostics
}
