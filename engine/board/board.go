// Package board implements the authoritative placement map (C3) and the
// derived track graph (C4): Module/Connector alternation, structural
// edits applied only between ticks, and per-cell entry/exit/slope
// attributes rebuilt whenever placements change.
package board

import (
	"fmt"

	"github.com/marbleforge/trackengine/engine/grid"
)

// Placement is one occupied cell's content.
type Placement struct {
	Part     PartID
	Rotation grid.Rotation
	Cell     grid.Cell
	Upgrade  uint8
}

// RejectReason explains why a structural edit was refused.
type RejectReason uint8

const (
	RejectNone RejectReason = iota
	RejectOutOfBounds
	RejectOccupied
	RejectUnknownPart
	RejectAlternation
	RejectUpgradeLevel
	RejectWouldOrphan
)

func (r RejectReason) String() string {
	switch r {
	case RejectOutOfBounds:
		return "out of bounds"
	case RejectOccupied:
		return "cell already occupied"
	case RejectUnknownPart:
		return "unknown part id"
	case RejectAlternation:
		return "would violate module/connector alternation"
	case RejectUpgradeLevel:
		return "upgrade level exceeds part maximum"
	case RejectWouldOrphan:
		return "removing this connector would create adjacent modules"
	default:
		return "none"
	}
}

// EditError is returned by Place/Remove/Upgrade when an edit is refused.
// Rejected edits never mutate board state.
type EditError struct {
	Reason RejectReason
	Cell   grid.Cell
}

func (e *EditError) Error() string {
	return fmt.Sprintf("board: edit at %v rejected: %s", e.Cell, e.Reason)
}

// Board is the authoritative placement map. Structural edits (Place,
// Remove, Upgrade) are only safe to apply between ticks; the engine
// enforces that by draining staged edits before Phase A.
type Board struct {
	catalog *Catalog
	cells   map[grid.Cell]Placement
	dirty   bool
}

// New creates an empty Board backed by catalog.
func New(catalog *Catalog) *Board {
	return &Board{catalog: catalog, cells: make(map[grid.Cell]Placement)}
}

// Get returns the placement at c, if any.
func (b *Board) Get(c grid.Cell) (Placement, bool) {
	p, ok := b.cells[c]
	return p, ok
}

// Dirty reports whether the track graph must be rebuilt before the next
// tick.
func (b *Board) Dirty() bool { return b.dirty }

// ClearDirty is called by the track graph after a successful rebuild.
func (b *Board) ClearDirty() { b.dirty = false }

// Placements returns every occupied cell and its placement. Callers must
// not mutate the returned map.
func (b *Board) Placements() map[grid.Cell]Placement {
	return b.cells
}

// Place attempts to install part at cell with the given rotation and
// upgrade level. Validates bounds, single-occupancy and the Alternation
// invariant against every 6-neighbour before committing; a rejected edit
// leaves the board unchanged.
func (b *Board) Place(part PartID, cell grid.Cell, rot grid.Rotation, upgrade uint8) error {
	if !cell.InBounds() {
		return &EditError{Reason: RejectOutOfBounds, Cell: cell}
	}
	if _, occupied := b.cells[cell]; occupied {
		return &EditError{Reason: RejectOccupied, Cell: cell}
	}
	def, ok := b.catalog.Lookup(part)
	if !ok {
		return &EditError{Reason: RejectUnknownPart, Cell: cell}
	}
	if upgrade > def.MaxUpgradeLevel {
		return &EditError{Reason: RejectUpgradeLevel, Cell: cell}
	}
	if !b.alternationHolds(cell, def.Kind) {
		return &EditError{Reason: RejectAlternation, Cell: cell}
	}
	b.cells[cell] = Placement{Part: part, Rotation: rot, Cell: cell, Upgrade: upgrade}
	b.dirty = true
	return nil
}

// alternationHolds reports whether placing a part of kind at cell would
// keep every 6-adjacent occupied neighbour of a differing kind.
func (b *Board) alternationHolds(cell grid.Cell, kind PartKind) bool {
	for _, n := range cell.Neighbours() {
		p, ok := b.cells[n]
		if !ok {
			continue
		}
		def, ok := b.catalog.Lookup(p.Part)
		if !ok {
			continue
		}
		if def.Kind == kind {
			return false
		}
	}
	return true
}

// Remove deletes the placement at cell. Rejects removing a Connector whose
// two opposite neighbours on some axis are both Modules (the
// Module-Connector-Module run through the vacated cell would be broken).
func (b *Board) Remove(cell grid.Cell) error {
	p, ok := b.cells[cell]
	if !ok {
		return nil
	}
	def, ok := b.catalog.Lookup(p.Part)
	if ok && def.Kind == KindConnector {
		if b.wouldOrphanModules(cell) {
			return &EditError{Reason: RejectWouldOrphan, Cell: cell}
		}
	}
	delete(b.cells, cell)
	b.dirty = true
	return nil
}

// wouldOrphanModules reports whether the connector at cell sits between two
// module neighbours on the same axis (e.g. at +X and -X).
func (b *Board) wouldOrphanModules(cell grid.Cell) bool {
	moduleNeighbours := 0
	for _, n := range cell.Neighbours() {
		p, ok := b.cells[n]
		if !ok {
			continue
		}
		if def, ok := b.catalog.Lookup(p.Part); ok && def.Kind == KindModule {
			moduleNeighbours++
		}
	}
	// Removing a cell never makes two other cells 6-adjacent: two opposing
	// module neighbours stay two cells apart. The check therefore rejects
	// the removal whenever two of cell's opposing neighbours are both
	// modules, i.e. whenever cell is the connector linking them.
	return hasOpposingModulePair(b, cell)
}

func hasOpposingModulePair(b *Board, cell grid.Cell) bool {
	pairs := [3][2]grid.Direction{
		{grid.PosX, grid.NegX},
		{grid.PosY, grid.NegY},
		{grid.PosZ, grid.NegZ},
	}
	for _, pair := range pairs {
		a, ok1 := b.cells[cell.Add(pair[0])]
		c, ok2 := b.cells[cell.Add(pair[1])]
		if !ok1 || !ok2 {
			continue
		}
		da, oka := b.catalog.Lookup(a.Part)
		dc, okc := b.catalog.Lookup(c.Part)
		if oka && okc && da.Kind == KindModule && dc.Kind == KindModule {
			return true
		}
	}
	return false
}

// Upgrade changes the upgrade level of the part at cell, bounded by the
// part's MaxUpgradeLevel.
func (b *Board) Upgrade(cell grid.Cell, level uint8) error {
	p, ok := b.cells[cell]
	if !ok {
		return &EditError{Reason: RejectOccupied, Cell: cell}
	}
	def, ok := b.catalog.Lookup(p.Part)
	if !ok {
		return &EditError{Reason: RejectUnknownPart, Cell: cell}
	}
	if level > def.MaxUpgradeLevel {
		return &EditError{Reason: RejectUpgradeLevel, Cell: cell}
	}
	p.Upgrade = level
	b.cells[cell] = p
	b.dirty = true
	return nil
}

// Catalog returns the part catalog backing this board.
func (b *Board) Catalog() *Catalog { return b.catalog }
