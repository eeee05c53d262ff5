// Package spatial implements the cell-hash occupancy index (C2): a
// mapping from grid cells to their occupant (empty, a marble, debris, or
// a module's origin cell), plus the transient conflict tracking Phase C's
// collision resolution needs.
package spatial

import (
	"encoding/binary"

	"github.com/brentp/intintmap"
	"github.com/cespare/xxhash/v2"

	"github.com/marbleforge/trackengine/engine/grid"
)

// Kind identifies what occupies a cell.
type Kind uint8

const (
	Empty Kind = iota
	Marble
	Debris
	Module
)

// Occupant describes what the spatial index has recorded for a cell.
type Occupant struct {
	Kind Kind
	// MarbleID is valid when Kind == Marble.
	MarbleID uint32
	// ModuleOrigin is valid when Kind == Module: the cell carrying the
	// module's placement, which may differ from the occupied cell for
	// multi-cell modules.
	ModuleOrigin grid.Cell
}

type slot struct {
	used bool
	cell grid.Cell
	occ  Occupant
}

// Index is an open-addressing cell -> Occupant table sized to the next
// power of two above the active-marble count, as spec.md requires.
type Index struct {
	slots []slot
	mask  uint64
	count int

	// byMarble maps a live marble id to its slot index, giving O(1)
	// move/evict-by-id without a linear scan, mirroring the weak
	// (id+generation) references the marble store hands out.
	byMarble *intintmap.Map

	// conflictSet/conflicts record every cell where more than one
	// insertion was attempted during the current phase. Cleared by
	// EndPhase; never persisted past the phase that produced them.
	conflictSet map[grid.Cell]struct{}
	conflicts   []grid.Cell
}

// New creates an Index sized for up to capacityHint simultaneous
// occupants.
func New(capacityHint int) *Index {
	size := nextPow2(capacityHint*2 + 16)
	return &Index{
		slots:       make([]slot, size),
		mask:        uint64(size - 1),
		byMarble:    intintmap.New(size, 0.75),
		conflictSet: make(map[grid.Cell]struct{}),
	}
}

func nextPow2(n int) int {
	if n < 8 {
		n = 8
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func cellHash(c grid.Cell) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Y))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(c.Z))
	return xxhash.Sum64(buf[:])
}

// Get returns the occupant of c, if any.
func (ix *Index) Get(c grid.Cell) (Occupant, bool) {
	idx, ok := ix.find(c)
	if !ok {
		return Occupant{}, false
	}
	return ix.slots[idx].occ, true
}

// probe locates the slot for c using linear probing, returning the slot
// index whether or not it is currently occupied by c (so callers can
// reuse it for insertion).
func (ix *Index) probe(c grid.Cell) int {
	h := cellHash(c) & ix.mask
	for {
		s := &ix.slots[h]
		if !s.used || s.cell == c {
			return int(h)
		}
		h = (h + 1) & ix.mask
	}
}

func (ix *Index) find(c grid.Cell) (int, bool) {
	idx := ix.probe(c)
	if !ix.slots[idx].used {
		return 0, false
	}
	return idx, true
}

// Insert places occ at cell c. If c is already occupied, the cell is
// recorded as a conflict for this phase and Insert returns false; the
// existing occupant is left untouched so the caller (Phase C) can apply
// the "all claimants die, cell becomes debris" rule itself.
func (ix *Index) Insert(c grid.Cell, occ Occupant) bool {
	if (ix.count+1)*2 > len(ix.slots) {
		// Keep the table at most half full so probing always reaches a
		// free slot: double it and re-insert every occupant.
		old := ix.slots
		size := len(old) * 2
		ix.slots = make([]slot, size)
		ix.mask = uint64(size - 1)
		ix.count = 0
		ix.byMarble = intintmap.New(size, 0.75)
		for _, s := range old {
			if s.used {
				ix.Insert(s.cell, s.occ)
			}
		}
	}
	idx := ix.probe(c)
	s := &ix.slots[idx]
	if s.used {
		if _, seen := ix.conflictSet[c]; !seen {
			ix.conflictSet[c] = struct{}{}
			ix.conflicts = append(ix.conflicts, c)
		}
		return false
	}
	s.used = true
	s.cell = c
	s.occ = occ
	ix.count++
	if occ.Kind == Marble {
		ix.byMarble.Put(int64(occ.MarbleID), int64(idx))
	}
	return true
}

// Evict removes the occupant at c, if any.
func (ix *Index) Evict(c grid.Cell) {
	idx, ok := ix.find(c)
	if !ok {
		return
	}
	ix.removeSlot(idx)
}

// Move relocates an occupant from oldCell to newCell. Phase E does not use
// it: after Compaction it rebuilds the whole index with Reconcile.
func (ix *Index) Move(oldCell, newCell grid.Cell) bool {
	idx, ok := ix.find(oldCell)
	if !ok {
		return false
	}
	occ := ix.slots[idx].occ
	ix.removeSlot(idx)
	return ix.Insert(newCell, occ)
}

func (ix *Index) removeSlot(idx int) {
	s := &ix.slots[idx]
	if !s.used {
		return
	}
	if s.occ.Kind == Marble {
		ix.byMarble.Remove(int64(s.occ.MarbleID))
	}
	*s = slot{}
	ix.count--
	// Standard open-addressing backward-shift deletion: without it,
	// later probes that skipped over this now-empty slot would stop
	// early and fail to find entries placed past it.
	ix.rehashFrom(idx)
}

func (ix *Index) rehashFrom(hole int) {
	i := (hole + 1) & int(ix.mask)
	for ix.slots[i].used {
		s := ix.slots[i]
		ix.slots[i] = slot{}
		ix.count--
		if s.occ.Kind == Marble {
			ix.byMarble.Remove(int64(s.occ.MarbleID))
		}
		ix.Insert(s.cell, s.occ)
		i = (i + 1) & int(ix.mask)
	}
}

// EvictMarble removes a marble occupant by id in O(1) using the weak
// id -> slot reference, for use when a marble dies without a known cell.
func (ix *Index) EvictMarble(id uint32) {
	slotIdx, ok := ix.byMarble.Get(int64(id))
	if !ok {
		return
	}
	ix.removeSlot(int(slotIdx))
}

// Conflicts returns the cells where more than one insertion was
// attempted during the current phase, in first-seen order.
func (ix *Index) Conflicts() []grid.Cell {
	return ix.conflicts
}

// EndPhase discards the transient conflict list. Must be called once a
// phase that may have produced conflicts (Phase C) has finished applying
// their resolution.
func (ix *Index) EndPhase() {
	clear(ix.conflictSet)
	ix.conflicts = ix.conflicts[:0]
}

// Len returns the number of occupied cells.
func (ix *Index) Len() int { return ix.count }

// Reconcile rebuilds the index from scratch against the given occupant
// list, used by Phase E after Compaction renumbers marble ids so the weak
// id -> slot references never point at a stale generation.
func (ix *Index) Reconcile(occupants map[grid.Cell]Occupant) {
	size := nextPow2(len(occupants)*2 + 16)
	ix.slots = make([]slot, size)
	ix.mask = uint64(size - 1)
	ix.count = 0
	ix.byMarble = intintmap.New(size, 0.75)
	clear(ix.conflictSet)
	ix.conflicts = ix.conflicts[:0]
	for c, occ := range occupants {
		ix.Insert(c, occ)
	}
}
