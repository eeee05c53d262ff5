// Package marble implements the structure-of-arrays marble store (C5): a
// dense, compactable set of live marbles plus the per-slot generation
// counters that let the spatial index and interaction queue hold weak
// references safely across compaction.
package marble

import (
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
)

// ID identifies a marble. It is a dense index valid only for the
// marble's current generation: callers must compare Generation() before
// trusting a stale ID.
type ID uint32

// Store holds parallel dense vectors for every live (and recently dead,
// pre-compaction) marble, exactly as spec.md's structure-of-arrays
// requirement specifies.
type Store struct {
	cellX, cellY, cellZ []int32
	offset               []fixed.F
	heading              []grid.Direction
	velocity             []fixed.F
	alive                []bool
	generation           []uint32
	// parked marks a marble currently held in a Collector or Lift queue:
	// Phase B's integration and Phase E's spatial-index rebuild both skip
	// parked marbles, since a module's queue — not the track — owns their
	// position until the module releases them.
	parked []bool

	freeCount int
	nextID    uint32
}

// New creates an empty marble store.
func New() *Store {
	return &Store{}
}

// Len returns the number of slots in the store, including dead ones not
// yet compacted away.
func (s *Store) Len() int { return len(s.alive) }

// Spawn creates a new marble at cell with the given heading and velocity,
// and returns its id. A newly spawned id is strictly greater than every id
// currently in the store, satisfying Phase D's "deferred to next tick" rule
// for marbles spawned by modules; ids freed by Compact are issued again.
func (s *Store) Spawn(cell grid.Cell, heading grid.Direction, velocity fixed.F) ID {
	id := ID(len(s.alive))
	s.cellX = append(s.cellX, cell.X)
	s.cellY = append(s.cellY, cell.Y)
	s.cellZ = append(s.cellZ, cell.Z)
	s.offset = append(s.offset, 0)
	s.heading = append(s.heading, heading)
	s.velocity = append(s.velocity, velocity)
	s.alive = append(s.alive, true)
	s.generation = append(s.generation, s.nextID)
	s.parked = append(s.parked, false)
	s.nextID++
	return id
}

// Kill marks a marble dead. It remains in the dense arrays until the
// next Compact, so mid-phase code iterating by id range still sees a
// stable length.
func (s *Store) Kill(id ID) {
	if int(id) >= len(s.alive) || !s.alive[id] {
		return
	}
	s.alive[id] = false
	s.freeCount++
}

// Alive reports whether id currently refers to a live marble.
func (s *Store) Alive(id ID) bool {
	return int(id) < len(s.alive) && s.alive[id]
}

// Generation returns the generation counter of id's slot, for validating
// weak references held outside the store.
func (s *Store) Generation(id ID) uint32 {
	if int(id) >= len(s.generation) {
		return 0
	}
	return s.generation[id]
}

// Cell returns the current cell of the marble id.
func (s *Store) Cell(id ID) grid.Cell {
	return grid.C(s.cellX[id], s.cellY[id], s.cellZ[id])
}

// SetCell updates the cell of marble id.
func (s *Store) SetCell(id ID, c grid.Cell) {
	s.cellX[id], s.cellY[id], s.cellZ[id] = c.X, c.Y, c.Z
}

// Offset returns the fractional offset along the heading axis, in (-1, 1);
// it is negative while the marble rolls backward against its heading.
func (s *Store) Offset(id ID) fixed.F { return s.offset[id] }

// SetOffset sets the fractional offset.
func (s *Store) SetOffset(id ID, v fixed.F) { s.offset[id] = v }

// Heading returns the marble's current heading.
func (s *Store) Heading(id ID) grid.Direction { return s.heading[id] }

// SetHeading sets the marble's heading.
func (s *Store) SetHeading(id ID, d grid.Direction) { s.heading[id] = d }

// Velocity returns the marble's scalar velocity along its heading axis.
func (s *Store) Velocity(id ID) fixed.F { return s.velocity[id] }

// SetVelocity sets the marble's velocity.
func (s *Store) SetVelocity(id ID, v fixed.F) { s.velocity[id] = v }

// LiveIDs returns every currently live id, in ascending (spawn) order —
// the iteration order Phase B's integration requires.
func (s *Store) LiveIDs() []ID {
	out := make([]ID, 0, len(s.alive)-s.freeCount)
	for i, alive := range s.alive {
		if alive {
			out = append(out, ID(i))
		}
	}
	return out
}

// Parked reports whether id is currently held in a module queue rather
// than resident on the track.
func (s *Store) Parked(id ID) bool {
	return int(id) < len(s.parked) && s.parked[id]
}

// SetParked marks id as parked (held by a Collector/Lift queue) or
// returned to normal track residency.
func (s *Store) SetParked(id ID, v bool) { s.parked[id] = v }

// LiveCount returns the number of currently live marbles.
func (s *Store) LiveCount() int {
	return len(s.alive) - s.freeCount
}

// Compact removes dead marbles, preserving the relative order of
// survivors (moved into the low-index prefix) so the tick stays
// deterministic, and returns the old->new id remapping for survivors
// (callers reconcile the spatial index and any held weak references
// against this map).
func (s *Store) Compact() map[ID]ID {
	remap := make(map[ID]ID, s.LiveCount())
	write := 0
	for read, alive := range s.alive {
		if !alive {
			continue
		}
		if write != read {
			s.cellX[write] = s.cellX[read]
			s.cellY[write] = s.cellY[read]
			s.cellZ[write] = s.cellZ[read]
			s.offset[write] = s.offset[read]
			s.heading[write] = s.heading[read]
			s.velocity[write] = s.velocity[read]
			s.alive[write] = true
			s.generation[write] = s.generation[read]
			s.parked[write] = s.parked[read]
		}
		remap[ID(read)] = ID(write)
		write++
	}
	s.cellX = s.cellX[:write]
	s.cellY = s.cellY[:write]
	s.cellZ = s.cellZ[:write]
	s.offset = s.offset[:write]
	s.heading = s.heading[:write]
	s.velocity = s.velocity[:write]
	s.alive = s.alive[:write]
	s.generation = s.generation[:write]
	s.parked = s.parked[:write]
	s.freeCount = 0
	return remap
}
