// Package grid provides the integer cell-coordinate geometry shared by the
// board, track graph, spatial index and marble store: cell coordinates,
// the six axis-aligned directions, and 90-degree rotations.
package grid

import "fmt"

// Bound is the inclusive coordinate bound on every axis: cells live in
// [-Bound, +Bound].
const Bound = 16384

// Cell is a signed 3-D integer grid coordinate, the atomic unit of
// occupancy on the board.
type Cell struct {
	X, Y, Z int32
}

// C is a convenience constructor for Cell.
func C(x, y, z int32) Cell { return Cell{X: x, Y: y, Z: z} }

// InBounds reports whether every axis of c is within [-Bound, Bound].
func (c Cell) InBounds() bool {
	return inAxis(c.X) && inAxis(c.Y) && inAxis(c.Z)
}

func inAxis(v int32) bool { return v >= -Bound && v <= Bound }

// Add returns c shifted by d's unit vector.
func (c Cell) Add(d Direction) Cell {
	dx, dy, dz := d.Vector()
	return Cell{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Neighbours returns the six 6-adjacent cells, in a fixed deterministic
// order (+X,-X,+Y,-Y,+Z,-Z), matching Direction's iteration order.
func (c Cell) Neighbours() [6]Cell {
	var out [6]Cell
	for i, d := range AllDirections {
		out[i] = c.Add(d)
	}
	return out
}

// Less implements the cell lexicographic order (x, then y, then z) that
// Phase C's merge and Phase D's module iteration both require for
// determinism.
func (c Cell) Less(o Cell) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}
