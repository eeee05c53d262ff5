package board

import "github.com/marbleforge/trackengine/engine/grid"

// morton3 interleaves the bits of three unsigned coordinates into a single
// deterministic sort key, generalising the chunk-local 2D Morton order the
// redstone scheduler uses to the 3D cell grid every board operation walks.
func morton3(x, y, z uint32) uint64 {
	return splitBy2(x) | splitBy2(y)<<1 | splitBy2(z)<<2
}

// splitBy2 spreads the low 21 bits of x so two zero bits separate each one,
// leaving room to interleave three coordinates into a 64-bit key.
func splitBy2(x uint32) uint64 {
	v := uint64(x) & 0x1FFFFF
	v = (v | v<<32) & 0x1F00000000FFFF
	v = (v | v<<16) & 0x1F0000FF0000FF
	v = (v | v<<8) & 0x100F00F00F00F00F
	v = (v | v<<4) & 0x10C30C30C30C30C3
	v = (v | v<<2) & 0x1249249249249249
	return v
}

// toUnsigned maps a signed grid coordinate into the unsigned range so that
// Morton order matches numeric order across the origin. The bias is bit 20,
// the top bit of the 21 bits splitBy2 keeps, so it survives the interleave.
func toUnsigned(v int32) uint32 {
	return uint32(v) ^ (1 << 20)
}

// cellKey returns the deterministic ordering key for c, used wherever board
// and track-graph code must iterate cells in an order that does not depend
// on map iteration or placement history.
func cellKey(c grid.Cell) uint64 {
	return morton3(toUnsigned(c.X), toUnsigned(c.Y), toUnsigned(c.Z))
}

// sortCellsDeterministic sorts cells in place by cellKey using insertion
// sort. Board edit batches and track-graph rebuild inputs are small (tens to
// low hundreds of entries), where insertion sort's constant-factor win over
// an allocating sort and its stability both matter more than asymptotic
// complexity — the same tradeoff the redstone scheduler makes for its
// per-tick event batches.
func sortCellsDeterministic(cells []grid.Cell) {
	for i := 1; i < len(cells); i++ {
		j := i
		for j > 0 && cellKey(cells[j-1]) > cellKey(cells[j]) {
			cells[j-1], cells[j] = cells[j], cells[j-1]
			j--
		}
	}
}
