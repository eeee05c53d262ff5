package board

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/segmentio/fasthash/fnv1a"

	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
)

// rampAngleDegrees is the fixed incline every Ramp connector uses: a ramp
// changes elevation by exactly one cell per horizontal cell, i.e. 45
// degrees, with no other gradient representable. Spiral connectors compose
// the same per-cell rise over a curved horizontal path.
const rampAngleDegrees = 45.0

// slopeTrig holds the one-time, float64 trig precompute for a ramp incline,
// converted to fixed-point once when a Graph is constructed. mgl64 is used here
// purely as a content-authoring tool: everything downstream of this
// precompute — marble integration, collision, snapshot state — is
// fixed-point only, matching spec.md's determinism boundary.
type slopeTrig struct {
	sin, cos fixed.F
}

// computeRampTrig runs the one-time float precompute for the shared ramp
// angle. NewGraph calls it once per Graph; it is never called per-tick.
func computeRampTrig() slopeTrig {
	rad := mgl64.DegToRad(rampAngleDegrees)
	return slopeTrig{
		sin: fixed.FromRat(int64(math.Round(math.Sin(rad)*1<<20)), 1<<20),
		cos: fixed.FromRat(int64(math.Round(math.Cos(rad)*1<<20)), 1<<20),
	}
}

// socketFingerprint returns a cheap hash of a placement's resolved sockets.
// Rebuild stores it on each Node; nothing compares fingerprints, and
// Rebuild always re-derives every node in full. fasthash's fnv1a avoids
// pulling in a heavier general-purpose hash for what is, per-cell, a
// handful of bytes.
func socketFingerprint(cell grid.Cell, entry, exit []grid.Direction, rot grid.Rotation, ramp bool) uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], cellKey(cell))
	buf[8] = byte(rot)
	h := fnv1a.HashBytes64(buf[:])

	tail := make([]byte, 0, 2+len(entry)+len(exit))
	tail = append(tail, byte(len(entry)), byte(len(exit)))
	for _, d := range entry {
		tail = append(tail, 0x10|byte(d))
	}
	for _, d := range exit {
		tail = append(tail, 0x20|byte(d))
	}
	if ramp {
		tail = append(tail, 0xFF)
	}
	h = fnv1a.AddBytes64(h, tail)
	return h
}
