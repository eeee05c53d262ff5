package board

import (
	"testing"

	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
)

func TestComputeRampTrigUnitCircle(t *testing.T) {
	trig := computeRampTrig()
	// sin^2 + cos^2 should be ~1 within fixed-point precision; check via the
	// integer representation rather than a tolerance-based float compare.
	sq := trig.sin.Mul(trig.sin).Add(trig.cos.Mul(trig.cos))
	diff := sq.Sub(fixed.One).Abs()
	if diff.Int() != 0 {
		t.Fatalf("sin^2+cos^2 = %v, want ~1", sq)
	}
}

func TestSocketFingerprintDeterministic(t *testing.T) {
	a := socketFingerprint(grid.C(1, 2, 3), []grid.Direction{grid.NegX}, []grid.Direction{grid.PosX}, grid.Rot90, true)
	b := socketFingerprint(grid.C(1, 2, 3), []grid.Direction{grid.NegX}, []grid.Direction{grid.PosX}, grid.Rot90, true)
	if a != b {
		t.Fatal("fingerprint must be deterministic for identical input")
	}
	c := socketFingerprint(grid.C(1, 2, 3), []grid.Direction{grid.NegX}, []grid.Direction{grid.PosZ}, grid.Rot90, true)
	if a == c {
		t.Fatal("fingerprint should differ when exit sockets differ")
	}
}
