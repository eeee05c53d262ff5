package grid

import "testing"

func TestCellAddAndNeighbours(t *testing.T) {
	c := C(0, 0, 0)
	if got := c.Add(PosX); got != C(1, 0, 0) {
		t.Fatalf("c.Add(PosX) = %v, want (1,0,0)", got)
	}
	n := c.Neighbours()
	if len(n) != 6 {
		t.Fatalf("expected 6 neighbours, got %d", len(n))
	}
	want := [6]Cell{C(1, 0, 0), C(-1, 0, 0), C(0, 1, 0), C(0, -1, 0), C(0, 0, 1), C(0, 0, -1)}
	if n != want {
		t.Fatalf("neighbours = %v, want %v", n, want)
	}
}

func TestCellInBounds(t *testing.T) {
	if !C(Bound, -Bound, 0).InBounds() {
		t.Fatal("boundary cell should be in bounds")
	}
	if C(Bound+1, 0, 0).InBounds() {
		t.Fatal("out-of-range cell should not be in bounds")
	}
}

func TestCellLess(t *testing.T) {
	if !C(0, 0, 0).Less(C(1, 0, 0)) {
		t.Fatal("expected x-order to dominate")
	}
	if !C(0, 0, 0).Less(C(0, 1, 0)) {
		t.Fatal("expected y-order tiebreak")
	}
	if C(1, 0, 0).Less(C(0, 5, 5)) {
		t.Fatal("x should dominate y/z")
	}
}

func TestDirectionOppositeAndAxis(t *testing.T) {
	for _, d := range AllDirections {
		if d.Opposite().Opposite() != d {
			t.Fatalf("opposite not involutive for %v", d)
		}
	}
	if PosX.Axis() != AxisX || PosY.Axis() != AxisY || PosZ.Axis() != AxisZ {
		t.Fatal("axis mapping incorrect")
	}
	if !PosX.Horizontal() || PosY.Horizontal() {
		t.Fatal("horizontal classification incorrect")
	}
}

func TestRotationApply(t *testing.T) {
	if got := Rot90.Apply(PosX); got != PosZ {
		t.Fatalf("Rot90.Apply(PosX) = %v, want PosZ", got)
	}
	if got := Rot180.Apply(PosX); got != NegX {
		t.Fatalf("Rot180.Apply(PosX) = %v, want NegX", got)
	}
	if got := Rot90.Apply(PosY); got != PosY {
		t.Fatalf("vertical direction must be rotation-invariant, got %v", got)
	}
}

func TestRotationAdd(t *testing.T) {
	if got := Rot90.Add(Rot270); got != Rot0 {
		t.Fatalf("Rot90+Rot270 = %v, want Rot0", got)
	}
	if got := Rot180.Add(Rot180); got != Rot0 {
		t.Fatalf("Rot180+Rot180 = %v, want Rot0", got)
	}
}
