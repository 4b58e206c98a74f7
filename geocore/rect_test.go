package geocore

import "testing"

func TestPointInRectCenter(t *testing.T) {
	rect := ReferenceCorner(10.0, 2.0, 0.0025, 0.0025)
	if !PointInRect(rect, 10.0, 2.0) {
		t.Fatalf("expected the rectangle's own center to lie inside it")
	}
}

func TestOverlapDisjoint(t *testing.T) {
	a := ReferenceCorner(10.0, 2.0, 0.01, 0.01)
	b := ReferenceCorner(90.0, -60.0, 0.01, 0.01)
	if Overlap(a, b) {
		t.Fatalf("expected disjoint rectangles to not overlap")
	}
}

func TestOverlapIdentical(t *testing.T) {
	a := ReferenceCorner(10.0, 2.0, 0.05, 0.05)
	if !Overlap(a, a) {
		t.Fatalf("expected identical rectangles to overlap")
	}
}

func TestEquatorCrossing(t *testing.T) {
	north := ReferenceCorner(10.0, 5.0, 0.5, 0.5)
	crossing := ReferenceCorner(10.0, 0.2, 0.5, 0.5)
	south := ReferenceCorner(10.0, -5.0, 0.5, 0.5)

	if !PointInRect(crossing, 10.0, 0.2) {
		t.Fatalf("crossing rectangle should contain its own center")
	}
	if !PointInRect(north, 10.0, 5.0) {
		t.Fatalf("northern rectangle should contain its own center")
	}
	if !PointInRect(south, 10.0, -5.0) {
		t.Fatalf("southern rectangle should contain its own center")
	}
}
