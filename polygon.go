package mkcore

import (
	"math"
	"sort"
)

// Point2D is a 2-D vertex or query point. Polygon routines are 2-D only
// (spec §4.4); 3-D polygon crops must be rejected upstream.
type Point2D struct {
	X, Y float64
}

func cross(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// IsConvex tests consistency of cross-product sign around the ring.
// Fewer than 3 vertices is rejected.
func IsConvex(vertices []Point2D) (bool, error) {
	n := len(vertices)
	if n < 3 {
		return false, NewContractError("IsConvex", ErrTooFewVertices)
	}
	gotSign := 0
	for i := 0; i < n; i++ {
		o := vertices[i]
		a := vertices[(i+1)%n]
		b := vertices[(i+2)%n]
		c := cross(o, a, b)
		if c == 0 {
			continue
		}
		sign := 1
		if c < 0 {
			sign = -1
		}
		if gotSign == 0 {
			gotSign = sign
		} else if sign != gotSign {
			return false, nil
		}
	}
	return true, nil
}

// SortCCW returns the permutation that orders vertices counter-clockwise
// around their centroid. If the polygon is concave, warn is true (the
// sort has no unique answer, but the traversal order is still returned
// and well-defined) — spec §9 keeps the source's behavior of warning
// without failing.
func SortCCW(vertices []Point2D) (perm []int, warn bool, err error) {
	n := len(vertices)
	if n < 3 {
		return nil, false, NewContractError("SortCCW", ErrTooFewVertices)
	}

	var cx, cy float64
	for _, v := range vertices {
		cx += v.X
		cy += v.Y
	}
	cx /= float64(n)
	cy /= float64(n)

	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	angle := func(i int) float64 {
		return math.Atan2(vertices[i].Y-cy, vertices[i].X-cx)
	}
	sort.Slice(perm, func(i, j int) bool { return angle(perm[i]) < angle(perm[j]) })

	ordered := make([]Point2D, n)
	for i, p := range perm {
		ordered[i] = vertices[p]
	}
	convex, cErr := IsConvex(ordered)
	if cErr != nil {
		return perm, false, cErr
	}
	return perm, !convex, nil
}

// PointInPolygonConvex is the fast convex test: the sign of cross products
// from consecutive edges must agree for an interior point.
func PointInPolygonConvex(vertices []Point2D, p Point2D) bool {
	n := len(vertices)
	gotSign := 0
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		c := cross(a, b, p)
		if c == 0 {
			continue
		}
		sign := 1
		if c < 0 {
			sign = -1
		}
		if gotSign == 0 {
			gotSign = sign
		} else if sign != gotSign {
			return false
		}
	}
	return true
}

// PointInPolygonRayCast is the ray-casting test used for concave polygons.
func PointInPolygonRayCast(vertices []Point2D, p Point2D) bool {
	n := len(vertices)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xAtY := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xAtY {
				inside = !inside
			}
		}
	}
	return inside
}

// PointInPolygon dispatches to the fast convex test when vertices form a
// convex ring, else to ray-casting (spec §4.4).
func PointInPolygon(vertices []Point2D, p Point2D) (bool, error) {
	convex, err := IsConvex(vertices)
	if err != nil {
		return false, err
	}
	if convex {
		return PointInPolygonConvex(vertices, p), nil
	}
	return PointInPolygonRayCast(vertices, p), nil
}
