package mkcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func square() []Point2D {
	return []Point2D{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
}

func TestIsConvexSquare(t *testing.T) {
	convex, err := IsConvex(square())
	require.NoError(t, err)
	require.True(t, convex)
}

func TestIsConvexRejectsTooFewVertices(t *testing.T) {
	_, err := IsConvex([]Point2D{{0, 0}, {1, 1}})
	require.Error(t, err)
}

func TestSortCCWIdempotentOnConvexity(t *testing.T) {
	verts := []Point2D{{1, 1}, {0, 0}, {1, 0}, {0, 1}}
	before, err := IsConvex(verts)
	require.NoError(t, err)

	perm, _, err := SortCCW(verts)
	require.NoError(t, err)

	sorted := make([]Point2D, len(verts))
	for i, p := range perm {
		sorted[i] = verts[p]
	}
	after, err := IsConvex(sorted)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestPointInPolygonConvex(t *testing.T) {
	sq := square()
	inside, err := PointInPolygon(sq, Point2D{0.5, 0.5})
	require.NoError(t, err)
	require.True(t, inside)

	outside, err := PointInPolygon(sq, Point2D{2, 2})
	require.NoError(t, err)
	require.False(t, outside)
}

func TestPointInPolygonConcave(t *testing.T) {
	// An "L" shape: concave.
	verts := []Point2D{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	inside, err := PointInPolygon(verts, Point2D{1.5, 1.5})
	require.NoError(t, err)
	require.False(t, inside)

	inside2, err := PointInPolygon(verts, Point2D{0.5, 0.5})
	require.NoError(t, err)
	require.True(t, inside2)
}
