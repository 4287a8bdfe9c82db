package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/CutLearn/internal/model"
)

// fill stamps a rectangle of cells with the given occupant id.
func fill(s model.Stock, x, y, w, h, id int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			s[yy][xx] = id
		}
	}
}

func TestCanPlace_Bounds(t *testing.T) {
	s := model.NewStock(10, 10)

	assert.True(t, CanPlace(s, 0, 0, 10, 10))
	assert.True(t, CanPlace(s, 6, 6, 4, 4))
	assert.False(t, CanPlace(s, 7, 7, 4, 4), "overhangs right and bottom")
	assert.False(t, CanPlace(s, -1, 0, 2, 2))
	assert.False(t, CanPlace(s, 0, -1, 2, 2))
}

func TestCanPlace_Occupied(t *testing.T) {
	s := model.NewStock(10, 10)
	fill(s, 4, 4, 2, 2, 0)

	assert.False(t, CanPlace(s, 3, 3, 3, 3), "overlaps the occupied block")
	assert.True(t, CanPlace(s, 0, 0, 4, 4), "touches but does not overlap")
	assert.True(t, CanPlace(s, 6, 4, 2, 2))
}

func TestAdjacentWeight_OrthogonalAndDiagonal(t *testing.T) {
	s := model.NewStock(10, 10)

	// Empty stock: no neighbors at all.
	assert.Equal(t, 0.0, AdjacentWeight(s, 0, 0, 2, 2))

	// One occupied cell directly right of a 1x1 footprint.
	s[5][6] = 0
	assert.Equal(t, 2.0, AdjacentWeight(s, 5, 5, 1, 1))

	// One occupied cell diagonal to the footprint.
	s[5][6] = model.EmptyCell
	s[4][4] = 0
	assert.Equal(t, 0.25, AdjacentWeight(s, 5, 5, 1, 1))
}

func TestAdjacentWeight_FlushEdge(t *testing.T) {
	s := model.NewStock(10, 10)
	fill(s, 0, 0, 4, 4, 0)

	// A 4x4 piece flush right of the block: the full left halo column is
	// orthogonally occupied.
	got := AdjacentWeight(s, 4, 0, 4, 4)
	assert.Equal(t, 4*2.0, got)
}

func TestEmptyNeighborCount(t *testing.T) {
	s := model.NewStock(10, 10)

	// Interior 2x2 footprint has a 12-cell halo, all empty.
	assert.Equal(t, 12, EmptyNeighborCount(s, 4, 4, 2, 2))

	// Corner placement clips the halo.
	assert.Equal(t, 5, EmptyNeighborCount(s, 0, 0, 2, 2))
}

func TestDistanceToFilled(t *testing.T) {
	s := model.NewStock(10, 10)
	assert.Equal(t, 0, DistanceToFilled(s, 5, 5), "empty stock reports zero")

	s[0][0] = 0
	assert.Equal(t, 10, DistanceToFilled(s, 5, 5))
	assert.Equal(t, 0, DistanceToFilled(s, 0, 0))
}

func TestEmptyAreaSize(t *testing.T) {
	s := model.NewStock(4, 4)
	assert.Equal(t, 16, EmptyAreaSize(s, 0, 0))

	// Wall down column 2 splits the grid into 8 and 4 empty cells.
	fill(s, 2, 0, 1, 4, 0)
	assert.Equal(t, 8, EmptyAreaSize(s, 0, 0))
	assert.Equal(t, 4, EmptyAreaSize(s, 3, 0))
	assert.Equal(t, 0, EmptyAreaSize(s, 2, 0), "occupied start cell")
	assert.Equal(t, 0, EmptyAreaSize(s, -1, 0), "out of bounds")
}

func TestIsPerfectFit(t *testing.T) {
	s := model.NewStock(10, 10)
	assert.False(t, IsPerfectFit(s, 0, 0, 2, 2), "nothing to sit flush against")

	// Full-height wall right of the candidate and full-width floor below:
	// two flush directions.
	fill(s, 2, 0, 1, 2, 0)
	fill(s, 0, 2, 2, 1, 1)
	assert.True(t, IsPerfectFit(s, 0, 0, 2, 2))
}

func TestIsPerfectFit_PartialEdgeDoesNotCount(t *testing.T) {
	s := model.NewStock(10, 10)
	// Only half the opposing edge occupied.
	s[0][2] = 0
	assert.False(t, IsPerfectFit(s, 0, 0, 2, 2))
}

func TestPatternScore_SmallPieceCorner(t *testing.T) {
	s := model.NewStock(10, 10)

	corner := PatternScore(s, 0, 0, 2, 2)
	edge := PatternScore(s, 3, 0, 2, 2)
	interior := PatternScore(s, 4, 4, 2, 2)

	assert.Greater(t, corner, edge)
	assert.Greater(t, edge, interior)
}

func TestPatternScore_LargePieceEdges(t *testing.T) {
	s := model.NewStock(10, 10)

	// 5x5 is the large regime; a corner gets both edge bonuses plus the
	// corner bonus.
	corner := PatternScore(s, 0, 0, 5, 5)
	assert.Equal(t, 2.0+2.0+3.0, corner)

	oneEdge := PatternScore(s, 0, 2, 5, 5)
	assert.Equal(t, 2.0, oneEdge)
}

func TestPatternQuality(t *testing.T) {
	s := model.NewStock(10, 10)

	edge, corner := PatternQuality(s, model.Placement{X: 0, Y: 0, Width: 2, Height: 2})
	assert.Equal(t, 2, edge)
	assert.True(t, corner)

	edge, corner = PatternQuality(s, model.Placement{X: 0, Y: 3, Width: 2, Height: 2})
	assert.Equal(t, 1, edge)
	assert.False(t, corner)

	edge, corner = PatternQuality(s, model.Placement{X: 3, Y: 3, Width: 2, Height: 2})
	assert.Equal(t, 0, edge)
	assert.False(t, corner)
}

func TestGapsAbove(t *testing.T) {
	s := model.NewStock(10, 10)
	assert.Equal(t, 6, gapsAbove(s, 0, 3, 2), "3 empty rows above a 2-wide footprint")

	fill(s, 0, 0, 2, 3, 0)
	assert.Equal(t, 0, gapsAbove(s, 0, 3, 2))
}
