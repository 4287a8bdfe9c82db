// Package engine implements the placement strategies and the geometric
// pattern heuristics that turn a product demand into a concrete position
// on a stock sheet.
package engine

import "github.com/piwi3910/CutLearn/internal/model"

// smallPieceArea separates the small-piece and large-piece scoring regimes.
const smallPieceArea = 20

// CanPlace reports whether a w x h rectangle fits at (x, y): fully inside
// the stock bounds with every covered cell empty.
func CanPlace(s model.Stock, x, y, w, h int) bool {
	if x < 0 || y < 0 || x+w > s.Width() || y+h > s.Height() {
		return false
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if s[yy][xx] != model.EmptyCell {
				return false
			}
		}
	}
	return true
}

// AdjacentWeight scans the 1-cell halo around the rectangle and sums
// occupancy weights: 2.0 for orthogonally adjacent cells, 0.25 for
// diagonal ones.
func AdjacentWeight(s model.Stock, x, y, w, h int) float64 {
	weight := 0.0
	for dx := -1; dx <= w; dx++ {
		for dy := -1; dy <= h; dy++ {
			if dx >= 0 && dx < w && dy >= 0 && dy < h {
				continue // footprint itself
			}
			cx, cy := x+dx, y+dy
			if cx < 0 || cy < 0 || cx >= s.Width() || cy >= s.Height() {
				continue
			}
			if s[cy][cx] == model.EmptyCell {
				continue
			}
			if dx == -1 && dy == -1 || dx == -1 && dy == h || dx == w && dy == -1 || dx == w && dy == h {
				weight += 0.25
			} else {
				weight += 2.0
			}
		}
	}
	return weight
}

// EmptyNeighborCount counts empty cells in the same 1-cell halo. A high
// count means the piece sits isolated in open space.
func EmptyNeighborCount(s model.Stock, x, y, w, h int) int {
	count := 0
	for dx := -1; dx <= w; dx++ {
		for dy := -1; dy <= h; dy++ {
			if dx >= 0 && dx < w && dy >= 0 && dy < h {
				continue
			}
			cx, cy := x+dx, y+dy
			if cx < 0 || cy < 0 || cx >= s.Width() || cy >= s.Height() {
				continue
			}
			if s[cy][cx] == model.EmptyCell {
				count++
			}
		}
	}
	return count
}

// DistanceToFilled returns the minimum Manhattan distance from (x, y) to
// any occupied cell, or 0 when the stock is entirely empty.
func DistanceToFilled(s model.Stock, x, y int) int {
	best := -1
	for yy := 0; yy < s.Height(); yy++ {
		for xx := 0; xx < s.Width(); xx++ {
			if s[yy][xx] == model.EmptyCell {
				continue
			}
			d := abs(xx-x) + abs(yy-y)
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// EmptyAreaSize flood-fills (4-connectivity) the empty region containing
// (x, y) and returns its size. Returns 0 when the start cell is occupied
// or out of bounds.
func EmptyAreaSize(s model.Stock, x, y int) int {
	if x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return 0
	}
	if s[y][x] != model.EmptyCell {
		return 0
	}

	type cell struct{ x, y int }
	visited := make(map[cell]bool)
	stack := []cell{{x, y}}
	area := 0

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[c] {
			continue
		}
		visited[c] = true
		area++

		for _, d := range [4]cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := c.x+d.x, c.y+d.y
			if nx < 0 || ny < 0 || nx >= s.Width() || ny >= s.Height() {
				continue
			}
			if s[ny][nx] == model.EmptyCell && !visited[cell{nx, ny}] {
				stack = append(stack, cell{nx, ny})
			}
		}
	}
	return area
}

// IsPerfectFit reports whether the rectangle sits flush against existing
// material: in each axis direction at a distance of the piece's own extent,
// the full opposing edge must be occupied. Two such directions, or an
// accumulated alignment quality of 1.5, qualify.
func IsPerfectFit(s model.Stock, x, y, w, h int) bool {
	perfectFits := 0
	alignment := 0.0

	for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		cx := x + d[0]*w
		cy := y + d[1]*h
		if cx < 0 || cy < 0 || cx >= s.Width() || cy >= s.Height() {
			continue
		}
		if d[0] != 0 {
			aligned := 0
			for yy := y; yy < y+h; yy++ {
				if yy >= 0 && yy < s.Height() && s[yy][cx] != model.EmptyCell {
					aligned++
				}
			}
			if aligned == h {
				perfectFits++
				alignment += float64(aligned) / float64(h)
			}
		} else {
			aligned := 0
			for xx := x; xx < x+w; xx++ {
				if xx >= 0 && xx < s.Width() && s[cy][xx] != model.EmptyCell {
					aligned++
				}
			}
			if aligned == w {
				perfectFits++
				alignment += float64(aligned) / float64(w)
			}
		}
	}

	return perfectFits >= 2 || alignment >= 1.5
}

// PatternScore ranks candidate placements for the same decoded action hint.
// Small pieces are pushed toward corners, edges and clusters of other small
// pieces; large pieces toward edge alignment and utilization.
func PatternScore(s model.Stock, x, y, w, h int) float64 {
	stockW, stockH := s.Width(), s.Height()
	score := 0.0

	if w*h < smallPieceArea {
		switch {
		case x == 0 && y == 0:
			score += 3.0
		case x == 0 || y == 0:
			score += 2.0
		}
		score += float64(nearbySmallPieces(s, x, y, w, h)) * 1.5
		score -= float64(DistanceToFilled(s, x, y)) * 0.5
		return score
	}

	if x == 0 || x+w == stockW {
		score += 2.0
	}
	if y == 0 || y+h == stockH {
		score += 2.0
	}
	if (x == 0 || x+w == stockW) && (y == 0 || y+h == stockH) {
		score += 3.0
	}
	score += s.FilledRatio() * 2.0
	return score
}

// nearbySmallPieces counts distinct occupants smaller than smallPieceArea
// within a 3-cell radius of the footprint.
func nearbySmallPieces(s model.Stock, x, y, w, h int) int {
	const padding = 3
	x0 := maxInt(0, x-padding)
	x1 := minInt(s.Width(), x+w+padding)
	y0 := maxInt(0, y-padding)
	y1 := minInt(s.Height(), y+h+padding)

	sizes := make(map[int]int)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			if id := s[yy][xx]; id != model.EmptyCell {
				sizes[id]++
			}
		}
	}

	small := 0
	for _, cells := range sizes {
		if cells < smallPieceArea {
			small++
		}
	}
	return small
}

// gapsAbove counts empty cells directly above the footprint columns.
func gapsAbove(s model.Stock, x, y, w int) int {
	gaps := 0
	for xx := x; xx < x+w; xx++ {
		for yy := 0; yy < y; yy++ {
			if s[yy][xx] == model.EmptyCell {
				gaps++
			}
		}
	}
	return gaps
}

// isolationRisk counts axis directions in which the neighboring empty
// region is smaller than the piece itself, i.e. would likely become
// unusable once the piece is placed.
func isolationRisk(s model.Stock, x, y, w, h int) int {
	risk := 0
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		cx := x + d[0]*w
		cy := y + d[1]*h
		if cx < 0 || cy < 0 || cx >= s.Width() || cy >= s.Height() {
			continue
		}
		area := EmptyAreaSize(s, cx, cy)
		if area > 0 && area < w*h {
			risk++
		}
	}
	return risk
}

// smallGapCount counts cells in a 2-cell padded halo whose connected empty
// region is tiny (1-3 cells).
func smallGapCount(s model.Stock, x, y, w, h int) int {
	const padding = 2
	count := 0
	for dx := -padding; dx < w+padding; dx++ {
		for dy := -padding; dy < h+padding; dy++ {
			cx, cy := x+dx, y+dy
			if cx < 0 || cy < 0 || cx >= s.Width() || cy >= s.Height() {
				continue
			}
			if s[cy][cx] != model.EmptyCell {
				continue
			}
			if size := EmptyAreaSize(s, cx, cy); size > 0 && size < 4 {
				count++
			}
		}
	}
	return count
}

// PatternQuality classifies a realized placement for the reporting series:
// how many axes touch a stock edge and whether it landed in a corner.
func PatternQuality(s model.Stock, p model.Placement) (edgeContact int, corner bool) {
	if p.X == 0 || p.X+p.Width == s.Width() {
		edgeContact++
	}
	if p.Y == 0 || p.Y+p.Height == s.Height() {
		edgeContact++
	}
	corner = (p.X == 0 || p.X+p.Width == s.Width()) &&
		(p.Y == 0 || p.Y+p.Height == s.Height())
	return edgeContact, corner
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
