package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/CutLearn/internal/model"
)

// point is a 2D coordinate in drawing units.
type point struct {
	x, y float64
}

// dxfSegment is a line segment used for chaining loose LINE entities into
// closed loops.
type dxfSegment struct {
	start, end point
}

// ImportDXF imports product demands from a DXF drawing. Each closed shape
// (LWPOLYLINE or chain of connected LINEs) becomes one demand entry sized
// by its bounding box, rounded to whole grid cells, quantity 1. Drawing
// units are assumed to equal grid cells.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes [][]point
	var segments []dxfSegment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			var pts []point
			for _, v := range e.Vertices {
				pts = append(pts, point{x: v[0], y: v[1]})
			}
			if len(pts) >= 3 {
				shapes = append(shapes, pts)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Line:
			segments = append(segments, dxfSegment{
				start: point{x: e.Start[0], y: e.Start[1]},
				end:   point{x: e.End[0], y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped.
		}
	}

	shapes = append(shapes, chainDXFSegments(segments, 0.01)...)

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, shape := range shapes {
		w, h := boundingBox(shape)
		width := int(math.Round(w))
		height := int(math.Round(h))
		if width < 1 || height < 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", w, h))
			continue
		}
		result.Products = append(result.Products,
			model.NewProduct(fmt.Sprintf("DXF Shape %d", i+1), width, height, 1))
	}

	return result
}

// boundingBox returns the width and height of the axis-aligned bounding
// box of a point set.
func boundingBox(pts []point) (w, h float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.x)
		minY = math.Min(minY, p.y)
		maxX = math.Max(maxX, p.x)
		maxY = math.Max(maxY, p.y)
	}
	return maxX - minX, maxY - minY
}

// chainDXFSegments connects individual segments into closed loops.
// tolerance is the maximum endpoint distance considered connected.
func chainDXFSegments(segs []dxfSegment, tolerance float64) [][]point {
	used := make([]bool, len(segs))
	var shapes [][]point

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Only closed chains count as shapes.
		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			shapes = append(shapes, chain[:len(chain)-1])
		}
	}

	return shapes
}

func pointsClose(a, b point, tolerance float64) bool {
	dx := a.x - b.x
	dy := a.y - b.y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}
