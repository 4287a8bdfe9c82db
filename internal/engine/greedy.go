package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/CutLearn/internal/model"
)

// GreedySearch is the exhaustive fallback: products largest-area first,
// both orientations, every stock, every position, scored by
// placementScore. The scan stops once budget positions have been
// examined, returning the best placement found so far. Returns nil only
// when no demand/stock pairing admits a legal placement within budget.
func GreedySearch(obs model.Observation, budget int) *model.Placement {
	products := make([]model.Product, 0, len(obs.Products))
	for _, p := range obs.Products {
		if p.Quantity > 0 {
			products = append(products, p)
		}
	}
	if len(products) == 0 {
		return nil
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Area() > products[j].Area()
	})

	var best *model.Placement
	bestScore := math.Inf(-1)
	attempts := 0

	for _, prod := range products {
		orientations := [2][2]int{
			{prod.Width, prod.Height},
			{prod.Height, prod.Width},
		}
		for oi, o := range orientations {
			w, h := o[0], o[1]
			rotated := oi == 1 && w != h

			for stockIdx, stock := range obs.Stocks {
				if attempts >= budget {
					return best
				}
				stockW, stockH := stock.Width(), stock.Height()
				if stockW < w || stockH < h {
					continue
				}

				for y := 0; y <= stockH-h; y++ {
					for x := 0; x <= stockW-w; x++ {
						attempts++
						if attempts > budget {
							return best
						}
						if !CanPlace(stock, x, y, w, h) {
							continue
						}
						score := placementScore(stock, x, y, w, h)
						// Successful rotation earns a small boost, but only
						// on already-positive scores.
						if rotated && score > 0 {
							score *= 1.05
						}
						if score > bestScore {
							bestScore = score
							best = &model.Placement{
								StockIdx: stockIdx,
								Width:    w,
								Height:   h,
								X:        x,
								Y:        y,
								Rotated:  rotated,
							}
						}
					}
				}
			}
		}
	}

	return best
}

// placementScore is the greedy priority score. Finishing partially filled
// stocks dominates, with steep bonuses for multi-sided adjacency and flush
// fits, and penalties for the waste structures a placement would create.
func placementScore(s model.Stock, x, y, w, h int) float64 {
	stockW, stockH := s.Width(), s.Height()
	score := 0.0

	centerDist := math.Abs(float64(x)+float64(w)/2-float64(stockW/2)) +
		math.Abs(float64(y)+float64(h)/2-float64(stockH/2))

	utilization := s.FilledRatio()
	if utilization > 0 {
		score += 50 // finish what was started

		adjacent := AdjacentWeight(s, x, y, w, h)
		if adjacent >= 2 {
			score += 60 * math.Pow(2, adjacent-1)
		} else {
			score += 30 * adjacent
		}
		if adjacent >= 3 {
			score += 100
		}

		if IsPerfectFit(s, x, y, w, h) {
			score += 50
		}

		if utilization < 0.6 {
			score += math.Max(0, 25-centerDist)
		}
	} else if utilization < 0.3 {
		atCornerX := x == 0 || x+w == stockW
		atCornerY := y == 0 || y+h == stockH
		if atCornerX && atCornerY {
			score += 10
		} else if atCornerX || atCornerY {
			score += 5
		}
	}

	score -= float64(gapsAbove(s, x, y, w)) * 15
	score -= float64(isolationRisk(s, x, y, w, h)) * 20
	score -= float64(smallGapCount(s, x, y, w, h)) * 25

	return score
}
