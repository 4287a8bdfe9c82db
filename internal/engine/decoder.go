package engine

import (
	"math/rand"

	"github.com/piwi3910/CutLearn/internal/model"
)

// DecodeAction interprets a discrete action index as a placement hint and
// realizes it. The index splits into a rotation hint (high half), a stock
// slot and a coarse cell; the coarse cell scales proportionally into true
// stock coordinates. Every eligible product is then tried in both
// orientations at the hinted position and the highest PatternScore wins,
// with a 10% bonus for a successful rotated placement. Stock indices past
// the observed stock list are clamped, not rejected.
//
// Returns nil when no product fits the hint; callers fall back to
// RandomValidPlacement or GreedySearch.
func DecodeAction(obs model.Observation, actionIdx int, settings model.TrainSettings) *model.Placement {
	if len(obs.Stocks) == 0 {
		return nil
	}

	perStock := settings.PositionsPerStock()
	coarse := settings.CoarseGrid

	idx := actionIdx
	if idx >= settings.MaxStocks*perStock {
		// Rotation hint: orientation is still resolved by search below,
		// the hint only changes which half of the space was sampled.
		idx -= settings.MaxStocks * perStock
	}

	stockIdx := minInt(idx/perStock, len(obs.Stocks)-1)
	position := idx % perStock
	posX := position / coarse
	posY := position % coarse

	stock := obs.Stocks[stockIdx]
	stockW, stockH := stock.Width(), stock.Height()

	var best *model.Placement
	bestScore := 0.0

	for _, prod := range obs.Products {
		if prod.Quantity <= 0 {
			continue
		}
		orientations := [2][2]int{
			{prod.Width, prod.Height},
			{prod.Height, prod.Width},
		}
		for oi, o := range orientations {
			w, h := o[0], o[1]
			rotated := oi == 1 && w != h

			scaledX := minInt(posX*stockW/coarse, stockW-w)
			scaledY := minInt(posY*stockH/coarse, stockH-h)
			if !CanPlace(stock, scaledX, scaledY, w, h) {
				continue
			}

			score := PatternScore(stock, scaledX, scaledY, w, h)
			if rotated {
				score *= 1.1
			}
			if best == nil || score > bestScore {
				bestScore = score
				best = &model.Placement{
					StockIdx: stockIdx,
					Width:    w,
					Height:   h,
					X:        scaledX,
					Y:        scaledY,
					Rotated:  rotated,
				}
			}
		}
	}

	return best
}

// RandomValidPlacement probes random positions for any eligible product in
// either orientation, bounded by trials attempts per product/orientation.
// Returns nil when every probe fails.
func RandomValidPlacement(obs model.Observation, rng *rand.Rand, trials int) *model.Placement {
	for stockIdx, stock := range obs.Stocks {
		stockW, stockH := stock.Width(), stock.Height()

		for _, prod := range obs.Products {
			if prod.Quantity <= 0 {
				continue
			}
			orientations := [2][2]int{
				{prod.Width, prod.Height},
				{prod.Height, prod.Width},
			}
			for oi, o := range orientations {
				w, h := o[0], o[1]
				if stockW < w || stockH < h {
					continue
				}
				for t := 0; t < trials; t++ {
					x := rng.Intn(stockW - w + 1)
					y := rng.Intn(stockH - h + 1)
					if CanPlace(stock, x, y, w, h) {
						return &model.Placement{
							StockIdx: stockIdx,
							Width:    w,
							Height:   h,
							X:        x,
							Y:        y,
							Rotated:  oi == 1 && w != h,
						}
					}
				}
			}
		}
	}
	return nil
}
