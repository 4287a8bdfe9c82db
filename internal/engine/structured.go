package engine

import "github.com/piwi3910/CutLearn/internal/model"

// StructuredPlacement is the deterministic warm-up strategy: place the
// single largest remaining product corner-first on an empty stock, then
// edge-aligned on any stock. Returns nil when no corner or edge position
// admits the product anywhere.
func StructuredPlacement(obs model.Observation) *model.Placement {
	largest := obs.LargestProduct()
	if largest == nil {
		return nil
	}
	w, h := largest.Width, largest.Height

	for stockIdx, stock := range obs.Stocks {
		stockW, stockH := stock.Width(), stock.Height()

		// Corner order: top-left, top-right, bottom-left, bottom-right.
		if stock.IsEmpty() {
			corners := [4][2]int{
				{0, 0},
				{stockW - w, 0},
				{0, stockH - h},
				{stockW - w, stockH - h},
			}
			for _, c := range corners {
				if CanPlace(stock, c[0], c[1], w, h) {
					return &model.Placement{StockIdx: stockIdx, Width: w, Height: h, X: c[0], Y: c[1]}
				}
			}
		}

		// Edge scan: top, left, bottom, right.
		var edges [][2]int
		for x := 0; x <= stockW-w; x++ {
			edges = append(edges, [2]int{x, 0})
		}
		for y := 0; y <= stockH-h; y++ {
			edges = append(edges, [2]int{0, y})
		}
		for x := 0; x <= stockW-w; x++ {
			edges = append(edges, [2]int{x, stockH - h})
		}
		for y := 0; y <= stockH-h; y++ {
			edges = append(edges, [2]int{stockW - w, y})
		}

		for _, e := range edges {
			if CanPlace(stock, e[0], e[1], w, h) {
				return &model.Placement{StockIdx: stockIdx, Width: w, Height: h, X: e[0], Y: e[1]}
			}
		}
	}

	return nil
}

// BestFittingStock picks the stock a hinted action should be biased toward:
// a partially filled stock under 80% occupancy, scored to favor moderate
// fill, else the first untouched stock. Returns -1 when nothing qualifies.
func BestFittingStock(obs model.Observation) int {
	best := -1
	bestScore := 0.0
	firstEmpty := -1

	for idx, stock := range obs.Stocks {
		used := stock.UsedCells()
		if used == 0 {
			if firstEmpty < 0 {
				firstEmpty = idx
			}
			continue
		}
		if used == stock.Area() {
			continue
		}
		utilization := stock.FilledRatio()
		if utilization >= 0.8 {
			continue
		}
		score := 100 + (0.8-utilization)*50
		if best < 0 || score > bestScore {
			bestScore = score
			best = idx
		}
	}

	if best < 0 {
		return firstEmpty
	}
	return best
}
