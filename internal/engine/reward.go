package engine

import (
	"math"

	"github.com/piwi3910/CutLearn/internal/model"
)

// NoPlacementReward is the fixed reward for a step that produced no action.
const NoPlacementReward = -10.0

// Shaper converts a realized placement plus the resulting occupancy into a
// scalar reward. It tracks the previous corrected filled ratio so the
// utilization-progress term rewards the delta, not the absolute level.
type Shaper struct {
	prevFilled float64
}

// NewShaper returns a shaper with zero progress history.
func NewShaper() *Shaper {
	return &Shaper{}
}

// Reset clears the progress history at an episode boundary.
func (sh *Shaper) Reset() {
	sh.prevFilled = 0
}

// Reward scores a placement against the post-placement observation. The
// observation must already contain the placed piece; all occupancy terms
// exclude the footprint itself.
func (sh *Shaper) Reward(p *model.Placement, obs model.Observation) float64 {
	if p == nil {
		return NoPlacementReward
	}

	stock := obs.Stocks[p.StockIdx]
	stockW, stockH := stock.Width(), stock.Height()
	pieceArea := p.Width * p.Height
	reward := 0.0

	// Scatter penalty vs adjacency reward. "Prior material" means the
	// stock holds more than the freshly placed piece.
	adjacent := AdjacentWeight(stock, p.X, p.Y, p.Width, p.Height)
	priorMaterial := stock.UsedCells() > pieceArea
	if adjacent == 0 && priorMaterial {
		distance := distanceToOtherMaterial(stock, p)
		reward += -5.0 * math.Min(8, math.Pow(1.5, math.Min(float64(distance), 4)))
	} else {
		reward += 2.0 * math.Min(5, math.Pow(1.2, math.Min(adjacent, 4)))
	}

	// Top-down fill violation.
	if above := gapsAbove(stock, p.X, p.Y, p.Width); above > 0 {
		reward += -1.0 * math.Min(10, math.Pow(1.2, math.Min(float64(above), 5)))
	}

	// Corner and edge bonuses.
	switch {
	case p.X == 0 && p.Y == 0:
		reward += 8.0
	case p.X == 0 || p.Y == 0:
		reward += 4.0
	}

	// Opening a new stock with a piece too small to justify it.
	if stock.UsedCells() == pieceArea && pieceArea*10 < stockW*stockH*3 {
		usedStocks := 0
		for _, s := range obs.Stocks {
			if !s.IsEmpty() {
				usedStocks++
			}
		}
		reward += -5.0 * math.Min(8, math.Pow(1.2, math.Min(float64(usedStocks), 5)))
	}

	// Utilization progress over stocks that hold material.
	current := CorrectedFilledRatio(obs.Stocks)
	reward += 30.0 * (current - sh.prevFilled)

	// Isolation penalty.
	if empty := EmptyNeighborCount(stock, p.X, p.Y, p.Width, p.Height); empty > 0 {
		reward += -2.0 * math.Min(5, math.Pow(1.2, math.Min(float64(empty), 4)))
	}

	sh.prevFilled = current
	return reward
}

// CorrectedFilledRatio is used area over total area restricted to stocks
// containing any material, so untouched capacity does not dilute the
// signal. Returns 0 when nothing has been placed.
func CorrectedFilledRatio(stocks []model.Stock) float64 {
	usedArea := 0
	totalArea := 0
	for _, s := range stocks {
		used := s.UsedCells()
		if used == 0 {
			continue
		}
		usedArea += used
		totalArea += s.Area()
	}
	if totalArea == 0 {
		return 0
	}
	return float64(usedArea) / float64(totalArea)
}

// distanceToOtherMaterial is the minimum Manhattan distance from the
// placement origin to any occupied cell outside the placed footprint.
func distanceToOtherMaterial(s model.Stock, p *model.Placement) int {
	best := -1
	for yy := 0; yy < s.Height(); yy++ {
		for xx := 0; xx < s.Width(); xx++ {
			if s[yy][xx] == model.EmptyCell {
				continue
			}
			if xx >= p.X && xx < p.X+p.Width && yy >= p.Y && yy < p.Y+p.Height {
				continue
			}
			d := abs(xx-p.X) + abs(yy-p.Y)
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
