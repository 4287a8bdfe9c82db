// Package env provides a reference grid environment for running the
// placement policy end to end: it owns the stocks and demands, applies
// placements and reports episode progress.
package env

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/piwi3910/CutLearn/internal/engine"
	"github.com/piwi3910/CutLearn/internal/model"
)

// ErrInvalidPlacement is returned when a placement fails validation
// against the current grids or demands.
var ErrInvalidPlacement = errors.New("env: invalid placement")

// StockSpec declares one group of identical stock sheets.
type StockSpec struct {
	Width    int `json:"width" yaml:"width"`
	Height   int `json:"height" yaml:"height"`
	Quantity int `json:"quantity" yaml:"quantity"`
}

// Job is a complete cutting task: the available sheets and the demanded
// pieces.
type Job struct {
	Name     string          `json:"name" yaml:"name"`
	Stocks   []StockSpec     `json:"stocks" yaml:"stocks"`
	Products []model.Product `json:"products" yaml:"products"`
}

// PlacedPiece records one applied placement together with the id stamped
// into the grid and the product it consumed.
type PlacedPiece struct {
	Piece     int             `json:"piece"`
	ProductID string          `json:"product_id"`
	Placement model.Placement `json:"placement"`
}

// Environment is a single-episode world the agent acts in. Not safe for
// concurrent use.
type Environment struct {
	job      Job
	stocks   []model.Stock
	products []model.Product

	placed  [][]PlacedPiece // per stock
	nextID  int
	steps   int
	episode int
}

// New builds an environment for the job. Reset must run before the first
// step.
func New(job Job) *Environment {
	return &Environment{job: job, episode: -1}
}

// Reset starts a fresh episode: empty grids, full demand.
func (e *Environment) Reset() model.Observation {
	e.stocks = e.stocks[:0]
	for _, spec := range e.job.Stocks {
		for i := 0; i < spec.Quantity; i++ {
			e.stocks = append(e.stocks, model.NewStock(spec.Width, spec.Height))
		}
	}
	e.products = make([]model.Product, len(e.job.Products))
	copy(e.products, e.job.Products)

	e.placed = make([][]PlacedPiece, len(e.stocks))
	e.nextID = 0
	e.steps = 0
	e.episode++
	logrus.Infof("[env] episode %d: %d stocks, %d demand", e.episode, len(e.stocks), e.demand())
	return e.Observation()
}

// Observation returns the current stocks and demands. Grids are shared,
// not copied; the policy core treats them as read-only.
func (e *Environment) Observation() model.Observation {
	return model.Observation{Stocks: e.stocks, Products: e.products}
}

// Info returns the observation side channel.
func (e *Environment) Info() model.StepInfo {
	return model.StepInfo{FilledRatio: engine.CorrectedFilledRatio(e.stocks)}
}

// Step validates and applies a placement, stamping a fresh piece id into
// the target grid and decrementing the matched product's quantity. The
// placement must match a product with remaining quantity in either
// orientation.
func (e *Environment) Step(p model.Placement) (model.Observation, model.StepInfo, error) {
	if p.StockIdx < 0 || p.StockIdx >= len(e.stocks) {
		return e.Observation(), e.Info(), fmt.Errorf("%w: stock index %d of %d",
			ErrInvalidPlacement, p.StockIdx, len(e.stocks))
	}
	stock := e.stocks[p.StockIdx]
	if !engine.CanPlace(stock, p.X, p.Y, p.Width, p.Height) {
		return e.Observation(), e.Info(), fmt.Errorf("%w: %dx%d at (%d,%d) does not fit",
			ErrInvalidPlacement, p.Width, p.Height, p.X, p.Y)
	}

	prodIdx := e.matchProduct(p.Width, p.Height)
	if prodIdx < 0 {
		return e.Observation(), e.Info(), fmt.Errorf("%w: no demand for %dx%d",
			ErrInvalidPlacement, p.Width, p.Height)
	}

	id := e.nextID
	e.nextID++
	for y := p.Y; y < p.Y+p.Height; y++ {
		for x := p.X; x < p.X+p.Width; x++ {
			stock[y][x] = id
		}
	}
	e.products[prodIdx].Quantity--
	e.placed[p.StockIdx] = append(e.placed[p.StockIdx], PlacedPiece{
		Piece:     id,
		ProductID: e.products[prodIdx].ID,
		Placement: p,
	})
	e.steps++
	return e.Observation(), e.Info(), nil
}

// matchProduct finds a product with remaining quantity whose declared
// dimensions match the placement size directly or rotated.
func (e *Environment) matchProduct(w, h int) int {
	for i, prod := range e.products {
		if prod.Quantity <= 0 {
			continue
		}
		if (prod.Width == w && prod.Height == h) || (prod.Width == h && prod.Height == w) {
			return i
		}
	}
	return -1
}

// Done reports whether the episode is over: demand exhausted.
func (e *Environment) Done() bool {
	return e.demand() == 0
}

// Steps returns the number of applied placements this episode.
func (e *Environment) Steps() int {
	return e.steps
}

// Episode returns the zero-based episode counter.
func (e *Environment) Episode() int {
	return e.episode
}

// Placements returns the applied pieces grouped by stock index.
func (e *Environment) Placements() [][]PlacedPiece {
	return e.placed
}

func (e *Environment) demand() int {
	total := 0
	for _, p := range e.products {
		total += p.Quantity
	}
	return total
}
