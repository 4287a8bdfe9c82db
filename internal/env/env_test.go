package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutLearn/internal/engine"
	"github.com/piwi3910/CutLearn/internal/model"
)

func singleStockJob(qty int) Job {
	return Job{
		Name:     "test",
		Stocks:   []StockSpec{{Width: 10, Height: 10, Quantity: 1}},
		Products: []model.Product{model.NewProduct("A", 4, 4, qty)},
	}
}

func TestEnvironment_ResetBuildsGrids(t *testing.T) {
	e := New(Job{
		Stocks:   []StockSpec{{Width: 10, Height: 10, Quantity: 2}, {Width: 5, Height: 8, Quantity: 1}},
		Products: []model.Product{model.NewProduct("A", 2, 2, 3)},
	})

	obs := e.Reset()
	require.Len(t, obs.Stocks, 3)
	assert.Equal(t, 10, obs.Stocks[0].Width())
	assert.Equal(t, 5, obs.Stocks[2].Width())
	assert.Equal(t, 8, obs.Stocks[2].Height())
	assert.Equal(t, 3, obs.RemainingDemand())
}

func TestEnvironment_StepAppliesPlacement(t *testing.T) {
	e := New(singleStockJob(1))
	e.Reset()

	obs, info, err := e.Step(model.Placement{StockIdx: 0, Width: 4, Height: 4, X: 0, Y: 0})
	require.NoError(t, err)

	assert.Equal(t, 16, obs.Stocks[0].UsedCells())
	assert.Equal(t, 0, obs.Stocks[0].At(0, 0), "cells carry the stamped piece id")
	assert.Equal(t, 0, obs.Products[0].Quantity)
	assert.InDelta(t, 0.16, info.FilledRatio, 1e-9)
	assert.True(t, e.Done())
}

func TestEnvironment_StepRejectsOverlap(t *testing.T) {
	e := New(singleStockJob(2))
	e.Reset()

	_, _, err := e.Step(model.Placement{StockIdx: 0, Width: 4, Height: 4, X: 0, Y: 0})
	require.NoError(t, err)

	_, _, err = e.Step(model.Placement{StockIdx: 0, Width: 4, Height: 4, X: 2, Y: 2})
	assert.ErrorIs(t, err, ErrInvalidPlacement)
	assert.Equal(t, 1, e.Observation().Products[0].Quantity, "demand untouched on rejection")
}

func TestEnvironment_StepRejectsBadStockIndex(t *testing.T) {
	e := New(singleStockJob(1))
	e.Reset()

	_, _, err := e.Step(model.Placement{StockIdx: 5, Width: 4, Height: 4})
	assert.ErrorIs(t, err, ErrInvalidPlacement)
}

func TestEnvironment_StepRejectsUnknownSize(t *testing.T) {
	e := New(singleStockJob(1))
	e.Reset()

	_, _, err := e.Step(model.Placement{StockIdx: 0, Width: 3, Height: 3, X: 0, Y: 0})
	assert.ErrorIs(t, err, ErrInvalidPlacement)
}

func TestEnvironment_StepMatchesRotatedProduct(t *testing.T) {
	e := New(Job{
		Stocks:   []StockSpec{{Width: 10, Height: 10, Quantity: 1}},
		Products: []model.Product{model.NewProduct("A", 2, 6, 1)},
	})
	e.Reset()

	_, _, err := e.Step(model.Placement{StockIdx: 0, Width: 6, Height: 2, X: 0, Y: 0, Rotated: true})
	require.NoError(t, err)
	assert.True(t, e.Done())
}

func TestEnvironment_PlacementsGroupedByStock(t *testing.T) {
	e := New(Job{
		Stocks:   []StockSpec{{Width: 10, Height: 10, Quantity: 2}},
		Products: []model.Product{model.NewProduct("A", 4, 4, 2)},
	})
	e.Reset()

	_, _, err := e.Step(model.Placement{StockIdx: 0, Width: 4, Height: 4, X: 0, Y: 0})
	require.NoError(t, err)
	_, _, err = e.Step(model.Placement{StockIdx: 1, Width: 4, Height: 4, X: 0, Y: 0})
	require.NoError(t, err)

	placed := e.Placements()
	require.Len(t, placed, 2)
	assert.Len(t, placed[0], 1)
	assert.Len(t, placed[1], 1)
	assert.Equal(t, 0, placed[0][0].Piece)
	assert.Equal(t, 1, placed[1][0].Piece)
}

func TestEnvironment_ResetStartsFresh(t *testing.T) {
	e := New(singleStockJob(1))
	e.Reset()
	_, _, err := e.Step(model.Placement{StockIdx: 0, Width: 4, Height: 4, X: 0, Y: 0})
	require.NoError(t, err)

	obs := e.Reset()
	assert.Equal(t, 0, obs.Stocks[0].UsedCells())
	assert.Equal(t, 1, obs.RemainingDemand())
	assert.Equal(t, 1, e.Episode())
	assert.Equal(t, 0, e.Steps())
}

// Full protocol run: structured placement fills the single demand at the
// origin, and the follow-up decision with exhausted demand yields nothing.
func TestEnvironment_EndToEndSingleProduct(t *testing.T) {
	e := New(singleStockJob(1))
	obs := e.Reset()

	p := engine.StructuredPlacement(obs)
	require.NotNil(t, p)
	assert.Equal(t, 0, p.StockIdx)
	assert.Equal(t, 4, p.Width)
	assert.Equal(t, 4, p.Height)
	assert.Equal(t, 0, p.X)
	assert.Equal(t, 0, p.Y)

	obs, _, err := e.Step(*p)
	require.NoError(t, err)
	require.True(t, e.Done())

	assert.Nil(t, engine.StructuredPlacement(obs))
	assert.Nil(t, engine.GreedySearch(obs, 1000))
}
