package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutLearn/internal/model"
)

func testSettings() model.TrainSettings {
	return model.DefaultSettings()
}

func TestDecodeAction_OriginCell(t *testing.T) {
	obs := model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10)},
		Products: []model.Product{model.NewProduct("A", 4, 4, 1)},
	}

	// Action 0: stock 0, coarse cell (0, 0).
	p := DecodeAction(obs, 0, testSettings())
	require.NotNil(t, p)
	assert.Equal(t, 0, p.StockIdx)
	assert.Equal(t, 0, p.X)
	assert.Equal(t, 0, p.Y)
}

func TestDecodeAction_RotationHintHalf(t *testing.T) {
	settings := testSettings()
	obs := model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10)},
		Products: []model.Product{model.NewProduct("A", 4, 4, 1)},
	}

	low := DecodeAction(obs, 0, settings)
	high := DecodeAction(obs, settings.MaxStocks*settings.PositionsPerStock(), settings)
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, *low, *high, "the high half maps to the same hint")
}

func TestDecodeAction_StockIndexClamped(t *testing.T) {
	settings := testSettings()
	obs := model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10), model.NewStock(10, 10)},
		Products: []model.Product{model.NewProduct("A", 2, 2, 1)},
	}

	// An action pointing at stock slot 99 clamps to the last real stock.
	action := 99 * settings.PositionsPerStock()
	p := DecodeAction(obs, action, settings)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.StockIdx)
}

func TestDecodeAction_CoarseCellScaling(t *testing.T) {
	settings := testSettings()
	obs := model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10)},
		Products: []model.Product{model.NewProduct("A", 2, 2, 1)},
	}

	// Coarse cell (4, 4) on a 10x10 stock scales to (8, 8).
	action := 4*settings.CoarseGrid + 4
	p := DecodeAction(obs, action, settings)
	require.NotNil(t, p)
	assert.Equal(t, 8, p.X)
	assert.Equal(t, 8, p.Y)
}

func TestDecodeAction_ClampsToFit(t *testing.T) {
	settings := testSettings()
	obs := model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10)},
		Products: []model.Product{model.NewProduct("A", 4, 4, 1)},
	}

	// Scaled position (8, 8) cannot host a 4x4; it clamps to (6, 6).
	action := 4*settings.CoarseGrid + 4
	p := DecodeAction(obs, action, settings)
	require.NotNil(t, p)
	assert.Equal(t, 6, p.X)
	assert.Equal(t, 6, p.Y)
}

func TestDecodeAction_NothingFits(t *testing.T) {
	stock := model.NewStock(4, 4)
	fill(stock, 0, 0, 4, 4, 0)
	obs := model.Observation{
		Stocks:   []model.Stock{stock},
		Products: []model.Product{model.NewProduct("A", 2, 2, 1)},
	}
	assert.Nil(t, DecodeAction(obs, 0, testSettings()))
}

func TestDecodeAction_NoStocks(t *testing.T) {
	obs := model.Observation{Products: []model.Product{model.NewProduct("A", 2, 2, 1)}}
	assert.Nil(t, DecodeAction(obs, 0, testSettings()))
}

func TestRandomValidPlacement_FindsLegalSpot(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	obs := model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10)},
		Products: []model.Product{model.NewProduct("A", 3, 3, 1)},
	}

	p := RandomValidPlacement(obs, rng, 10)
	require.NotNil(t, p)
	assert.True(t, CanPlace(obs.Stocks[0], p.X, p.Y, p.Width, p.Height))
}

func TestRandomValidPlacement_GivesUp(t *testing.T) {
	stock := model.NewStock(4, 4)
	fill(stock, 0, 0, 4, 4, 0)
	rng := rand.New(rand.NewSource(1))
	obs := model.Observation{
		Stocks:   []model.Stock{stock},
		Products: []model.Product{model.NewProduct("A", 2, 2, 3)},
	}
	assert.Nil(t, RandomValidPlacement(obs, rng, 10))
}

func TestRandomValidPlacement_ReportsRotation(t *testing.T) {
	// A 1x8 piece only fits the 8x1 corridor rotated.
	stock := model.NewStock(8, 3)
	fill(stock, 0, 1, 8, 2, 0)
	rng := rand.New(rand.NewSource(1))
	obs := model.Observation{
		Stocks:   []model.Stock{stock},
		Products: []model.Product{model.NewProduct("tall", 1, 8, 1)},
	}

	p := RandomValidPlacement(obs, rng, 50)
	require.NotNil(t, p)
	assert.True(t, p.Rotated)
	assert.Equal(t, 8, p.Width)
	assert.Equal(t, 1, p.Height)
}
