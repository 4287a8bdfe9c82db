package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStock_AllCellsEmpty(t *testing.T) {
	s := NewStock(4, 3)
	assert.Equal(t, 4, s.Width())
	assert.Equal(t, 3, s.Height())
	assert.Equal(t, 12, s.Area())
	assert.True(t, s.IsEmpty())
	assert.Equal(t, EmptyCell, s.At(3, 2))
}

func TestStock_FilledRatio(t *testing.T) {
	s := NewStock(10, 10)
	assert.Equal(t, 0.0, s.FilledRatio())

	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			s[y][x] = 1
		}
	}
	assert.InDelta(t, 0.5, s.FilledRatio(), 1e-9)
	assert.Equal(t, 50, s.UsedCells())
	assert.False(t, s.IsEmpty())
}

func TestStock_CloneIsIndependent(t *testing.T) {
	s := NewStock(3, 3)
	c := s.Clone()
	c[0][0] = 7

	assert.Equal(t, EmptyCell, s.At(0, 0))
	assert.Equal(t, 7, c.At(0, 0))
}

func TestStock_ZeroSize(t *testing.T) {
	var s Stock
	assert.Equal(t, 0, s.Width())
	assert.Equal(t, 0, s.Height())
	assert.Equal(t, 0.0, s.FilledRatio())
}

func TestNewProduct_AssignsShortID(t *testing.T) {
	p := NewProduct("shelf", 4, 2, 3)
	assert.Len(t, p.ID, 8)
	assert.Equal(t, "shelf", p.Label)
	assert.Equal(t, 8, p.Area())

	q := NewProduct("shelf", 4, 2, 3)
	assert.NotEqual(t, p.ID, q.ID)
}

func TestObservation_RemainingDemand(t *testing.T) {
	obs := Observation{Products: []Product{
		{Quantity: 2}, {Quantity: 0}, {Quantity: 5},
	}}
	assert.Equal(t, 7, obs.RemainingDemand())
}

func TestObservation_LargestProduct(t *testing.T) {
	obs := Observation{Products: []Product{
		{ID: "small", Width: 2, Height: 2, Quantity: 1},
		{ID: "big", Width: 5, Height: 4, Quantity: 1},
		{ID: "biggest-but-gone", Width: 9, Height: 9, Quantity: 0},
	}}

	p := obs.LargestProduct()
	require.NotNil(t, p)
	assert.Equal(t, "big", p.ID)
}

func TestObservation_LargestProductNilWhenExhausted(t *testing.T) {
	obs := Observation{Products: []Product{{Width: 2, Height: 2, Quantity: 0}}}
	assert.Nil(t, obs.LargestProduct())
}

func TestDefaultSettings_ActionSpace(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 5000, s.ActionDim())
	assert.Equal(t, 25, s.PositionsPerStock())
}
