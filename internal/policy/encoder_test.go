package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutLearn/internal/model"
)

func testObservation(products ...model.Product) model.Observation {
	return model.Observation{
		Stocks:   []model.Stock{model.NewStock(10, 10), model.NewStock(20, 5)},
		Products: products,
	}
}

func TestEncoder_StateDim(t *testing.T) {
	e := NewEncoder(100)
	e.Init(testObservation(
		model.NewProduct("A", 4, 4, 1),
		model.NewProduct("B", 2, 3, 2),
	))

	assert.Equal(t, 100*3+2*3+2, e.StateDim())
}

func TestEncoder_InitFreezesProductCount(t *testing.T) {
	e := NewEncoder(100)
	assert.False(t, e.Initialized())

	e.Init(testObservation(model.NewProduct("A", 4, 4, 1)))
	require.True(t, e.Initialized())
	dim := e.StateDim()

	// A later Init with more products is a no-op.
	e.Init(testObservation(
		model.NewProduct("A", 4, 4, 1),
		model.NewProduct("B", 2, 3, 2),
		model.NewProduct("C", 1, 1, 5),
	))
	assert.Equal(t, dim, e.StateDim())
}

func TestEncoder_EncodeLength(t *testing.T) {
	e := NewEncoder(100)
	obs := testObservation(model.NewProduct("A", 4, 4, 1), model.NewProduct("B", 2, 3, 2))
	e.Init(obs)

	state := e.Encode(obs, model.StepInfo{FilledRatio: 0.25}, 500)
	assert.Len(t, state, e.StateDim())
}

func TestEncoder_StockFeatures(t *testing.T) {
	e := NewEncoder(100)
	obs := testObservation(model.NewProduct("A", 4, 4, 1))
	e.Init(obs)

	state := e.Encode(obs, model.StepInfo{}, 0)

	// First stock: 10x10, empty.
	assert.InDelta(t, 1.0, state[0], 1e-9)
	assert.InDelta(t, 1.0, state[1], 1e-9)
	assert.InDelta(t, 0.0, state[2], 1e-9)
	// Second stock: 20x5.
	assert.InDelta(t, 2.0, state[3], 1e-9)
	assert.InDelta(t, 0.5, state[4], 1e-9)
	// Remaining stock slots are zero padding.
	assert.InDelta(t, 0.0, state[6], 1e-9)
}

func TestEncoder_ExhaustedProductsCompacted(t *testing.T) {
	e := NewEncoder(100)
	obs := testObservation(
		model.NewProduct("gone", 9, 9, 0),
		model.NewProduct("left", 4, 2, 3),
	)
	e.Init(obs)

	state := e.Encode(obs, model.StepInfo{}, 0)

	// The first product slot holds the remaining product, not the
	// exhausted one; the second slot is zero padding.
	base := 100 * 3
	assert.InDelta(t, 0.4, state[base], 1e-9)
	assert.InDelta(t, 0.2, state[base+1], 1e-9)
	assert.InDelta(t, 0.3, state[base+2], 1e-9)
	assert.InDelta(t, 0.0, state[base+3], 1e-9)
}

func TestEncoder_QuantityCapped(t *testing.T) {
	e := NewEncoder(100)
	obs := testObservation(model.NewProduct("many", 1, 1, 500))
	e.Init(obs)

	state := e.Encode(obs, model.StepInfo{}, 0)
	assert.InDelta(t, 1.0, state[100*3+2], 1e-9)
}

func TestEncoder_GlobalFeatures(t *testing.T) {
	e := NewEncoder(100)
	obs := testObservation(model.NewProduct("A", 4, 4, 1))
	e.Init(obs)

	state := e.Encode(obs, model.StepInfo{FilledRatio: 0.75}, 250)
	assert.InDelta(t, 0.75, state[len(state)-2], 1e-9)
	assert.InDelta(t, 0.25, state[len(state)-1], 1e-9)
}

func TestNormalizer_NormalizeDoesNotMutate(t *testing.T) {
	n := NewNormalizer(2)
	n.Mean = []float64{1, 2}
	n.Std = []float64{2, 4}

	out := n.Normalize([]float64{3, 10})
	assert.InDelta(t, 1.0, out[0], 1e-6)
	assert.InDelta(t, 2.0, out[1], 1e-6)
	assert.Equal(t, []float64{1, 2}, n.Mean)
}

func TestNormalizer_UpdateDecay(t *testing.T) {
	n := NewNormalizer(1)
	n.Update([]float64{10})

	assert.InDelta(t, 0.1, n.Mean[0], 1e-9)
	assert.InDelta(t, 0.99*1+0.01*(10-0.1), n.Std[0], 1e-9)
}

func TestNormalizer_FreshIsIdentityShift(t *testing.T) {
	n := NewNormalizer(3)
	out := n.Normalize([]float64{1, -2, 0.5})
	for i, v := range []float64{1, -2, 0.5} {
		assert.InDelta(t, v/(1+1e-8), out[i], 1e-9)
	}
}
