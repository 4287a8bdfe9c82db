// Package policy implements the learned half of the cutting-stock agent:
// state encoding, the actor-critic networks, the experience buffer, GAE
// and the clipped-surrogate PPO update.
package policy

import (
	"errors"
	"math"

	"github.com/piwi3910/CutLearn/internal/model"
)

const (
	stockFeatures   = 3 // normalized width, height, occupancy ratio
	productFeatures = 3 // normalized width, height, capped quantity
	globalFeatures  = 2 // filled ratio, normalized step count
	dimNorm         = 10.0
	quantityCap     = 10
	stepNorm        = 1000.0
)

// ErrNotInitialized is returned by operations invoked before the first
// observation has fixed the feature dimensions.
var ErrNotInitialized = errors.New("policy: not initialized; call Init with the first observation")

// Encoder maps observations into fixed-length feature vectors. The product
// slot count is frozen by Init at the first observation and never changes:
// later observations with more product types are silently truncated,
// fewer are zero-padded. Stocks beyond maxStocks are likewise truncated.
type Encoder struct {
	maxStocks   int
	maxProducts int
}

// NewEncoder returns an encoder tracking up to maxStocks stock slots.
// It is unusable until Init fixes the product dimension.
func NewEncoder(maxStocks int) *Encoder {
	return &Encoder{maxStocks: maxStocks, maxProducts: -1}
}

// Init freezes the product slot count from the first observation.
// Idempotent: subsequent calls are no-ops.
func (e *Encoder) Init(obs model.Observation) {
	if e.maxProducts < 0 {
		e.maxProducts = len(obs.Products)
	}
}

// Initialized reports whether dimensions are fixed.
func (e *Encoder) Initialized() bool {
	return e.maxProducts >= 0
}

// StateDim returns the encoded vector length.
func (e *Encoder) StateDim() int {
	return e.maxStocks*stockFeatures + e.maxProducts*productFeatures + globalFeatures
}

// Encode builds the raw (un-normalized) state vector: per-stock summaries,
// per-product summaries with quantities capped at 10, and two global
// progress signals.
func (e *Encoder) Encode(obs model.Observation, info model.StepInfo, steps int) []float64 {
	state := make([]float64, 0, e.StateDim())

	for i := 0; i < len(obs.Stocks) && i < e.maxStocks; i++ {
		s := obs.Stocks[i]
		state = append(state,
			float64(s.Width())/dimNorm,
			float64(s.Height())/dimNorm,
			s.FilledRatio(),
		)
	}
	for len(state) < e.maxStocks*stockFeatures {
		state = append(state, 0, 0, 0)
	}

	productStart := len(state)
	for i := 0; i < len(obs.Products) && i < e.maxProducts; i++ {
		p := obs.Products[i]
		if p.Quantity <= 0 {
			continue
		}
		state = append(state,
			float64(p.Width)/dimNorm,
			float64(p.Height)/dimNorm,
			math.Min(float64(p.Quantity), quantityCap)/quantityCap,
		)
	}
	for len(state) < productStart+e.maxProducts*productFeatures {
		state = append(state, 0, 0, 0)
	}

	state = append(state, info.FilledRatio, float64(steps)/stepNorm)
	return state
}

// Normalizer keeps running per-feature mean and standard deviation,
// updated with exponential decay after each new observation encoding.
// Updating is the caller's responsibility, decoupled from Normalize.
type Normalizer struct {
	Mean []float64
	Std  []float64
}

// NewNormalizer starts at mean 0, std 1 for every feature.
func NewNormalizer(dim int) *Normalizer {
	n := &Normalizer{
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
	}
	for i := range n.Std {
		n.Std[i] = 1
	}
	return n
}

// Normalize returns (x - mean) / (std + eps) without mutating state.
func (n *Normalizer) Normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - n.Mean[i]) / (n.Std[i] + 1e-8)
	}
	return out
}

// Update folds a raw state vector into the running statistics with
// 0.99/0.01 exponential decay.
func (n *Normalizer) Update(x []float64) {
	for i, v := range x {
		n.Mean[i] = 0.99*n.Mean[i] + 0.01*v
		n.Std[i] = 0.99*n.Std[i] + 0.01*math.Abs(v-n.Mean[i])
	}
}
