package policy

import (
	"gonum.org/v1/gonum/stat"
)

// ComputeGAE runs Generalized Advantage Estimation backwards over one
// trajectory. The value after the final index is taken as zero, and the
// accumulator resets across terminal steps.
func ComputeGAE(rewards, values []float64, dones []bool, gamma, lambda float64) []float64 {
	n := len(rewards)
	advantages := make([]float64, n)
	gae := 0.0

	for t := n - 1; t >= 0; t-- {
		nextValue := 0.0
		if t < n-1 {
			nextValue = values[t+1]
		}
		notDone := 1.0
		if dones[t] {
			notDone = 0
		}
		delta := rewards[t] + gamma*nextValue*notDone - values[t]
		gae = delta + gamma*lambda*notDone*gae
		advantages[t] = gae
	}
	return advantages
}

// Standardize returns a zero-mean, unit-variance copy of xs with an eps
// guard against degenerate variance.
func Standardize(xs []float64) []float64 {
	if len(xs) < 2 {
		return make([]float64, len(xs))
	}
	mean := stat.Mean(xs, nil)
	std := stat.StdDev(xs, nil)
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = (v - mean) / (std + 1e-8)
	}
	return out
}
