package policy

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Adam optimizer constants.
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// denseLayer is one fully connected layer with its gradient accumulators
// and Adam moment estimates.
type denseLayer struct {
	in, out int

	w *mat.Dense // out x in
	b []float64

	gw *mat.Dense
	gb []float64

	mw, vw *mat.Dense
	mb, vb []float64
}

func newDenseLayer(rng *rand.Rand, in, out int, gain float64) *denseLayer {
	l := &denseLayer{
		in:  in,
		out: out,
		w:   mat.NewDense(out, in, nil),
		b:   make([]float64, out),
		gw:  mat.NewDense(out, in, nil),
		gb:  make([]float64, out),
		mw:  mat.NewDense(out, in, nil),
		vw:  mat.NewDense(out, in, nil),
		mb:  make([]float64, out),
		vb:  make([]float64, out),
	}
	std := gain / math.Sqrt(float64(in))
	for r := 0; r < out; r++ {
		for c := 0; c < in; c++ {
			l.w.Set(r, c, rng.NormFloat64()*std)
		}
	}
	return l
}

// network is a dense ReLU stack with a linear output layer.
type network struct {
	layers []*denseLayer
	step   int // Adam timestep
}

// newNetwork builds a network with the given layer sizes. Hidden layers
// use a sqrt(2) init gain, the output layer lastGain (small for logits so
// the initial policy is near-uniform).
func newNetwork(rng *rand.Rand, lastGain float64, sizes ...int) *network {
	n := &network{}
	for i := 0; i < len(sizes)-1; i++ {
		gain := math.Sqrt2
		if i == len(sizes)-2 {
			gain = lastGain
		}
		n.layers = append(n.layers, newDenseLayer(rng, sizes[i], sizes[i+1], gain))
	}
	return n
}

// forwardCache records layer inputs and pre-activations for backprop.
type forwardCache struct {
	inputs [][]float64 // input to each layer
	pre    [][]float64 // pre-activation output of each layer
}

// forward runs a single state through the network. Single vector in,
// single vector out; batching is done by the caller looping samples.
func (n *network) forward(x []float64) ([]float64, *forwardCache) {
	cache := &forwardCache{}
	cur := x
	for li, l := range n.layers {
		cache.inputs = append(cache.inputs, cur)
		out := make([]float64, l.out)
		for r := 0; r < l.out; r++ {
			sum := l.b[r]
			row := l.w.RawRowView(r)
			for c, v := range cur {
				sum += row[c] * v
			}
			out[r] = sum
		}
		cache.pre = append(cache.pre, out)
		if li < len(n.layers)-1 {
			act := make([]float64, len(out))
			for i, v := range out {
				if v > 0 {
					act[i] = v
				}
			}
			cur = act
		} else {
			cur = out
		}
	}
	return cur, cache
}

// backward accumulates gradients for one sample given dLoss/dOutput.
func (n *network) backward(cache *forwardCache, dout []float64) {
	grad := dout
	for li := len(n.layers) - 1; li >= 0; li-- {
		l := n.layers[li]
		input := cache.inputs[li]

		for r := 0; r < l.out; r++ {
			g := grad[r]
			if g == 0 {
				continue
			}
			l.gb[r] += g
			row := l.gw.RawRowView(r)
			for c, v := range input {
				row[c] += g * v
			}
		}

		if li == 0 {
			return
		}

		dx := make([]float64, l.in)
		for r := 0; r < l.out; r++ {
			g := grad[r]
			if g == 0 {
				continue
			}
			row := l.w.RawRowView(r)
			for c := range dx {
				dx[c] += row[c] * g
			}
		}
		// ReLU gate of the previous layer.
		pre := cache.pre[li-1]
		for c := range dx {
			if pre[c] <= 0 {
				dx[c] = 0
			}
		}
		grad = dx
	}
}

func (n *network) zeroGrad() {
	for _, l := range n.layers {
		l.gw.Zero()
		for i := range l.gb {
			l.gb[i] = 0
		}
	}
}

// gradNorm returns the global L2 norm over all gradient entries.
func (n *network) gradNorm() float64 {
	sum := 0.0
	for _, l := range n.layers {
		sum += mat.Norm(l.gw, 2) * mat.Norm(l.gw, 2)
		for _, g := range l.gb {
			sum += g * g
		}
	}
	return math.Sqrt(sum)
}

// clipGradNorm rescales all gradients so their global norm is at most max.
func (n *network) clipGradNorm(max float64) {
	norm := n.gradNorm()
	if norm <= max || norm == 0 {
		return
	}
	scale := max / norm
	for _, l := range n.layers {
		l.gw.Scale(scale, l.gw)
		for i := range l.gb {
			l.gb[i] *= scale
		}
	}
}

// l2Sum returns the sum of squared parameters (weights and biases).
func (n *network) l2Sum() float64 {
	sum := 0.0
	for _, l := range n.layers {
		norm := mat.Norm(l.w, 2)
		sum += norm * norm
		for _, b := range l.b {
			sum += b * b
		}
	}
	return sum
}

// addL2Grad adds the gradient of coef * l2Sum to the accumulators.
func (n *network) addL2Grad(coef float64) {
	for _, l := range n.layers {
		var scaled mat.Dense
		scaled.Scale(2*coef, l.w)
		l.gw.Add(l.gw, &scaled)
		for i := range l.gb {
			l.gb[i] += 2 * coef * l.b[i]
		}
	}
}

// adamStep applies one Adam update from the accumulated gradients.
func (n *network) adamStep(lr float64) {
	n.step++
	bc1 := 1 - math.Pow(adamBeta1, float64(n.step))
	bc2 := 1 - math.Pow(adamBeta2, float64(n.step))

	for _, l := range n.layers {
		for r := 0; r < l.out; r++ {
			wRow := l.w.RawRowView(r)
			gRow := l.gw.RawRowView(r)
			mRow := l.mw.RawRowView(r)
			vRow := l.vw.RawRowView(r)
			for c := 0; c < l.in; c++ {
				g := gRow[c]
				mRow[c] = adamBeta1*mRow[c] + (1-adamBeta1)*g
				vRow[c] = adamBeta2*vRow[c] + (1-adamBeta2)*g*g
				wRow[c] -= lr * (mRow[c] / bc1) / (math.Sqrt(vRow[c]/bc2) + adamEps)
			}

			g := l.gb[r]
			l.mb[r] = adamBeta1*l.mb[r] + (1-adamBeta1)*g
			l.vb[r] = adamBeta2*l.vb[r] + (1-adamBeta2)*g*g
			l.b[r] -= lr * (l.mb[r] / bc1) / (math.Sqrt(l.vb[r]/bc2) + adamEps)
		}
	}
}

// LayerState is the serializable state of one layer, optimizer moments
// included.
type LayerState struct {
	In      int       `json:"in"`
	Out     int       `json:"out"`
	W       []float64 `json:"w"` // row-major out x in
	B       []float64 `json:"b"`
	MW      []float64 `json:"mw"`
	VW      []float64 `json:"vw"`
	MB      []float64 `json:"mb"`
	VB      []float64 `json:"vb"`
}

// NetworkState is a serializable network snapshot.
type NetworkState struct {
	Step   int          `json:"step"`
	Layers []LayerState `json:"layers"`
}

func (n *network) state() NetworkState {
	st := NetworkState{Step: n.step}
	for _, l := range n.layers {
		raw := func(d *mat.Dense) []float64 {
			out := make([]float64, l.in*l.out)
			copy(out, d.RawMatrix().Data)
			return out
		}
		st.Layers = append(st.Layers, LayerState{
			In: l.in, Out: l.out,
			W:  raw(l.w),
			B:  append([]float64(nil), l.b...),
			MW: raw(l.mw),
			VW: raw(l.vw),
			MB: append([]float64(nil), l.mb...),
			VB: append([]float64(nil), l.vb...),
		})
	}
	return st
}

// restore loads a snapshot, failing on any shape mismatch before touching
// the live parameters.
func (n *network) restore(st NetworkState) error {
	if len(st.Layers) != len(n.layers) {
		return fmt.Errorf("layer count mismatch: have %d, snapshot %d", len(n.layers), len(st.Layers))
	}
	for i, ls := range st.Layers {
		l := n.layers[i]
		if ls.In != l.in || ls.Out != l.out {
			return fmt.Errorf("layer %d shape mismatch: have %dx%d, snapshot %dx%d",
				i, l.out, l.in, ls.Out, ls.In)
		}
		if len(ls.W) != l.in*l.out || len(ls.B) != l.out {
			return fmt.Errorf("layer %d parameter length mismatch", i)
		}
	}
	n.step = st.Step
	for i, ls := range st.Layers {
		l := n.layers[i]
		copy(l.w.RawMatrix().Data, ls.W)
		copy(l.b, ls.B)
		copy(l.mw.RawMatrix().Data, ls.MW)
		copy(l.vw.RawMatrix().Data, ls.VW)
		copy(l.mb, ls.MB)
		copy(l.vb, ls.VB)
	}
	return nil
}

// ActorCritic bundles the two function approximators: the actor emits raw
// per-action scores (no normalization; the caller builds the categorical
// distribution), the critic a scalar value estimate.
type ActorCritic struct {
	actor  *network
	critic *network
}

// NewActorCritic builds both networks for the given dimensions.
func NewActorCritic(rng *rand.Rand, stateDim, actionDim int) *ActorCritic {
	return &ActorCritic{
		actor:  newNetwork(rng, 0.01, stateDim, 256, 128, actionDim),
		critic: newNetwork(rng, 0.01, stateDim, 128, 32, 1),
	}
}

// Logits scores every discrete action for one encoded state.
func (ac *ActorCritic) Logits(state []float64) []float64 {
	out, _ := ac.actor.forward(state)
	return out
}

// Value estimates the state value for one encoded state.
func (ac *ActorCritic) Value(state []float64) float64 {
	out, _ := ac.critic.forward(state)
	return out[0]
}

// softmax returns the stable softmax of raw scores.
func softmax(logits []float64) []float64 {
	maxVal := math.Inf(-1)
	for _, v := range logits {
		if v > maxVal {
			maxVal = v
		}
	}
	exps := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		exps[i] = math.Exp(v - maxVal)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

// sampleCategorical draws one action from the distribution induced by the
// logits and returns it with its log-probability.
func sampleCategorical(rng *rand.Rand, logits []float64) (int, float64) {
	probs := softmax(logits)
	r := rng.Float64()
	cum := 0.0
	action := len(probs) - 1
	for i, p := range probs {
		cum += p
		if r < cum {
			action = i
			break
		}
	}
	return action, math.Log(probs[action] + 1e-8)
}
