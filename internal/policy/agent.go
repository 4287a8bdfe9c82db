package policy

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/piwi3910/CutLearn/internal/engine"
	"github.com/piwi3910/CutLearn/internal/model"
)

// Agent is the complete placement policy: structured warm-up, the learned
// decoder and its fallbacks, reward shaping and the PPO training loop.
// Construction is cheap; Init must run with the first observation before
// any decision, because the network dimensions depend on it.
type Agent struct {
	settings model.TrainSettings

	encoder *Encoder
	norm    *Normalizer
	ac      *ActorCritic
	updater *Updater
	buffer  *Buffer
	shaper  *engine.Shaper
	metrics *model.Metrics
	rng     *rand.Rand

	steps         int
	initialDemand int
	initialized   bool
}

// NewAgent builds an uninitialized agent from settings.
func NewAgent(settings model.TrainSettings) *Agent {
	return &Agent{
		settings: settings,
		encoder:  NewEncoder(settings.MaxStocks),
		buffer:   NewBuffer(),
		shaper:   engine.NewShaper(),
		metrics:  model.NewMetrics(),
		rng:      rand.New(rand.NewSource(settings.Seed)),
	}
}

// Init fixes the state dimensions from the first observation and builds the
// networks. Idempotent; later calls keep the original dimensions.
func (a *Agent) Init(obs model.Observation) {
	if a.initialized {
		return
	}
	a.encoder.Init(obs)
	stateDim := a.encoder.StateDim()
	a.norm = NewNormalizer(stateDim)
	a.ac = NewActorCritic(a.rng, stateDim, a.settings.ActionDim())
	a.updater = NewUpdater(a.settings, a.ac)
	a.initialDemand = obs.RemainingDemand()
	a.initialized = true
	logrus.Infof("[agent] initialized: state dim %d, action dim %d, initial demand %d",
		stateDim, a.settings.ActionDim(), a.initialDemand)
}

// Initialized reports whether Init has run.
func (a *Agent) Initialized() bool {
	return a.initialized
}

// Steps returns the decision counter.
func (a *Agent) Steps() int {
	return a.steps
}

// Metrics exposes the training progress tracker.
func (a *Agent) Metrics() *model.Metrics {
	return a.metrics
}

// Decide produces the next placement, or nil when demand is exhausted or
// nothing fits anywhere. Every call advances the step counter, whichever
// strategy produced the decision.
func (a *Agent) Decide(obs model.Observation, info model.StepInfo) (*model.Placement, error) {
	if !a.initialized {
		return nil, ErrNotInitialized
	}
	if obs.RemainingDemand() == 0 {
		return nil, nil
	}

	step := a.steps
	a.steps++

	// Structured phase: early training, or most of the demand still open.
	remaining := obs.RemainingDemand()
	structured := step < a.settings.WarmupSteps ||
		(a.initialDemand > 0 && float64(remaining) > a.settings.DemandFraction*float64(a.initialDemand))
	if structured {
		if p := engine.StructuredPlacement(obs); p != nil {
			a.recordPlacement(obs, p)
			return p, nil
		}
	}

	p := a.decideLearned(obs, info, step)
	if p == nil {
		p = engine.RandomValidPlacement(obs, a.rng, a.settings.RandomTrials)
	}
	if p == nil {
		p = engine.GreedySearch(obs, a.settings.AttemptBudget)
	}
	if p != nil {
		a.recordPlacement(obs, p)
	}
	return p, nil
}

// decideLearned samples an action from the actor and decodes it, storing
// the experience for the next PPO update. The hint decodes against the
// pre-placement observation; failure to realize it returns nil and the
// stored entry keeps its sampled action regardless.
func (a *Agent) decideLearned(obs model.Observation, info model.StepInfo, step int) *model.Placement {
	raw := a.encoder.Encode(obs, info, step)
	state := a.norm.Normalize(raw)
	a.norm.Update(raw)

	logits := a.ac.Logits(state)

	// Bias the low (unrotated) half toward the best fitting stock; the
	// boost anneals from 3.0 to 1.0 as training progresses.
	if best := engine.BestFittingStock(obs); best >= 0 {
		boost := annealed(3.0, 1.0, step, a.settings.BoostDecaySteps)
		perStock := a.settings.PositionsPerStock()
		start := best * perStock
		for i := start; i < start+perStock && i < len(logits); i++ {
			logits[i] += boost
		}
	}

	// Temperature anneals 1.0 to 0.1, sharpening the distribution.
	temp := annealed(1.0, 0.1, step, a.settings.TempDecaySteps)
	for i := range logits {
		logits[i] /= temp
	}

	action, logProb := sampleCategorical(a.rng, logits)
	value := a.ac.Value(state)

	a.buffer.Append(Experience{
		State:   state,
		Action:  action,
		Value:   value,
		LogProb: logProb,
	})

	return engine.DecodeAction(obs, action, a.settings)
}

// annealed interpolates linearly from start to end over decaySteps.
func annealed(start, end float64, step, decaySteps int) float64 {
	if decaySteps <= 0 || step >= decaySteps {
		return end
	}
	frac := float64(step) / float64(decaySteps)
	return start + (end-start)*frac
}

// recordPlacement feeds the metrics series from the pre-placement grid.
func (a *Agent) recordPlacement(obs model.Observation, p *model.Placement) {
	edgeContact, corner := engine.PatternQuality(obs.Stocks[p.StockIdx], *p)
	a.metrics.RecordPlacement(edgeContact, corner)
}

// Reward scores a realized placement against the post-placement
// observation.
func (a *Agent) Reward(p *model.Placement, obs model.Observation) float64 {
	return a.shaper.Reward(p, obs)
}

// Observe closes the pending experience with the step outcome and runs a
// PPO update once the buffer reaches the trigger size. A call with no
// pending entry, such as after a structured decision, only checks the
// trigger.
func (a *Agent) Observe(reward float64, done bool) error {
	if !a.initialized {
		return ErrNotInitialized
	}
	if a.buffer.Pending() {
		if err := a.buffer.Finalize(reward, done); err != nil {
			return err
		}
	}
	if a.buffer.Len() >= a.settings.BufferTrigger {
		a.updater.Update(a.buffer)
		a.buffer.Clear()
	}
	return nil
}

// ResetEpisode clears per-episode state. Learned state, step counter and
// buffered experiences carry across episodes.
func (a *Agent) ResetEpisode() {
	a.shaper.Reset()
}
