package policy

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/piwi3910/CutLearn/internal/model"
)

// plateau reduces a learning rate when its tracked metric stops improving,
// after patience consecutive non-improving observations.
type plateau struct {
	maximize bool
	patience int
	best     float64
	bad      int
	started  bool
}

func newPlateau(maximize bool, patience int) *plateau {
	return &plateau{maximize: maximize, patience: patience}
}

// observe feeds one metric value and reports whether the rate should be
// reduced now.
func (p *plateau) observe(metric float64) bool {
	if !p.started {
		p.started = true
		p.best = metric
		return false
	}
	improved := metric > p.best
	if !p.maximize {
		improved = metric < p.best
	}
	if improved {
		p.best = metric
		p.bad = 0
		return false
	}
	p.bad++
	if p.bad > p.patience {
		p.bad = 0
		return true
	}
	return false
}

// UpdateStats summarizes one PPO update for logging and tests.
type UpdateStats struct {
	Samples    int
	ActorLoss  float64
	CriticLoss float64
	Entropy    float64
	MeanReward float64
	ActorLR    float64
	CriticLR   float64
}

// Updater runs the clipped-surrogate PPO update over a drained buffer.
type Updater struct {
	settings model.TrainSettings
	ac       *ActorCritic

	actorLR     float64
	criticLR    float64
	actorSched  *plateau
	criticSched *plateau
}

// NewUpdater wires an updater to the given networks.
func NewUpdater(settings model.TrainSettings, ac *ActorCritic) *Updater {
	return &Updater{
		settings:    settings,
		ac:          ac,
		actorLR:     settings.ActorLR,
		criticLR:    settings.CriticLR,
		actorSched:  newPlateau(true, settings.PlateauPatience),
		criticSched: newPlateau(false, settings.PlateauPatience),
	}
}

// Update runs the configured number of full-batch passes over the buffer
// contents, then adapts both learning rates from observed performance.
// An empty buffer is a no-op. The caller clears the buffer afterwards.
func (u *Updater) Update(buf *Buffer) UpdateStats {
	entries := buf.Entries()
	n := len(entries)
	if n == 0 {
		return UpdateStats{}
	}

	rewards := make([]float64, n)
	oldValues := make([]float64, n)
	oldLogProbs := make([]float64, n)
	dones := make([]bool, n)
	for i, e := range entries {
		rewards[i] = e.Reward
		oldValues[i] = e.Value
		oldLogProbs[i] = e.LogProb
		dones[i] = e.Done
	}

	advantages := ComputeGAE(rewards, oldValues, dones, u.settings.Gamma, u.settings.GAELambda)
	returns := make([]float64, n)
	for i := range returns {
		returns[i] = advantages[i] + oldValues[i]
	}
	returns = Standardize(returns)
	advantages = Standardize(advantages)

	logrus.Infof("[ppo] updating networks with %d samples", n)

	eps := u.settings.ClipEpsilon
	var stats UpdateStats
	stats.Samples = n

	for epoch := 0; epoch < u.settings.UpdateEpochs; epoch++ {
		u.ac.actor.zeroGrad()
		u.ac.critic.zeroGrad()

		actorLoss := 0.0
		criticLoss := 0.0
		entropySum := 0.0
		invN := 1.0 / float64(n)

		for i, e := range entries {
			logits, actorCache := u.ac.actor.forward(e.State)
			probs := softmax(logits)
			newLogProb := math.Log(probs[e.Action] + 1e-8)

			entropy := 0.0
			for _, p := range probs {
				if p > 0 {
					entropy -= p * math.Log(p)
				}
			}
			entropySum += entropy

			ratio := math.Exp(newLogProb - oldLogProbs[i])
			surr1 := ratio * advantages[i]
			clipped := math.Max(math.Min(ratio, 1+eps), 1-eps)
			surr2 := clipped * advantages[i]
			actorLoss += -math.Min(surr1, surr2) * invN

			// d(actor loss)/d(newLogProb): zero when the clipped branch is
			// active and flat, else -ratio * advantage.
			gradLogProb := 0.0
			if surr1 <= surr2 || (ratio > 1-eps && ratio < 1+eps) {
				gradLogProb = -ratio * advantages[i] * invN
			}

			dlogits := make([]float64, len(logits))
			entCoef := u.settings.EntropyCoef * invN
			for k := range logits {
				indicator := 0.0
				if k == e.Action {
					indicator = 1
				}
				// Clipped surrogate through logprob, plus the entropy
				// bonus term -c*H whose gradient is c*p*(log p + H).
				dlogits[k] = gradLogProb*(indicator-probs[k]) +
					entCoef*probs[k]*(math.Log(probs[k]+1e-8)+entropy)
			}
			u.ac.actor.backward(actorCache, dlogits)

			valueOut, criticCache := u.ac.critic.forward(e.State)
			value := valueOut[0]
			valueClipped := oldValues[i] + math.Max(math.Min(value-oldValues[i], eps), -eps)
			loss1 := (value - returns[i]) * (value - returns[i])
			loss2 := (valueClipped - returns[i]) * (valueClipped - returns[i])
			criticLoss += u.settings.ValueCoef * math.Max(loss1, loss2) * invN

			gradValue := 0.0
			if loss1 >= loss2 {
				gradValue = 2 * (value - returns[i])
			} else if math.Abs(value-oldValues[i]) < eps {
				gradValue = 2 * (valueClipped - returns[i])
			}
			u.ac.critic.backward(criticCache, []float64{u.settings.ValueCoef * gradValue * invN})
		}

		criticLoss += u.settings.L2Coef * u.ac.critic.l2Sum()
		u.ac.critic.addL2Grad(u.settings.L2Coef)

		u.ac.actor.clipGradNorm(u.settings.MaxGradNorm)
		u.ac.critic.clipGradNorm(u.settings.MaxGradNorm)
		u.ac.actor.adamStep(u.actorLR)
		u.ac.critic.adamStep(u.criticLR)

		stats.ActorLoss = actorLoss
		stats.CriticLoss = criticLoss
		stats.Entropy = entropySum * invN
		logrus.Debugf("[ppo] epoch %d losses actor=%.3f critic=%.3f", epoch, actorLoss, criticLoss)
	}

	meanReward := 0.0
	for _, r := range rewards {
		meanReward += r
	}
	meanReward /= float64(n)
	stats.MeanReward = meanReward

	if u.actorSched.observe(meanReward) {
		u.actorLR *= u.settings.PlateauFactor
		logrus.Infof("[ppo] actor lr reduced to %g", u.actorLR)
	}
	if u.criticSched.observe(stats.CriticLoss) {
		u.criticLR *= u.settings.PlateauFactor
		logrus.Infof("[ppo] critic lr reduced to %g", u.criticLR)
	}
	stats.ActorLR = u.actorLR
	stats.CriticLR = u.criticLR

	return stats
}
