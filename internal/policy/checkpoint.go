package policy

import (
	"fmt"
)

// Snapshot is the full serializable training state: both networks with
// optimizer moments, the state normalizer, the frozen dimensions and the
// step counter. Settings are stored alongside by the caller, not here.
type Snapshot struct {
	StateDim    int `json:"state_dim"`
	ActionDim   int `json:"action_dim"`
	MaxProducts int `json:"max_products"`
	Steps       int `json:"steps"`

	Actor  NetworkState `json:"actor"`
	Critic NetworkState `json:"critic"`

	NormMean []float64 `json:"norm_mean"`
	NormStd  []float64 `json:"norm_std"`

	ActorLR  float64 `json:"actor_lr"`
	CriticLR float64 `json:"critic_lr"`
}

// Snapshot captures the agent's current training state.
func (a *Agent) Snapshot() (*Snapshot, error) {
	if !a.initialized {
		return nil, ErrNotInitialized
	}
	return &Snapshot{
		StateDim:    a.encoder.StateDim(),
		ActionDim:   a.settings.ActionDim(),
		MaxProducts: a.encoder.maxProducts,
		Steps:       a.steps,
		Actor:       a.ac.actor.state(),
		Critic:      a.ac.critic.state(),
		NormMean:    append([]float64(nil), a.norm.Mean...),
		NormStd:     append([]float64(nil), a.norm.Std...),
		ActorLR:     a.updater.actorLR,
		CriticLR:    a.updater.criticLR,
	}, nil
}

// Restore rebuilds the agent from a snapshot. The agent needs no prior
// Init; the snapshot carries the frozen dimensions. Buffered experiences
// and episode state are discarded.
func (a *Agent) Restore(snap *Snapshot) error {
	if snap.ActionDim != a.settings.ActionDim() {
		return fmt.Errorf("action dim mismatch: settings give %d, snapshot %d",
			a.settings.ActionDim(), snap.ActionDim)
	}
	if snap.MaxProducts < 0 {
		return fmt.Errorf("invalid snapshot: max products %d", snap.MaxProducts)
	}

	enc := NewEncoder(a.settings.MaxStocks)
	enc.maxProducts = snap.MaxProducts
	if enc.StateDim() != snap.StateDim {
		return fmt.Errorf("state dim mismatch: encoder gives %d, snapshot %d",
			enc.StateDim(), snap.StateDim)
	}
	if len(snap.NormMean) != snap.StateDim || len(snap.NormStd) != snap.StateDim {
		return fmt.Errorf("normalizer length mismatch: want %d, got %d/%d",
			snap.StateDim, len(snap.NormMean), len(snap.NormStd))
	}

	ac := NewActorCritic(a.rng, snap.StateDim, snap.ActionDim)
	if err := ac.actor.restore(snap.Actor); err != nil {
		return fmt.Errorf("restore actor: %w", err)
	}
	if err := ac.critic.restore(snap.Critic); err != nil {
		return fmt.Errorf("restore critic: %w", err)
	}

	a.encoder = enc
	a.ac = ac
	a.updater = NewUpdater(a.settings, ac)
	a.updater.actorLR = snap.ActorLR
	a.updater.criticLR = snap.CriticLR
	a.norm = &Normalizer{
		Mean: append([]float64(nil), snap.NormMean...),
		Std:  append([]float64(nil), snap.NormStd...),
	}
	a.steps = snap.Steps
	a.buffer.Clear()
	a.shaper.Reset()
	a.initialized = true
	return nil
}
