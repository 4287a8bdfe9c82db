package model

// TrainSettings holds every hyperparameter of the placement policy and its
// PPO trainer. The zero value is not usable; start from DefaultSettings.
type TrainSettings struct {
	// Action space geometry
	MaxStocks  int `json:"max_stocks" yaml:"max_stocks"`   // stock slots tracked by the encoder/decoder
	CoarseGrid int `json:"coarse_grid" yaml:"coarse_grid"` // per-stock coarse position grid (side length)

	// Decision protocol
	WarmupSteps    int     `json:"warmup_steps" yaml:"warmup_steps"`       // structured placement below this step count
	DemandFraction float64 `json:"demand_fraction" yaml:"demand_fraction"` // structured placement above this remaining-demand fraction
	AttemptBudget  int     `json:"attempt_budget" yaml:"attempt_budget"`   // greedy search position budget
	RandomTrials   int     `json:"random_trials" yaml:"random_trials"`     // random fallback trials per product/orientation

	// Action sampling
	BoostDecaySteps int `json:"boost_decay_steps" yaml:"boost_decay_steps"` // best-stock logit boost decays 3.0 -> 1.0
	TempDecaySteps  int `json:"temp_decay_steps" yaml:"temp_decay_steps"`   // temperature decays 1.0 -> 0.1

	// PPO
	Gamma           float64 `json:"gamma" yaml:"gamma"`
	GAELambda       float64 `json:"gae_lambda" yaml:"gae_lambda"`
	ClipEpsilon     float64 `json:"clip_epsilon" yaml:"clip_epsilon"`
	EntropyCoef     float64 `json:"entropy_coef" yaml:"entropy_coef"`
	ValueCoef       float64 `json:"value_coef" yaml:"value_coef"`
	L2Coef          float64 `json:"l2_coef" yaml:"l2_coef"`
	UpdateEpochs    int     `json:"update_epochs" yaml:"update_epochs"`
	BufferTrigger   int     `json:"buffer_trigger" yaml:"buffer_trigger"` // update once the buffer reaches this length
	ActorLR         float64 `json:"actor_lr" yaml:"actor_lr"`
	CriticLR        float64 `json:"critic_lr" yaml:"critic_lr"`
	PlateauFactor   float64 `json:"plateau_factor" yaml:"plateau_factor"`
	PlateauPatience int     `json:"plateau_patience" yaml:"plateau_patience"`
	MaxGradNorm     float64 `json:"max_grad_norm" yaml:"max_grad_norm"`

	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultSettings returns the tuned configuration.
func DefaultSettings() TrainSettings {
	return TrainSettings{
		MaxStocks:       100,
		CoarseGrid:      5,
		WarmupSteps:     2000,
		DemandFraction:  0.7,
		AttemptBudget:   1000,
		RandomTrials:    10,
		BoostDecaySteps: 10000,
		TempDecaySteps:  20000,
		Gamma:           0.99,
		GAELambda:       0.95,
		ClipEpsilon:     0.2,
		EntropyCoef:     0.01,
		ValueCoef:       0.25,
		L2Coef:          0.01,
		UpdateEpochs:    10,
		BufferTrigger:   128,
		ActorLR:         3e-4,
		CriticLR:        1e-3,
		PlateauFactor:   0.5,
		PlateauPatience: 5,
		MaxGradNorm:     0.1,
		Seed:            42,
	}
}

// ActionDim returns the discrete action space size: one index per
// (stock slot, coarse cell), doubled for the rotation hint.
func (s TrainSettings) ActionDim() int {
	return 2 * s.MaxStocks * s.CoarseGrid * s.CoarseGrid
}

// PositionsPerStock returns the coarse cell count of one stock slot.
func (s TrainSettings) PositionsPerStock() int {
	return s.CoarseGrid * s.CoarseGrid
}
