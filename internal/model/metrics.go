package model

import "math"

// windowSize bounds the recent-history metric windows.
const windowSize = 10

// window is a fixed-capacity FIFO of recent metric values.
type window struct {
	values []float64
}

func (w *window) push(v float64) {
	w.values = append(w.values, v)
	if len(w.values) > windowSize {
		w.values = w.values[1:]
	}
}

// amendLast rewrites the most recent value, if any.
func (w *window) amendLast(v float64) {
	if len(w.values) > 0 {
		w.values[len(w.values)-1] = v
	}
}

func (w *window) mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values))
}

// EpisodeRecord is one completed episode's summary.
type EpisodeRecord struct {
	Episode     int     `json:"episode"`
	FilledRatio float64 `json:"filled_ratio"`
	Reward      float64 `json:"reward"`
}

// Metrics tracks training progress for reporting. It is purely
// observational: nothing in the decision or update path reads it back.
type Metrics struct {
	BestFilledRatio float64
	BestReward      float64
	BestEpisode     int

	episodes []EpisodeRecord

	recentFilled window
	recentWaste  window
	recentReward window

	// Per-placement series for external rendering.
	EdgeUtilization  []int
	CornerPlacements []int
}

// NewMetrics returns an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{BestReward: math.Inf(-1), BestEpisode: -1}
}

// AddEpisode records a completed episode and updates the best scores.
func (m *Metrics) AddEpisode(episode int, filledRatio, totalReward float64) {
	m.episodes = append(m.episodes, EpisodeRecord{
		Episode:     episode,
		FilledRatio: filledRatio,
		Reward:      totalReward,
	})
	m.recentFilled.push(filledRatio)
	m.recentWaste.push(1 - filledRatio)
	m.recentReward.push(totalReward)

	if filledRatio > m.BestFilledRatio {
		m.BestFilledRatio = filledRatio
	}
	if totalReward > m.BestReward {
		m.BestReward = totalReward
		m.BestEpisode = episode
	}
}

// RecordPlacement appends one placement's edge-contact count and corner flag
// to the reporting series.
func (m *Metrics) RecordPlacement(edgeContact int, corner bool) {
	m.EdgeUtilization = append(m.EdgeUtilization, edgeContact)
	c := 0
	if corner {
		c = 1
	}
	m.CornerPlacements = append(m.CornerPlacements, c)
}

// AmendLastFilledRatio rewrites the newest filled-ratio window entry with a
// corrected value. Bookkeeping only; the window is never read for control.
func (m *Metrics) AmendLastFilledRatio(r float64) {
	m.recentFilled.amendLast(r)
}

// Episodes returns the per-episode records in order.
func (m *Metrics) Episodes() []EpisodeRecord {
	return m.episodes
}

// RecentMeanFilled returns the mean of the recent filled-ratio window.
func (m *Metrics) RecentMeanFilled() float64 {
	return m.recentFilled.mean()
}

// RecentMeanReward returns the mean of the recent reward window.
func (m *Metrics) RecentMeanReward() float64 {
	return m.recentReward.mean()
}
