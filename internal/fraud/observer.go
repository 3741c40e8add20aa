// Package fraud implements a narrow anti-cheat Observer hung off the
// table engine's action processing, adapted from prior
// rule-based and weighted-scoring detectors (this package's former
// RuleBasedDetector and RiskScorer) down to the two signals the table
// engine can actually supply without a session/account-history store:
// decision timing and bet sizing relative to the pot. Bot behavior,
// collusion rings and multi-accounting require player session history
// and device/IP fingerprints the User Directory collaborator (spec.md
// §1 non-goals: authentication, device fingerprinting) does not carry
// here, so those detectors are not reconstructed — see DESIGN.md.
package fraud

import (
	"math"
	"sync"
	"time"
)

// Severity classifies a raised Alert the way a prior AntiCheatAlert
// severity field did ("low"/"medium"/"high"/"critical"), collapsed to
// an enum since nothing downstream branches on the string spelling.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// Alert is raised when an observed action crosses a rule threshold.
type Alert struct {
	PlayerID string
	TableID  string
	Rule     string
	Severity Severity
	Score    float64
}

// ActionObservation is the slice of a player action the table engine can
// report without reaching into a session store: how long the player took
// and how the bet compares to the pot.
type ActionObservation struct {
	PlayerID     string
	TableID      string
	DecisionTime time.Duration
	PotSize      int64
	BetAmount    int64
	Timestamp    time.Time
}

// playerHistory is the narrow rolling window an Observer keeps per
// player: just enough to notice implausibly uniform timing, a prior
// "excessive volume"/"win rate" check traded for the one signal this
// scope can compute cheaply.
type playerHistory struct {
	decisionTimes []time.Duration
	potRatios     []float64
}

const historyWindow = 20

// ScoringWeights mirrors a prior RiskScoringConfig's score weights,
// trimmed to the two signals this Observer computes.
type ScoringWeights struct {
	TimingUniformityWeight   float64
	PotRatioUniformityWeight float64
	FlagThreshold            float64
}

// DefaultScoringWeights matches the prior default proportions scaled
// to sum to 1 over the two surviving signals.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		TimingUniformityWeight:  0.55,
		PotRatioUniformityWeight: 0.45,
		FlagThreshold:           0.75,
	}
}

// Observer tracks a rolling per-player action window and raises an Alert
// when timing or bet-sizing becomes suspiciously uniform — the signature
// of a scripted or bot-driven player. Safe for concurrent use; the table
// engine calls Observe from outside its own lock (spec.md §5's
// side-effect-dispatch boundary), same as a ledger withdrawal.
type Observer struct {
	mu      sync.Mutex
	history map[string]*playerHistory
	weights ScoringWeights
}

// NewObserver returns an Observer with the given scoring weights.
func NewObserver(weights ScoringWeights) *Observer {
	return &Observer{
		history: make(map[string]*playerHistory),
		weights: weights,
	}
}

// Observe records one action and returns an Alert if the player's
// rolling window now looks implausibly uniform. A zero-value Alert
// (Severity == SeverityNone) means nothing fired.
func (o *Observer) Observe(obs ActionObservation) Alert {
	o.mu.Lock()
	defer o.mu.Unlock()

	h, ok := o.history[obs.PlayerID]
	if !ok {
		h = &playerHistory{}
		o.history[obs.PlayerID] = h
	}

	h.decisionTimes = append(h.decisionTimes, obs.DecisionTime)
	if len(h.decisionTimes) > historyWindow {
		h.decisionTimes = h.decisionTimes[len(h.decisionTimes)-historyWindow:]
	}
	if obs.PotSize > 0 {
		h.potRatios = append(h.potRatios, float64(obs.BetAmount)/float64(obs.PotSize))
		if len(h.potRatios) > historyWindow {
			h.potRatios = h.potRatios[len(h.potRatios)-historyWindow:]
		}
	}

	if len(h.decisionTimes) < historyWindow {
		return Alert{} // not enough samples yet to judge uniformity
	}

	timingScore := uniformityScore(durationsToFloat(h.decisionTimes))
	potScore := uniformityScore(h.potRatios)
	score := o.weights.TimingUniformityWeight*timingScore + o.weights.PotRatioUniformityWeight*potScore

	if score < o.weights.FlagThreshold {
		return Alert{}
	}
	sev := SeverityMedium
	if score > 0.9 {
		sev = SeverityHigh
	}
	return Alert{
		PlayerID: obs.PlayerID,
		TableID:  obs.TableID,
		Rule:     "uniform_action_pattern",
		Severity: sev,
		Score:    score,
	}
}

// uniformityScore returns 1 for a perfectly constant series and falls
// toward 0 as the coefficient of variation grows, the same
// low-variance-is-suspicious heuristic a prior bot detector scored
// decision-time regularity with, minus the ML model.
func uniformityScore(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	cv := math.Sqrt(variance) / mean
	score := 1 - cv
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func durationsToFloat(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = float64(d)
	}
	return out
}
