// Package variant implements bet-legality rules per betting structure
// (spec.md §4.3.4), in the same per-variant shape as a prior
// RulesEngine (CalculateMinBet/CalculateMinRaise/ValidateBetSizing),
// kept as a small interface so NoLimit/PotLimit/FixedLimit/SpreadLimit
// plug in the same way a prior RulesEngine + EngineRegistry did.
package variant

import "fmt"

// RoundState is the subset of Hand state a BettingRules implementation
// needs to compute a legal raise range, kept narrow and decoupled from
// internal/table's Hand type so this package has no import cycle back.
type RoundState struct {
	Pot            int64
	HighestBet     int64
	LastRaise      int64
	PlayerStake    int64
	PlayerBet      int64 // this player's currentTotalBet already in
	BetsThisStreet int
	IsOpeningOrFlop bool // FixedLimit: small bet streets vs big bet streets
}

// BettingRules computes the legal raise-to range for a betting structure.
// min/max are raise-TO amounts (the total currentTotalBet after the
// action), not increments. A player going all-in below min is always
// legal (spec.md §4.3.4 "Going all-in is always legal").
type BettingRules interface {
	LegalRaiseRange(r RoundState) (min, max int64, err error)
	MaxBetsPerStreet() int // 0 means unlimited
}

var (
	ErrNoLegalRaise = fmt.Errorf("no legal raise available")
)

// NoLimitRules implements spec.md §4.3.4 NoLimit(smallBlind).
type NoLimitRules struct {
	BigBlind int64
}

func (n NoLimitRules) LegalRaiseRange(r RoundState) (int64, int64, error) {
	minRaiseIncrement := r.LastRaise
	if minRaiseIncrement == 0 {
		minRaiseIncrement = n.BigBlind
	}
	min := r.HighestBet + minRaiseIncrement
	max := r.PlayerStake + r.PlayerBet
	if max < min {
		min = max // all-in short of a full raise is still legal
	}
	return min, max, nil
}

func (n NoLimitRules) MaxBetsPerStreet() int { return 0 }

// PotLimitRules implements spec.md §4.3.4 PotLimit(smallBlind): max
// raise-to = (current pot + amount to call) after the caller calls.
type PotLimitRules struct {
	BigBlind int64
}

func (p PotLimitRules) LegalRaiseRange(r RoundState) (int64, int64, error) {
	minRaiseIncrement := r.LastRaise
	if minRaiseIncrement == 0 {
		minRaiseIncrement = p.BigBlind
	}
	min := r.HighestBet + minRaiseIncrement
	amountToCall := r.HighestBet - r.PlayerBet
	potAfterCall := r.Pot + amountToCall
	max := r.HighestBet + potAfterCall
	stakeCap := r.PlayerStake + r.PlayerBet
	if max > stakeCap {
		max = stakeCap
	}
	if max < min {
		min = max
	}
	return min, max, nil
}

func (p PotLimitRules) MaxBetsPerStreet() int { return 0 }

// FixedLimitRules implements spec.md §4.3.4 FixedLimit(small, big): only
// two legal raise sizes, small during Opening/Flop and big during
// Turn/River, max 4 bets per street (open + 3 raises).
type FixedLimitRules struct {
	Small int64
	Big   int64
}

func (f FixedLimitRules) LegalRaiseRange(r RoundState) (int64, int64, error) {
	size := f.Big
	if r.IsOpeningOrFlop {
		size = f.Small
	}
	raiseTo := r.HighestBet + size
	stakeCap := r.PlayerStake + r.PlayerBet
	if raiseTo > stakeCap {
		raiseTo = stakeCap
	}
	return raiseTo, raiseTo, nil
}

func (f FixedLimitRules) MaxBetsPerStreet() int { return 4 }

// SpreadLimitRules implements spec.md §4.3.4 SpreadLimit(min, max): raise
// size in [min, max].
type SpreadLimitRules struct {
	Min int64
	Max int64
}

func (s SpreadLimitRules) LegalRaiseRange(r RoundState) (int64, int64, error) {
	min := r.HighestBet + s.Min
	max := r.HighestBet + s.Max
	stakeCap := r.PlayerStake + r.PlayerBet
	if max > stakeCap {
		max = stakeCap
	}
	if min > stakeCap {
		min = stakeCap
	}
	return min, max, nil
}

func (s SpreadLimitRules) MaxBetsPerStreet() int { return 0 }
