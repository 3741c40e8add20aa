package tournament

import (
	"math"

	"tablestakes/internal/randsrc"
)

// PayoutTier is one band of the payout structure: every finishing
// position in [StartPosition, EndPosition] receives Percentage of the
// prize pool, split evenly among the positions in the band.
type PayoutTier struct {
	StartPosition int
	EndPosition   int
	Percentage    float64
}

// CalculatePayoutStructure derives a deterministic payout table from the
// entry count and tournament type (spec.md §4.5.5): fewer entries pay
// fewer positions, freerolls flatten the split, spin-and-go pays the
// winner alone (its prize pool size is instead set by the multiplier
// draw, see DrawSpinGoMultiplier).
func CalculatePayoutStructure(totalEntries int, tt TournamentType) []PayoutTier {
	if totalEntries <= 0 {
		return nil
	}
	if tt == TypeSpinAndGo {
		return []PayoutTier{{StartPosition: 1, EndPosition: 1, Percentage: 100}}
	}

	paid := paidPositionCount(totalEntries, tt)
	weights := make([]float64, paid)
	total := 0.0
	for i := range weights {
		var w float64
		if tt == TypeFreeroll {
			w = 1 // flat split across every paid position
		} else {
			w = float64(paid - i) // linear decreasing: paid, paid-1, ..., 1
		}
		weights[i] = w
		total += w
	}

	tiers := make([]PayoutTier, paid)
	for i, w := range weights {
		tiers[i] = PayoutTier{
			StartPosition: i + 1,
			EndPosition:   i + 1,
			Percentage:    w / total * 100,
		}
	}
	return tiers
}

// paidPositionCount picks what fraction of the field gets paid, tuned per
// tournament type (spec.md §4.5.5: "fewer entries → fewer paid
// positions; flatter for freerolls").
func paidPositionCount(totalEntries int, tt TournamentType) int {
	var frac float64
	switch tt {
	case TypeFreeroll:
		frac = 0.20
	case TypeMultiTable:
		frac = 0.12
	default:
		frac = 0.15
	}
	n := int(math.Ceil(float64(totalEntries) * frac))
	if n < 1 {
		n = 1
	}
	if n > totalEntries {
		n = totalEntries
	}
	return n
}

// SpinGoOutcome is one entry of the fixed spin-and-go multiplier
// distribution (spec.md §4.5.6).
type SpinGoOutcome struct {
	Multiplier  int
	Probability float64
}

// SpinGoMultiplierTable is the fixed probability distribution spin-and-go
// prize pools are drawn from. Probabilities sum to 1.
var SpinGoMultiplierTable = []SpinGoOutcome{
	{Multiplier: 2, Probability: 0.75},
	{Multiplier: 5, Probability: 0.21},
	{Multiplier: 10, Probability: 0.03},
	{Multiplier: 100, Probability: 0.009},
	{Multiplier: 1000, Probability: 0.001},
}

// DrawSpinGoMultiplier picks a prize pool multiplier from
// SpinGoMultiplierTable using 32 bytes pulled from src. The draw is
// deterministic given the same bytes, as spec.md §4.5.6 requires.
func DrawSpinGoMultiplier(src randsrc.Source) (int, error) {
	raw, err := src.RawRand()
	if err != nil {
		return 0, err
	}
	var n uint64
	for _, b := range raw[:8] {
		n = n<<8 | uint64(b)
	}
	frac := float64(n) / float64(math.MaxUint64)

	cumulative := 0.0
	for _, outcome := range SpinGoMultiplierTable {
		cumulative += outcome.Probability
		if frac < cumulative {
			return outcome.Multiplier, nil
		}
	}
	return SpinGoMultiplierTable[len(SpinGoMultiplierTable)-1].Multiplier, nil
}
