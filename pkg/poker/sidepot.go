package poker

import "sort"

// SidePot is one contested layer of a hand's chips: Cap is the
// contribution level the layer is filled up to, and EligiblePlayers names
// exactly who can win it.
type SidePot[K comparable] struct {
	Pot             int64
	EligiblePlayers []K
	Cap             int64
}

// ComputeSidePots splits a hand's total contributions into a main pot and
// zero or more side pots, ordered lowest cap first. folded marks players
// no longer eligible to win (they still contributed, so their chips are
// still accounted for). returned carries the chips of every level that
// has exactly one non-folded contributor, credited back to that player —
// those are not a contested pot.
//
// Grounded in the sorted-contribution-levels algorithm from
// lox-pokerforbots' CalculateSidePots, extended with the trailing
// single-eligible-player collapse this engine requires.
func ComputeSidePots[K comparable](contributions map[K]int64, folded map[K]bool) (main int64, sides []SidePot[K], returned map[K]int64) {
	returned = make(map[K]int64)

	type entry struct {
		key    K
		amount int64
	}
	var entries []entry
	for k, amt := range contributions {
		if amt > 0 {
			entries = append(entries, entry{k, amt})
		}
	}
	if len(entries) == 0 {
		return 0, nil, returned
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].amount < entries[j].amount })

	var levels []int64
	seen := make(map[int64]bool)
	for _, e := range entries {
		if !seen[e.amount] {
			seen[e.amount] = true
			levels = append(levels, e.amount)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var prev int64
	var pots []SidePot[K]
	for _, level := range levels {
		var contributors, eligible []K
		for _, e := range entries {
			if e.amount >= level {
				contributors = append(contributors, e.key)
				if !folded[e.key] {
					eligible = append(eligible, e.key)
				}
			}
		}
		potAmount := (level - prev) * int64(len(contributors))
		prev = level

		if len(eligible) == 0 {
			continue
		}
		if len(eligible) == 1 {
			returned[eligible[0]] += potAmount
			continue
		}
		pots = append(pots, SidePot[K]{Pot: potAmount, EligiblePlayers: eligible, Cap: level})
	}

	if len(pots) == 0 {
		return 0, nil, returned
	}

	main = pots[0].Pot
	sides = pots[1:]
	return main, sides, returned
}
