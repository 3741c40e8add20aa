package table

import (
	"sort"

	"tablestakes/pkg/poker"
)

// PotAward is one pot's settlement: who won it and how much.
type PotAward struct {
	Cap     int64
	Amount  int64
	Winners []PlayerID
	Share   int64 // per-winner base share before remainder
}

// ShowdownResult is the full settlement of a hand at Showdown (spec.md
// §4.3.6).
type ShowdownResult struct {
	Awards        []PotAward
	Uncontested   bool
	RakeWithheld  int64
}

// settle computes final side pots from each player's totalBet, awards
// each pot (lowest cap first) to the best hand among its eligible
// non-folded players, splitting ties evenly with the remainder to the
// first eligible seat clockwise from dealer. dealerPos is the dealer's
// position within seatOrder, not a raw seat index.
func settle(players map[PlayerID]*Player, board []poker.Card, folded map[PlayerID]bool, seatOrder []PlayerID, dealerPos int, rake RakeConfig, sawFlop bool) *ShowdownResult {
	contributions := make(map[PlayerID]int64, len(players))
	for id, p := range players {
		contributions[id] = p.TotalBet
	}

	main, sides, returned := poker.ComputeSidePots(contributions, folded)
	for id, amount := range returned {
		players[id].Stake += amount
	}

	nonFolded := 0
	var mainEligible []PlayerID
	for id, c := range contributions {
		if !folded[id] && c > 0 {
			mainEligible = append(mainEligible, id)
		}
		if !folded[id] {
			nonFolded++
		}
	}
	pots := make([]SidePot, 0, 1+len(sides))
	pots = append(pots, SidePot{Pot: main, EligiblePlayers: mainEligible})
	for _, s := range sides {
		pots = append(pots, SidePot{Pot: s.Pot, EligiblePlayers: s.EligiblePlayers, Cap: s.Cap})
	}

	result := &ShowdownResult{}
	totalPot := main
	for _, s := range sides {
		totalPot += s.Pot
	}
	rakeAmount := accrueRake(rake, totalPot, sawFlop)
	result.RakeWithheld = rakeAmount

	if nonFolded == 1 {
		result.Uncontested = true
		var winner PlayerID
		for id := range contributions {
			if !folded[id] {
				winner = id
			}
		}
		remaining := totalPot - rakeAmount
		players[winner].Stake += remaining
		result.Awards = []PotAward{{Amount: remaining, Winners: []PlayerID{winner}}}
		return result
	}

	rakeLeft := rakeAmount
	for _, pot := range pots {
		potAmount := pot.Pot
		if rakeLeft > 0 {
			cut := rakeLeft
			if cut > potAmount {
				cut = potAmount
			}
			potAmount -= cut
			rakeLeft -= cut
		}
		award := awardPot(players, board, pot.EligiblePlayers, folded, potAmount, seatOrder, dealerPos)
		award.Cap = pot.Cap
		result.Awards = append(result.Awards, award)
	}
	return result
}

// awardPot evaluates the best hand among a pot's eligible non-folded
// players and splits the pot, with any indivisible remainder going to
// the first eligible seat clockwise from dealer.
func awardPot(players map[PlayerID]*Player, board []poker.Card, eligible []PlayerID, folded map[PlayerID]bool, amount int64, seatOrder []PlayerID, dealerPos int) PotAward {
	var contenders []PlayerID
	for _, id := range eligible {
		if !folded[id] {
			contenders = append(contenders, id)
		}
	}
	if len(contenders) == 0 {
		return PotAward{Amount: amount}
	}
	if len(contenders) == 1 {
		players[contenders[0]].Stake += amount
		return PotAward{Amount: amount, Winners: contenders, Share: amount}
	}

	type evald struct {
		id   PlayerID
		hand *poker.EvaluatedHand
	}
	evals := make([]evald, 0, len(contenders))
	for _, id := range contenders {
		seven := append(append([]poker.Card{}, players[id].HoleCards...), board...)
		h, err := poker.Evaluate7(seven)
		if err != nil {
			continue
		}
		evals = append(evals, evald{id: id, hand: h})
	}
	if len(evals) == 0 {
		// no evaluable hand (hole-card count mismatch); split the pot
		// evenly rather than orphan the chips.
		share := amount / int64(len(contenders))
		for _, id := range contenders {
			players[id].Stake += share
		}
		players[contenders[0]].Stake += amount - share*int64(len(contenders))
		return PotAward{Amount: amount, Winners: contenders, Share: share}
	}
	sort.Slice(evals, func(i, j int) bool {
		return poker.CompareHands(evals[i].hand, evals[j].hand) > 0
	})

	var winners []PlayerID
	best := evals[0].hand
	for _, e := range evals {
		if poker.CompareHands(e.hand, best) == 0 {
			winners = append(winners, e.id)
		}
	}

	share := amount / int64(len(winners))
	remainder := amount - share*int64(len(winners))
	for _, w := range winners {
		players[w].Stake += share
	}
	if remainder > 0 {
		firstClockwise := firstEligibleClockwiseFromDealer(winners, seatOrder, dealerPos)
		players[firstClockwise].Stake += remainder
	}
	return PotAward{Amount: amount, Winners: winners, Share: share}
}

func firstEligibleClockwiseFromDealer(eligible []PlayerID, seatOrder []PlayerID, dealerPos int) PlayerID {
	set := make(map[PlayerID]bool, len(eligible))
	for _, id := range eligible {
		set[id] = true
	}
	n := len(seatOrder)
	for i := 1; i <= n; i++ {
		id := seatOrder[(dealerPos+i)%n]
		if set[id] {
			return id
		}
	}
	return eligible[0]
}
