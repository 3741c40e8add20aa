package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tablestakes/internal/clock"
	"tablestakes/internal/pokererr"
)

func newTestTable(t *testing.T, bettingType BettingType) *Table {
	t.Helper()
	cfg := TableConfig{
		ID:          "t1",
		SeatCount:   3,
		GameType:    GameTexasHoldem,
		BettingType: bettingType,
		SmallBlind:  1,
		BigBlind:    2,
		FixedSmall:  1,
		FixedBig:    2,
	}
	tbl, err := NewTable(cfg, clock.NewVirtual(time.Unix(0, 0)))
	require.NoError(t, err)
	return tbl
}

// S1 — simple 3-handed NoLimit hand, check-down to showdown.
// Seating puts C at seat 0 so the zero-valued DealerIdx rotates to A at
// seat 1 on the very first hand, matching the scenario's dealer=A setup.
func TestStartHand_S1SimpleThreeHanded(t *testing.T) {
	tbl := newTestTable(t, NoLimit)

	_, err := tbl.AddUser("C", 0, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("A", 1, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("B", 2, 100, false)
	require.NoError(t, err)

	_, err = tbl.StartHand([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)

	require.Equal(t, "A", string(tbl.seats.At(tbl.hand.DealerIdx).Player))
	require.Equal(t, int64(1), tbl.players["B"].CurrentTotalBet)
	require.Equal(t, int64(2), tbl.players["C"].CurrentTotalBet)
	require.Equal(t, int64(2), tbl.hand.HighestBet)
	require.Equal(t, "A", string(tbl.seats.At(tbl.hand.CurrentActorIdx).Player))

	_, err = tbl.Bet("A", 2) // call
	require.NoError(t, err)
	_, err = tbl.Bet("B", 2) // call the extra 1
	require.NoError(t, err)
	events, err := tbl.Check("C")
	require.NoError(t, err)
	require.False(t, events.HandComplete)
	require.Equal(t, StreetFlop, tbl.hand.DealStage)
	require.Equal(t, int64(6), tbl.hand.Pot)
	require.Len(t, tbl.hand.Community, 3)

	for _, p := range []PlayerID{"A", "B", "C"} {
		order := tbl.seatOrder()
		actor := tbl.seats.At(tbl.hand.CurrentActorIdx).Player
		require.Contains(t, order, actor)
		_, err := tbl.Check(p)
		if actor == p {
			require.NoError(t, err)
		}
	}
}

// S3 — FixedLimit raise cap: at most 4 bets per street.
func TestBet_S3FixedLimitRaiseCap(t *testing.T) {
	tbl := newTestTable(t, FixedLimit)

	_, err := tbl.AddUser("C", 0, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("A", 1, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("B", 2, 100, false)
	require.NoError(t, err)

	_, err = tbl.StartHand([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)

	// The big blind (2) is the street's opening bet. FixedLimit(1,2) raises
	// preflop by 1 each time: A calls, B raises to 3, C re-raises to 4, A
	// caps the 4-bet street at 5; a further raise must be rejected.
	_, err = tbl.Bet("A", 2)
	require.NoError(t, err)
	_, err = tbl.Bet("B", 3)
	require.NoError(t, err)
	_, err = tbl.Bet("C", 4)
	require.NoError(t, err)
	_, err = tbl.Bet("A", 5)
	require.NoError(t, err)

	_, err = tbl.Bet("B", 6)
	require.Error(t, err)
	kind, ok := pokererr.AsKind(err)
	require.True(t, ok)
	require.Equal(t, pokererr.ActionNotAllowed, kind)
}

// S4 — a SittingOut player in the blind still posts it.
func TestStartHand_S4SittingOutStillPostsBlind(t *testing.T) {
	tbl := newTestTable(t, NoLimit)

	_, err := tbl.AddUser("C", 0, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("A", 1, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("B", 2, 100, true) // B sits out, will be small blind
	require.NoError(t, err)

	_, err = tbl.StartHand([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)

	require.Equal(t, int64(1), tbl.players["B"].CurrentTotalBet)
	require.Equal(t, int64(99), tbl.players["B"].Stake)
}

// Chip conservation: stake + pot + currentTotalBet sums stay constant
// through a betting round, per spec.md §8 property 1.
func TestBet_ChipConservation(t *testing.T) {
	tbl := newTestTable(t, NoLimit)

	_, _ = tbl.AddUser("C", 0, 100, false)
	_, _ = tbl.AddUser("A", 1, 100, false)
	_, _ = tbl.AddUser("B", 2, 100, false)

	before := totalChips(tbl)
	_, err := tbl.StartHand([]byte{9, 9, 9, 9})
	require.NoError(t, err)
	require.Equal(t, before, totalChips(tbl))

	_, err = tbl.Bet("A", 2)
	require.NoError(t, err)
	require.Equal(t, before, totalChips(tbl))
}

func totalChips(tbl *Table) int64 {
	var sum int64
	for _, p := range tbl.players {
		sum += p.Stake + p.CurrentTotalBet + p.TotalBet
	}
	sum += tbl.hand.Pot + tbl.hand.RakeAccrued
	for _, sp := range tbl.hand.SidePots {
		sum += sp.Pot
	}
	return sum
}
