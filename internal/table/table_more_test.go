package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tablestakes/internal/clock"
)

// property 4 — dealer rotation visits every occupied seat exactly
// once per lap, clockwise.
func TestRotateDealer_VisitsEveryOccupiedSeatOnce(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("A", 0, 100, false)
	_, _ = tbl.AddUser("B", 1, 100, false)
	_, _ = tbl.AddUser("C", 2, 100, false)

	seen := make(map[PlayerID]int)
	for i := 0; i < 6; i++ {
		_, err := tbl.StartHand([]byte{byte(i), 1, 2, 3})
		require.NoError(t, err)
		seen[tbl.seats.At(tbl.hand.DealerIdx).Player]++

		// fold the hand out so the next StartHand is free to run.
		for tbl.hand.DealStage != Fresh {
			actor := tbl.seats.At(tbl.hand.CurrentActorIdx).Player
			if _, err := tbl.Fold(actor, false); err != nil {
				break
			}
		}
	}
	require.Equal(t, 2, seen["A"])
	require.Equal(t, 2, seen["B"])
	require.Equal(t, 2, seen["C"])
}

// property 5 — heads-up: the dealer posts the small blind and acts
// first pre-flop, last post-flop.
func TestStartHand_HeadsUpDealerIsSmallBlind(t *testing.T) {
	cfg := TableConfig{
		ID:          "hu",
		SeatCount:   2,
		GameType:    GameTexasHoldem,
		BettingType: NoLimit,
		SmallBlind:  1,
		BigBlind:    2,
	}
	tbl, err := NewTable(cfg, clock.NewVirtual(time.Unix(0, 0)))
	require.NoError(t, err)

	_, err = tbl.AddUser("A", 0, 100, false)
	require.NoError(t, err)
	_, err = tbl.AddUser("B", 1, 100, false)
	require.NoError(t, err)

	_, err = tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	dealer := tbl.seats.At(tbl.hand.DealerIdx).Player
	require.Equal(t, dealer, tbl.hand.SmallBlindPlayer)
	require.Equal(t, dealer, tbl.seats.At(tbl.hand.CurrentActorIdx).Player)

	// close preflop, dealer should act last post-flop.
	_, err = tbl.Bet(dealer, 2)
	require.NoError(t, err)
	var bb PlayerID
	for _, id := range []PlayerID{"A", "B"} {
		if id != dealer {
			bb = id
		}
	}
	_, err = tbl.Check(bb)
	require.NoError(t, err)
	require.Equal(t, StreetFlop, tbl.hand.DealStage)
	require.Equal(t, bb, tbl.seats.At(tbl.hand.CurrentActorIdx).Player)
}

// S2 — three players all-in for different amounts; settling the side
// pots neither creates nor loses chips.
func TestShowdown_S2ThreeWayAllInSidePots(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("C", 0, 100, false)
	_, _ = tbl.AddUser("A", 1, 20, false)  // short stack
	_, _ = tbl.AddUser("B", 2, 50, false)  // mid stack

	_, err := tbl.StartHand([]byte{5, 10, 15, 20, 25, 30, 35, 40, 45, 50})
	require.NoError(t, err)

	before := totalChips(tbl)

	actor := func() PlayerID { return tbl.seats.At(tbl.hand.CurrentActorIdx).Player }
	for tbl.hand.DealStage != Showdown && tbl.hand.DealStage != Fresh {
		p := actor()
		player := tbl.players[p]
		allInAmount := player.Stake + player.CurrentTotalBet
		_, err := tbl.Bet(p, allInAmount)
		if err != nil {
			_, err = tbl.Check(p)
			require.NoError(t, err)
		}
	}

	require.Equal(t, before, totalChips(tbl))
	for _, p := range tbl.players {
		require.Zero(t, p.Stake%1) // sanity: integer chips, no fractional leakage
	}
}

// A queued pre-fold fires the moment the action reaches the player.
func TestPreFold_AutoFoldsOnTurn(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("C", 0, 100, false)
	_, _ = tbl.AddUser("A", 1, 100, false)
	_, _ = tbl.AddUser("B", 2, 100, false)

	_, err := tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	// B is the small blind; pre-fold them before A acts.
	_, err = tbl.PreFold("B")
	require.NoError(t, err)

	_, err = tbl.Bet("A", 2)
	require.NoError(t, err)

	require.Equal(t, ActionFolded, tbl.players["B"].Action)
	require.False(t, tbl.players["B"].PreFolded)
}

// Auto-check-fold checks when free and folds when facing a bet.
func TestAutoCheckFold_FoldsFacingBet(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("C", 0, 100, false)
	_, _ = tbl.AddUser("A", 1, 100, false)
	_, _ = tbl.AddUser("B", 2, 100, false)

	_, err := tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, tbl.SetAutoCheckFold("B", true))

	_, err = tbl.Bet("A", 6) // raise; B cannot check
	require.NoError(t, err)

	require.Equal(t, ActionFolded, tbl.players["B"].Action)
}

// Timer expiry tracks the inactivity streak and force-sits-out once the
// configured ceiling is reached.
func TestHandleTimerExpired_ForcesSitOutAfterMaxInactive(t *testing.T) {
	cfg := TableConfig{
		ID:          "t-inactive",
		SeatCount:   3,
		GameType:    GameTexasHoldem,
		BettingType: NoLimit,
		SmallBlind:  1,
		BigBlind:    2,
		MaxInactive: 1,
	}
	tbl, err := NewTable(cfg, clock.NewVirtual(time.Unix(0, 0)))
	require.NoError(t, err)
	_, _ = tbl.AddUser("C", 0, 100, false)
	_, _ = tbl.AddUser("A", 1, 100, false)
	_, _ = tbl.AddUser("B", 2, 100, false)

	_, err = tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	actor := tbl.seats.At(tbl.hand.CurrentActorIdx).Player
	_, err = tbl.HandleTimerExpired(actor)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.players[actor].InactiveHands)
	require.Equal(t, 1, tbl.queue.Len()) // queued force sit-out for next hand
}

// A paused table refuses to start the next hand until resumed.
func TestStartHand_PausedTableRefuses(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("A", 0, 100, false)
	_, _ = tbl.AddUser("B", 1, 100, false)

	tbl.RequestPause()
	_, err := tbl.StartHand([]byte{1, 2, 3, 4})
	require.Error(t, err)

	tbl.Resume()
	_, err = tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)
}

// Withdrawals only clear at a hand boundary and surface a ledger-side
// effect for the host to execute.
func TestWithdraw_OnlyBetweenHands(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("A", 0, 100, false)
	_, _ = tbl.AddUser("B", 1, 100, false)

	eff, err := tbl.Withdraw("A", 40)
	require.NoError(t, err)
	require.Equal(t, int64(40), eff.Amount)
	require.Equal(t, int64(60), tbl.players["A"].Stake)

	_, err = tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = tbl.Withdraw("A", 10)
	require.Error(t, err)
}

// A short all-in below a full raise lifts the price to call but leaves
// the last-raise bookkeeping alone, so it does not re-open the action.
func TestBet_ShortAllInDoesNotReopenAction(t *testing.T) {
	tbl := newTestTable(t, NoLimit)
	_, _ = tbl.AddUser("C", 0, 100, false)
	_, _ = tbl.AddUser("A", 1, 100, false)
	_, _ = tbl.AddUser("B", 2, 5, false) // can only shove short

	_, err := tbl.StartHand([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	_, err = tbl.Bet("A", 4) // min-raise to 4
	require.NoError(t, err)
	lastRaiseBefore := tbl.hand.LastRaise

	_, err = tbl.Bet("B", 5) // all-in for 5, short of a full raise to 6
	require.NoError(t, err)

	require.Equal(t, int64(5), tbl.hand.HighestBet)
	require.Equal(t, lastRaiseBefore, tbl.hand.LastRaise)
	require.Equal(t, PlayerID("A"), tbl.hand.LastRaiser)
	require.Equal(t, ActionAllIn, tbl.players["B"].Action)
}

func TestSeatRing_RotateSkipsNonOccupied(t *testing.T) {
	ring := NewSeatRing(4)
	require.NoError(t, ring.Reserve(0, "A", 0))
	require.NoError(t, ring.Occupy(0, "A"))
	require.NoError(t, ring.Reserve(2, "B", 0))
	require.NoError(t, ring.Occupy(2, "B"))

	next, err := ring.Rotate(0, Clockwise)
	require.NoError(t, err)
	require.Equal(t, 2, next)
}
