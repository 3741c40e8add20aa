package tournament

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tablestakes/internal/clock"
	"tablestakes/internal/ledger"
	"tablestakes/internal/table"
)

func testConfig(now time.Time) Config {
	return Config{
		ID:            "t1",
		Currency:      ledger.Currency{Kind: ledger.Fake},
		BuyIn:         100,
		StartingChips: 1000,
		MinPlayers:    2,
		MaxPlayers:    6,
		StartTime:     now,
		Speed: SpeedProfile{
			Kind: Regular,
			Levels: []BlindLevel{
				{SmallBlind: 5, BigBlind: 10, Duration: 10 * time.Minute},
				{SmallBlind: 10, BigBlind: 20, Duration: 10 * time.Minute},
			},
		},
		GraceWindow: 30 * time.Second,
	}
}

func TestRegister_RejectsAfterMaxPlayers(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig(now)
	cfg.MaxPlayers = 1
	tn := New(cfg, clock.NewVirtual(now))

	_, err := tn.Register("A", "wallet-a")
	require.NoError(t, err)
	_, err = tn.Register("B", "wallet-b")
	require.Error(t, err)
}

func TestTick_CancelsBelowMinPlayersAtStart(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig(now)
	clk := clock.NewVirtual(now)
	tn := New(cfg, clk)

	_, err := tn.Register("A", "wallet-a")
	require.NoError(t, err)

	ev, err := tn.Tick(now)
	require.NoError(t, err)
	require.Equal(t, Cancelled, tn.State())
	require.Len(t, ev.SideEffects, 1)
	require.Equal(t, "refund", ev.SideEffects[0].Kind)
}

func TestTick_StartsRunningAndEscalatesBlinds(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig(now)
	clk := clock.NewVirtual(now)
	tn := New(cfg, clk)

	_, err := tn.Register("A", "wallet-a")
	require.NoError(t, err)
	_, err = tn.Register("B", "wallet-b")
	require.NoError(t, err)

	_, err = tn.Tick(now)
	require.NoError(t, err)
	require.Equal(t, Running, tn.State())
	require.Equal(t, int64(10), tn.currentBigBlind())

	clk.Advance(11 * time.Minute)
	ev, err := tn.Tick(clk.Now())
	require.NoError(t, err)
	require.NotNil(t, ev.BlindsChanged)
	require.Equal(t, int64(20), ev.BlindsChanged.BigBlind)
}

func TestRebuy_RequiresStakeBelowBigBlind(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig(now)
	cfg.Rebuy = RebuyOptions{Enabled: true, Price: 50, ChipsAdded: 1000, MaxPerUser: 2}
	tn := New(cfg, clock.NewVirtual(now))

	_, err := tn.Register("A", "wallet-a")
	require.NoError(t, err)

	_, err = tn.Rebuy("A", "wallet-a")
	require.Error(t, err) // stake (1000) is not below the current big blind (10)
}

func TestHandlePlayerBusted_RebuyWithinGraceCancelsElimination(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig(now)
	cfg.Rebuy = RebuyOptions{Enabled: true, Price: 50, ChipsAdded: 1000, MaxPerUser: 2}
	clk := clock.NewVirtual(now)
	tn := New(cfg, clk)

	_, err := tn.Register("A", "wallet-a")
	require.NoError(t, err)
	_, err = tn.Register("B", "wallet-b")
	require.NoError(t, err)
	_, err = tn.Tick(now)
	require.NoError(t, err)

	tn.currentPlayers["A"].Stake = 0
	tn.HandlePlayerBusted("A", clk.Now())

	clk.Advance(10 * time.Second) // inside the 30s grace window
	_, err = tn.Rebuy("A", "wallet-a")
	require.NoError(t, err)
	delete(tn.busted, "A") // a successful rebuy clears the pending bust

	ev := tn.ResolveGraceTimers(clk.Now())
	require.Empty(t, ev.Eliminated)
	require.Contains(t, tn.currentPlayers, table.PlayerID("A"))
}

func TestResolveGraceTimers_EliminatesAfterWindowElapses(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig(now)
	clk := clock.NewVirtual(now)
	tn := New(cfg, clk)

	_, err := tn.Register("A", "wallet-a")
	require.NoError(t, err)
	_, err = tn.Register("B", "wallet-b")
	require.NoError(t, err)
	_, err = tn.Tick(now)
	require.NoError(t, err)

	tn.HandlePlayerBusted("A", clk.Now())
	clk.Advance(31 * time.Second)

	ev := tn.ResolveGraceTimers(clk.Now())
	require.Equal(t, []table.PlayerID{"A"}, ev.Eliminated)
	require.True(t, ev.Completed)
	// with only 2 entries, the payout structure pays position 1 alone.
	require.Len(t, ev.Payouts, 1)
	require.Equal(t, table.PlayerID("B"), ev.Payouts[0].Player)
	require.Equal(t, int64(200), ev.Payouts[0].Amount)
}

func TestTableIDs_SortedAndTracksRemoval(t *testing.T) {
	now := time.Unix(0, 0)
	tn := New(testConfig(now), clock.NewVirtual(now))

	tn.RegisterTable("t-b", []table.PlayerID{"A"})
	tn.RegisterTable("t-a", []table.PlayerID{"B"})
	require.Equal(t, []table.TableID{"t-a", "t-b"}, tn.TableIDs())

	tn.RemoveTable("t-a")
	require.Equal(t, []table.TableID{"t-b"}, tn.TableIDs())
}

func TestBlindLevel_TableAnte(t *testing.T) {
	fixed := BlindLevel{AnteKind: AnteFixed, AnteAmount: 5}.TableAnte()
	require.Equal(t, table.AnteFixed, fixed.Kind)
	require.Equal(t, int64(5), fixed.Amount)

	pct := BlindLevel{AnteKind: AnteFixedPercentOfBigBlind, AnteAmount: 25}.TableAnte()
	require.Equal(t, table.AntePercentOfBigBlind, pct.Kind)
	require.Equal(t, 0.25, pct.Percent)

	bb := BlindLevel{AnteKind: AnteBigBlindAnte}.TableAnte()
	require.Equal(t, table.AnteBigBlindAnte, bb.Kind)

	none := BlindLevel{}.TableAnte()
	require.Equal(t, table.AnteNone, none.Kind)
}

func TestBalance_ReflectsCooldownAfterTournamentMove(t *testing.T) {
	now := time.Unix(1000, 0)
	cfg := testConfig(now)
	tn := New(cfg, clock.NewVirtual(now))

	tn.RegisterTable("t-full", []table.PlayerID{"A", "B", "C", "D", "E", "F", "G", "H", "I"})
	tn.RegisterTable("t-short", []table.PlayerID{"J"})

	first := tn.Balance(2, 9, now)
	require.NotEmpty(t, first)

	// calling again immediately (within cooldown) should produce no
	// further moves from the tables that just moved.
	second := tn.Balance(2, 9, now.Add(time.Second))
	for _, m := range second {
		require.NotEqual(t, "t-full", m.From)
	}
}
