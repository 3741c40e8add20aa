package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tablestakes/internal/ledger"
	"tablestakes/internal/table"
)

func fakeCfg(seatCount int, bigBlind int64) table.TableConfig {
	return table.TableConfig{
		SeatCount:   seatCount,
		GameType:    table.GameTexasHoldem,
		BettingType: table.NoLimit,
		BigBlind:    bigBlind,
		Rake:        table.RakeConfig{Currency: ledger.Currency{Kind: ledger.Fake}},
	}
}

func TestRegister_DuplicateRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("t1", fakeCfg(6, 2), Public))
	require.ErrorIs(t, r.Register("t1", fakeCfg(6, 2), Public), ErrTableExists)
}

func TestList_SortedByPlayerCountDescending(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("low", fakeCfg(6, 2), Public))
	require.NoError(t, r.Register("high", fakeCfg(6, 2), Public))
	require.NoError(t, r.UpdatePlayerCount("low", 1))
	require.NoError(t, r.UpdatePlayerCount("high", 5))

	got := r.List(Filter{})
	require.Len(t, got, 2)
	require.Equal(t, table.TableID("high"), got[0].ID)
	require.Equal(t, table.TableID("low"), got[1].ID)
}

func TestList_FilterByGameTypeAndStake(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("holdem2", fakeCfg(6, 2), Public))
	require.NoError(t, r.Register("holdem5", fakeCfg(6, 5), Public))

	got := r.List(Filter{GameType: table.GameTexasHoldem, MinStake: 3})
	require.Len(t, got, 1)
	require.Equal(t, table.TableID("holdem5"), got[0].ID)
}

func TestList_Pagination(t *testing.T) {
	r := New()
	for _, id := range []table.TableID{"a", "b", "c"} {
		require.NoError(t, r.Register(id, fakeCfg(6, 2), Public))
	}
	page0 := r.List(Filter{Page: 0, PageSize: 2})
	page1 := r.List(Filter{Page: 1, PageSize: 2})
	require.Len(t, page0, 2)
	require.Len(t, page1, 1)
}

func TestList_FilterByPrivacy(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("open", fakeCfg(6, 2), Public))
	require.NoError(t, r.Register("club", fakeCfg(6, 2), InviteOnly))

	want := InviteOnly
	got := r.List(Filter{Privacy: &want})
	require.Len(t, got, 1)
	require.Equal(t, table.TableID("club"), got[0].ID)
}

func TestQuickJoin_SkipsNonPublicTables(t *testing.T) {
	r := New()
	fake := ledger.Currency{Kind: ledger.Fake}
	require.NoError(t, r.Register("club", fakeCfg(6, 2), InviteOnly))

	_, err := r.QuickJoin(fake, 2)
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestQuickJoin_PrefersSweetSpotOverEmpty(t *testing.T) {
	r := New()
	fake := ledger.Currency{Kind: ledger.Fake}
	require.NoError(t, r.Register("empty", fakeCfg(6, 2), Public))
	require.NoError(t, r.Register("sweet", fakeCfg(6, 2), Public))
	require.NoError(t, r.UpdatePlayerCount("sweet", 2))

	id, err := r.QuickJoin(fake, 2)
	require.NoError(t, err)
	require.Equal(t, table.TableID("sweet"), id)
}

func TestQuickJoin_FallsBackToEmptyWhenNoOthersMatch(t *testing.T) {
	r := New()
	fake := ledger.Currency{Kind: ledger.Fake}
	require.NoError(t, r.Register("empty", fakeCfg(6, 2), Public))

	id, err := r.QuickJoin(fake, 2)
	require.NoError(t, err)
	require.Equal(t, table.TableID("empty"), id)
}

func TestQuickJoin_SkipsFullAndPausedTables(t *testing.T) {
	r := New()
	fake := ledger.Currency{Kind: ledger.Fake}
	require.NoError(t, r.Register("full", fakeCfg(2, 2), Public))
	require.NoError(t, r.UpdatePlayerCount("full", 2))
	require.NoError(t, r.Register("paused", fakeCfg(6, 2), Public))
	require.NoError(t, r.SetPaused("paused", true))

	_, err := r.QuickJoin(fake, 2)
	require.ErrorIs(t, err, ErrNoMatch)
}
