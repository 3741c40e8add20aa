package tournament

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tablestakes/internal/randsrc"
)

func TestCalculatePayoutStructure_PercentagesSumTo100(t *testing.T) {
	for _, entries := range []int{2, 9, 45, 180} {
		for _, tt := range []TournamentType{TypeRegular, TypeFreeroll, TypeMultiTable} {
			structure := CalculatePayoutStructure(entries, tt)
			require.NotEmpty(t, structure)

			total := 0.0
			for _, tier := range structure {
				total += tier.Percentage
			}
			require.InDelta(t, 100.0, total, 1e-9, "entries=%d type=%d", entries, tt)
		}
	}
}

func TestCalculatePayoutStructure_FewerEntriesPayFewerPositions(t *testing.T) {
	small := CalculatePayoutStructure(9, TypeRegular)
	large := CalculatePayoutStructure(90, TypeRegular)
	require.Less(t, len(small), len(large))
}

func TestCalculatePayoutStructure_FreerollIsFlat(t *testing.T) {
	structure := CalculatePayoutStructure(20, TypeFreeroll)
	require.Greater(t, len(structure), 1)
	for _, tier := range structure {
		require.Equal(t, structure[0].Percentage, tier.Percentage)
	}
}

func TestCalculatePayoutStructure_SpinAndGoPaysWinnerOnly(t *testing.T) {
	structure := CalculatePayoutStructure(3, TypeSpinAndGo)
	require.Len(t, structure, 1)
	require.Equal(t, 1, structure[0].StartPosition)
	require.Equal(t, 100.0, structure[0].Percentage)
}

func TestDrawSpinGoMultiplier_DeterministicGivenBytes(t *testing.T) {
	seed := [32]byte{7, 7, 7, 7}
	a, err := DrawSpinGoMultiplier(randsrc.NewFixed(seed))
	require.NoError(t, err)
	b, err := DrawSpinGoMultiplier(randsrc.NewFixed(seed))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDrawSpinGoMultiplier_AlwaysInTable(t *testing.T) {
	valid := make(map[int]bool)
	for _, o := range SpinGoMultiplierTable {
		valid[o.Multiplier] = true
	}
	for i := 0; i < 64; i++ {
		seed := [32]byte{byte(i), byte(i * 3), byte(i * 7)}
		m, err := DrawSpinGoMultiplier(randsrc.NewFixed(seed))
		require.NoError(t, err)
		require.True(t, valid[m], "multiplier %d not in table", m)
	}
}
