package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeSidePots_S2ThreeWayAllIn(t *testing.T) {
	contributions := map[string]int64{"A": 50, "B": 100, "C": 150}
	folded := map[string]bool{}

	main, sides, returned := ComputeSidePots(contributions, folded)

	require.Equal(t, int64(150), main) // 3 x 50
	require.Len(t, sides, 1)
	require.Equal(t, int64(100), sides[0].Pot) // 2 x 50
	require.ElementsMatch(t, []string{"B", "C"}, sides[0].EligiblePlayers)
	require.Equal(t, int64(50), returned["C"])
}

func TestComputeSidePots_NoAllIn(t *testing.T) {
	contributions := map[string]int64{"A": 20, "B": 20, "C": 20}
	main, sides, returned := ComputeSidePots(contributions, map[string]bool{})
	require.Equal(t, int64(60), main)
	require.Empty(t, sides)
	require.Empty(t, returned)
}

func TestComputeSidePots_FoldedStillContributes(t *testing.T) {
	contributions := map[string]int64{"A": 10, "B": 30, "C": 30}
	folded := map[string]bool{"A": true}

	main, sides, returned := ComputeSidePots(contributions, folded)
	require.Equal(t, int64(30), main) // 3 x 10, A folded but still eligible-excluded not amount-excluded
	require.Len(t, sides, 1)
	require.Equal(t, int64(40), sides[0].Pot) // 2 x 20
	require.ElementsMatch(t, []string{"B", "C"}, sides[0].EligiblePlayers)
	require.Empty(t, returned)
}

func TestComputeSidePots_ConservesChips(t *testing.T) {
	contributions := map[string]int64{"A": 5, "B": 40, "C": 40, "D": 100}
	main, sides, returned := ComputeSidePots(contributions, map[string]bool{})

	var total int64
	total += main
	for _, s := range sides {
		total += s.Pot
	}
	for _, r := range returned {
		total += r
	}

	var contributed int64
	for _, v := range contributions {
		contributed += v
	}
	require.Equal(t, contributed, total)
}

func TestShuffle_Deterministic(t *testing.T) {
	seed := []byte("a-fixed-32-byte-seed-value-here")
	d1 := Shuffle(seed)
	d2 := Shuffle(seed)

	for i := 0; i < 52; i++ {
		require.Equal(t, d1.cards[i], d2.cards[i])
	}
}

func TestShuffle_DifferentSeedsDiffer(t *testing.T) {
	d1 := Shuffle([]byte("seed-one-padded-out-to-32-bytes"))
	d2 := Shuffle([]byte("seed-two-padded-out-to-32-bytes"))

	same := true
	for i := 0; i < 52; i++ {
		if d1.cards[i] != d2.cards[i] {
			same = false
			break
		}
	}
	require.False(t, same)
}
