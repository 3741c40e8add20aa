package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sevenCards(cs ...Card) []Card { return cs }

func TestEvaluate7_Pair(t *testing.T) {
	eval := NewHandEvaluator()
	hand, err := eval.Evaluate7(sevenCards(
		NewCard(RankA, SuitSpades), NewCard(RankA, SuitHearts),
		NewCard(Rank9, SuitClubs), NewCard(Rank7, SuitDiamonds),
		NewCard(Rank4, SuitSpades), NewCard(Rank3, SuitHearts),
		NewCard(Rank2, SuitClubs),
	))
	require.NoError(t, err)
	require.Equal(t, Pair, hand.Rank)
	require.Equal(t, []Rank{RankA, Rank9, Rank7, Rank4}, hand.TieBreakers)
}

func TestEvaluate7_StraightBeatsThreeOfAKind(t *testing.T) {
	eval := NewHandEvaluator()
	straight, err := eval.Evaluate7(sevenCards(
		NewCard(Rank9, SuitSpades), NewCard(Rank8, SuitHearts),
		NewCard(Rank7, SuitClubs), NewCard(Rank6, SuitDiamonds),
		NewCard(Rank5, SuitSpades), NewCard(Rank2, SuitHearts),
		NewCard(Rank2, SuitClubs),
	))
	require.NoError(t, err)
	require.Equal(t, Straight, straight.Rank)

	trips, err := eval.Evaluate7(sevenCards(
		NewCard(RankK, SuitSpades), NewCard(RankK, SuitHearts),
		NewCard(RankK, SuitClubs), NewCard(Rank6, SuitDiamonds),
		NewCard(Rank5, SuitSpades), NewCard(Rank2, SuitHearts),
		NewCard(Rank3, SuitClubs),
	))
	require.NoError(t, err)
	require.Equal(t, ThreeOfAKind, trips.Rank)

	require.Equal(t, 1, eval.CompareHands(straight, trips))
}

func TestEvaluate7_WheelStraight(t *testing.T) {
	eval := NewHandEvaluator()
	hand, err := eval.Evaluate7(sevenCards(
		NewCard(RankA, SuitSpades), NewCard(Rank2, SuitHearts),
		NewCard(Rank3, SuitClubs), NewCard(Rank4, SuitDiamonds),
		NewCard(Rank5, SuitSpades), NewCard(RankK, SuitHearts),
		NewCard(RankQ, SuitClubs),
	))
	require.NoError(t, err)
	require.Equal(t, Straight, hand.Rank)
}

func TestEvaluate7_RoyalFlush(t *testing.T) {
	eval := NewHandEvaluator()
	hand, err := eval.Evaluate7(sevenCards(
		NewCard(RankA, SuitSpades), NewCard(RankK, SuitSpades),
		NewCard(RankQ, SuitSpades), NewCard(RankJ, SuitSpades),
		NewCard(Rank10, SuitSpades), NewCard(Rank2, SuitHearts),
		NewCard(Rank3, SuitClubs),
	))
	require.NoError(t, err)
	require.Equal(t, RoyalFlush, hand.Rank)
}

func TestEvaluate7_WrongCardCount(t *testing.T) {
	eval := NewHandEvaluator()
	_, err := eval.Evaluate7(sevenCards(NewCard(RankA, SuitSpades)))
	require.Error(t, err)
}

func TestCompareHands_HigherCategoryWins(t *testing.T) {
	eval := NewHandEvaluator()
	flush := &EvaluatedHand{Rank: Flush, TieBreakers: []Rank{Rank2}}
	straight := &EvaluatedHand{Rank: Straight, TieBreakers: []Rank{RankA}}
	require.Equal(t, 1, eval.CompareHands(flush, straight))
	require.Equal(t, -1, eval.CompareHands(straight, flush))
}
