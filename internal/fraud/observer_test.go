package fraud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObserve_FlagsPerfectlyUniformTiming(t *testing.T) {
	o := NewObserver(DefaultScoringWeights())

	var last Alert
	for i := 0; i < historyWindow; i++ {
		last = o.Observe(ActionObservation{
			PlayerID:     "bot",
			TableID:      "t1",
			DecisionTime: 250 * time.Millisecond,
			PotSize:      100,
			BetAmount:    50,
		})
	}

	require.NotEqual(t, SeverityNone, last.Severity)
	require.Equal(t, "uniform_action_pattern", last.Rule)
}

func TestObserve_DoesNotFlagVariedTiming(t *testing.T) {
	o := NewObserver(DefaultScoringWeights())

	samples := []time.Duration{
		400 * time.Millisecond, 1200 * time.Millisecond, 300 * time.Millisecond,
		2500 * time.Millisecond, 800 * time.Millisecond, 3100 * time.Millisecond,
		150 * time.Millisecond, 900 * time.Millisecond, 2000 * time.Millisecond,
		500 * time.Millisecond, 1700 * time.Millisecond, 600 * time.Millisecond,
		2200 * time.Millisecond, 350 * time.Millisecond, 1100 * time.Millisecond,
		750 * time.Millisecond, 1900 * time.Millisecond, 450 * time.Millisecond,
		2800 * time.Millisecond, 650 * time.Millisecond,
	}
	potRatios := []int64{10, 80, 25, 95, 40, 5, 70, 15, 60, 30, 85, 20, 55, 8, 45, 90, 12, 65, 35, 75}

	var last Alert
	for i, d := range samples {
		last = o.Observe(ActionObservation{
			PlayerID:     "human",
			TableID:      "t1",
			DecisionTime: d,
			PotSize:      100,
			BetAmount:    potRatios[i],
		})
	}

	require.Equal(t, SeverityNone, last.Severity)
}

func TestObserve_RequiresFullWindowBeforeJudging(t *testing.T) {
	o := NewObserver(DefaultScoringWeights())

	alert := o.Observe(ActionObservation{
		PlayerID:     "newplayer",
		TableID:      "t1",
		DecisionTime: 250 * time.Millisecond,
		PotSize:      100,
		BetAmount:    50,
	})

	require.Equal(t, SeverityNone, alert.Severity)
}

func TestObserve_TracksHistoryPerPlayerIndependently(t *testing.T) {
	o := NewObserver(DefaultScoringWeights())

	for i := 0; i < historyWindow; i++ {
		o.Observe(ActionObservation{PlayerID: "a", TableID: "t1", DecisionTime: 250 * time.Millisecond, PotSize: 100, BetAmount: 50})
	}

	require.Len(t, o.history, 1)
	o.Observe(ActionObservation{PlayerID: "b", TableID: "t1", DecisionTime: time.Second, PotSize: 100, BetAmount: 20})
	require.Len(t, o.history, 2)
}
