package table

// PlayerSnapshot is the public, read-only view of a seated player.
type PlayerSnapshot struct {
	ID              PlayerID
	SeatIndex       int
	Stake           int64
	CurrentTotalBet int64
	Action          string
	SittingOut      bool
}

// Snapshot is the public, read-only view of a table's current state —
// spec.md §4.3.1's implicit getTable operation, and the shape the CLI/RPC
// surface and getNotifications polling serialize to JSON.
type Snapshot struct {
	ID            TableID
	GameType      GameType
	BettingType   BettingType
	SmallBlind    int64
	BigBlind      int64
	Currency      string
	DealStage     string
	Pot           int64
	CurrentActor  PlayerID
	Players       []PlayerSnapshot
	FreeSeatIndex int
}

// Snapshot returns a consistent, lock-protected read of the table for
// API responses and notification polling (spec.md §4.3.1 getTable /
// getNotifications / getFreeSeatIndex), in place of a prior GetState().
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		ID:          t.config.ID,
		GameType:    t.config.GameType,
		BettingType: t.config.BettingType,
		SmallBlind:  t.config.SmallBlind,
		BigBlind:    t.config.BigBlind,
		Currency:    t.config.Rake.Currency.String(),
		DealStage:   t.hand.DealStage.String(),
		Pot:         t.hand.Pot,
	}
	for i := 0; i < t.seats.Len(); i++ {
		seat := t.seats.At(i)
		if seat.State != SeatOccupied {
			continue
		}
		p, ok := t.players[seat.Player]
		if !ok {
			continue
		}
		s.Players = append(s.Players, PlayerSnapshot{
			ID:              p.ID,
			SeatIndex:       i,
			Stake:           p.Stake,
			CurrentTotalBet: p.CurrentTotalBet,
			Action:          p.Action.String(),
			SittingOut:      p.Action == ActionSittingOut,
		})
		if i == t.hand.CurrentActorIdx {
			s.CurrentActor = seat.Player
		}
	}
	if idx, err := t.seats.FindFreeSeat(); err == nil {
		s.FreeSeatIndex = idx
	} else {
		s.FreeSeatIndex = -1
	}
	return s
}
