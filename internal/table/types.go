// Package table implements the Table Engine: the seat ring, hand state
// machine, bet legality, rake accrual and showdown settlement for a
// single poker table. Every exported method on *Table takes an internal
// mutex for its whole duration and returns before any side effect is
// dispatched — ledger withdrawals, directory updates and kick
// notifications come back as TableEvents for the caller to act on.
package table

import (
	"tablestakes/internal/ledger"
	"tablestakes/pkg/poker"
)

// PlayerID is an opaque identifier; the table never holds a pointer into
// another component's player record, only this id.
type PlayerID string

// TableID identifies a table within the registry.
type TableID string

// PlayerAction mirrors a prior rules.PlayerAction enum, extended
// with the None/Joining states spec.md's Player record requires.
type PlayerAction int

const (
	ActionNone PlayerAction = iota
	ActionChecked
	ActionCalled
	ActionRaised
	ActionAllIn
	ActionFolded
	ActionSittingOut
	ActionJoining
)

func (a PlayerAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionChecked:
		return "checked"
	case ActionCalled:
		return "called"
	case ActionRaised:
		return "raised"
	case ActionAllIn:
		return "all_in"
	case ActionFolded:
		return "folded"
	case ActionSittingOut:
		return "sitting_out"
	case ActionJoining:
		return "joining"
	default:
		return "unknown"
	}
}

// sticky reports whether an action persists across the None-reset that
// happens when a betting round closes (spec.md §4.3.2 step 5).
func (a PlayerAction) sticky() bool {
	return a == ActionFolded || a == ActionAllIn || a == ActionSittingOut
}

// Player is the table-local player record (spec.md §3).
type Player struct {
	ID               PlayerID
	Stake            int64
	HoleCards        []poker.Card
	CurrentTotalBet  int64 // this street
	TotalBet         int64 // this hand
	Action           PlayerAction
	RaiseAmount      int64 // only meaningful when Action == ActionRaised
	SittingOutHands  int
	InactiveHands    int
	AutoCheckFold    bool
	ExperiencePoints int64
	PreFolded        bool
}

// AnteKind tags the ante schedule variant (spec.md §4.3.3).
type AnteKind int

const (
	AnteNone AnteKind = iota
	AnteFixed
	AntePercentOfBigBlind
	AnteBigBlindAnte
)

// AnteConfig configures the per-hand ante.
type AnteConfig struct {
	Kind    AnteKind
	Amount  int64   // meaningful for AnteFixed
	Percent float64 // meaningful for AntePercentOfBigBlind
}

// RakeConfig configures rake accrual (spec.md §4.3.5).
type RakeConfig struct {
	Rate         float64 // fraction of pot, e.g. 0.05
	Cap          int64
	FlushEveryN  int // default 10
	Currency     ledger.Currency
	Referrer     *ledger.Account
	SharePartner *ledger.Account
}

// TableConfig is the static configuration a Table is built with.
type TableConfig struct {
	ID            TableID
	SeatCount     int
	GameType      GameType
	BettingType   BettingType
	SmallBlind    int64
	BigBlind      int64
	FixedSmall    int64 // FixedLimit only: raise size during Opening/Flop
	FixedBig      int64 // FixedLimit only: raise size during Turn/River
	SpreadMin     int64 // SpreadLimit only
	SpreadMax     int64 // SpreadLimit only
	Ante          AnteConfig
	Rake          RakeConfig
	MaxSittingOut int // maxSittingOutHands, §4.3.8
	MaxInactive   int // maxInactiveHands, §4.3.8
}

// GameType mirrors a prior rules.GameType enum.
type GameType string

const (
	GameTexasHoldem GameType = "texas_hold'em"
	GameOmaha       GameType = "omaha"
	GameOmahaHiLo   GameType = "omaha_hi_lo"
	GameSevenStud   GameType = "seven_card_stud"
	GameFiveDraw    GameType = "five_card_draw"
)

// BettingType mirrors a prior rules.BettingType enum, extended with
// SpreadLimit per spec.md §4.3.4 (the prior enum only had three).
type BettingType string

const (
	NoLimit     BettingType = "no_limit"
	PotLimit    BettingType = "pot_limit"
	FixedLimit  BettingType = "fixed_limit"
	SpreadLimit BettingType = "spread_limit"
)

// KickReason explains why startHand removed a seated player.
type KickReason int

const (
	KickInsufficientFunds KickReason = iota
	KickSittingOutTooLong
)

func (r KickReason) String() string {
	switch r {
	case KickInsufficientFunds:
		return "insufficient_funds"
	case KickSittingOutTooLong:
		return "sitting_out_too_long"
	default:
		return "unknown"
	}
}

// KickedPlayer reports a player removed at the top of startHand.
type KickedPlayer struct {
	Player PlayerID
	Reason KickReason
	Payout int64
}

// PendingSideEffect is a side effect the caller must execute outside the
// table's lock — a ledger withdrawal, a directory update — queued rather
// than fired from inside the locked region (spec.md §5).
type PendingSideEffect struct {
	Kind     string
	Currency ledger.Currency
	Account  ledger.Account
	Amount   int64
}

// TableEvents carries every side effect an operation produced.
type TableEvents struct {
	Kicked       []KickedPlayer
	SideEffects  []PendingSideEffect
	HandComplete bool
	Showdown     *ShowdownResult
}
