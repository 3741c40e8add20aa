// Package tournament implements the Tournament Engine: lifecycle,
// blind-level escalation, registration/rebuy/reentry/addon bookkeeping,
// elimination with a rebuy grace window, payout calculation and the pure
// Table Balancer. It owns no Table state — tables live in internal/table
// and are only referenced by id, mirroring cmd/pokerd's split between
// Server's table directory and internal/table.Table (per-table state).
// Grounded on
// _examples/other_examples/f9699559_abdulsametsahin-poker-engine__platform
// -backend-internal-server-tournament-events.go for the event/flow shape
// and on
// original_source/libraries/tournaments/src/tournaments/types.rs for exact
// lifecycle/blind-schedule/payout semantics.
package tournament

import (
	"time"

	"tablestakes/internal/ledger"
	"tablestakes/internal/table"
)

// State is the tournament's lifecycle state (spec.md §4.5.1).
type State int

const (
	Registration State = iota
	LateRegistration
	Running
	FinalTable
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Registration:
		return "registration"
	case LateRegistration:
		return "late_registration"
	case Running:
		return "running"
	case FinalTable:
		return "final_table"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SpeedKind selects the blind schedule shape and the rebalance cooldown
// derived from it (faster tournaments rebalance more aggressively).
type SpeedKind int

const (
	Regular SpeedKind = iota
	Turbo
	HyperTurbo
	SpinGo
	Custom
)

// RebalanceCooldown derives the balancer's lastRebalanceTs exemption
// window from the speed profile (spec.md §4.6 rule 2).
func (k SpeedKind) RebalanceCooldown() time.Duration {
	switch k {
	case HyperTurbo, SpinGo:
		return 15 * time.Second
	case Turbo:
		return 30 * time.Second
	default:
		return time.Minute
	}
}

// AnteKind tags an ante configuration the way table.AnteConfig does,
// reused here so a tournament's current BlindLevel maps directly onto a
// table UpdateBlinds side effect without translation.
type AnteKind int

const (
	AnteNone AnteKind = iota
	AnteFixed
	AnteFixedPercentOfBigBlind
	AnteBigBlindAnte
)

// BlindLevel is one entry of a SpeedProfile.
type BlindLevel struct {
	SmallBlind int64
	BigBlind   int64
	AnteKind   AnteKind
	AnteAmount int64 // meaningful for AnteFixed/AnteFixedPercentOfBigBlind
	Duration   time.Duration
}

// TableAnte maps this level's ante schedule onto the table engine's
// AnteConfig, the translation a blind-level advance needs before the
// director enqueues UpdateBlinds on each running table.
func (l BlindLevel) TableAnte() table.AnteConfig {
	switch l.AnteKind {
	case AnteFixed:
		return table.AnteConfig{Kind: table.AnteFixed, Amount: l.AnteAmount}
	case AnteFixedPercentOfBigBlind:
		return table.AnteConfig{Kind: table.AntePercentOfBigBlind, Percent: float64(l.AnteAmount) / 100}
	case AnteBigBlindAnte:
		return table.AnteConfig{Kind: table.AnteBigBlindAnte, Amount: l.AnteAmount}
	default:
		return table.AnteConfig{Kind: table.AnteNone}
	}
}

// SpeedProfile is the ordered blind schedule a tournament runs through.
type SpeedProfile struct {
	Kind   SpeedKind
	Levels []BlindLevel
}

// TournamentType shapes the default payout structure (spec.md §4.5.5).
type TournamentType int

const (
	TypeRegular TournamentType = iota
	TypeFreeroll
	TypeSpinAndGo
	TypeMultiTable
)

// TournamentEntry is the per-player bookkeeping record (spec.md §3).
type TournamentEntry struct {
	Stake             int64
	Position          int // 0 until eliminated or the tournament completes
	Reentries         int
	Rebuys            int
	Addons            int
	UsersDirectoryRef string
}

// RebuyOptions configures the rebuy window and limits (spec.md §4.5.3).
type RebuyOptions struct {
	Enabled    bool
	Price      int64
	ChipsAdded int64
	MaxPerUser int
}

// ReentryOptions configures the reentry window and limits.
type ReentryOptions struct {
	Enabled    bool
	Price      int64
	ChipsAdded int64
	MaxPerUser int
	WindowEnds time.Time
}

// AddonOptions configures the one-time addon window.
type AddonOptions struct {
	Enabled    bool
	Price      int64
	ChipsAdded int64
	WindowOpen time.Time
	WindowEnd  time.Time
}

// TableInfo is what the director tracks about one of a tournament's
// tables: which players sit there and when it was last rebalanced.
type TableInfo struct {
	Players       map[table.PlayerID]struct{}
	LastRebalance time.Time
}

// Config is the immutable configuration a Tournament is created with.
type Config struct {
	ID                   string
	Name                 string
	Currency             ledger.Currency
	BuyIn                int64
	GuaranteedPrizePool  int64
	StartingChips        int64
	Speed                SpeedProfile
	MinPlayers           int
	MaxPlayers           int
	StartTime            time.Time
	LateRegistrationEnds time.Time
	TournamentType       TournamentType
	Rebuy                RebuyOptions
	Reentry              ReentryOptions
	Addon                AddonOptions
	GraceWindow          time.Duration // rebuy grace window after a bust (spec.md §4.5.4)
}

// Events carries every side effect a Tournament operation produced, for
// the caller to execute outside the tournament's lock — mirroring
// table.TableEvents and reusing table.PendingSideEffect so a ledger
// withdrawal/deposit queued here needs no translation at the boundary.
type Events struct {
	SideEffects   []table.PendingSideEffect
	Moves         []Move
	BlindsChanged *BlindLevel
	Eliminated    []table.PlayerID
	Completed     bool
	Payouts       []PrizeAward
}

// PrizeAward is one settled payout (spec.md §4.5.5).
type PrizeAward struct {
	Player   table.PlayerID
	Position int
	Amount   int64
}
