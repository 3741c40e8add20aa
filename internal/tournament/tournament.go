package tournament

import (
	"sort"
	"sync"
	"time"

	"tablestakes/internal/clock"
	"tablestakes/internal/ledger"
	"tablestakes/internal/pokererr"
	"tablestakes/internal/table"
)

// bustRecord tracks a player who has hit stake 0 and is inside the rebuy
// grace window (spec.md §4.5.4 step 1).
type bustRecord struct {
	bustedAt time.Time
}

// Tournament is the Tournament Engine (C5). Every exported method takes
// an internal mutex for its whole duration, the same single-threaded
// cooperative model internal/table.Table uses (spec.md §5).
type Tournament struct {
	mu    sync.Mutex
	cfg   Config
	clock clock.Clock

	state             State
	currentLevelIdx   int
	nextLevelDeadline time.Time

	prizePool   int64
	rakeAccrued int64

	currentPlayers  map[table.PlayerID]*TournamentEntry
	eliminatedOrder []table.PlayerID // front = most recently eliminated
	busted          map[table.PlayerID]bustRecord

	tables map[table.TableID]*TableInfo
}

// New creates a Tournament in the Registration state.
func New(cfg Config, clk clock.Clock) *Tournament {
	return &Tournament{
		cfg:            cfg,
		clock:          clk,
		state:          Registration,
		currentPlayers: make(map[table.PlayerID]*TournamentEntry),
		busted:         make(map[table.PlayerID]bustRecord),
		tables:         make(map[table.TableID]*TableInfo),
		prizePool:      cfg.GuaranteedPrizePool,
	}
}

// NewSpinAndGo creates a 3-handed hyper-turbo tournament whose prize pool
// is the buy-in multiplied by a draw from SpinGoMultiplierTable
// (spec.md §4.5.6).
func NewSpinAndGo(cfg Config, clk clock.Clock, multiplier int) *Tournament {
	cfg.TournamentType = TypeSpinAndGo
	cfg.MinPlayers = 3
	cfg.MaxPlayers = 3
	cfg.Speed.Kind = HyperTurbo
	cfg.LateRegistrationEnds = cfg.StartTime // no late registration for Spin & Go
	cfg.GuaranteedPrizePool = cfg.BuyIn * int64(multiplier)
	return New(cfg, clk)
}

// State reports the tournament's current lifecycle state.
func (tn *Tournament) State() State {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	return tn.state
}

// PlayerCount reports how many entries are still live.
func (tn *Tournament) PlayerCount() int {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	return len(tn.currentPlayers)
}

// Register enrolls a player during Registration or LateRegistration,
// debiting the buy-in via the Ledger Gateway (spec.md §4.5.3).
func (tn *Tournament) Register(p table.PlayerID, wallet ledger.Account) (Events, error) {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	if tn.state != Registration && tn.state != LateRegistration {
		return Events{}, pokererr.New(pokererr.TournamentStateError, "registration closed")
	}
	if _, exists := tn.currentPlayers[p]; exists {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "player already registered")
	}
	if len(tn.currentPlayers) >= tn.cfg.MaxPlayers {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "tournament full")
	}

	tn.currentPlayers[p] = &TournamentEntry{Stake: tn.cfg.StartingChips}
	tn.prizePool += tn.cfg.BuyIn

	effects := []table.PendingSideEffect{
		{Kind: "buy_in", Currency: tn.cfg.Currency, Account: wallet, Amount: tn.cfg.BuyIn},
	}
	return Events{SideEffects: effects}, nil
}

// Rebuy tops up a player whose stake has dropped below the current big
// blind, while the rebuy window is open (spec.md §4.5.3).
func (tn *Tournament) Rebuy(p table.PlayerID, wallet ledger.Account) (Events, error) {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	entry, ok := tn.currentPlayers[p]
	if !ok {
		return Events{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	if !tn.cfg.Rebuy.Enabled {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "rebuys not enabled")
	}
	if entry.Stake >= tn.currentBigBlind() {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "stake above current big blind")
	}
	if tn.cfg.Rebuy.MaxPerUser > 0 && entry.Rebuys >= tn.cfg.Rebuy.MaxPerUser {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "rebuy limit reached")
	}

	entry.Rebuys++
	entry.Stake += tn.cfg.Rebuy.ChipsAdded
	tn.prizePool += tn.cfg.Rebuy.Price
	delete(tn.busted, p) // a rebuy inside the grace window cancels the pending elimination

	effects := []table.PendingSideEffect{
		{Kind: "rebuy", Currency: tn.cfg.Currency, Account: wallet, Amount: tn.cfg.Rebuy.Price},
	}
	return Events{SideEffects: effects}, nil
}

// Reentry re-enrolls a player who busted during the reentry window
// (spec.md §4.5.3), cancelling their pending elimination if any.
func (tn *Tournament) Reentry(p table.PlayerID, wallet ledger.Account) (Events, error) {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	if !tn.cfg.Reentry.Enabled {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "reentry not enabled")
	}
	if tn.clock.Now().After(tn.cfg.Reentry.WindowEnds) {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "reentry window closed")
	}

	entry, stillSeated := tn.currentPlayers[p]
	if stillSeated {
		if tn.cfg.Reentry.MaxPerUser > 0 && entry.Reentries >= tn.cfg.Reentry.MaxPerUser {
			return Events{}, pokererr.New(pokererr.ActionNotAllowed, "reentry limit reached")
		}
		entry.Reentries++
		entry.Stake += tn.cfg.Reentry.ChipsAdded
	} else {
		tn.currentPlayers[p] = &TournamentEntry{Stake: tn.cfg.Reentry.ChipsAdded, Reentries: 1}
	}
	delete(tn.busted, p)
	tn.prizePool += tn.cfg.Reentry.Price

	effects := []table.PendingSideEffect{
		{Kind: "reentry", Currency: tn.cfg.Currency, Account: wallet, Amount: tn.cfg.Reentry.Price},
	}
	return Events{SideEffects: effects}, nil
}

// Addon applies a one-time stack top-up during the addon window
// (spec.md §4.5.3).
func (tn *Tournament) Addon(p table.PlayerID, wallet ledger.Account) (Events, error) {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	entry, ok := tn.currentPlayers[p]
	if !ok {
		return Events{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	if !tn.cfg.Addon.Enabled {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "addons not enabled")
	}
	now := tn.clock.Now()
	if now.Before(tn.cfg.Addon.WindowOpen) || now.After(tn.cfg.Addon.WindowEnd) {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "addon window closed")
	}
	if entry.Addons > 0 {
		return Events{}, pokererr.New(pokererr.ActionNotAllowed, "addon already used")
	}

	entry.Addons++
	entry.Stake += tn.cfg.Addon.ChipsAdded
	tn.prizePool += tn.cfg.Addon.Price

	effects := []table.PendingSideEffect{
		{Kind: "addon", Currency: tn.cfg.Currency, Account: wallet, Amount: tn.cfg.Addon.Price},
	}
	return Events{SideEffects: effects}, nil
}

// Tick advances lifecycle transitions and blind escalation relative to
// now (spec.md §4.5.1, §4.5.2). It is the single entry point the host
// calls on a schedule; every state change it can make is idempotent to
// call repeatedly with a non-decreasing now.
func (tn *Tournament) Tick(now time.Time) (Events, error) {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	var ev Events

	switch tn.state {
	case Registration:
		if !now.Before(tn.cfg.StartTime) {
			if len(tn.currentPlayers) >= tn.cfg.MinPlayers {
				tn.enterLateRegOrRunning(now)
			} else {
				tn.state = Cancelled
				ev.SideEffects = append(ev.SideEffects, tn.refundAll()...)
			}
		}
	case LateRegistration:
		if !now.Before(tn.cfg.LateRegistrationEnds) {
			tn.state = Running
			tn.startBlindClock(now)
		}
	case Running:
		if len(tn.tables) == 1 {
			tn.state = FinalTable
		}
		if blindEv := tn.advanceBlinds(now); blindEv != nil {
			ev.BlindsChanged = blindEv
		}
	case FinalTable:
		if len(tn.currentPlayers) <= 1 {
			tn.state = Completed
			ev.Payouts = tn.settlePayouts()
			ev.SideEffects = append(ev.SideEffects, tn.prizeEffects(ev.Payouts)...)
			ev.Completed = true
		} else if blindEv := tn.advanceBlinds(now); blindEv != nil {
			ev.BlindsChanged = blindEv
		}
	}

	return ev, nil
}

func (tn *Tournament) enterLateRegOrRunning(now time.Time) {
	if tn.cfg.LateRegistrationEnds.After(tn.cfg.StartTime) {
		tn.state = LateRegistration
	} else {
		tn.state = Running
		tn.startBlindClock(now)
	}
}

func (tn *Tournament) startBlindClock(now time.Time) {
	tn.currentLevelIdx = 0
	if len(tn.cfg.Speed.Levels) > 0 {
		tn.nextLevelDeadline = now.Add(tn.cfg.Speed.Levels[0].Duration)
	}
}

// advanceBlinds bumps currentLevelIdx when the deadline has passed,
// returning the new level if it changed (spec.md §4.5.2).
func (tn *Tournament) advanceBlinds(now time.Time) *BlindLevel {
	levels := tn.cfg.Speed.Levels
	if len(levels) == 0 || tn.currentLevelIdx >= len(levels)-1 {
		return nil
	}
	if now.Before(tn.nextLevelDeadline) {
		return nil
	}
	tn.currentLevelIdx++
	level := levels[tn.currentLevelIdx]
	tn.nextLevelDeadline = tn.nextLevelDeadline.Add(level.Duration)
	return &level
}

func (tn *Tournament) currentBigBlind() int64 {
	levels := tn.cfg.Speed.Levels
	if len(levels) == 0 {
		return tn.cfg.StartingChips // degenerate config guard
	}
	return levels[tn.currentLevelIdx].BigBlind
}

// RegisterTable records a table the director created for this
// tournament, so the balancer has something to act on.
func (tn *Tournament) RegisterTable(id table.TableID, seated []table.PlayerID) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	players := make(map[table.PlayerID]struct{}, len(seated))
	for _, p := range seated {
		players[p] = struct{}{}
	}
	tn.tables[id] = &TableInfo{Players: players}
}

// RemoveTable drops a table the director has torn down (e.g. fully
// consolidated away).
func (tn *Tournament) RemoveTable(id table.TableID) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	delete(tn.tables, id)
}

// TableIDs returns the ids of every table this tournament currently
// runs, sorted for deterministic iteration, so the host can fan a
// blind-level change out to the live Table objects it owns.
func (tn *Tournament) TableIDs() []table.TableID {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	ids := make([]table.TableID, 0, len(tn.tables))
	for id := range tn.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Balance runs the table balancer over this tournament's current tables
// (spec.md §4.6), recording the balance timestamp on every table that
// participates in a move.
func (tn *Tournament) Balance(minPerTable, maxPerTable int, now time.Time) []Move {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	snaps := make([]TableSnapshot, 0, len(tn.tables))
	for id, info := range tn.tables {
		snaps = append(snaps, TableSnapshot{ID: string(id), PlayerCount: len(info.Players), LastRebalance: info.LastRebalance})
	}
	moves := Balance(snaps, minPerTable, maxPerTable, tn.cfg.Speed.Kind.RebalanceCooldown(), now)
	for _, m := range moves {
		if info, ok := tn.tables[table.TableID(m.From)]; ok {
			info.LastRebalance = now
		}
		if info, ok := tn.tables[table.TableID(m.To)]; ok {
			info.LastRebalance = now
		}
	}
	return moves
}

// HandlePlayerBusted starts the rebuy grace timer for a player who just
// hit stake 0 (spec.md §4.5.4 step 1). The elimination is only finalized
// once ResolveGraceTimers observes the window has elapsed without a
// rebuy or reentry.
func (tn *Tournament) HandlePlayerBusted(p table.PlayerID, now time.Time) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.busted[p] = bustRecord{bustedAt: now}
}

// ResolveGraceTimers finalizes eliminations whose grace window has
// elapsed without a rebuy/reentry (spec.md §4.5.4 steps 2-3).
func (tn *Tournament) ResolveGraceTimers(now time.Time) Events {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	var ev Events
	for p, rec := range tn.busted {
		if _, stillPlaying := tn.currentPlayers[p]; !stillPlaying {
			delete(tn.busted, p)
			continue
		}
		if now.Sub(rec.bustedAt) < tn.cfg.GraceWindow {
			continue
		}
		delete(tn.busted, p)
		delete(tn.currentPlayers, p)
		tn.eliminatedOrder = append([]table.PlayerID{p}, tn.eliminatedOrder...)
		ev.Eliminated = append(ev.Eliminated, p)
	}

	if len(tn.currentPlayers) <= 1 && tn.state != Completed && tn.state != Cancelled && tn.state != Registration {
		tn.state = Completed
		ev.Payouts = tn.settlePayouts()
		ev.SideEffects = append(ev.SideEffects, tn.prizeEffects(ev.Payouts)...)
		ev.Completed = true
	}
	return ev
}

// prizeEffects turns settled awards into the ledger deposits the host
// executes via the Ledger Gateway.
func (tn *Tournament) prizeEffects(awards []PrizeAward) []table.PendingSideEffect {
	effects := make([]table.PendingSideEffect, 0, len(awards))
	for _, a := range awards {
		effects = append(effects, table.PendingSideEffect{
			Kind:     "prize",
			Currency: tn.cfg.Currency,
			Account:  ledger.Account(a.Player),
			Amount:   a.Amount,
		})
	}
	return effects
}

// Cancel administratively ends the tournament, refunding every buy-in
// (spec.md §4.5.1).
func (tn *Tournament) Cancel() Events {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.state = Cancelled
	return Events{SideEffects: tn.refundAll()}
}

func (tn *Tournament) refundAll() []table.PendingSideEffect {
	effects := make([]table.PendingSideEffect, 0, len(tn.currentPlayers))
	for p := range tn.currentPlayers {
		effects = append(effects, table.PendingSideEffect{
			Kind:     "refund",
			Currency: tn.cfg.Currency,
			Account:  ledger.Account(p),
			Amount:   tn.cfg.BuyIn,
		})
	}
	return effects
}

// settlePayouts assigns final positions (winner = position 1, first
// eliminated = highest position number, spec.md §4.5.5) and computes
// each position's prize from the payout structure.
func (tn *Tournament) settlePayouts() []PrizeAward {
	total := len(tn.eliminatedOrder) + len(tn.currentPlayers)
	structure := CalculatePayoutStructure(total, tn.cfg.TournamentType)

	positionOf := make(map[table.PlayerID]int, total)
	pos := 1
	for p := range tn.currentPlayers {
		positionOf[p] = pos // the sole survivor, if any
		pos++
	}
	for _, p := range tn.eliminatedOrder {
		positionOf[p] = pos
		pos++
	}

	awards := make([]PrizeAward, 0, len(positionOf))
	var paidOut int64
	for p, position := range positionOf {
		if entry, ok := tn.currentPlayers[p]; ok {
			entry.Position = position
		}
		pct := percentageForPosition(structure, position)
		if pct == 0 {
			continue
		}
		amount := int64(float64(tn.prizePool) * pct / 100)
		paidOut += amount
		awards = append(awards, PrizeAward{Player: p, Position: position, Amount: amount})
	}
	sort.Slice(awards, func(i, j int) bool { return awards[i].Position < awards[j].Position })

	// Rounding dust goes to the winner so the awards always sum to the
	// whole prize pool.
	if len(awards) > 0 && paidOut < tn.prizePool {
		awards[0].Amount += tn.prizePool - paidOut
	}
	return awards
}

func percentageForPosition(structure []PayoutTier, position int) float64 {
	for _, tier := range structure {
		if position >= tier.StartPosition && position <= tier.EndPosition {
			return tier.Percentage
		}
	}
	return 0
}
