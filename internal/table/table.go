package table

import (
	"fmt"
	"sync"
	"time"

	"tablestakes/internal/clock"
	"tablestakes/internal/ledger"
	"tablestakes/internal/pokererr"
	"tablestakes/internal/table/variant"
	"tablestakes/pkg/poker"
)

// Table is the synchronous, mutex-guarded game engine for a single
// table: every exported method runs to completion under t.mu and
// returns before any suspension point, replacing a prior
// gameLoop-goroutine-plus-channel design that raced t.mu against a
// background select loop — exactly the async-mutation-during-state-change
// pattern this engine forbids.
type Table struct {
	mu      sync.Mutex
	config  TableConfig
	seats   *SeatRing
	players map[PlayerID]*Player
	hand    *Hand
	queue   *ActionQueue
	rules   variant.BettingRules
	clock   clock.Clock
	handsSinceFlush int
	rakeAccrued     int64 // survives across hands until flushed
	sawFlopThisHand bool
	paused          bool
	pausedUntil     time.Time
}

// NewTable builds a Table for the given config, carrying over the prior
// NewTable's default-application logic minus the goroutine/channel
// scaffolding.
func NewTable(config TableConfig, c clock.Clock) (*Table, error) {
	if config.SeatCount <= 0 {
		return nil, pokererr.New(pokererr.InvalidConfiguration, "seatCount must be positive")
	}
	if config.SmallBlind <= 0 || config.BigBlind <= 0 {
		return nil, pokererr.New(pokererr.InvalidConfiguration, "blinds must be positive")
	}
	rules, err := bettingRulesFor(config)
	if err != nil {
		return nil, err
	}
	return &Table{
		config:  config,
		seats:   NewSeatRing(config.SeatCount),
		players: make(map[PlayerID]*Player),
		queue:   NewActionQueue(),
		rules:   rules,
		clock:   c,
		hand:    &Hand{DealStage: Fresh},
	}, nil
}

func bettingRulesFor(cfg TableConfig) (variant.BettingRules, error) {
	rules, err := variant.GetRegistry().Create(string(cfg.BettingType), variant.Params{
		BigBlind:   cfg.BigBlind,
		SmallBlind: cfg.SmallBlind,
		FixedSmall: cfg.FixedSmall,
		FixedBig:   cfg.FixedBig,
		SpreadMin:  cfg.SpreadMin,
		SpreadMax:  cfg.SpreadMax,
	})
	if err != nil {
		return nil, pokererr.Wrap(pokererr.InvalidConfiguration, fmt.Sprintf("betting type %s", cfg.BettingType), err)
	}
	return rules, nil
}

// AddUser implements spec.md §4.3.1 addUser.
func (t *Table) AddUser(p PlayerID, seatIdx int, stake int64, sittingOut bool) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.players[p]; exists {
		return TableEvents{}, pokererr.New(pokererr.SeatError, "player already on table")
	}
	if stake < t.config.BigBlind {
		return TableEvents{}, pokererr.New(pokererr.InsufficientFunds, "stake below big blind")
	}
	if seatIdx < 0 || seatIdx >= t.seats.Len() {
		return TableEvents{}, pokererr.Wrap(pokererr.SeatError, "add user", ErrSeatOutOfRange)
	}
	if t.seats.At(seatIdx).State != SeatEmpty {
		return TableEvents{}, pokererr.Wrap(pokererr.SeatError, "add user", ErrSeatOccupied)
	}

	if t.hand.DealStage != Fresh {
		if err := t.seats.QueueForNextRound(seatIdx, p, stake, sittingOut); err != nil {
			return TableEvents{}, pokererr.Wrap(pokererr.SeatError, "add user", err)
		}
		return TableEvents{}, nil
	}

	if err := t.seats.Reserve(seatIdx, p, t.clock.Now().UnixNano()); err != nil {
		return TableEvents{}, pokererr.Wrap(pokererr.SeatError, "add user", err)
	}
	if err := t.seats.Occupy(seatIdx, p); err != nil {
		return TableEvents{}, pokererr.Wrap(pokererr.SeatError, "add user", err)
	}
	action := ActionNone
	if sittingOut {
		action = ActionSittingOut
	}
	t.players[p] = &Player{ID: p, Stake: stake, Action: action}
	return TableEvents{}, nil
}

// RemoveUser implements spec.md §4.3.1 removeUser.
func (t *Table) RemoveUser(p PlayerID, reason string) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.players[p]; !ok {
		return TableEvents{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}

	seatIdx, found := t.seats.FindByPlayer(p)
	isActor := t.hand.DealStage != Fresh && t.hand.DealStage != Showdown &&
		found && seatIdx == t.hand.CurrentActorIdx

	var events TableEvents
	if isActor {
		ev, err := t.fold(p, true)
		if err != nil {
			return ev, err
		}
		events = ev
	}

	if t.hand.DealStage == Fresh {
		if found {
			_ = t.seats.Vacate(seatIdx)
		}
		if pl, ok := t.players[p]; ok && pl.Stake > 0 {
			events.SideEffects = append(events.SideEffects, PendingSideEffect{
				Kind:     "leave_payout",
				Currency: t.config.Rake.Currency,
				Account:  ledger.Account(p),
				Amount:   pl.Stake,
			})
		}
		delete(t.players, p)
		return events, nil
	}

	t.queue.Enqueue(OpRemoveUser{Player: p, Reason: reason})
	return events, nil
}

// SitOut implements spec.md §4.3.1 sitOut.
func (t *Table) SitOut(p PlayerID, forced bool) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, ok := t.players[p]
	if !ok {
		return TableEvents{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	if t.hand.DealStage != Fresh {
		t.queue.Enqueue(OpSitOut{Player: p})
		return TableEvents{}, nil
	}
	player.Action = ActionSittingOut
	return TableEvents{}, nil
}

// SitIn implements spec.md §4.3.1 sitIn.
func (t *Table) SitIn(p PlayerID) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, ok := t.players[p]
	if !ok {
		return TableEvents{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	if player.Action != ActionSittingOut {
		return TableEvents{}, pokererr.New(pokererr.ActionNotAllowed, "player is not sitting out")
	}
	if player.Stake < t.config.BigBlind {
		return TableEvents{}, pokererr.New(pokererr.InsufficientFunds, "stake below big blind")
	}
	if t.hand.DealStage != Fresh {
		t.queue.Enqueue(OpSitIn{Player: p})
		return TableEvents{}, nil
	}
	player.Action = ActionNone
	return TableEvents{}, nil
}

// PreFold implements spec.md §4.3.1 preFold.
func (t *Table) PreFold(p PlayerID) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, ok := t.players[p]
	if !ok {
		return TableEvents{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	player.PreFolded = true
	return TableEvents{}, nil
}

// currentActorPlayer returns the player at CurrentActorIdx, or an error
// if that seat isn't the given player's.
func (t *Table) currentActorPlayer(p PlayerID) (*Player, error) {
	if t.hand.DealStage == Fresh || t.hand.DealStage == Showdown {
		return nil, pokererr.New(pokererr.ActionNotAllowed, "no hand in progress")
	}
	seat := t.seats.At(t.hand.CurrentActorIdx)
	if seat.State != SeatOccupied || seat.Player != p {
		return nil, pokererr.New(pokererr.ActionNotAllowed, "not your turn")
	}
	return t.players[p], nil
}

// Check implements spec.md §4.3.1 check.
func (t *Table) Check(p PlayerID) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, err := t.currentActorPlayer(p)
	if err != nil {
		return TableEvents{}, err
	}
	if player.CurrentTotalBet != t.hand.HighestBet {
		return TableEvents{}, pokererr.New(pokererr.ActionNotAllowed, "cannot check facing a bet")
	}
	player.Action = ActionChecked
	return t.advance()
}

// Fold implements spec.md §4.3.1 fold.
func (t *Table) Fold(p PlayerID, forced bool) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fold(p, forced)
}

func (t *Table) fold(p PlayerID, forced bool) (TableEvents, error) {
	var player *Player
	if forced {
		player = t.players[p]
		if player == nil {
			return TableEvents{}, pokererr.New(pokererr.PlayerNotFound, string(p))
		}
	} else {
		var err error
		player, err = t.currentActorPlayer(p)
		if err != nil {
			return TableEvents{}, err
		}
	}
	player.Action = ActionFolded

	if t.countNonFolded() == 1 {
		return t.runShowdown()
	}
	return t.advance()
}

// Bet implements spec.md §4.3.1 bet — raiseTo is the total street bet the
// player wants to reach (covers both opening bets and raises).
func (t *Table) Bet(p PlayerID, raiseTo int64) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, err := t.currentActorPlayer(p)
	if err != nil {
		return TableEvents{}, err
	}

	isOpeningOrFlop := t.hand.DealStage == Opening || t.hand.DealStage == StreetFlop
	min, max, err := t.rules.LegalRaiseRange(variant.RoundState{
		Pot:             t.hand.Pot,
		HighestBet:      t.hand.HighestBet,
		LastRaise:       t.hand.LastRaise,
		PlayerStake:     player.Stake,
		PlayerBet:       player.CurrentTotalBet,
		BetsThisStreet:  t.hand.BetsThisStreet,
		IsOpeningOrFlop: isOpeningOrFlop,
	})
	if err != nil {
		return TableEvents{}, pokererr.Wrap(pokererr.ActionNotAllowed, "compute raise range", err)
	}
	cap := t.rules.MaxBetsPerStreet()
	if cap > 0 && t.hand.BetsThisStreet >= cap && raiseTo > t.hand.HighestBet {
		return TableEvents{}, pokererr.New(pokererr.ActionNotAllowed, "bet cap reached for this street")
	}
	allIn := raiseTo >= player.Stake+player.CurrentTotalBet
	switch {
	case allIn:
		raiseTo = player.Stake + player.CurrentTotalBet
	case raiseTo == t.hand.HighestBet:
		// a plain call is always legal regardless of the raise range
	case raiseTo > t.hand.HighestBet:
		if raiseTo < min || raiseTo > max {
			return TableEvents{}, pokererr.New(pokererr.ActionNotAllowed, "raise size outside legal range")
		}
	default:
		return TableEvents{}, pokererr.New(pokererr.ActionNotAllowed, "must call, check or raise")
	}

	increment := raiseTo - player.CurrentTotalBet
	player.Stake -= increment
	player.CurrentTotalBet = raiseTo

	// A short all-in below a full raise still lifts the bet to call, but
	// does not re-open the action: the players who had already matched
	// keep their actions and the last-raise bookkeeping stays put.
	isRaise := raiseTo > t.hand.HighestBet
	minFullRaise := t.hand.HighestBet + t.hand.LastRaise
	if isRaise && (!allIn || raiseTo >= minFullRaise) {
		t.hand.LastRaise = raiseTo - t.hand.HighestBet
		t.hand.LastRaiser = p
		t.hand.HasLastRaiser = true
		t.hand.BetsThisStreet++
		for id, pl := range t.players {
			if id != p && pl.Action != ActionFolded && pl.Action != ActionAllIn && pl.Action != ActionSittingOut {
				pl.Action = ActionNone
			}
		}
	}
	if isRaise {
		t.hand.HighestBet = raiseTo
	}

	if allIn {
		player.Action = ActionAllIn
	} else if isRaise {
		player.Action = ActionRaised
	} else {
		player.Action = ActionCalled
	}

	return t.advance()
}

// HandleTimerExpired implements spec.md §4.3.1 handleTimerExpired:
// resolve the stalled turn as a check when legal, otherwise a forced
// fold, and track the inactivity streak (§4.3.8).
func (t *Table) HandleTimerExpired(p PlayerID) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, err := t.currentActorPlayer(p)
	if err != nil {
		return TableEvents{}, err
	}

	player.InactiveHands++
	if t.config.MaxInactive > 0 && player.InactiveHands >= t.config.MaxInactive {
		t.queue.Enqueue(OpSitOut{Player: p})
	}

	if player.CurrentTotalBet == t.hand.HighestBet {
		player.Action = ActionChecked
		return t.advance()
	}
	return t.fold(p, true)
}

// countNonFolded counts players still contesting the pot; sitting-out
// players posted blinds but were never dealt in, so they don't count.
func (t *Table) countNonFolded() int {
	n := 0
	for _, p := range t.players {
		if p.Action != ActionFolded && p.Action != ActionSittingOut {
			n++
		}
	}
	return n
}

func (t *Table) seatOrder() []PlayerID {
	order := make([]PlayerID, 0, t.seats.Len())
	for i := 0; i < t.seats.Len(); i++ {
		s := t.seats.At(i)
		if s.State == SeatOccupied {
			order = append(order, s.Player)
		}
	}
	return order
}

// advance moves currentActorIdx to the next player who still needs to
// act, or closes the betting round when none remain.
func (t *Table) advance() (TableEvents, error) {
	order := t.seatOrder()
	if len(order) == 0 {
		return TableEvents{}, nil
	}
	if !t.roundNeedsMoreActors(order) {
		return t.completeBettingRound()
	}
	t.moveToNextActor(order)
	return t.resolveCurrentActor()
}

// resolveCurrentActor applies a pending pre-fold or auto-check-fold for
// the player the action just landed on, acting on their behalf and
// advancing again; with neither set, the hand waits on their input.
func (t *Table) resolveCurrentActor() (TableEvents, error) {
	actor := t.players[t.seats.At(t.hand.CurrentActorIdx).Player]
	switch {
	case actor.PreFolded:
		actor.PreFolded = false
		actor.Action = ActionFolded
		if t.countNonFolded() == 1 {
			return t.runShowdown()
		}
		return t.advance()
	case actor.AutoCheckFold:
		if actor.CurrentTotalBet == t.hand.HighestBet {
			actor.Action = ActionChecked
		} else {
			actor.Action = ActionFolded
			if t.countNonFolded() == 1 {
				return t.runShowdown()
			}
		}
		return t.advance()
	}
	return TableEvents{}, nil
}

// roundNeedsMoreActors reports whether any live player still needs to
// act to close the street.
func (t *Table) roundNeedsMoreActors(order []PlayerID) bool {
	for _, id := range order {
		p := t.players[id]
		if p.Action == ActionFolded || p.Action == ActionSittingOut || p.Action == ActionAllIn {
			continue
		}
		if p.Action == ActionNone {
			return true
		}
		if p.CurrentTotalBet != t.hand.HighestBet {
			return true
		}
		if t.hand.HasLastRaiser && id == t.hand.LastRaiser {
			// raiser closes the action only once action returns to them
			// having been fully matched; moveToNextActor never stops on
			// them again once they've raised, so reaching here with
			// nothing left to match means the round is closed.
			continue
		}
	}
	return false
}

func (t *Table) moveToNextActor(order []PlayerID) {
	curPlayer := t.seats.At(t.hand.CurrentActorIdx).Player
	pos := 0
	for i, id := range order {
		if id == curPlayer {
			pos = i
			break
		}
	}
	n := len(order)
	for i := 1; i <= n; i++ {
		id := order[(pos+i)%n]
		p := t.players[id]
		if p.Action == ActionFolded || p.Action == ActionSittingOut || p.Action == ActionAllIn {
			continue
		}
		idx, _ := t.seats.FindByPlayer(id)
		t.hand.CurrentActorIdx = idx
		return
	}
}

// completeBettingRound implements spec.md §4.3.2 street-close steps 1-6.
func (t *Table) completeBettingRound() (TableEvents, error) {
	for _, p := range t.players {
		if p.Action == ActionFolded || p.Action == ActionSittingOut {
			continue
		}
		t.hand.Pot += p.CurrentTotalBet
		p.TotalBet += p.CurrentTotalBet
		p.CurrentTotalBet = 0
		if !p.Action.sticky() {
			p.Action = ActionNone
		}
	}
	t.hand.HighestBet = 0
	t.hand.LastRaise = 0
	t.hand.HasLastRaiser = false
	t.hand.BetsThisStreet = 0

	if t.countNonFolded() == 1 {
		return t.runShowdown()
	}

	next := t.hand.DealStage.nextStreet()
	t.hand.DealStage = next
	if next == StreetFlop || next == StreetTurn || next == StreetRiver {
		if next == StreetFlop {
			t.sawFlopThisHand = true
		}
		want := next.communityCount() - len(t.hand.Community)
		for i := 0; i < want; i++ {
			t.hand.Community = append(t.hand.Community, t.hand.Deck.PopFront())
		}
	}
	if next == Showdown {
		return t.runShowdown()
	}

	// All-in hands run the board out street by street with no further
	// betting (spec.md §4.3.6 step 3).
	if t.actionableCount() < 2 {
		return t.completeBettingRound()
	}

	order := t.seatOrder()
	t.hand.CurrentActorIdx = firstActorPostFlop(order, t)
	return t.resolveCurrentActor()
}

// actionableCount is how many players can still make a betting decision
// this hand.
func (t *Table) actionableCount() int {
	n := 0
	for _, p := range t.players {
		if p.Action != ActionFolded && p.Action != ActionAllIn && p.Action != ActionSittingOut {
			n++
		}
	}
	return n
}

func firstActorPostFlop(order []PlayerID, t *Table) int {
	n := len(order)
	for i := 0; i < n; i++ {
		id := order[(t.dealerPos(order)+1+i)%n]
		p := t.players[id]
		if p.Action != ActionFolded && p.Action != ActionAllIn && p.Action != ActionSittingOut {
			idx, _ := t.seats.FindByPlayer(id)
			return idx
		}
	}
	return t.hand.DealerIdx
}

func (t *Table) dealerPos(order []PlayerID) int {
	for i, id := range order {
		idx, _ := t.seats.FindByPlayer(id)
		if idx == t.hand.DealerIdx {
			return i
		}
	}
	return 0
}

func (t *Table) runShowdown() (TableEvents, error) {
	t.hand.DealStage = Showdown
	for _, p := range t.players {
		t.hand.Pot += p.CurrentTotalBet
		p.TotalBet += p.CurrentTotalBet
		p.CurrentTotalBet = 0
	}

	folded := make(map[PlayerID]bool, len(t.players))
	for id, p := range t.players {
		folded[id] = p.Action == ActionFolded || p.Action == ActionSittingOut
	}
	order := t.seatOrder()
	result := settle(t.players, t.hand.Community, folded, order, t.dealerPos(order), t.hand.Rake, t.sawFlopThisHand)
	t.hand.RakeAccrued = result.RakeWithheld
	t.rakeAccrued += result.RakeWithheld

	var effects []PendingSideEffect
	t.handsSinceFlush++
	if t.handsSinceFlush >= flushEveryN(t.hand.Rake) && t.rakeAccrued > 0 {
		effects = splitRakeFlush(t.hand.Rake, t.rakeAccrued, 0.3, 0.1)
		t.rakeAccrued = 0
		t.handsSinceFlush = 0
	}

	t.hand.Pot = 0
	t.hand.DealStage = Fresh

	// Per-hand player state resets here; SittingOut survives into the
	// next hand, everything else starts clean.
	for _, p := range t.players {
		p.TotalBet = 0
		p.CurrentTotalBet = 0
		p.HoleCards = nil
		p.PreFolded = false
		if p.Action != ActionSittingOut {
			p.Action = ActionNone
		}
	}
	return TableEvents{HandComplete: true, Showdown: result, SideEffects: effects}, nil
}

// StartHand implements spec.md §4.3.1 startHand and §4.3.7/§4.3.8: drains
// the ActionQueue, kicks ineligible players, rotates the dealer, posts
// blinds/antes, deals hole cards.
func (t *Table) StartHand(seed []byte) (TableEvents, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hand.DealStage != Fresh {
		return TableEvents{}, pokererr.New(pokererr.ActionNotAllowed, "hand already in progress")
	}

	// Queue drain runs first so a queued deposit lands before the
	// stake-below-big-blind kick scan, and before dealer rotation
	// (spec.md §4.3.7).
	drainEvents := t.drainQueue()
	if t.paused || t.clock.Now().Before(t.pausedUntil) {
		return TableEvents{SideEffects: drainEvents}, pokererr.New(pokererr.ActionNotAllowed, "table is paused")
	}
	kicked := t.kickIneligible()

	eligible := 0
	for _, p := range t.players {
		if p.Action != ActionSittingOut {
			eligible++
		}
	}
	if eligible < 2 {
		return TableEvents{Kicked: kicked, SideEffects: drainEvents}, pokererr.New(pokererr.ActionNotAllowed, "not enough players to start a hand")
	}

	t.rotateDealer()
	t.hand = &Hand{
		DealStage:        Opening,
		DealerIdx:        t.hand.DealerIdx,
		Deck:             poker.Shuffle(seed),
		Rake:             t.config.Rake,
		BigBlindAmount:   t.config.BigBlind,
		SmallBlindAmount: t.config.SmallBlind,
		Ante:             t.config.Ante,
	}
	t.sawFlopThisHand = false

	t.postBlindsAndAntes()
	t.dealHoleCards()
	t.setFirstPreflopActor()

	return TableEvents{Kicked: kicked, SideEffects: drainEvents}, nil
}

// kickIneligible implements spec.md §4.3.8.
func (t *Table) kickIneligible() []KickedPlayer {
	var kicked []KickedPlayer
	for id, p := range t.players {
		switch {
		case p.Stake < t.config.BigBlind:
			kicked = append(kicked, KickedPlayer{Player: id, Reason: KickInsufficientFunds, Payout: p.Stake})
			t.removePlayerState(id)
		case p.Action == ActionSittingOut:
			p.SittingOutHands++
			if t.config.MaxSittingOut > 0 && p.SittingOutHands >= t.config.MaxSittingOut {
				kicked = append(kicked, KickedPlayer{Player: id, Reason: KickSittingOutTooLong, Payout: p.Stake})
				t.removePlayerState(id)
			}
		}
	}
	return kicked
}

func (t *Table) removePlayerState(id PlayerID) {
	if idx, ok := t.seats.FindByPlayer(id); ok {
		_ = t.seats.Vacate(idx)
	}
	delete(t.players, id)
}

// drainQueue implements spec.md §4.3.7: popped in FIFO order at the start
// of the next hand, before dealer rotation.
func (t *Table) drainQueue() []PendingSideEffect {
	ops := t.queue.Drain()
	var effects []PendingSideEffect
	for _, op := range ops {
		switch o := op.(type) {
		case OpSitIn:
			if p, ok := t.players[o.Player]; ok {
				p.Action = ActionNone
			}
		case OpDeposit:
			if p, ok := t.players[o.Player]; ok {
				p.Stake += o.Amount
			}
		case OpRemoveUser:
			if p, ok := t.players[o.Player]; ok && p.Stake > 0 {
				effects = append(effects, PendingSideEffect{
					Kind:     "leave_payout",
					Currency: t.config.Rake.Currency,
					Account:  ledger.Account(o.Player),
					Amount:   p.Stake,
				})
			}
			t.removePlayerState(o.Player)
		case OpSitOut:
			if p, ok := t.players[o.Player]; ok {
				p.Action = ActionSittingOut
			}
		case OpUpdateBlinds:
			t.config.SmallBlind = o.SmallBlind
			t.config.BigBlind = o.BigBlind
			t.config.Ante = o.Ante
		case OpLeaveToMove:
			t.removePlayerState(o.Player)
		case OpPause:
			t.paused = true
		case OpPauseForAddon:
			t.pausedUntil = t.clock.Now().Add(time.Duration(o.DurationNs))
		}
	}
	// activate any seats queued for this round
	for i := 0; i < t.seats.Len(); i++ {
		s := t.seats.At(i)
		if s.State == SeatQueuedForNextRound {
			_ = t.seats.Occupy(i, s.Player)
			action := ActionNone
			if s.SittingOut {
				action = ActionSittingOut
			}
			t.players[s.Player] = &Player{ID: s.Player, Stake: s.Stake, Action: action}
		}
	}
	return effects
}

func (t *Table) rotateDealer() {
	next, err := t.seats.Rotate(t.hand.DealerIdx, Clockwise)
	if err != nil {
		return
	}
	t.hand.DealerIdx = next
}

// postBlindsAndAntes implements spec.md §4.3.3.
func (t *Table) postBlindsAndAntes() {
	order := t.seatOrder()
	n := len(order)
	if n < 2 {
		return
	}

	var sbID, bbID PlayerID
	if n == 2 {
		sbID = order[t.dealerPos(order)]
		bbID = order[(t.dealerPos(order)+1)%n]
	} else {
		sbID = order[(t.dealerPos(order)+1)%n]
		bbID = order[(t.dealerPos(order)+2)%n]
	}

	t.postBlind(sbID, t.config.SmallBlind)
	t.postBlind(bbID, t.config.BigBlind)
	t.hand.SmallBlindPlayer = sbID
	t.hand.BigBlindPlayer = bbID
	t.hand.HighestBet = t.config.BigBlind
	t.hand.LastRaise = t.config.BigBlind
	t.hand.BetsThisStreet = 1 // the big blind is the street's opening bet

	t.postAntes(bbID)
}

func (t *Table) postBlind(id PlayerID, amount int64) {
	p, ok := t.players[id]
	if !ok {
		return
	}
	if p.Stake < amount {
		amount = p.Stake
		p.Action = ActionAllIn
	}
	p.Stake -= amount
	p.CurrentTotalBet = amount
}

func (t *Table) postAntes(bbID PlayerID) {
	switch t.hand.Ante.Kind {
	case AnteNone:
		return
	case AnteFixed:
		for _, p := range t.players {
			t.debitAnte(p, t.hand.Ante.Amount)
		}
	case AntePercentOfBigBlind:
		amount := int64(float64(t.config.BigBlind) * t.hand.Ante.Percent)
		for _, p := range t.players {
			t.debitAnte(p, amount)
		}
	case AnteBigBlindAnte:
		if p, ok := t.players[bbID]; ok {
			amount := t.hand.Ante.Amount
			if amount == 0 {
				amount = t.config.BigBlind
			}
			t.debitAnte(p, amount)
		}
	}
}

func (t *Table) debitAnte(p *Player, amount int64) {
	if amount <= 0 {
		return
	}
	if p.Stake < amount {
		amount = p.Stake
	}
	p.Stake -= amount
	t.hand.Pot += amount
}

func (t *Table) dealHoleCards() {
	holeCardCount := 2
	switch t.config.GameType {
	case GameOmaha, GameOmahaHiLo:
		holeCardCount = 4
	case GameSevenStud, GameFiveDraw:
		holeCardCount = 5
	}
	for _, id := range t.seatOrder() {
		p := t.players[id]
		if p.Action == ActionSittingOut {
			continue
		}
		for i := 0; i < holeCardCount; i++ {
			p.HoleCards = append(p.HoleCards, t.hand.Deck.PopFront())
		}
	}
}

func (t *Table) setFirstPreflopActor() {
	order := t.seatOrder()
	n := len(order)
	if n == 0 {
		return
	}
	bbPos := 0
	for i, id := range order {
		if id == t.hand.BigBlindPlayer {
			bbPos = i
			break
		}
	}
	for i := 1; i <= n; i++ {
		id := order[(bbPos+i)%n]
		p := t.players[id]
		if p.Action != ActionFolded && p.Action != ActionAllIn && p.Action != ActionSittingOut {
			idx, _ := t.seats.FindByPlayer(id)
			t.hand.CurrentActorIdx = idx
			return
		}
	}
}
