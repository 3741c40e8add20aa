package table

import (
	"time"

	"tablestakes/internal/ledger"
	"tablestakes/internal/pokererr"
)

// Deposit implements spec.md §4.3.1 depositToTable: additional chips are
// queued rather than applied immediately so a deposit mid-hand can never
// change a player's all-in stake partway through a betting round
// (spec.md §4.3.7).
func (t *Table) Deposit(p PlayerID, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.players[p]; !ok {
		return pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	if amount <= 0 {
		return pokererr.New(pokererr.InvalidConfiguration, "deposit amount must be positive")
	}
	t.queue.Enqueue(OpDeposit{Player: p, Amount: amount})
	return nil
}

// UpdateBlinds implements spec.md §4.3.1 updateBlinds: the new blind
// level takes effect at the next hand boundary, never mid-hand.
func (t *Table) UpdateBlinds(smallBlind, bigBlind int64, ante AnteConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if smallBlind <= 0 || bigBlind <= 0 {
		return pokererr.New(pokererr.InvalidConfiguration, "blinds must be positive")
	}
	t.queue.Enqueue(OpUpdateBlinds{SmallBlind: smallBlind, BigBlind: bigBlind, Ante: ante})
	return nil
}

// RequestPause implements spec.md §4.3.1 pauseTable: the table finishes
// its current hand, then holds at the boundary until Resume is called.
// Resuming is the host's responsibility (no queued counterpart) — the
// table only needs to remember the hold happened for the host to check.
func (t *Table) RequestPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue.Enqueue(OpPause{})
}

// RequestPauseForAddon queues a pause of the given duration, used by the
// tournament director to hold a table open during an addon break
// (spec.md §4.5.3).
func (t *Table) RequestPauseForAddon(durationNs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue.Enqueue(OpPauseForAddon{DurationNs: durationNs})
}

// SetAutoCheckFold implements spec.md §4.3.1 setAutoCheckFold: when set,
// the player's turns resolve themselves as a check when legal, a fold
// otherwise, until they switch it back off.
func (t *Table) SetAutoCheckFold(p PlayerID, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, ok := t.players[p]
	if !ok {
		return pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	player.AutoCheckFold = enabled
	return nil
}

// Withdraw implements spec.md §4.3.1 withdrawFromTable: chips leave the
// stake only at a hand boundary, never mid-hand, and the returned side
// effect carries the ledger withdrawal for the caller to execute.
func (t *Table) Withdraw(p PlayerID, amount int64) (PendingSideEffect, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	player, ok := t.players[p]
	if !ok {
		return PendingSideEffect{}, pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	if t.hand.DealStage != Fresh {
		return PendingSideEffect{}, pokererr.New(pokererr.ActionNotAllowed, "cannot withdraw during a hand")
	}
	if amount <= 0 || amount > player.Stake {
		return PendingSideEffect{}, pokererr.New(pokererr.InsufficientFunds, "withdraw amount exceeds stake")
	}
	player.Stake -= amount
	return PendingSideEffect{
		Kind:     "table_withdrawal",
		Currency: t.config.Rake.Currency,
		Account:  ledger.Account(p),
		Amount:   amount,
	}, nil
}

// Resume clears any pause so the next StartHand may proceed.
func (t *Table) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
	t.pausedUntil = time.Time{}
}

// RequestMove queues a player's removal from this table in favor of
// targetTable, used by the table balancer (internal/tournament.Balance)
// to relocate a player without disrupting their current hand.
func (t *Table) RequestMove(p PlayerID, targetTable TableID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.players[p]; !ok {
		return pokererr.New(pokererr.PlayerNotFound, string(p))
	}
	t.queue.Enqueue(OpLeaveToMove{Player: p, TargetTable: targetTable})
	return nil
}
