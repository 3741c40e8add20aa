// Package memory implements an in-process Ledger Gateway for tests and
// local development: a plain map guarded by a mutex, the simplest
// conforming implementation of internal/ledger.Gateway.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tablestakes/internal/ledger"
)

type balanceKey struct {
	currency string
	account  ledger.Account
}

// Gateway is an in-memory Ledger Gateway.
type Gateway struct {
	mu       sync.Mutex
	balances map[balanceKey]int64
	fee      int64
}

// New returns a Gateway with the given flat per-transfer fee (0 for tests
// that don't care about fees).
func New(fee int64) *Gateway {
	return &Gateway{balances: make(map[balanceKey]int64), fee: fee}
}

func key(c ledger.Currency, a ledger.Account) balanceKey {
	return balanceKey{currency: c.String(), account: a}
}

func (g *Gateway) Deposit(ctx context.Context, currency ledger.Currency, wallet ledger.Account, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("memory ledger deposit: %w", ledger.ErrTransferFailed)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[key(currency, wallet)] += amount
	return nil
}

func (g *Gateway) Withdraw(ctx context.Context, currency ledger.Currency, recipient ledger.Account, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := key(currency, recipient)
	if g.balances[k] < amount {
		return fmt.Errorf("memory ledger withdraw: %w", ledger.ErrInsufficientBalance)
	}
	g.balances[k] -= amount
	return nil
}

func (g *Gateway) GetBalance(ctx context.Context, currency ledger.Currency, account ledger.Account) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[key(currency, account)], nil
}

func (g *Gateway) GetFee(ctx context.Context, currency ledger.Currency) (int64, error) {
	return g.fee, nil
}

func (g *Gateway) ValidateAllowance(ctx context.Context, currency ledger.Currency, wallet ledger.Account, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.balances[key(currency, wallet)] < amount {
		return fmt.Errorf("memory ledger allowance: %w", ledger.ErrInsufficientAllowance)
	}
	return nil
}

// Credit is a test helper that adds amount to an account's balance
// directly, bypassing Deposit's semantics.
func (g *Gateway) Credit(currency ledger.Currency, account ledger.Account, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[key(currency, account)] += amount
}
