// Package postgres implements internal/ledger.Gateway against a
// PostgreSQL accounts table, in the query/scan idiom used throughout
// internal/storage/postgres (lib/pq driver, ExecContext /
// QueryRowContext, CREATE TABLE IF NOT EXISTS bootstrap).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"tablestakes/internal/ledger"
)

// Gateway is a PostgreSQL-backed Ledger Gateway.
type Gateway struct {
	db  *sql.DB
	fee int64
}

// New wraps an existing *sql.DB. Callers own the connection's lifecycle.
func New(db *sql.DB, fee int64) *Gateway {
	return &Gateway{db: db, fee: fee}
}

// CreateAccountsTable bootstraps the ledger_accounts table.
func (g *Gateway) CreateAccountsTable(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_accounts (
			currency VARCHAR(64) NOT NULL,
			account  VARCHAR(64) NOT NULL,
			balance  BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (currency, account)
		);
	`)
	if err != nil {
		return fmt.Errorf("ledger postgres: create table: %w", err)
	}
	return nil
}

func (g *Gateway) Deposit(ctx context.Context, currency ledger.Currency, wallet ledger.Account, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("ledger postgres deposit: %w", ledger.ErrTransferFailed)
	}
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO ledger_accounts (currency, account, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency, account) DO UPDATE SET balance = ledger_accounts.balance + EXCLUDED.balance
	`, currency.String(), string(wallet), amount)
	if err != nil {
		return fmt.Errorf("ledger postgres deposit: %w: %w", ledger.ErrTransferFailed, err)
	}
	return nil
}

func (g *Gateway) Withdraw(ctx context.Context, currency ledger.Currency, recipient ledger.Account, amount int64) error {
	result, err := g.db.ExecContext(ctx, `
		UPDATE ledger_accounts SET balance = balance - $1
		WHERE currency = $2 AND account = $3 AND balance >= $1
	`, amount, currency.String(), string(recipient))
	if err != nil {
		return fmt.Errorf("ledger postgres withdraw: %w: %w", ledger.ErrTransferFailed, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger postgres withdraw: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ledger postgres withdraw: %w", ledger.ErrInsufficientBalance)
	}
	return nil
}

func (g *Gateway) GetBalance(ctx context.Context, currency ledger.Currency, account ledger.Account) (int64, error) {
	var balance int64
	err := g.db.QueryRowContext(ctx, `
		SELECT balance FROM ledger_accounts WHERE currency = $1 AND account = $2
	`, currency.String(), string(account)).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger postgres balance: %w", err)
	}
	return balance, nil
}

func (g *Gateway) GetFee(ctx context.Context, currency ledger.Currency) (int64, error) {
	return g.fee, nil
}

func (g *Gateway) ValidateAllowance(ctx context.Context, currency ledger.Currency, wallet ledger.Account, amount int64) error {
	balance, err := g.GetBalance(ctx, currency, wallet)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("ledger postgres allowance: %w", ledger.ErrInsufficientAllowance)
	}
	return nil
}
