package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bryanwahyu/docintel/internal/domain/tokens"
)

type TokenLedger struct {
	db *sql.DB
}

func NewTokenLedger(db *sql.DB) *TokenLedger {
	return &TokenLedger{db: db}
}

// Debit decrements atomically via the conditional WHERE
func (l *TokenLedger) Debit(ctx context.Context, ownerID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}
	const q = `
UPDATE token_ledger
SET balance = balance - $1
WHERE owner_id = $2 AND balance >= $1;`
	res, err := l.db.ExecContext(ctx, q, amount, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tokens.ErrInsufficientBalance
	}
	return nil
}

// Credit adds to the balance, creating the row when missing
func (l *TokenLedger) Credit(ctx context.Context, ownerID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	const q = `
INSERT INTO token_ledger (owner_id, balance)
VALUES ($1,$2)
ON CONFLICT (owner_id) DO UPDATE SET balance = token_ledger.balance + EXCLUDED.balance;`
	_, err := l.db.ExecContext(ctx, q, ownerID, amount)
	return err
}

// Balance returns 0 when the owner has no row yet
func (l *TokenLedger) Balance(ctx context.Context, ownerID string) (int64, error) {
	const q = `SELECT balance FROM token_ledger WHERE owner_id=$1 LIMIT 1;`
	var balance int64
	err := l.db.QueryRowContext(ctx, q, ownerID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}
