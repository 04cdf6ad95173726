package mysql

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

// Debit decrements atomically: the conditional WHERE makes concurrent
// debits safe without a transaction.
func (l *TokenLedger) Debit(ctx context.Context, ownerID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}
	const q = `
UPDATE token_ledger
SET balance = balance - ?
WHERE owner_id = ? AND balance >= ?;`
	res, err := l.db.ExecContext(ctx, q, amount, ownerID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tokens.ErrInsufficientBalance
	}
	return nil
}

// Credit tambah saldo, buat baris kalau belum ada
func (l *TokenLedger) Credit(ctx context.Context, ownerID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	const q = `
INSERT INTO token_ledger (owner_id, balance)
VALUES (?,?)
ON DUPLICATE KEY UPDATE balance = balance + VALUES(balance);`
	_, err := l.db.ExecContext(ctx, q, ownerID, amount)
	return err
}

// Balance saldo saat ini, 0 kalau owner belum punya baris
func (l *TokenLedger) Balance(ctx context.Context, ownerID string) (int64, error) {
	const q = `SELECT balance FROM token_ledger WHERE owner_id=? LIMIT 1;`
	var balance int64
	err := l.db.QueryRowContext(ctx, q, ownerID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}
