package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/docintel/internal/domain/conversations"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Save inserts a pending entry (answer NULL)
func (r *ConversationRepository) Save(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO conversation_entries
  (id, document_id, question, answer, model, created_at)
VALUES (?,?,?,?,?,?);
`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var answer sql.NullString
	if e.Answer != nil {
		answer = sql.NullString{String: *e.Answer, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, q, e.ID, e.DocumentID, e.Question, answer, e.Model, createdAt)
	return err
}

// Resolve is the single authoritative answer update for an entry
func (r *ConversationRepository) Resolve(ctx context.Context, id domain.EntryID, answer string, model string) error {
	const q = `
UPDATE conversation_entries
SET answer = ?, model = ?
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q, answer, model, id)
	return err
}

// ListByDocument oldest first, pending included
func (r *ConversationRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Entry, error) {
	const q = `
SELECT id, document_id, question, answer, model, created_at
FROM conversation_entries
WHERE document_id=?
ORDER BY created_at ASC, id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		var answer sql.NullString
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Question, &answer, &e.Model, &e.CreatedAt); err != nil {
			return nil, err
		}
		if answer.Valid {
			v := answer.String
			e.Answer = &v
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// CountAnswered hitung entry yang sudah terjawab untuk kuota gratis
func (r *ConversationRepository) CountAnswered(ctx context.Context, documentID string) (int, error) {
	const q = `
SELECT COUNT(*)
FROM conversation_entries
WHERE document_id=? AND answer IS NOT NULL;
`
	var n int
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
