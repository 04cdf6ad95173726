package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/bryanwahyu/docintel/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record; history is kept, never overwritten
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Result) error {
	const q = `
INSERT INTO document_analyses
  (id, document_id, owner_id, blocks_json, model, prompt, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  blocks_json=EXCLUDED.blocks_json,
  model=EXCLUDED.model,
  prompt=EXCLUDED.prompt;
`
	owner := stringOrDash(a.OwnerID)
	blocks, err := json.Marshal(a.Blocks)
	if err != nil {
		return err
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q, a.ID, a.DocumentID, owner, string(blocks), a.Model, a.Prompt, createdAt)
	return err
}

// LatestByDocument returns the current result: most recent by time
func (r *AnalysisRepository) LatestByDocument(ctx context.Context, owner string, documentID string) (*domain.Result, error) {
	const q = `
SELECT id, document_id, owner_id, blocks_json, model, prompt, created_at
FROM document_analyses
WHERE owner_id=$1 AND document_id=$2
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, owner, documentID)
	a, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, owner string, page, pageSize int) ([]*domain.Result, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, document_id, owner_id, blocks_json, model, prompt, created_at
FROM document_analyses
WHERE owner_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, owner, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(scan func(dest ...any) error) (*domain.Result, error) {
	var a domain.Result
	var blocks string
	if err := scan(&a.ID, &a.DocumentID, &a.OwnerID, &blocks, &a.Model, &a.Prompt, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blocks), &a.Blocks); err != nil {
		a.Blocks = []domain.ContentBlock{{Type: domain.BlockText, Text: blocks}}
	}
	return &a, nil
}
