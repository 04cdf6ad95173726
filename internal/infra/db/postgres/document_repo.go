package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	domain "github.com/bryanwahyu/docintel/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Save inserts or updates a document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents
(id, owner_id, name, original_name, mime_type, size_bytes, blob_key, url, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  name=EXCLUDED.name,
  mime_type=EXCLUDED.mime_type,
  size_bytes=EXCLUDED.size_bytes,
  blob_key=EXCLUDED.blob_key,
  url=EXCLUDED.url,
  status=EXCLUDED.status,
  updated_at=EXCLUDED.updated_at;
`
	owner := stringOrDash(d.OwnerID)
	status := stringOrDash(string(d.Status))
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	_, err := r.db.ExecContext(ctx, q,
		d.ID, owner, d.Name, d.OriginalName, d.MimeType, d.SizeBytes,
		d.BlobKey, d.URL, status, created, updated,
	)
	return err
}

// Get by ID + Owner
func (r *DocumentRepository) Get(ctx context.Context, owner string, id domain.DocumentID) (*domain.Document, error) {
	const q = `
SELECT id, owner_id, name, original_name, mime_type, size_bytes, blob_key, url, status, created_at, updated_at
FROM documents
WHERE owner_id=$1 AND id=$2 LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, owner, id)

	var d domain.Document
	if err := row.Scan(
		&d.ID, &d.OwnerID, &d.Name, &d.OriginalName, &d.MimeType, &d.SizeBytes,
		&d.BlobKey, &d.URL, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Latest documents per owner
func (r *DocumentRepository) Latest(ctx context.Context, owner string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, owner_id, name, original_name, mime_type, size_bytes, blob_key, url, status, created_at, updated_at
FROM documents
WHERE owner_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID, &d.OwnerID, &d.Name, &d.OriginalName, &d.MimeType, &d.SizeBytes,
			&d.BlobKey, &d.URL, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// Paginate with offset + limit
func (r *DocumentRepository) Paginate(ctx context.Context, owner string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, owner_id, name, original_name, mime_type, size_bytes, blob_key, url, status, created_at, updated_at
FROM documents
WHERE owner_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, owner, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID, &d.OwnerID, &d.Name, &d.OriginalName, &d.MimeType, &d.SizeBytes,
			&d.BlobKey, &d.URL, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		docs = append(docs, &d)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	var total int64
	const qc = `SELECT COUNT(*) FROM documents WHERE owner_id=$1;`
	if err := r.db.QueryRowContext(ctx, qc, owner).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       docs,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateStatus updates status + updated_at only
func (r *DocumentRepository) UpdateStatus(ctx context.Context, owner string, id domain.DocumentID, status domain.Status) error {
	const q = `
UPDATE documents
SET status = $1, updated_at = $2
WHERE owner_id = $3 AND id = $4;`
	res, err := r.db.ExecContext(ctx, q, status, time.Now(), owner, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete cascades to conversation entries and analyses in one tx
func (r *DocumentRepository) Delete(ctx context.Context, owner string, id domain.DocumentID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_entries WHERE document_id=$1;`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_analyses WHERE document_id=$1;`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE owner_id=$1 AND id=$2;`, owner, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
