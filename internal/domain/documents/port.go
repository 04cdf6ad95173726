package documents

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Get(ctx context.Context, owner string, id DocumentID) (*Document, error)
	Latest(ctx context.Context, owner string, limit int) ([]*Document, error)
	Paginate(ctx context.Context, owner string, page, pageSize int) (PaginatedResult, error)
	UpdateStatus(ctx context.Context, owner string, id DocumentID, status Status) error

	// Delete removes the document together with its analyses and
	// conversation entries. Blob cleanup is the caller's job.
	Delete(ctx context.Context, owner string, id DocumentID) error
}

// BlobStore port (interface untuk penyimpanan file)
// onProgress menerima fraksi 0..1 dari jumlah byte yang sudah terkirim.
type BlobStore interface {
	Upload(ctx context.Context, localPath, key, contentType string, onProgress func(float64)) (string, error)
	Delete(ctx context.Context, key string) error
}
