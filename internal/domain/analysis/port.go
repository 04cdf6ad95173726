package analysis

import "context"

// Repository port for persisting and querying analysis results
type Repository interface {
	Save(ctx context.Context, r *Result) error
	LatestByDocument(ctx context.Context, owner string, documentID string) (*Result, error)
	Paginate(ctx context.Context, owner string, page, pageSize int) ([]*Result, error)
}
