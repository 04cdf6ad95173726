package conversations

import "context"

// Repository port. Resolve is the single authoritative update for an
// entry's answer; readers re-fetch instead of holding mutable refs.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	Resolve(ctx context.Context, id EntryID, answer string, model string) error
	ListByDocument(ctx context.Context, documentID string) ([]*Entry, error)
	CountAnswered(ctx context.Context, documentID string) (int, error)
}
