package tokens

import "context"

// Debitor is the capability handed to the conversation manager. The
// token economy itself lives behind this interface; debit must be
// atomic (conditional decrement) so concurrent questions cannot
// overdraw a balance.
type Debitor interface {
	Debit(ctx context.Context, ownerID string, amount int) error
}

// Ledger adds the read/credit side used by the HTTP surface.
type Ledger interface {
	Debitor
	Credit(ctx context.Context, ownerID string, amount int) error
	Balance(ctx context.Context, ownerID string) (int64, error)
}
