package repositories

import (
	"context"
)

// TransactionManager runs a unit of work atomically. Repositories called with
// the context passed to fn take part in the same transaction; nested calls
// reuse the outer transaction.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
