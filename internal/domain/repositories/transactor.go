package repositories

import "context"

// Transactor runs fn inside a database transaction carried by the context
// passed to fn. Repository calls made with that context join the
// transaction. A nested call runs inside a savepoint, so its failure
// rolls back only its own work.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
