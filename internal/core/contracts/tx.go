package contracts

import "context"

// TxRunner executes fn inside a storage transaction. Repository calls made
// with the context passed to fn join that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
