package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager provides a thin abstraction to execute a function within a
// database transaction, passing the underlying transaction handle via `tx`.
//
// Keeping the handle opaque keeps use-case interfaces clean: repositories
// accept a Tx and detect the concrete handle (pgx.Tx for Postgres) on the
// implementation side, so SELECT ... FOR UPDATE and tx-bound Exec/Query work
// without leaking driver types upward. Repositories MUST gracefully accept a
// nil Tx (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
