package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the non-transactional
// path.
type Tx interface{}

// NoTX marks a call that should run outside any transaction.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the transaction handle to the callback.
//
// Repository methods that receive a Tx detect the transactional path
// implementation-side (e.g. to run SELECT ... FOR UPDATE). If fn returns an
// error, or the context is cancelled mid-operation, every write performed so
// far in the transaction is rolled back; nothing partial is ever committed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
