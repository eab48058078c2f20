package pgxdriver

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/deepquery/dqf/retry"
)

// WithTx executes fn within a transaction, rolling back on error.
func (p *Postgres) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// BeginWithRetry starts a transaction under the client's retry policy.
// Only the begin is retried; statements inside the transaction are not,
// since a serialization retry must replay the whole transaction.
func (p *Postgres) BeginWithRetry(ctx context.Context) (pgx.Tx, error) {
	return retry.Do(ctx, func(ctx context.Context) (pgx.Tx, error) {
		return p.Pool.Begin(ctx)
	}, p.Retry, retry.WithName("pgx.begin"))
}
