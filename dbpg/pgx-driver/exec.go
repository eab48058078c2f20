package pgxdriver

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deepquery/dqf/retry"
)

// Query executes a query that returns rows, such as a SELECT.
func (p *Postgres) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.Pool.Query(ctx, sql, args...)
}

// QueryRow executes a query expected to return at most one row. It is
// safe to call Scan on the returned Row even if no row is found.
func (p *Postgres) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.Pool.QueryRow(ctx, sql, args...)
}

// Exec executes a statement that does not return rows, such as INSERT,
// UPDATE, or DELETE.
func (p *Postgres) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.Pool.Exec(ctx, sql, args...)
}

// ExecWithRetry executes a statement under the client's retry policy.
func (p *Postgres) ExecWithRetry(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return retry.Do(ctx, func(ctx context.Context) (pgconn.CommandTag, error) {
		return p.Pool.Exec(ctx, sql, args...)
	}, p.Retry, retry.WithName("pgx.exec"))
}

// QueryWithRetry executes a row-returning query under the client's
// retry policy.
func (p *Postgres) QueryWithRetry(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return retry.Do(ctx, func(ctx context.Context) (pgx.Rows, error) {
		rows, err := p.Pool.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			rows.Close()
			return nil, rowsErr
		}
		return rows, nil
	}, p.Retry, retry.WithName("pgx.query"))
}

// ExecBuilder renders a squirrel statement and executes it under the
// client's retry policy.
func (p *Postgres) ExecBuilder(ctx context.Context, b squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, retry.Internal(err)
	}
	return p.ExecWithRetry(ctx, sql, args...)
}

// QueryBuilder renders a squirrel statement and runs it under the
// client's retry policy.
func (p *Postgres) QueryBuilder(ctx context.Context, b squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, retry.Internal(err)
	}
	return p.QueryWithRetry(ctx, sql, args...)
}
