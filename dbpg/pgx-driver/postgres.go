// Package pgxdriver provides a pgx-based PostgreSQL client with
// connection pooling, SQL building via squirrel, and retry-aware
// execution for datastore calls.
package pgxdriver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deepquery/dqf/retry"
)

// Postgres is a pooled PostgreSQL client.
type Postgres struct {
	Pool *pgxpool.Pool

	// Builder is a squirrel statement builder preset to $N placeholders.
	Builder squirrel.StatementBuilderType

	// Retry is consulted by the *WithRetry methods. Defaults to the
	// DatastoreCall preset narrowed by IsRetryable.
	Retry retry.Policy
}

// Options defines pool configuration options.
type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// New creates a pooled client and verifies connectivity with a ping.
func New(ctx context.Context, dsn string, opts *Options) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		if opts.MaxConns > 0 {
			cfg.MaxConns = opts.MaxConns
		}
		if opts.MinConns > 0 {
			cfg.MinConns = opts.MinConns
		}
		if opts.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = opts.MaxConnLifetime
		}
		if opts.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = opts.MaxConnIdleTime
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{
		Pool:    pool,
		Builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		Retry:   retry.DatastoreCall.WithRetryIf(IsRetryable),
	}, nil
}

// Close releases the pool's connections.
func (p *Postgres) Close() {
	p.Pool.Close()
}

// Select starts a new SELECT query using the embedded squirrel builder.
func (p *Postgres) Select(columns ...string) squirrel.SelectBuilder {
	return p.Builder.Select(columns...)
}

// Insert starts a new INSERT query using the embedded squirrel builder.
func (p *Postgres) Insert(into string) squirrel.InsertBuilder {
	return p.Builder.Insert(into)
}

// Update starts a new UPDATE query using the embedded squirrel builder.
func (p *Postgres) Update(table string) squirrel.UpdateBuilder {
	return p.Builder.Update(table)
}

// Delete starts a new DELETE query using the embedded squirrel builder.
func (p *Postgres) Delete(from string) squirrel.DeleteBuilder {
	return p.Builder.Delete(from)
}

// IsRetryable classifies pgx failures for the retry core. Failures pgx
// itself marks safe, timeouts, connection-class and resource errors,
// administrative shutdowns, and serialization conflicts are retryable;
// anything else will not change on a re-attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient resources
			return true
		case pgErr.Code == "57P01": // admin shutdown
			return true
		case pgErr.Code == "40001" || pgErr.Code == "40P01": // serialization failure, deadlock
			return true
		default:
			return false
		}
	}

	return retry.DefaultRetryable(err)
}
