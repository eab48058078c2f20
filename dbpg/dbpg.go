// Package dbpg provides PostgreSQL connection management with
// master-slave support and retry-aware execution for datastore calls.
package dbpg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/deepquery/dqf/retry"
)

// DB represents a database connection with master and slave nodes.
type DB struct {
	balancer *balancer

	Master *sql.DB
	Slaves []*sql.DB

	// Retry is consulted by the *WithRetry methods. Defaults to the
	// DatastoreCall preset narrowed by IsRetryable.
	Retry retry.Policy
}

// Options defines database connection configuration options.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func applyOptions(db *sql.DB, opts *Options) {
	if opts == nil {
		return
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}

// IsRetryable classifies PostgreSQL failures for the retry core.
// Connection-class failures, resource exhaustion, administrative
// shutdowns, and serialization conflicts clear on their own; anything
// else (constraint violations, syntax errors, missing rows) will not
// change on a re-attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, sql.ErrTxDone) {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case strings.HasPrefix(code, "08"): // connection exception
			return true
		case strings.HasPrefix(code, "53"): // insufficient resources
			return true
		case code == "57P01": // admin shutdown
			return true
		case code == "40001" || code == "40P01": // serialization failure, deadlock
			return true
		default:
			return false
		}
	}

	return retry.DefaultRetryable(err)
}

// New creates a new DB instance with master and slave connections.
func New(masterDSN string, slaveDSNs []string, opts *Options) (*DB, error) {
	master, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return nil, err
	}
	applyOptions(master, opts)

	slaves := make([]*sql.DB, 0, len(slaveDSNs))
	for _, dsn := range slaveDSNs {
		slave, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		applyOptions(slave, opts)
		slaves = append(slaves, slave)
	}

	return &DB{
		Master:   master,
		Slaves:   slaves,
		balancer: newBalancer(len(slaveDSNs)),
		Retry:    retry.DatastoreCall.WithRetryIf(IsRetryable),
	}, nil
}

// QueryContext executes a query on a slave if available, otherwise on the master.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.selectDB().QueryContext(ctx, query, args...)
}

// QueryRowContext executes a single-row query on a slave if available, otherwise on the master.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.selectDB().QueryRowContext(ctx, query, args...)
}

// ExecContext executes a command on the master database.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.Master.ExecContext(ctx, query, args...)
}

// ExecWithRetry executes a command under the DB's retry policy.
func (db *DB) ExecWithRetry(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return retry.Do(ctx, func(ctx context.Context) (sql.Result, error) {
		return db.ExecContext(ctx, query, args...)
	}, db.Retry, retry.WithName("dbpg.exec"))
}

// QueryWithRetry executes a query under the DB's retry policy.
func (db *DB) QueryWithRetry(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return retry.Do(ctx, func(ctx context.Context) (*sql.Rows, error) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			_ = rows.Close()
			return nil, rowsErr
		}
		return rows, nil
	}, db.Retry, retry.WithName("dbpg.query"))
}

// BeginTx starts a transaction on the master database.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.Master.BeginTx(ctx, opts)
}

// BeginTxWithRetry starts a transaction under the DB's retry policy.
func (db *DB) BeginTxWithRetry(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return retry.Do(ctx, func(ctx context.Context) (*sql.Tx, error) {
		return db.BeginTx(ctx, opts)
	}, db.Retry, retry.WithName("dbpg.begin_tx"))
}

// WithTx executes a function within a transaction on the master
// database, rolling back on error.
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.Master.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// selectDB returns a database for query execution: slave (round-robin)
// or master when no slaves are configured.
func (db *DB) selectDB() *sql.DB {
	if len(db.Slaves) > 0 {
		return db.Slaves[db.balancer.index()]
	}
	return db.Master
}
