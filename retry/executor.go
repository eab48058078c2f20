package retry

import (
	"context"
	"time"

	"github.com/deepquery/dqf/logger"
	"github.com/deepquery/dqf/zlog"
)

// Operation is a zero-argument fallible computation producing a T.
type Operation[T any] func(ctx context.Context) (T, error)

// Option configures a single execution.
type Option func(*options)

type options struct {
	log   logger.Logger
	name  string
	sleep func(ctx context.Context, d time.Duration) error
}

// WithLogger routes the execution's transition events to l instead of
// the global zlog logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithName sets the operation name used in log records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// withSleep replaces the delay step. Tests use it to record delays
// instead of waiting them out.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) { o.sleep = fn }
}

func newOptions(opts []Option) *options {
	o := &options{
		name:  "operation",
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.NewZerologWith(zlog.Logger)
	}
	return o
}

// sleepCtx suspends until d elapses or ctx is done, whichever is first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do invokes op under policy p, propagating the terminal failure.
//
// The operation runs at most p.MaxRetries+1 times. A success returns
// immediately. A failure the policy classifies as non-retryable, an
// exhausted retry budget, or a context cancellation during a delay all
// end the loop; the original error is returned unmodified.
func Do[T any](ctx context.Context, op Operation[T], p Policy, opts ...Option) (T, error) {
	return execute(ctx, op, p, false, newOptions(opts))
}

// DoWithDefault invokes op under policy p, suppressing any terminal
// failure behind def. It follows the same attempt loop as Do, but an
// exhausted, fatal, or canceled execution yields def instead of an
// error, so a best-effort call site can continue degraded.
func DoWithDefault[T any](ctx context.Context, op Operation[T], p Policy, def T, opts ...Option) T {
	o := newOptions(opts)
	v, err := execute(ctx, op, p, true, o)
	if err != nil {
		o.log.Infow("returning default value", "op", o.name)
		return def
	}
	return v
}

// Run is Do for operations that produce no value.
func Run(ctx context.Context, fn func(ctx context.Context) error, p Policy, opts ...Option) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, p, opts...)
	return err
}

func execute[T any](ctx context.Context, op Operation[T], p Policy, suppress bool, o *options) (T, error) {
	var zero T

	if p.IsZero() {
		p = Default
	}
	if err := p.Validate(); err != nil {
		o.terminal(suppress, "invalid retry policy", "op", o.name, "err", err)
		return zero, err
	}

	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				o.log.Infow("recovered after retry",
					"op", o.name, "retries", attempt)
			}
			return v, nil
		}

		if !p.IsRetryable(err) {
			o.terminal(suppress, "non-retryable failure",
				"op", o.name, "kind", KindOf(err).String(), "err", err)
			return zero, err
		}
		if attempt == p.MaxRetries {
			o.terminal(suppress, "retries exhausted",
				"op", o.name, "attempts", attempt+1, "err", err)
			return zero, err
		}

		delay := p.DelayForAttempt(attempt)
		o.log.Warnw("retry scheduled",
			"op", o.name, "attempt", attempt+1, "delay", delay.String(), "err", err)
		if serr := o.sleep(ctx, delay); serr != nil {
			o.terminal(suppress, "canceled during retry delay", "op", o.name, "err", serr)
			return zero, serr
		}
	}
}

// terminal logs a loop-ending failure: a hard error under Propagate,
// only a warning under Suppress since the caller absorbs it.
func (o *options) terminal(suppress bool, msg string, kvs ...any) {
	if suppress {
		o.log.Warnw(msg, kvs...)
		return
	}
	o.log.Errorw(msg, kvs...)
}
