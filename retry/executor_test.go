package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("connection reset")

// recordSleep returns an option that records computed delays instead of
// waiting them out.
func recordSleep(delays *[]time.Duration) Option {
	return withSleep(func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	})
}

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      10 * time.Second,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var delays []time.Duration
	calls := 0

	v, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	}, fastPolicy(3), recordSleep(&delays))

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDo_RecoversAfterRetries(t *testing.T) {
	var delays []time.Duration
	calls := 0

	v, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 4 {
			return "", Transient(errFlaky)
		}
		return "ok", nil
	}, fastPolicy(3), recordSleep(&delays))

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, delays)
}

func TestDo_ExhaustionPropagatesOriginalError(t *testing.T) {
	var delays []time.Duration
	calls := 0

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	}, fastPolicy(3), recordSleep(&delays))

	require.Error(t, err)
	assert.Equal(t, errFlaky, err, "terminal failure must be the original error, unwrapped")
	assert.Equal(t, 4, calls, "maxRetries+1 total attempts")
	assert.Len(t, delays, 3, "no delay after the final attempt")
}

func TestDo_FatalFailureStopsImmediately(t *testing.T) {
	var delays []time.Duration
	calls := 0
	fatal := Validation(errors.New("malformed request"))

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	}, fastPolicy(5), recordSleep(&delays))

	require.Error(t, err)
	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls, "fatal failures must not consume the retry budget")
	assert.Empty(t, delays, "no delay is ever computed for a fatal failure")
}

func TestDo_NarrowPredicate(t *testing.T) {
	var delays []time.Duration
	calls := 0
	p := fastPolicy(5).WithRetryIf(TransientOnly)

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("some unclassified failure")
	}, p, recordSleep(&delays))

	require.Error(t, err)
	assert.Equal(t, 1, calls, "unclassified failures are fatal under TransientOnly")
}

func TestDo_ZeroRetries(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 0, InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: time.Second}

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	}, p)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroPolicyUsesDefault(t *testing.T) {
	var delays []time.Duration
	calls := 0

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	}, Policy{}, recordSleep(&delays))

	require.Error(t, err)
	assert.Equal(t, Default.MaxRetries+1, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, delays)
}

func TestDo_InvalidPolicy(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: -1, BackoffFactor: 2}

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	}, p)

	require.Error(t, err)
	assert.Equal(t, 0, calls, "operation must not run under an invalid policy")
}

func TestDo_CanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, func(ctx context.Context) (int, error) {
		calls++
		cancel() // signal arrives while the retry delay is pending
		return 0, errFlaky
	}, fastPolicy(5))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoWithDefault_SuppressesExhaustion(t *testing.T) {
	var delays []time.Duration
	calls := 0

	v := DoWithDefault(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", errFlaky
	}, fastPolicy(3), "X", recordSleep(&delays))

	assert.Equal(t, "X", v)
	assert.Equal(t, 4, calls)
}

func TestDoWithDefault_SuppressesFatalImmediately(t *testing.T) {
	var delays []time.Duration
	calls := 0

	v := DoWithDefault(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, Validation(errors.New("bad input"))
	}, fastPolicy(3), 42, recordSleep(&delays))

	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDoWithDefault_PassesThroughSuccess(t *testing.T) {
	v := DoWithDefault(context.Background(), func(ctx context.Context) (string, error) {
		return "real", nil
	}, fastPolicy(3), "default")

	assert.Equal(t, "real", v)
}

func TestRun_PropagatesError(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := Run(context.Background(), func(ctx context.Context) error {
		calls++
		return errFlaky
	}, fastPolicy(2), recordSleep(&delays))

	require.Error(t, err)
	assert.Equal(t, errFlaky, err)
	assert.Equal(t, 3, calls)
}

func TestRun_Success(t *testing.T) {
	err := Run(context.Background(), func(ctx context.Context) error {
		return nil
	}, fastPolicy(2))

	assert.NoError(t, err)
}
