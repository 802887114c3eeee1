package retrypolicy

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/xeptore/innertune/config"
	"github.com/xeptore/innertune/innertube/apierr"
)

// Policy retries only failures apierr.IsRetryable accepts, doubling the
// delay after every failed attempt. There is no jitter.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

func Default() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: time.Second}
}

func FromConfig(conf config.Retry) Policy {
	return Policy{MaxAttempts: conf.MaxAttempts, InitialDelay: conf.InitialDelay.Duration}
}

func (p Policy) backoff() retry.Backoff {
	delay := p.InitialDelay
	if delay <= 0 {
		delay = time.Nanosecond
	}

	retries := 0
	if p.MaxAttempts > 1 {
		retries = p.MaxAttempts - 1
	}

	return retry.WithMaxRetries(uint64(retries), retry.NewExponential(delay)) //nolint:gosec
}

// Delays lists the sleeps a sequence of always retryable failures goes through.
func (p Policy) Delays() []time.Duration {
	var (
		b   = p.backoff()
		out []time.Duration
	)
	for {
		next, stop := b.Next()
		if stop {
			return out
		}
		out = append(out, next)
	}
}

// Do runs op until it succeeds, fails with a non retryable error, or the
// attempts are used up, returning the last error unchanged. Cancelling ctx
// during a sleep stops the sequence without calling op again.
func Do[T any](ctx context.Context, logger zerolog.Logger, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		out     T
		attempt int
	)
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		v, err := op(ctx)
		if nil != err {
			if apierr.IsRetryable(err) {
				logger.Debug().Err(err).Int("attempt", attempt).Msg("Retryable failure")
				return retry.RetryableError(err)
			}

			return err
		}
		out = v

		return nil
	})
	if nil != err {
		var zero T
		return zero, err
	}

	return out, nil
}
