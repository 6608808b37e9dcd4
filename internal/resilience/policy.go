// Package resilience wraps outbound provider calls with retry, circuit
// breaking and a wall-clock timeout. The three policies compose around a
// single call site: timeout outermost, retry in the middle, breaker per
// attempt. The job queue's own retry of the whole publish use case sits
// above all of this and is configured separately.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Classifier reports whether an error is worth retrying. Errors it rejects
// are treated as permanent and returned immediately.
type Classifier func(error) bool

type Options struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialInterval seeds the exponential backoff; jitter is always applied.
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Timeout bounds one whole Execute call, all attempts included.
	Timeout time.Duration
	// FailureRatio opens the breaker once the ratio is reached with at least
	// MinRequests samples in the window.
	FailureRatio float64
	MinRequests  uint32
	// IsTransient decides retry eligibility. Defaults to network-error-only
	// classification when nil.
	IsTransient Classifier
}

func DefaultOptions() Options {
	return Options{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Timeout:         2 * time.Minute,
		FailureRatio:    0.5,
		MinRequests:     5,
	}
}

type Policy struct {
	opts    Options
	breaker *gobreaker.CircuitBreaker
}

func NewPolicy(name string, opts Options) *Policy {
	if opts.IsTransient == nil {
		opts.IsTransient = IsNetworkError
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= opts.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Policy{opts: opts, breaker: breaker}
}

// Timeout reports the wall-clock budget applied to one Execute. Callers
// running several Execute calls as one logical operation can use it to derive
// a shared deadline.
func (p *Policy) Timeout() time.Duration {
	return p.opts.Timeout
}

// Execute runs op under the policy set. op receives a context carrying the
// policy's wall-clock deadline and must honor it on blocking calls.
func (p *Policy) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.opts.InitialInterval
	eb.MaxInterval = p.opts.MaxInterval
	eb.MaxElapsedTime = 0 // the context deadline is the budget

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, p.opts.MaxRetries), ctx)

	return backoff.Retry(func() error {
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, op(ctx)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Fail fast while open; retrying would just hammer the breaker.
			return backoff.Permanent(err)
		}
		if !p.opts.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// IsNetworkError classifies transport-level failures as transient.
func IsNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
