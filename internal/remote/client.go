package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

// Operation is a single attempt against a remote dependency. A non-nil
// error means the attempt failed at the transport level; business outcomes
// (not found, declined) are decoded by the typed client and are not errors
// here.
type Operation func(ctx context.Context) error

// Client executes operations under a dependency's resilience policy.
type Client struct {
	policy *resilience.Policy
}

func NewClient(policy *resilience.Policy) *Client {
	return &Client{policy: policy}
}

// Invoke runs fn, asking the policy engine for permission first and
// reporting the outcome after. Timeouts and transport failures are retried
// with backoff up to the policy's attempt budget; a rejection (circuit open
// or rate exceeded) returns immediately and also cuts a retry loop short,
// so no retries happen while the circuit is open. The caller's own
// cancellation is propagated as-is and never counted against the
// dependency.
func (c *Client) Invoke(ctx context.Context, op string, fn Operation) error {
	dep := c.policy.Name()

	for attempt := 1; ; attempt++ {
		if allowErr := c.policy.Allow(); allowErr != nil {
			log.Debug().Str("dependency", dep).Str("operation", op).Err(allowErr).Msg("remote: call rejected")
			return fmt.Errorf("remote: %s %s: %w (%v)", dep, op, ErrRejected, allowErr)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			c.policy.Record(true)
			return nil
		}

		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// Cancelled by the caller, not by our attempt timeout. The
			// outcome is unknowable; release the permitted call instead
			// of recording it, or a half-open probe slot would leak.
			c.policy.CancelCall()
			return ctx.Err()
		}

		c.policy.Record(false)

		kind := ErrUnreachable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = ErrTimedOut
		}
		wrapped := fmt.Errorf("remote: %s %s attempt %d/%d: %w (%v)", dep, op, attempt, c.policy.MaxAttempts, kind, err)

		if attempt >= c.policy.MaxAttempts {
			return wrapped
		}

		log.Warn().Str("dependency", dep).Str("operation", op).Int("attempt", attempt).Err(err).Msg("remote: attempt failed, backing off")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.policy.Backoff.Delay(attempt)):
		}
	}
}
