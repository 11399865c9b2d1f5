// Package remote wraps calls that cross a service boundary. Every call is
// gated by the resilience policy of its dependency, bounded by a timeout,
// classified on failure and reported back to the policy engine.
package remote

import "errors"

var (
	// ErrRejected means the resilience policy refused the call before any
	// network attempt (circuit open or rate limit exceeded).
	ErrRejected = errors.New("remote: call rejected by resilience policy")
	// ErrTimedOut means the call exceeded the dependency's timeout.
	ErrTimedOut = errors.New("remote: call timed out")
	// ErrUnreachable means the transport failed or the dependency
	// answered with a server error.
	ErrUnreachable = errors.New("remote: dependency unreachable")
)

// Transient reports whether the error may be retried by the caller.
func Transient(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, ErrTimedOut) || errors.Is(err, ErrUnreachable)
}
