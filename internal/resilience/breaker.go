// Package resilience gates calls to remote dependencies. Each dependency gets
// an independent circuit breaker, token-bucket rate limiter and retry budget,
// combined into a Policy and tracked in a Registry.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State represents the current state of a circuit breaker.
type State string

const (
	// StateClosed allows calls through and tracks their outcomes.
	StateClosed State = "closed"
	// StateOpen rejects calls immediately until the cooldown elapses.
	StateOpen State = "open"
	// StateHalfOpen allows a single probe call to test recovery.
	StateHalfOpen State = "half_open"
)

func (s State) String() string {
	return string(s)
}

var (
	ErrCircuitOpen   = errors.New("resilience: circuit is open")
	ErrProbePending  = errors.New("resilience: probe call already in flight")
	ErrRateExceeded  = errors.New("resilience: rate limit exceeded")
	ErrUnknownPolicy = errors.New("resilience: no policy registered for dependency")
)

// BreakerConfig holds tuning for a circuit breaker.
type BreakerConfig struct {
	// Window is the number of most recent call outcomes considered
	// when deciding whether to open the circuit.
	Window int
	// FailureThreshold is the failure share within the window that
	// opens the circuit (0.5 means >=50% failures).
	FailureThreshold float64
	// Cooldown is how long the circuit stays open before allowing
	// a half-open probe.
	Cooldown time.Duration
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.Window <= 0 {
		c.Window = 10
	}
	if c.FailureThreshold <= 0 || c.FailureThreshold > 1 {
		c.FailureThreshold = 0.5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Second
	}
	return c
}

// Breaker is a circuit breaker for a single remote dependency.
// Transitions are linearizable: all state is guarded by one mutex.
type Breaker struct {
	name     string
	cfg      BreakerConfig
	observer Observer

	mu            sync.Mutex
	state         State
	window        []bool // ring buffer of outcomes, true = failure
	windowPos     int
	windowFilled  int
	openedAt      time.Time
	probeInFlight bool

	now func() time.Time
}

// NewBreaker creates a closed breaker for the named dependency.
func NewBreaker(name string, cfg BreakerConfig, observer Observer) *Breaker {
	cfg = cfg.withDefaults()
	if observer == nil {
		observer = NopObserver{}
	}
	return &Breaker{
		name:     name,
		cfg:      cfg,
		observer: observer,
		state:    StateClosed,
		window:   make([]bool, cfg.Window),
		now:      time.Now,
	}
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. In the open state it returns
// ErrCircuitOpen until the cooldown elapses, at which point the breaker
// moves to half-open and admits exactly one probe call. A second caller
// arriving while the probe is in flight gets ErrProbePending.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return ErrCircuitOpen
		}
		b.transition(StateHalfOpen)
		b.probeInFlight = true
		return nil
	case StateHalfOpen:
		if b.probeInFlight {
			return ErrProbePending
		}
		b.probeInFlight = true
		return nil
	}
	return nil
}

// CancelProbe releases the half-open probe slot without recording an
// outcome, for a permitted call that was abandoned before it produced one.
// The circuit stays half-open and the next Allow admits a fresh probe.
func (b *Breaker) CancelProbe() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen {
		b.probeInFlight = false
	}
}

// Record reports the outcome of a permitted call back to the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.push(!success)
		if b.windowFilled == b.cfg.Window && b.failureRate() >= b.cfg.FailureThreshold {
			b.openedAt = b.now()
			b.resetWindow()
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.probeInFlight = false
		if success {
			b.resetWindow()
			b.transition(StateClosed)
		} else {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	case StateOpen:
		// Outcome of a call admitted before the circuit opened. The
		// cooldown clock is already running; nothing to update.
	}
}

func (b *Breaker) push(failed bool) {
	b.window[b.windowPos] = failed
	b.windowPos = (b.windowPos + 1) % b.cfg.Window
	if b.windowFilled < b.cfg.Window {
		b.windowFilled++
	}
}

func (b *Breaker) failureRate() float64 {
	if b.windowFilled == 0 {
		return 0
	}
	failures := 0
	for i := 0; i < b.windowFilled; i++ {
		if b.window[i] {
			failures++
		}
	}
	return float64(failures) / float64(b.windowFilled)
}

func (b *Breaker) resetWindow() {
	for i := range b.window {
		b.window[i] = false
	}
	b.windowPos = 0
	b.windowFilled = 0
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	log.Info().
		Str("dependency", b.name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("resilience: circuit state changed")
	b.observer.CircuitStateChanged(b.name, from, to)
}
