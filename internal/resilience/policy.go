package resilience

import (
	"sync"
	"time"
)

// PolicyConfig holds per-dependency tuning. Zero values fall back to
// conservative defaults, so a dependency can be registered with just a name.
type PolicyConfig struct {
	Breaker BreakerConfig
	Backoff Backoff

	// Timeout bounds a single call attempt. Mandatory for remote calls;
	// defaults to 2s rather than waiting forever.
	Timeout time.Duration
	// MaxAttempts caps call attempts including the first one.
	MaxAttempts int
	// RateLimitRPS caps calls per second. RateLimitBurst defaults to
	// max(1, int(RateLimitRPS)).
	RateLimitRPS   float64
	RateLimitBurst int
}

func (c PolicyConfig) withDefaults() PolicyConfig {
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 50
	}
	return c
}

// Policy combines the circuit breaker, rate limiter and retry budget for
// one remote dependency.
type Policy struct {
	name     string
	breaker  *Breaker
	limiter  *Limiter
	observer Observer

	Timeout     time.Duration
	MaxAttempts int
	Backoff     Backoff
}

// NewPolicy creates a policy for the named dependency.
func NewPolicy(name string, cfg PolicyConfig, observer Observer) *Policy {
	cfg = cfg.withDefaults()
	if observer == nil {
		observer = NopObserver{}
	}
	return &Policy{
		name:        name,
		breaker:     NewBreaker(name, cfg.Breaker, observer),
		limiter:     NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		observer:    observer,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.Backoff,
	}
}

// Name returns the dependency name the policy guards.
func (p *Policy) Name() string {
	return p.name
}

// Allow decides whether a call may proceed. The breaker is consulted
// first, so calls bounced off an open circuit do not burn rate budget.
// A call the breaker admits still needs a token: exhausting the limiter
// rejects it no matter what state the circuit is in.
func (p *Policy) Allow() error {
	if err := p.breaker.Allow(); err != nil {
		p.observer.CallOutcome(p.name, OutcomeRejected)
		return err
	}
	if !p.limiter.TryAcquire() {
		// The breaker may have admitted this call as the half-open
		// probe; hand the slot back so the next caller can take it.
		p.breaker.CancelProbe()
		p.observer.CallOutcome(p.name, OutcomeRejected)
		return ErrRateExceeded
	}
	return nil
}

// CancelCall releases whatever Allow reserved for a permitted call whose
// outcome will never be reported, such as one abandoned by its caller.
func (p *Policy) CancelCall() {
	p.breaker.CancelProbe()
}

// Record reports the outcome of a permitted call.
func (p *Policy) Record(success bool) {
	p.breaker.Record(success)
	if success {
		p.observer.CallOutcome(p.name, OutcomeSuccess)
	} else {
		p.observer.CallOutcome(p.name, OutcomeFailure)
	}
}

// CircuitState returns the current breaker state.
func (p *Policy) CircuitState() State {
	return p.breaker.State()
}

// Registry holds policies keyed by dependency name.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]*Policy
	observer Observer
}

// NewRegistry creates an empty registry. All policies registered through
// it share the given observer.
func NewRegistry(observer Observer) *Registry {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Registry{
		policies: make(map[string]*Policy),
		observer: observer,
	}
}

// Register creates and stores a policy for the named dependency,
// replacing any previous one.
func (r *Registry) Register(name string, cfg PolicyConfig) *Policy {
	p := NewPolicy(name, cfg, r.observer)
	r.mu.Lock()
	r.policies[name] = p
	r.mu.Unlock()
	return p
}

// Get returns the policy for the named dependency.
func (r *Registry) Get(name string) (*Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, ErrUnknownPolicy
	}
	return p, nil
}
