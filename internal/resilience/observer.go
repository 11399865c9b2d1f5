package resilience

// Observer receives state-transition and call-outcome events. The metrics
// exporter implements it; the zero-value NopObserver is used when no sink
// is wired.
type Observer interface {
	CircuitStateChanged(dependency string, from, to State)
	CallOutcome(dependency string, outcome Outcome)
}

// Outcome classifies the result of a gated call attempt.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected"
)

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) CircuitStateChanged(string, State, State) {}

func (NopObserver) CallOutcome(string, Outcome) {}
