package domain

// Outcome classifies a dispatch.
type Outcome string

const (
	// OutcomeUnhandled means the current state has no transition for the message.
	// It is a normal result: no hook ran and the state did not change.
	OutcomeUnhandled Outcome = "unhandled"
	// OutcomeCommitted means the transition was committed.
	OutcomeCommitted Outcome = "committed"
	// OutcomeRefused means the governing action returned false.
	OutcomeRefused Outcome = "refused"
)

// Result describes a dispatch. Next is the configured target and does not by
// itself mean the engine moved there; see Outcome or the engine's current state.
type Result struct {
	From    StateID   `json:"from"`
	Message MessageID `json:"message"`
	Action  string    `json:"action,omitempty"`
	Next    StateID   `json:"next,omitempty"`
	Outcome Outcome   `json:"outcome"`
}

// Found reports whether the message matched a transition of the current state.
func (r Result) Found() bool {
	return r.Outcome != OutcomeUnhandled && r.Outcome != ""
}

// Committed reports whether the engine moved to Next.
func (r Result) Committed() bool {
	return r.Outcome == OutcomeCommitted
}
