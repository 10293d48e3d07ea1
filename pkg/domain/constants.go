package domain

// PairSeparator splits the compact "action:next" transition encoding.
const PairSeparator = ":"

// Phase names the hook being executed when a dispatch fails.
type Phase string

const (
	PhaseBefore          Phase = "before"
	PhaseEntry           Phase = "entry"
	PhaseAction          Phase = "action"
	PhaseAfterTransition Phase = "after_transition"
	PhaseExit            Phase = "exit"
	PhaseAfter           Phase = "after"
)
