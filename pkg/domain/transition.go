package domain

import (
	"fmt"
	"strings"
)

// TransitionConfig is the raw description of one transition of a state.
// Action is a descriptive name reported back in Result; it does not select code.
type TransitionConfig struct {
	Message MessageID `json:"message" yaml:"message"`
	Action  string    `json:"action,omitempty" yaml:"action,omitempty"`
	Next    StateID   `json:"next" yaml:"next"`
}

// Pair renders the transition target in the compact "action:next" form.
func (t TransitionConfig) Pair() string {
	return t.Action + PairSeparator + string(t.Next)
}

// ParsePair decodes the compact "action:next" form for the given message.
// Only the first separator splits, so next-state ids may contain ':'.
func ParsePair(message MessageID, pair string) (TransitionConfig, error) {
	action, next, ok := strings.Cut(pair, PairSeparator)
	if !ok {
		return TransitionConfig{}, fmt.Errorf("%w: transition %q: expected \"action:next\", got %q", ErrConfig, message, pair)
	}
	return TransitionConfig{
		Message: message,
		Action:  strings.TrimSpace(action),
		Next:    StateID(strings.TrimSpace(next)),
	}, nil
}

// TransitionInfo describes a live transition of an engine, including whether a
// transition-bound action is currently installed.
type TransitionInfo struct {
	Message     MessageID `json:"message"`
	Action      string    `json:"action,omitempty"`
	Next        StateID   `json:"next"`
	BoundAction bool      `json:"bound_action"`
}
