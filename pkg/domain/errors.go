package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when a configuration source cannot be read or parsed.
	ErrConfig = errors.New("invalid configuration source")

	// ErrIntegrity is returned when a transition refers to a state that is not declared.
	ErrIntegrity = errors.New("configuration integrity violation")

	ErrNoStates         = fmt.Errorf("%w: at least one state is required", ErrConfig)
	ErrEmptyStateID     = fmt.Errorf("%w: state id is required", ErrConfig)
	ErrDuplicateState   = fmt.Errorf("%w: duplicate state id", ErrConfig)
	ErrEmptyMessage     = fmt.Errorf("%w: transition message id is required", ErrConfig)
	ErrDuplicateMessage = fmt.Errorf("%w: duplicate message in state", ErrConfig)
	ErrEmptyNextState   = fmt.Errorf("%w: transition next state is required", ErrConfig)
	ErrUnknownNextState = fmt.Errorf("%w: next state is not declared", ErrIntegrity)

	// ErrStateNotFound is returned by lookups of an unknown state id.
	ErrStateNotFound = errors.New("state not found")
)

// ValidationError locates a configuration problem.
type ValidationError struct {
	State   StateID
	Message MessageID
	Err     error
}

func (e *ValidationError) Error() string {
	switch {
	case e.State == "":
		return e.Err.Error()
	case e.Message == "":
		return fmt.Sprintf("state %s: %v", e.State, e.Err)
	default:
		return fmt.Sprintf("state %s, message %s: %v", e.State, e.Message, e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// HookError wraps a failure returned by a caller-supplied hook during a dispatch.
type HookError struct {
	Phase   Phase
	From    StateID
	Message MessageID
	Next    StateID
	Err     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook failed on %s --%s--> %s: %v", e.Phase, e.From, e.Message, e.Next, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
