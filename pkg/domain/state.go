package domain

import "fmt"

// StateID identifies a state. Equality is the only relation used for lookup.
type StateID string

// MessageID identifies an input message.
type MessageID string

// StateConfig is the raw description of a single state.
type StateConfig struct {
	ID          StateID            `json:"id" yaml:"id"`
	Transitions []TransitionConfig `json:"transitions" yaml:"transitions"`
}

// Config is the loader output: states in document order.
// The first state is the initial state of every engine built from it.
type Config struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty"`
	States []StateConfig `json:"states" yaml:"states"`
}

// Initial returns the first declared state, or "" for an empty config.
func (c *Config) Initial() StateID {
	if c == nil || len(c.States) == 0 {
		return ""
	}
	return c.States[0].ID
}

// StateIDs returns the declared state ids in document order.
func (c *Config) StateIDs() []StateID {
	ids := make([]StateID, 0, len(c.States))
	for _, s := range c.States {
		ids = append(ids, s.ID)
	}
	return ids
}

// Validate checks the structural rules and the integrity of every next-state
// reference. The first violation is returned as a *ValidationError.
func (c *Config) Validate() error {
	if c == nil || len(c.States) == 0 {
		return ErrNoStates
	}

	declared := make(map[StateID]bool, len(c.States))
	for i, s := range c.States {
		if s.ID == "" {
			return &ValidationError{Err: fmt.Errorf("%w (position %d)", ErrEmptyStateID, i)}
		}
		if declared[s.ID] {
			return &ValidationError{State: s.ID, Err: ErrDuplicateState}
		}
		declared[s.ID] = true
	}

	for _, s := range c.States {
		seen := make(map[MessageID]bool, len(s.Transitions))
		for i, t := range s.Transitions {
			if t.Message == "" {
				return &ValidationError{State: s.ID, Err: fmt.Errorf("%w (transition %d)", ErrEmptyMessage, i)}
			}
			if seen[t.Message] {
				return &ValidationError{State: s.ID, Message: t.Message, Err: ErrDuplicateMessage}
			}
			seen[t.Message] = true

			if t.Next == "" {
				return &ValidationError{State: s.ID, Message: t.Message, Err: ErrEmptyNextState}
			}
			if !declared[t.Next] {
				return &ValidationError{
					State:   s.ID,
					Message: t.Message,
					Err:     fmt.Errorf("%w: %s", ErrUnknownNextState, t.Next),
				}
			}
		}
	}

	return nil
}

// Clone returns a deep copy so that callers can keep mutating their own value.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{Name: c.Name, States: make([]StateConfig, len(c.States))}
	for i, s := range c.States {
		out.States[i] = StateConfig{
			ID:          s.ID,
			Transitions: append([]TransitionConfig(nil), s.Transitions...),
		}
	}
	return out
}
