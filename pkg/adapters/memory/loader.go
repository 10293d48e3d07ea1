package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Loader implements ports.ConfigLoader over a configuration held in memory.
// Every Load returns a fresh copy, so engines never share the caller's value.
type Loader struct {
	cfg *domain.Config
}

// NewLoader creates a loader serving a copy of cfg.
func NewLoader(cfg *domain.Config) *Loader {
	return &Loader{cfg: cfg.Clone()}
}

// NewFromStates creates a loader from state configurations given in document order.
func NewFromStates(states ...domain.StateConfig) *Loader {
	return NewLoader(&domain.Config{States: states})
}

// FromPairs builds a loader from the compact form: for each state in order, a map of
// message to "action:next". Map iteration order is not meaningful, so transitions of
// a state are sorted by message.
func FromPairs(order []domain.StateID, pairs map[domain.StateID]map[domain.MessageID]string) (*Loader, error) {
	cfg := &domain.Config{States: make([]domain.StateConfig, 0, len(order))}
	for _, id := range order {
		sc := domain.StateConfig{ID: id}
		for _, msg := range sortedMessages(pairs[id]) {
			t, err := domain.ParsePair(msg, pairs[id][msg])
			if err != nil {
				return nil, fmt.Errorf("state %s: %w", id, err)
			}
			sc.Transitions = append(sc.Transitions, t)
		}
		cfg.States = append(cfg.States, sc)
	}
	for id := range pairs {
		if !containsState(order, id) {
			return nil, fmt.Errorf("%w: transitions given for undeclared state %s", domain.ErrConfig, id)
		}
	}
	return &Loader{cfg: cfg}, nil
}

// Load returns a copy of the held configuration.
func (l *Loader) Load(ctx context.Context) (*domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", domain.ErrConfig)
	}
	return l.cfg.Clone(), nil
}
