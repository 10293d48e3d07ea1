package runtime

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

type transition struct {
	message domain.MessageID
	action  string
	next    domain.StateID
	bound   domain.Action
}

type state struct {
	id          domain.StateID
	order       []domain.MessageID
	transitions map[domain.MessageID]transition
	before      domain.StateHook
	after       domain.StateHook
}

// Table is the arena of states owned by one engine.
// Records are addressed by id and only mutated through keyed writes.
type Table struct {
	states  []state
	index   map[domain.StateID]int
	current int
}

// NewTable validates cfg and builds a table whose current state is the first
// declared state. cfg is copied; later changes to it are not observed.
func NewTable(cfg *domain.Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		states: make([]state, 0, len(cfg.States)),
		index:  make(map[domain.StateID]int, len(cfg.States)),
	}
	for i, sc := range cfg.States {
		s := state{
			id:          sc.ID,
			order:       make([]domain.MessageID, 0, len(sc.Transitions)),
			transitions: make(map[domain.MessageID]transition, len(sc.Transitions)),
		}
		for _, tc := range sc.Transitions {
			s.order = append(s.order, tc.Message)
			s.transitions[tc.Message] = transition{
				message: tc.Message,
				action:  tc.Action,
				next:    tc.Next,
			}
		}
		t.states = append(t.states, s)
		t.index[sc.ID] = i
	}

	return t, nil
}

func (t *Table) lookup(id domain.StateID) (*state, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.states[i], true
}

// Has reports whether id is a declared state.
func (t *Table) Has(id domain.StateID) bool {
	_, ok := t.index[id]
	return ok
}

// Current returns the id of the current state.
func (t *Table) Current() domain.StateID {
	return t.states[t.current].id
}

// SetCurrent moves the current-state pointer without running any hook.
func (t *Table) SetCurrent(id domain.StateID) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrStateNotFound, id)
	}
	t.current = i
	return nil
}

// States returns the state ids in document order.
func (t *Table) States() []domain.StateID {
	ids := make([]domain.StateID, len(t.states))
	for i, s := range t.states {
		ids[i] = s.id
	}
	return ids
}

// Transitions describes the transitions of a state in declaration order.
func (t *Table) Transitions(id domain.StateID) ([]domain.TransitionInfo, error) {
	s, ok := t.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, id)
	}
	out := make([]domain.TransitionInfo, 0, len(s.order))
	for _, msg := range s.order {
		tr := s.transitions[msg]
		out = append(out, domain.TransitionInfo{
			Message:     tr.message,
			Action:      tr.action,
			Next:        tr.next,
			BoundAction: tr.bound != nil,
		})
	}
	return out, nil
}

// bind installs hook on msg for the selected states. An empty selection means
// every state. States without a transition for msg and unknown ids are skipped.
func (t *Table) bind(msg domain.MessageID, hook domain.Action, states []domain.StateID) int {
	n := 0
	t.each(states, func(s *state) {
		tr, ok := s.transitions[msg]
		if !ok {
			return
		}
		tr.bound = hook
		s.transitions[msg] = tr
		n++
	})
	return n
}

func (t *Table) setBefore(hook domain.StateHook, states []domain.StateID) int {
	n := 0
	t.each(states, func(s *state) {
		s.before = hook
		n++
	})
	return n
}

func (t *Table) setAfter(hook domain.StateHook, states []domain.StateID) int {
	n := 0
	t.each(states, func(s *state) {
		s.after = hook
		n++
	})
	return n
}

func (t *Table) each(selection []domain.StateID, fn func(s *state)) {
	if len(selection) == 0 {
		for i := range t.states {
			fn(&t.states[i])
		}
		return
	}
	seen := make(map[domain.StateID]bool, len(selection))
	for _, id := range selection {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s, ok := t.lookup(id); ok {
			fn(s)
		}
	}
}
