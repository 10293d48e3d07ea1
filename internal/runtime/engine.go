package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Governing hook kinds, reported in logs and DispatchEvent.Hook.
const (
	HookBound   = "bound"
	HookDefault = "default"
	HookNone    = "none"
)

// Engine is the core dispatch loop over one exclusively owned Table.
// It holds unguarded mutable state: callers serialize access.
type Engine struct {
	table         *Table
	defaultAction domain.Action
	shared        any
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	instance      string
	now           func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithDefaultAction sets the fallback action used when a transition has no bound action.
func WithDefaultAction(action domain.Action) EngineOption {
	return func(e *Engine) {
		e.defaultAction = action
	}
}

// WithSharedContext sets the opaque value passed to every hook.
func WithSharedContext(shared any) EngineOption {
	return func(e *Engine) {
		e.shared = shared
	}
}

// WithInstanceID labels the engine in events and logs.
func WithInstanceID(id string) EngineOption {
	return func(e *Engine) {
		e.instance = id
	}
}

// NewEngine builds a private table from cfg and applies the options.
func NewEngine(cfg *domain.Config, opts ...EngineOption) (*Engine, error) {
	table, err := NewTable(cfg)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		table:  table,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Current returns the id of the current state.
func (e *Engine) Current() domain.StateID {
	return e.table.Current()
}

// States returns every state id in document order.
func (e *Engine) States() []domain.StateID {
	return e.table.States()
}

// Transitions describes the transitions declared for a state.
func (e *Engine) Transitions(state domain.StateID) ([]domain.TransitionInfo, error) {
	return e.table.Transitions(state)
}

// Shared returns the current shared context value.
func (e *Engine) Shared() any {
	return e.shared
}

// Reset moves the current-state pointer without running hooks.
func (e *Engine) Reset(state domain.StateID) error {
	return e.table.SetCurrent(state)
}

// Dispatch resolves msg against the current state and runs the hook sequence:
//
//  1. no transition for msg: OutcomeUnhandled, nothing runs
//  2. resolve the target state
//  3. governing action: bound, else default, else none (automatic success)
//  4. target before-hook
//  5. Entry, then Action
//  6. on success commit, then AfterTransition
//  7. Exit, whatever Action returned
//  8. target after-hook
//
// The first hook error stops the sequence. An error returned before the commit
// leaves the current state unchanged; a later one does not roll it back.
func (e *Engine) Dispatch(ctx context.Context, msg domain.MessageID) (domain.Result, error) {
	start := e.now()
	cur := &e.table.states[e.table.current]
	res := domain.Result{From: cur.id, Message: msg, Outcome: domain.OutcomeUnhandled}

	tr, ok := cur.transitions[msg]
	if !ok {
		e.logger.DebugContext(ctx, "message not handled", "state", cur.id, "message", msg)
		e.emitDispatch(ctx, res, HookNone, start, nil)
		return res, nil
	}
	res.Action, res.Next = tr.action, tr.next

	targetIdx, ok := e.table.index[tr.next]
	if !ok {
		err := &domain.ValidationError{
			State:   cur.id,
			Message: msg,
			Err:     fmt.Errorf("%w: %s", domain.ErrUnknownNextState, tr.next),
		}
		e.emitDispatch(ctx, res, HookNone, start, err)
		return res, err
	}
	target := &e.table.states[targetIdx]

	action, kind := e.resolve(tr)
	shared := e.shared
	before, after := target.before, target.after

	fail := func(phase domain.Phase, err error) (domain.Result, error) {
		hookErr := &domain.HookError{Phase: phase, From: res.From, Message: msg, Next: tr.next, Err: err}
		e.logger.ErrorContext(ctx, "hook failed",
			"phase", phase, "from", res.From, "message", msg, "to", tr.next, "outcome", res.Outcome, "err", err)
		e.emitDispatch(ctx, res, kind, start, hookErr)
		return res, hookErr
	}

	res.Outcome = domain.OutcomeRefused

	if before != nil {
		if err := before.Invoked(target.id, shared); err != nil {
			return fail(domain.PhaseBefore, err)
		}
	}

	success := true
	if action != nil {
		if err := action.Entry(res.From, msg, tr.next, shared); err != nil {
			return fail(domain.PhaseEntry, err)
		}
		var err error
		success, err = action.Action(res.From, msg, tr.next, shared)
		if err != nil {
			return fail(domain.PhaseAction, err)
		}
	}

	// Hooks after this point see the state the engine is in.
	now := res.From
	if success {
		e.table.current = targetIdx
		res.Outcome = domain.OutcomeCommitted
		e.emitCommit(ctx, res)
		now = target.id

		if action != nil {
			if err := action.AfterTransition(now, msg, tr.next, shared); err != nil {
				return fail(domain.PhaseAfterTransition, err)
			}
		}
	}

	if action != nil {
		if err := action.Exit(now, msg, tr.next, shared); err != nil {
			return fail(domain.PhaseExit, err)
		}
	}

	if after != nil {
		if err := after.Invoked(target.id, shared); err != nil {
			return fail(domain.PhaseAfter, err)
		}
	}

	e.logger.DebugContext(ctx, "dispatch",
		"from", res.From, "message", msg, "action", res.Action, "to", res.Next, "outcome", res.Outcome, "hook", kind)
	e.emitDispatch(ctx, res, kind, start, nil)
	return res, nil
}

// resolve picks the governing action: transition-bound first, then the engine default.
func (e *Engine) resolve(tr transition) (domain.Action, string) {
	switch {
	case tr.bound != nil:
		return tr.bound, HookBound
	case e.defaultAction != nil:
		return e.defaultAction, HookDefault
	default:
		return nil, HookNone
	}
}

// SetAction binds action to msg in the given states, or in every state having a
// transition for msg when none are given. Unknown states are skipped. A nil
// action removes the binding.
func (e *Engine) SetAction(msg domain.MessageID, action domain.Action, states ...domain.StateID) {
	n := e.table.bind(msg, action, states)
	e.logger.Debug("action bound", "message", msg, "states", len(states), "transitions", n)
}

// SetBeforeTransition installs hook as the before-hook of the given states, or of
// every state present now when none are given.
func (e *Engine) SetBeforeTransition(hook domain.StateHook, states ...domain.StateID) {
	n := e.table.setBefore(hook, states)
	e.logger.Debug("before-transition hook set", "states", n)
}

// SetAfterTransition installs hook as the after-hook of the given states, or of
// every state present now when none are given.
func (e *Engine) SetAfterTransition(hook domain.StateHook, states ...domain.StateID) {
	n := e.table.setAfter(hook, states)
	e.logger.Debug("after-transition hook set", "states", n)
}

// SetDefaultAction replaces the engine-wide fallback action.
func (e *Engine) SetDefaultAction(action domain.Action) {
	e.defaultAction = action
}

// SetSharedContext replaces the value passed to hooks from the next dispatch on.
func (e *Engine) SetSharedContext(shared any) {
	e.shared = shared
}

func (e *Engine) emitDispatch(ctx context.Context, res domain.Result, kind string, start time.Time, err error) {
	if e.hooks.OnDispatch == nil {
		return
	}
	now := e.now()
	e.hooks.OnDispatch(ctx, &domain.DispatchEvent{
		Timestamp: now,
		Instance:  e.instance,
		Result:    res,
		Hook:      kind,
		Duration:  now.Sub(start),
		Err:       err,
	})
}

func (e *Engine) emitCommit(ctx context.Context, res domain.Result) {
	now := e.now()
	if e.hooks.OnStateLeave != nil {
		e.hooks.OnStateLeave(ctx, &domain.StateEvent{Timestamp: now, Instance: e.instance, StateID: res.From, Message: res.Message})
	}
	if e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(ctx, &domain.StateEvent{Timestamp: now, Instance: e.instance, StateID: res.Next, Message: res.Message})
	}
}
