package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// journal collects hook calls in order.
type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

// tracer is an Action that records every call and can refuse or fail.
type tracer struct {
	name   string
	j      *journal
	allow  bool
	failAt domain.Phase
}

func (a *tracer) hit(phase domain.Phase, cur domain.StateID, msg domain.MessageID, next domain.StateID) error {
	a.j.add("%s.%s(%s,%s,%s)", a.name, phase, cur, msg, next)
	if a.failAt == phase {
		return errBoom
	}
	return nil
}

func (a *tracer) Entry(cur domain.StateID, msg domain.MessageID, next domain.StateID, _ any) error {
	return a.hit(domain.PhaseEntry, cur, msg, next)
}

func (a *tracer) Action(cur domain.StateID, msg domain.MessageID, next domain.StateID, _ any) (bool, error) {
	if err := a.hit(domain.PhaseAction, cur, msg, next); err != nil {
		return false, err
	}
	return a.allow, nil
}

func (a *tracer) AfterTransition(cur domain.StateID, msg domain.MessageID, next domain.StateID, _ any) error {
	return a.hit(domain.PhaseAfterTransition, cur, msg, next)
}

func (a *tracer) Exit(cur domain.StateID, msg domain.MessageID, next domain.StateID, _ any) error {
	return a.hit(domain.PhaseExit, cur, msg, next)
}

func stateHook(j *journal, name string) domain.StateHook {
	return domain.StateHookFunc(func(state domain.StateID, _ any) error {
		j.add("%s(%s)", name, state)
		return nil
	})
}

func scenarioConfig() *domain.Config {
	return &domain.Config{
		Name: "scenario",
		States: []domain.StateConfig{
			{ID: "START", Transitions: []domain.TransitionConfig{
				{Message: "MOVE", Action: "stay", Next: "START"},
				{Message: "MOVELEFT", Action: "left", Next: "INTERMEDIATE"},
			}},
			{ID: "INTERMEDIATE", Transitions: []domain.TransitionConfig{
				{Message: "MOVERIGHT", Action: "right", Next: "ANKIT"},
			}},
			{ID: "ANKIT"},
		},
	}
}

func newEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	eng, err := runtime.NewEngine(scenarioConfig(), opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_Scenario(t *testing.T) {
	eng := newEngine(t, runtime.WithDefaultAction(domain.Always()))
	ctx := context.Background()

	assert.Equal(t, []domain.StateID{"START", "INTERMEDIATE", "ANKIT"}, eng.States())
	assert.Equal(t, domain.StateID("START"), eng.Current())

	for _, step := range []struct {
		msg  domain.MessageID
		want domain.StateID
	}{
		{"MOVE", "START"},
		{"JUMP", "START"},
		{"MOVELEFT", "INTERMEDIATE"},
		{"JUMP", "INTERMEDIATE"},
		{"MOVERIGHT", "ANKIT"},
		{"JUMP", "ANKIT"},
	} {
		res, err := eng.Dispatch(ctx, step.msg)
		require.NoError(t, err)
		if step.msg == "JUMP" {
			assert.False(t, res.Found())
			assert.Equal(t, domain.OutcomeUnhandled, res.Outcome)
		} else {
			assert.True(t, res.Committed())
		}
		assert.Equal(t, step.want, eng.Current(), "after %s", step.msg)
	}
}

func TestEngine_UnhandledHasNoSideEffects(t *testing.T) {
	j := &journal{}
	eng := newEngine(t, runtime.WithDefaultAction(&tracer{name: "default", j: j, allow: true}))
	eng.SetBeforeTransition(stateHook(j, "before"))
	eng.SetAfterTransition(stateHook(j, "after"))

	for _, s := range eng.States() {
		require.NoError(t, eng.Reset(s))
		for _, msg := range []domain.MessageID{"JUMP", "", "move"} {
			res, err := eng.Dispatch(context.Background(), msg)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeUnhandled, res.Outcome)
			assert.Equal(t, s, res.From)
			assert.Equal(t, s, eng.Current())
		}
	}
	assert.Empty(t, j.calls)
}

func TestEngine_HookOrder(t *testing.T) {
	tests := []struct {
		name      string
		action    func(j *journal) domain.Action
		wantState domain.StateID
		outcome   domain.Outcome
		wantCalls []string
	}{
		{
			name:      "accepted",
			action:    func(j *journal) domain.Action { return &tracer{name: "a", j: j, allow: true} },
			wantState: "INTERMEDIATE",
			outcome:   domain.OutcomeCommitted,
			wantCalls: []string{
				"before(INTERMEDIATE)",
				"a.entry(START,MOVELEFT,INTERMEDIATE)",
				"a.action(START,MOVELEFT,INTERMEDIATE)",
				"enter(INTERMEDIATE)",
				"a.after_transition(INTERMEDIATE,MOVELEFT,INTERMEDIATE)",
				"a.exit(INTERMEDIATE,MOVELEFT,INTERMEDIATE)",
				"after(INTERMEDIATE)",
			},
		},
		{
			name:      "refused",
			action:    func(j *journal) domain.Action { return &tracer{name: "a", j: j, allow: false} },
			wantState: "START",
			outcome:   domain.OutcomeRefused,
			wantCalls: []string{
				"before(INTERMEDIATE)",
				"a.entry(START,MOVELEFT,INTERMEDIATE)",
				"a.action(START,MOVELEFT,INTERMEDIATE)",
				"a.exit(START,MOVELEFT,INTERMEDIATE)",
				"after(INTERMEDIATE)",
			},
		},
		{
			name:      "no governing action",
			action:    func(j *journal) domain.Action { return nil },
			wantState: "INTERMEDIATE",
			outcome:   domain.OutcomeCommitted,
			wantCalls: []string{
				"before(INTERMEDIATE)",
				"enter(INTERMEDIATE)",
				"after(INTERMEDIATE)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &journal{}
			hooks := domain.LifecycleHooks{
				OnStateEnter: func(_ context.Context, e *domain.StateEvent) { j.add("enter(%s)", e.StateID) },
			}
			eng := newEngine(t, runtime.WithLifecycleHooks(hooks))
			if a := tt.action(j); a != nil {
				eng.SetDefaultAction(a)
			}
			eng.SetBeforeTransition(stateHook(j, "before"))
			eng.SetAfterTransition(stateHook(j, "after"))

			res, err := eng.Dispatch(context.Background(), "MOVELEFT")
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, "left", res.Action)
			assert.Equal(t, domain.StateID("INTERMEDIATE"), res.Next)
			assert.Equal(t, tt.wantState, eng.Current())
			assert.Equal(t, tt.wantCalls, j.calls)
		})
	}
}

// positionRecorder records the cur argument of the hooks that run after the decision.
type positionRecorder struct {
	domain.NopAction
	allow    bool
	afterCur domain.StateID
	exitCur  domain.StateID
}

func (r *positionRecorder) Action(domain.StateID, domain.MessageID, domain.StateID, any) (bool, error) {
	return r.allow, nil
}

func (r *positionRecorder) AfterTransition(cur domain.StateID, _ domain.MessageID, _ domain.StateID, _ any) error {
	r.afterCur = cur
	return nil
}

func (r *positionRecorder) Exit(cur domain.StateID, _ domain.MessageID, _ domain.StateID, _ any) error {
	r.exitCur = cur
	return nil
}

func TestEngine_HooksSeeCurrentState(t *testing.T) {
	t.Run("committed", func(t *testing.T) {
		rec := &positionRecorder{allow: true}
		eng := newEngine(t, runtime.WithDefaultAction(rec))

		_, err := eng.Dispatch(context.Background(), "MOVELEFT")
		require.NoError(t, err)

		assert.Equal(t, domain.StateID("INTERMEDIATE"), eng.Current())
		assert.Equal(t, eng.Current(), rec.afterCur)
		assert.Equal(t, eng.Current(), rec.exitCur)
	})

	t.Run("refused", func(t *testing.T) {
		rec := &positionRecorder{allow: false}
		eng := newEngine(t, runtime.WithDefaultAction(rec))

		_, err := eng.Dispatch(context.Background(), "MOVELEFT")
		require.NoError(t, err)

		assert.Equal(t, domain.StateID("START"), eng.Current())
		assert.Empty(t, rec.afterCur)
		assert.Equal(t, domain.StateID("START"), rec.exitCur)
	})
}

func TestEngine_BoundActionTakesPrecedence(t *testing.T) {
	j := &journal{}
	eng := newEngine(t, runtime.WithDefaultAction(&tracer{name: "default", j: j, allow: true}))

	first := &tracer{name: "first", j: j, allow: true}
	second := &tracer{name: "second", j: j, allow: false}

	eng.SetAction("MOVE", first)
	_, err := eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	assert.Contains(t, j.calls, "first.action(START,MOVE,START)")
	assert.NotContains(t, j.calls, "default.action(START,MOVE,START)")

	j.calls = nil
	eng.SetAction("MOVE", second)
	res, err := eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRefused, res.Outcome)
	for _, c := range j.calls {
		assert.NotContains(t, c, "first.")
	}

	j.calls = nil
	eng.SetAction("MOVE", nil)
	_, err = eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	assert.Contains(t, j.calls, "default.action(START,MOVE,START)")
}

func TestEngine_SetActionSelection(t *testing.T) {
	j := &journal{}
	eng := newEngine(t)
	refuse := &tracer{name: "refuse", j: j, allow: false}

	// Only INTERMEDIATE has MOVERIGHT; START and the unknown id are skipped.
	eng.SetAction("MOVELEFT", refuse, "INTERMEDIATE", "UNKNOWN")
	eng.SetAction("MOVERIGHT", refuse, "INTERMEDIATE", "UNKNOWN")

	res, err := eng.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, res.Outcome, "MOVELEFT binding was restricted to INTERMEDIATE")

	res, err = eng.Dispatch(context.Background(), "MOVERIGHT")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRefused, res.Outcome)
	assert.Equal(t, domain.StateID("INTERMEDIATE"), eng.Current())

	infos, err := eng.Transitions("INTERMEDIATE")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].BoundAction)

	infos, err = eng.Transitions("START")
	require.NoError(t, err)
	for _, info := range infos {
		assert.False(t, info.BoundAction)
	}
}

func TestEngine_StateHookSelection(t *testing.T) {
	j := &journal{}
	eng := newEngine(t)

	eng.SetBeforeTransition(stateHook(j, "all"))
	eng.SetBeforeTransition(stateHook(j, "only"), "START", "NOPE")

	_, err := eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	_, err = eng.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)
	_, err = eng.Dispatch(context.Background(), "MOVERIGHT")
	require.NoError(t, err)

	assert.Equal(t, []string{"only(START)", "all(INTERMEDIATE)", "all(ANKIT)"}, j.calls)
}

func TestEngine_HookFaults(t *testing.T) {
	tests := []struct {
		failAt    domain.Phase
		wantState domain.StateID
		lastCall  string
	}{
		{domain.PhaseEntry, "START", "a.entry(START,MOVELEFT,INTERMEDIATE)"},
		{domain.PhaseAction, "START", "a.action(START,MOVELEFT,INTERMEDIATE)"},
		{domain.PhaseAfterTransition, "INTERMEDIATE", "a.after_transition(INTERMEDIATE,MOVELEFT,INTERMEDIATE)"},
		{domain.PhaseExit, "INTERMEDIATE", "a.exit(INTERMEDIATE,MOVELEFT,INTERMEDIATE)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.failAt), func(t *testing.T) {
			j := &journal{}
			eng := newEngine(t, runtime.WithDefaultAction(&tracer{name: "a", j: j, allow: true, failAt: tt.failAt}))
			eng.SetAfterTransition(stateHook(j, "after"))

			_, err := eng.Dispatch(context.Background(), "MOVELEFT")
			require.Error(t, err)
			assert.ErrorIs(t, err, errBoom)

			var hookErr *domain.HookError
			require.ErrorAs(t, err, &hookErr)
			assert.Equal(t, tt.failAt, hookErr.Phase)
			assert.Equal(t, domain.StateID("START"), hookErr.From)

			assert.Equal(t, tt.wantState, eng.Current())
			assert.Equal(t, tt.lastCall, j.calls[len(j.calls)-1], "sequence stops at the failing hook")
		})
	}
}

func TestEngine_StateHookFault(t *testing.T) {
	eng := newEngine(t)
	eng.SetBeforeTransition(domain.StateHookFunc(func(domain.StateID, any) error { return errBoom }), "INTERMEDIATE")

	res, err := eng.Dispatch(context.Background(), "MOVELEFT")
	var hookErr *domain.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, domain.PhaseBefore, hookErr.Phase)
	assert.Equal(t, domain.OutcomeRefused, res.Outcome)
	assert.Equal(t, domain.StateID("START"), eng.Current())
}

func TestEngine_SharedContext(t *testing.T) {
	var seen []any
	record := domain.ActionFunc(func(_ domain.StateID, _ domain.MessageID, _ domain.StateID, shared any) (bool, error) {
		seen = append(seen, shared)
		return true, nil
	})
	eng := newEngine(t, runtime.WithDefaultAction(record), runtime.WithSharedContext("first"))

	_, err := eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)

	eng.SetSharedContext("second")
	assert.Equal(t, "second", eng.Shared())

	// A replacement made during a dispatch only applies to the next one.
	eng.SetBeforeTransition(domain.StateHookFunc(func(domain.StateID, any) error {
		eng.SetSharedContext("third")
		return nil
	}), "START")
	_, err = eng.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	_, err = eng.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)

	assert.Equal(t, []any{"first", "second", "third"}, seen)
}

func TestEngine_InstancesAreIsolated(t *testing.T) {
	cfg := scenarioConfig()
	a, err := runtime.NewEngine(cfg)
	require.NoError(t, err)
	b, err := runtime.NewEngine(cfg)
	require.NoError(t, err)

	a.SetAction("MOVELEFT", domain.ActionFunc(func(domain.StateID, domain.MessageID, domain.StateID, any) (bool, error) {
		return false, nil
	}))

	resA, err := a.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)
	resB, err := b.Dispatch(context.Background(), "MOVELEFT")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeRefused, resA.Outcome)
	assert.Equal(t, domain.OutcomeCommitted, resB.Outcome)
	assert.Equal(t, domain.StateID("START"), a.Current())
	assert.Equal(t, domain.StateID("INTERMEDIATE"), b.Current())

	// Mutating the source config after construction does not leak into engines.
	cfg.States[0].Transitions[0].Next = "ANKIT"
	require.NoError(t, a.Reset("START"))
	res, err := a.Dispatch(context.Background(), "MOVE")
	require.NoError(t, err)
	assert.Equal(t, domain.StateID("START"), res.Next)
}

func TestEngine_DispatchEvents(t *testing.T) {
	var events []*domain.DispatchEvent
	var left, entered []domain.StateID
	hooks := domain.LifecycleHooks{
		OnDispatch:   func(_ context.Context, e *domain.DispatchEvent) { events = append(events, e) },
		OnStateLeave: func(_ context.Context, e *domain.StateEvent) { left = append(left, e.StateID) },
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) { entered = append(entered, e.StateID) },
	}
	eng := newEngine(t, runtime.WithLifecycleHooks(hooks), runtime.WithInstanceID("i-1"))
	eng.SetAction("MOVERIGHT", domain.Always())

	for _, msg := range []domain.MessageID{"JUMP", "MOVELEFT", "MOVERIGHT"} {
		_, err := eng.Dispatch(context.Background(), msg)
		require.NoError(t, err)
	}

	require.Len(t, events, 3)
	assert.Equal(t, domain.OutcomeUnhandled, events[0].Result.Outcome)
	assert.Equal(t, runtime.HookNone, events[1].Hook)
	assert.Equal(t, runtime.HookBound, events[2].Hook)
	assert.Equal(t, "i-1", events[2].Instance)
	assert.Equal(t, []domain.StateID{"START", "INTERMEDIATE"}, left)
	assert.Equal(t, []domain.StateID{"INTERMEDIATE", "ANKIT"}, entered)
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	cfg := scenarioConfig()
	cfg.States[1].Transitions[0].Next = "MISSING"

	_, err := runtime.NewEngine(cfg)
	assert.ErrorIs(t, err, domain.ErrIntegrity)

	_, err = runtime.NewEngine(&domain.Config{})
	assert.ErrorIs(t, err, domain.ErrNoStates)
}

func TestEngine_Reset(t *testing.T) {
	eng := newEngine(t)
	require.NoError(t, eng.Reset("ANKIT"))
	assert.Equal(t, domain.StateID("ANKIT"), eng.Current())

	err := eng.Reset("MISSING")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
	assert.Equal(t, domain.StateID("ANKIT"), eng.Current())
}
