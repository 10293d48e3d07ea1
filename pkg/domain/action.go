package domain

// Action is the hook set invoked around one transition attempt.
//
// cur is the engine's current state when the hook runs: the source state for Entry
// and Action, the committed target for AfterTransition and for Exit after a commit.
// msg is the dispatched message, next the configured target and shared the
// engine's shared context value.
// Action decides whether the transition is committed. Entry runs before it,
// AfterTransition only after a commit, and Exit always, whatever Action returned.
// Embed NopAction to get no-op Entry, AfterTransition and Exit.
type Action interface {
	Entry(cur StateID, msg MessageID, next StateID, shared any) error
	Action(cur StateID, msg MessageID, next StateID, shared any) (bool, error)
	AfterTransition(cur StateID, msg MessageID, next StateID, shared any) error
	Exit(cur StateID, msg MessageID, next StateID, shared any) error
}

// NopAction provides no-op optional members. Its own Action always succeeds.
type NopAction struct{}

func (NopAction) Entry(StateID, MessageID, StateID, any) error { return nil }

func (NopAction) Action(StateID, MessageID, StateID, any) (bool, error) { return true, nil }

func (NopAction) AfterTransition(StateID, MessageID, StateID, any) error { return nil }

func (NopAction) Exit(StateID, MessageID, StateID, any) error { return nil }

// ActionFunc adapts a plain decision function to the Action interface.
type ActionFunc func(cur StateID, msg MessageID, next StateID, shared any) (bool, error)

func (f ActionFunc) Entry(StateID, MessageID, StateID, any) error { return nil }

func (f ActionFunc) Action(cur StateID, msg MessageID, next StateID, shared any) (bool, error) {
	return f(cur, msg, next, shared)
}

func (f ActionFunc) AfterTransition(StateID, MessageID, StateID, any) error { return nil }

func (f ActionFunc) Exit(StateID, MessageID, StateID, any) error { return nil }

// Always returns an Action that accepts every transition.
func Always() Action {
	return NopAction{}
}

// StateHook runs when a transition into its state is attempted, independent of the
// message and of the outcome.
type StateHook interface {
	Invoked(state StateID, shared any) error
}

// StateHookFunc adapts a function to StateHook.
type StateHookFunc func(state StateID, shared any) error

func (f StateHookFunc) Invoked(state StateID, shared any) error {
	return f(state, shared)
}
