package domain

import (
	"context"
	"time"
)

// DispatchEvent is emitted once per dispatch, after the hook sequence finished.
type DispatchEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Instance  string        `json:"instance"`
	Result    Result        `json:"result"`
	Hook      string        `json:"hook"` // "bound", "default" or "none"
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// StateEvent is emitted when the current state changes.
type StateEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Instance  string    `json:"instance"`
	StateID   StateID   `json:"state_id"`
	Message   MessageID `json:"message"`
}

// LifecycleHooks defines callbacks for engine observability.
// They never influence the outcome of a dispatch.
type LifecycleHooks struct {
	OnDispatch   func(context.Context, *DispatchEvent)
	OnStateLeave func(context.Context, *StateEvent)
	OnStateEnter func(context.Context, *StateEvent)
}

// MergeHooks combines hook sets; callbacks run in argument order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		if h.OnDispatch != nil {
			prev := out.OnDispatch
			out.OnDispatch = func(ctx context.Context, e *DispatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnDispatch(ctx, e)
			}
		}
		if h.OnStateLeave != nil {
			prev := out.OnStateLeave
			out.OnStateLeave = func(ctx context.Context, e *StateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStateLeave(ctx, e)
			}
		}
		if h.OnStateEnter != nil {
			prev := out.OnStateEnter
			out.OnStateEnter = func(ctx context.Context, e *StateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStateEnter(ctx, e)
			}
		}
	}
	return out
}
