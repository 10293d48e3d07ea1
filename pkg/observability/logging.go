package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write an audit trail to logger.
// Committed and refused dispatches log at info, hook faults at error, unhandled
// messages and state changes at debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			attrs := []any{
				"instance", e.Instance,
				"from", e.Result.From,
				"message", e.Result.Message,
				"outcome", e.Result.Outcome,
			}
			switch {
			case e.Err != nil:
				logger.ErrorContext(ctx, "dispatch_failed", append(attrs, "to", e.Result.Next, "hook", e.Hook, "err", e.Err)...)
			case !e.Result.Found():
				logger.DebugContext(ctx, "dispatch_unhandled", attrs...)
			default:
				logger.InfoContext(ctx, "dispatch",
					append(attrs, "action", e.Result.Action, "to", e.Result.Next, "hook", e.Hook, "duration", e.Duration)...)
			}
		},
		OnStateLeave: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_leave", "instance", e.Instance, "state", e.StateID, "message", e.Message)
		},
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_enter", "instance", e.Instance, "state", e.StateID, "message", e.Message)
		},
	}
}
