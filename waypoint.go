package waypoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/file"
	loamAdapter "github.com/aretw0/waypoint/pkg/adapters/loam"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotWatchable is returned by Watch when the loader cannot report changes.
var ErrNotWatchable = errors.New("current loader does not support watching")

// Engine is the high-level entry point for the waypoint library.
// It wraps the internal runtime and provides a simplified API for consumers.
//
// An Engine is not safe for concurrent use. Engines built from the same
// configuration share nothing mutable.
type Engine struct {
	runtime        *runtime.Engine
	loader         ports.ConfigLoader
	cfg            *domain.Config
	defaultAction  domain.Action
	shared         any
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	id             string
	Name           string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithDefaultAction sets the action governing transitions that have no bound action.
func WithDefaultAction(action domain.Action) Option {
	return func(e *Engine) {
		e.defaultAction = action
	}
}

// WithSharedContext sets the value passed to every hook.
func WithSharedContext(shared any) Option {
	return func(e *Engine) {
		e.shared = shared
	}
}

// WithLifecycleHooks registers observability hooks. Repeated use chains the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.MergeHooks(e.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for dispatch spans.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracerProvider = tp
	}
}

// WithName labels the engine in logs, spans and metrics.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// WithInstanceID replaces the random instance id.
func WithInstanceID(id string) Option {
	return func(e *Engine) {
		e.id = id
	}
}

// New loads the configuration through loader and builds an engine positioned on
// the first declared state.
func New(ctx context.Context, loader ports.ConfigLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: loader is required", domain.ErrConfig)
	}

	cfg, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	eng, err := build(cfg, opts)
	if err != nil {
		return nil, err
	}
	eng.loader = loader
	return eng, nil
}

// NewFromConfig builds an engine from an in-memory configuration. cfg is copied.
func NewFromConfig(cfg *domain.Config, opts ...Option) (*Engine, error) {
	return build(cfg.Clone(), opts)
}

// Open builds an engine from a path: a definition file (XML or YAML) or a
// directory read as a Loam vault with one document per state.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	loader, err := LoaderForPath(path)
	if err != nil {
		return nil, err
	}
	return New(ctx, loader, append([]Option{WithName(NameFromPath(path))}, opts...)...)
}

// LoaderForPath selects the loader Open uses for path.
func LoaderForPath(path string) (ports.ConfigLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	if info.IsDir() {
		loader, err := loamAdapter.Open(path)
		if err != nil {
			return nil, err
		}
		return loader, nil
	}
	return file.New(path), nil
}

func build(cfg *domain.Config, opts []Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if cfg != nil && eng.Name == "" {
		eng.Name = cfg.Name
	}
	if eng.id == "" {
		eng.id = uuid.NewString()
	}

	// Silent unless the caller supplies a logger. The instance and machine
	// attributes below need a logger to attach to.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.logger = eng.logger.With("instance", eng.id)
	if eng.Name != "" {
		eng.logger = eng.logger.With("machine", eng.Name)
	}

	if eng.tracerProvider == nil {
		eng.tracerProvider = otel.GetTracerProvider()
	}
	eng.tracer = eng.tracerProvider.Tracer(observability.TracerName)

	rt, err := runtime.NewEngine(cfg,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithDefaultAction(eng.defaultAction),
		runtime.WithSharedContext(eng.shared),
		runtime.WithInstanceID(eng.id),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	eng.runtime = rt
	eng.cfg = cfg

	eng.logger.Debug("engine ready", "states", len(cfg.States), "initial", rt.Current())
	return eng, nil
}

// Dispatch feeds msg to the engine. A message the current state does not handle
// yields a Result with OutcomeUnhandled and a nil error. Hook faults are returned
// as *domain.HookError.
func (e *Engine) Dispatch(ctx context.Context, msg domain.MessageID) (domain.Result, error) {
	ctx, span := observability.StartDispatchSpan(ctx, e.tracer, e.Name, e.id, e.runtime.Current(), msg)
	res, err := e.runtime.Dispatch(ctx, msg)
	observability.EndDispatchSpan(span, res, err)
	return res, err
}

// Current returns the id of the current state.
func (e *Engine) Current() domain.StateID {
	return e.runtime.Current()
}

// States returns every state id in document order.
func (e *Engine) States() []domain.StateID {
	return e.runtime.States()
}

// Transitions describes the transitions declared for a state.
func (e *Engine) Transitions(state domain.StateID) ([]domain.TransitionInfo, error) {
	return e.runtime.Transitions(state)
}

// Shared returns the current shared context value.
func (e *Engine) Shared() any {
	return e.runtime.Shared()
}

// ID returns the instance id used in logs, events and spans.
func (e *Engine) ID() string {
	return e.id
}

// Config returns a copy of the configuration the engine was built from.
func (e *Engine) Config() *domain.Config {
	return e.cfg.Clone()
}

// Reset moves the engine to state without running any hook.
func (e *Engine) Reset(state domain.StateID) error {
	return e.runtime.Reset(state)
}

// SetAction binds action to msg in the given states, or in every state having a
// transition for msg when none are given. Unknown states are skipped and a nil
// action removes the binding.
func (e *Engine) SetAction(msg domain.MessageID, action domain.Action, states ...domain.StateID) {
	e.runtime.SetAction(msg, action, states...)
}

// SetBeforeTransition installs hook as the before-hook of the given states, or of all states.
func (e *Engine) SetBeforeTransition(hook domain.StateHook, states ...domain.StateID) {
	e.runtime.SetBeforeTransition(hook, states...)
}

// SetAfterTransition installs hook as the after-hook of the given states, or of all states.
func (e *Engine) SetAfterTransition(hook domain.StateHook, states ...domain.StateID) {
	e.runtime.SetAfterTransition(hook, states...)
}

// SetDefaultAction replaces the fallback action.
func (e *Engine) SetDefaultAction(action domain.Action) {
	e.runtime.SetDefaultAction(action)
}

// SetSharedContext replaces the value passed to hooks from the next dispatch on.
func (e *Engine) SetSharedContext(shared any) {
	e.runtime.SetSharedContext(shared)
}

// Watch returns a channel that signals when the underlying configuration changes.
// A running engine is never rebuilt; callers decide whether to construct a new one.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrNotWatchable
}

// Loader returns the loader the engine was built from, or nil for NewFromConfig.
func (e *Engine) Loader() ports.ConfigLoader {
	return e.loader
}

// NameFromPath derives a machine name from a definition path: the base name
// without its extension.
func NameFromPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	base := filepath.Base(abs)
	return base[:len(base)-len(filepath.Ext(base))]
}
