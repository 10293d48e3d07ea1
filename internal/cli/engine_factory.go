package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Source selects where a command reads the machine definition from.
type Source struct {
	// Path is a definition file or a Loam vault directory.
	Path string
	// FromRedis reads the definition published under Settings.RedisKey instead of Path.
	FromRedis bool
	Settings  Settings

	// Loader overrides Path and FromRedis when set.
	Loader ports.ConfigLoader
}

// OpenLoader resolves the configured source. The returned closer releases any
// connection the loader holds and is never nil.
func OpenLoader(src Source, logger *slog.Logger) (ports.ConfigLoader, func() error, error) {
	noop := func() error { return nil }

	switch {
	case src.Loader != nil:
		return src.Loader, noop, nil
	case src.FromRedis:
		client := redis.NewClient(src.Settings.RedisAddr, src.Settings.RedisDB)
		loader := redis.NewLoader(client, redis.WithKey(src.Settings.RedisKey), redis.WithLogger(logger))
		return loader, client.Close, nil
	case src.Path == "":
		return nil, noop, errors.New("a definition path or --from-redis is required")
	}

	loader, err := waypoint.LoaderForPath(src.Path)
	if err != nil {
		return nil, noop, err
	}
	return loader, noop, nil
}

// EngineOptions configures CreateEngine.
type EngineOptions struct {
	Source Source
	Logger *slog.Logger
	// DefaultAllow installs an action that accepts every transition without a bound action.
	DefaultAllow bool
	// Trace logs every dispatch and state change through Logger.
	Trace bool
}

// CreateEngine initializes an engine with standard CLI conventions.
// The returned closer must be called once the engine is no longer used.
func CreateEngine(ctx context.Context, opts EngineOptions) (*waypoint.Engine, func() error, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loader, closer, err := OpenLoader(opts.Source, logger)
	if err != nil {
		return nil, closer, err
	}

	engineOpts := []waypoint.Option{waypoint.WithLogger(logger)}
	if name := sourceName(opts.Source); name != "" {
		engineOpts = append(engineOpts, waypoint.WithName(name))
	}
	if opts.DefaultAllow {
		engineOpts = append(engineOpts, waypoint.WithDefaultAction(domain.Always()))
	}
	if opts.Trace {
		engineOpts = append(engineOpts, waypoint.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	engine, err := waypoint.New(ctx, loader, engineOpts...)
	if err != nil {
		_ = closer()
		return nil, func() error { return nil }, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closer, nil
}

func sourceName(src Source) string {
	switch {
	case src.Loader != nil:
		return ""
	case src.FromRedis:
		return src.Settings.RedisKey
	default:
		return waypoint.NameFromPath(src.Path)
	}
}
