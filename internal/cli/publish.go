package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/markup"
	backend "github.com/redis/go-redis/v9"
)

// PublishOptions configures Publish.
type PublishOptions struct {
	// Path is a definition file, published as is, or a vault directory,
	// published as YAML.
	Path string
	// Format overrides the format detected from the file extension.
	Format   string
	Settings Settings
	Logger   *slog.Logger

	// Client overrides the connection built from Settings.
	Client backend.UniversalClient
}

// Publish stores the definition at opts.Path under Settings.RedisKey and
// returns the new revision.
func Publish(ctx context.Context, opts PublishOptions) (int64, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := opts.Client
	if client == nil {
		c := redis.NewClient(opts.Settings.RedisAddr, opts.Settings.RedisDB)
		defer c.Close()
		client = c
	}
	publisher := redis.NewPublisher(client, redis.WithKey(opts.Settings.RedisKey), redis.WithLogger(logger))

	info, err := os.Stat(opts.Path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		loader, err := waypoint.LoaderForPath(opts.Path)
		if err != nil {
			return 0, err
		}
		cfg, err := loader.Load(ctx)
		if err != nil {
			return 0, err
		}
		return publisher.PublishConfig(ctx, markup.FormatYAML, cfg)
	}

	format, err := publishFormat(opts)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", opts.Path, err)
	}
	return publisher.Publish(ctx, format, data)
}

func publishFormat(opts PublishOptions) (markup.Format, error) {
	if opts.Format != "" {
		return markup.ParseFormat(opts.Format)
	}
	return markup.FormatFromPath(opts.Path)
}
