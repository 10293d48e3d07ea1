package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/markup"
	backend "github.com/redis/go-redis/v9"
)

// Loader implements ports.ConfigLoader and ports.Watchable for a definition stored in a
// Redis hash by Publisher.
type Loader struct {
	client backend.UniversalClient
	opts   options
}

// NewLoader creates a loader reading through client.
func NewLoader(client backend.UniversalClient, opts ...Option) *Loader {
	return &Loader{
		client: client,
		opts:   newOptions(opts),
	}
}

// Key returns the hash key the loader reads.
func (l *Loader) Key() string {
	return l.opts.key
}

// Load fetches and decodes the stored definition.
func (l *Loader) Load(ctx context.Context) (*domain.Config, error) {
	cfg, _, err := l.LoadRevision(ctx)
	return cfg, err
}

// LoadRevision is Load that also reports the revision counter set by Publisher.
func (l *Loader) LoadRevision(ctx context.Context) (*domain.Config, int64, error) {
	fields, err := l.client.HGetAll(ctx, l.opts.key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis hgetall %s: %w", l.opts.key, err)
	}
	if len(fields) == 0 {
		return nil, 0, fmt.Errorf("%w: no definition at redis key %s", domain.ErrConfig, l.opts.key)
	}

	format, err := markup.ParseFormat(fields[fieldFormat])
	if err != nil {
		return nil, 0, fmt.Errorf("redis key %s: %w", l.opts.key, err)
	}
	cfg, err := markup.DecodeBytes(format, []byte(fields[fieldBody]))
	if err != nil {
		return nil, 0, fmt.Errorf("redis key %s: %w", l.opts.key, err)
	}

	var rev int64
	if raw, ok := fields[fieldRevision]; ok {
		if rev, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("%w: redis key %s: bad revision %q", domain.ErrConfig, l.opts.key, raw)
		}
	}
	return cfg, rev, nil
}

// Watch subscribes to the change channel written by Publisher.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	channel := l.opts.key + changesSuffix
	sub := l.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				l.opts.logger.Debug("definition published", "key", l.opts.key, "revision", msg.Payload)
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()

	return changes, nil
}
