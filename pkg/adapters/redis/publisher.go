package redis

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/markup"
	backend "github.com/redis/go-redis/v9"
)

// Publisher stores machine definitions for Loader and announces new revisions.
type Publisher struct {
	client backend.UniversalClient
	opts   options
}

// NewPublisher creates a publisher writing through client.
func NewPublisher(client backend.UniversalClient, opts ...Option) *Publisher {
	return &Publisher{
		client: client,
		opts:   newOptions(opts),
	}
}

// Publish stores a raw document after checking that it decodes into a valid
// configuration. It returns the new revision.
func (p *Publisher) Publish(ctx context.Context, format markup.Format, data []byte) (int64, error) {
	cfg, err := markup.DecodeBytes(format, data)
	if err != nil {
		return 0, err
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	var rev *backend.IntCmd
	_, err = p.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.HSet(ctx, p.opts.key, fieldFormat, string(format), fieldBody, data)
		rev = pipe.HIncrBy(ctx, p.opts.key, fieldRevision, 1)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", p.opts.key, err)
	}

	n := rev.Val()
	if err := p.client.Publish(ctx, p.opts.key+changesSuffix, n).Err(); err != nil {
		return n, fmt.Errorf("redis notify %s: %w", p.opts.key, err)
	}
	p.opts.logger.Info("definition published", "key", p.opts.key, "format", format, "revision", n, "states", len(cfg.States))
	return n, nil
}

// PublishConfig encodes cfg in format and publishes it.
func (p *Publisher) PublishConfig(ctx context.Context, format markup.Format, cfg *domain.Config) (int64, error) {
	var buf bytes.Buffer
	if err := markup.Encode(format, &buf, cfg); err != nil {
		return 0, err
	}
	return p.Publish(ctx, format, buf.Bytes())
}
