package redis

import (
	"io"
	"log/slog"

	backend "github.com/redis/go-redis/v9"
)

// DefaultKey is the hash holding the published definition.
const DefaultKey = "waypoint:machine"

const (
	fieldFormat   = "format"
	fieldBody     = "body"
	fieldRevision = "revision"
	changesSuffix = ":changes"
)

type options struct {
	key    string
	logger *slog.Logger
}

// Option configures the Redis loader and publisher.
type Option func(*options)

// WithKey sets the hash key. The change channel is the key suffixed with ":changes".
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithLogger sets the logger used for background work.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		key:    DefaultKey,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a go-redis client for addr and db.
func NewClient(addr string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr: addr,
		DB:   db,
	})
}
