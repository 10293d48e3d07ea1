package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ConfigLoader defines how an engine retrieves its state configuration.
// Implementations report unreadable or malformed sources as errors wrapping
// domain.ErrConfig. Semantic checks happen when the engine is built.
type ConfigLoader interface {
	// Load returns the states in document order. The first state is the initial one.
	Load(ctx context.Context) (*domain.Config, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying configuration changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// LoaderFunc adapts a function to ConfigLoader.
type LoaderFunc func(ctx context.Context) (*domain.Config, error)

func (f LoaderFunc) Load(ctx context.Context) (*domain.Config, error) {
	return f(ctx)
}
