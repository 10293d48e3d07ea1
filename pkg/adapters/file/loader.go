package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/markup"
	"github.com/fsnotify/fsnotify"
)

// Loader implements ports.ConfigLoader for a single definition file.
// The format is taken from the extension unless set explicitly.
type Loader struct {
	path   string
	format markup.Format
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFormat overrides the format inferred from the file extension.
func WithFormat(format markup.Format) Option {
	return func(l *Loader) {
		l.format = format
	}
}

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a file loader for path.
func New(path string, opts ...Option) *Loader {
	l := &Loader{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and decodes the file.
func (l *Loader) Load(ctx context.Context) (*domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := l.format
	if format == "" {
		var err error
		if format, err = markup.FormatFromPath(l.path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	defer f.Close()

	cfg, err := markup.Decode(format, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	if cfg.Name == "" {
		cfg.Name = trimExtension(filepath.Base(l.path))
	}
	return cfg, nil
}

// Watch signals whenever the file is written, created or replaced.
// The parent directory is watched so that editors saving through a rename are seen.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	abs, err := filepath.Abs(l.path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.path, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				l.logger.Debug("definition changed", "path", l.path, "op", ev.Op.String())
				// Coalesce bursts: a pending signal already covers this change.
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("watch error", "path", l.path, "err", err)
			}
		}
	}()

	return changes, nil
}

func trimExtension(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
