package loam

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts a Loam vault, one document per state, to ports.ConfigLoader.
type Loader struct {
	Repo *loam.TypedRepository[StateMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[StateMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at dir and wraps it.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[StateMetadata](repo)), nil
}

type stateDoc struct {
	id      domain.StateID
	source  string
	meta    StateMetadata
	content string
}

// Load lists every document and assembles them into a configuration.
func (l *Loader) Load(ctx context.Context) (*domain.Config, error) {
	docs, err := l.documents(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &domain.Config{States: make([]domain.StateConfig, 0, len(docs))}
	for _, d := range docs {
		transitions, err := buildTransitions(d.meta)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfig, d.source, err)
		}
		cfg.States = append(cfg.States, domain.StateConfig{ID: d.id, Transitions: transitions})
	}
	return cfg, nil
}

// Descriptions returns the Markdown body of every state document, keyed by state.
func (l *Loader) Descriptions(ctx context.Context) (map[domain.StateID]string, error) {
	docs, err := l.documents(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.StateID]string, len(docs))
	for _, d := range docs {
		if body := strings.TrimSpace(d.content); body != "" {
			out[d.id] = body
		}
	}
	return out, nil
}

func (l *Loader) documents(ctx context.Context) ([]stateDoc, error) {
	list, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[domain.StateID]string, len(list))
	docs := make([]stateDoc, 0, len(list))
	for _, doc := range list {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := domain.StateID(trimExtension(rawID))

		// Collision Detection
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: collision detected: ID '%s' is defined in both '%s' and '%s'", domain.ErrConfig, id, existing, doc.ID)
		}
		seen[id] = doc.ID
		docs = append(docs, stateDoc{id: id, source: doc.ID, meta: doc.Data, content: doc.Content})
	}

	slices.SortStableFunc(docs, func(a, b stateDoc) int {
		if a.meta.Initial != b.meta.Initial {
			if a.meta.Initial {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.meta.Order, b.meta.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	return docs, nil
}

func buildTransitions(meta StateMetadata) ([]domain.TransitionConfig, error) {
	out := make([]domain.TransitionConfig, 0, len(meta.Transitions)+len(meta.On))

	for i, raw := range meta.Transitions {
		var lt LoaderTransition
		switch v := raw.(type) {
		case map[string]any, map[any]any:
			if err := mapstructure.Decode(v, &lt); err != nil {
				return nil, fmt.Errorf("transition %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("transition %d: invalid definition type: %T", i, v)
		}
		out = append(out, convert(lt))
	}

	messages := make([]string, 0, len(meta.On))
	for msg := range meta.On {
		messages = append(messages, msg)
	}
	slices.Sort(messages) // Deterministic order
	for _, msg := range messages {
		t, err := domain.ParsePair(domain.MessageID(msg), meta.On[msg])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func convert(lt LoaderTransition) domain.TransitionConfig {
	msg := cmp.Or(lt.Message, lt.ID)
	next := cmp.Or(lt.Next, lt.NextState, lt.To)
	return domain.TransitionConfig{
		Message: domain.MessageID(msg),
		Action:  lt.Action,
		Next:    domain.StateID(trimExtension(next)),
	}
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

var documentExtensions = []string{".md", ".json", ".yaml", ".yml"}

// trimExtension strips a document extension; other dots are part of the id.
func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if slices.Contains(documentExtensions, ext) {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
