package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// describer is implemented by loaders that carry prose per state, such as the
// Loam vault loader.
type describer interface {
	Descriptions(ctx context.Context) (map[domain.StateID]string, error)
}

// Inspect writes a markdown description of the machine, rendered through render.
// name titles the document when the definition carries no name.
func Inspect(ctx context.Context, loader ports.ConfigLoader, name string, out io.Writer, render func(string) (string, error)) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	var descriptions map[domain.StateID]string
	if d, ok := loader.(describer); ok {
		if descriptions, err = d.Descriptions(ctx); err != nil {
			return err
		}
	}

	md := tui.DescribeMachine(cmp.Or(cfg.Name, name), cfg, descriptions)
	if render != nil {
		if md, err = render(md); err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}
	}
	_, err = io.WriteString(out, md)
	return err
}

// Graph writes the Mermaid diagram of the machine. Messages in walk are
// dispatched in order, every transition accepted, and the states visited along
// the way are highlighted.
func Graph(ctx context.Context, loader ports.ConfigLoader, out io.Writer, walk []string) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if len(walk) > 0 {
		engine, err := waypoint.NewFromConfig(cfg, waypoint.WithDefaultAction(domain.Always()))
		if err != nil {
			return err
		}
		overlay = &graph.GraphOverlay{VisitedStates: []domain.StateID{engine.Current()}}
		for _, msg := range walk {
			res, err := engine.Dispatch(ctx, domain.MessageID(msg))
			if err != nil {
				return err
			}
			if res.Committed() {
				overlay.VisitedStates = append(overlay.VisitedStates, res.Next)
			}
		}
		overlay.CurrentState = engine.Current()
	}

	_, err = io.WriteString(out, graph.GenerateMermaid(cfg, nil, overlay))
	return err
}
