package markup

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/waypoint/pkg/domain"
	"gopkg.in/yaml.v3"
)

type yamlDoc struct {
	Name   string      `yaml:"name,omitempty"`
	States []yamlState `yaml:"states"`
}

type yamlState struct {
	ID          domain.StateID            `yaml:"id"`
	Transitions []domain.TransitionConfig `yaml:"transitions,omitempty"`
	On          yaml.Node                 `yaml:"on,omitempty"`
}

func decodeYAML(r io.Reader) (*domain.Config, error) {
	var doc yamlDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: yaml: empty document", domain.ErrConfig)
		}
		return nil, fmt.Errorf("%w: yaml: %w", domain.ErrConfig, err)
	}

	cfg := &domain.Config{Name: doc.Name, States: make([]domain.StateConfig, 0, len(doc.States))}
	for _, s := range doc.States {
		sc := domain.StateConfig{ID: s.ID, Transitions: append([]domain.TransitionConfig(nil), s.Transitions...)}
		pairs, err := decodeOn(s.ID, &s.On)
		if err != nil {
			return nil, err
		}
		sc.Transitions = append(sc.Transitions, pairs...)
		cfg.States = append(cfg.States, sc)
	}
	return cfg, nil
}

// decodeOn reads the compact "MESSAGE: action:next" map, keeping key order.
func decodeOn(state domain.StateID, node *yaml.Node) ([]domain.TransitionConfig, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: yaml: state %s: \"on\" must be a mapping (line %d)", domain.ErrConfig, state, node.Line)
	}

	out := make([]domain.TransitionConfig, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: yaml: state %s: transition %q must be a string (line %d)", domain.ErrConfig, state, key.Value, val.Line)
		}
		t, err := domain.ParsePair(domain.MessageID(key.Value), val.Value)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", state, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func encodeYAML(w io.Writer, cfg *domain.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
