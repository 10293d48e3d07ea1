package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []domain.StateID
	CurrentState  domain.StateID
}

// GenerateMermaid produces a Mermaid flowchart from a configuration.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Terminal state (no transitions): ([Stadium])
// - Default: [Rectangle]
// Edges are labeled "MESSAGE / action". Transitions with a bound action are drawn
// thick when infos are given for them.
func GenerateMermaid(cfg *domain.Config, bound map[domain.StateID][]domain.TransitionInfo, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	initial := cfg.Initial()
	for _, state := range cfg.States {
		safeID := sanitizeMermaidID(string(state.ID))

		opener, closer := "[", "]"
		switch {
		case state.ID == initial:
			opener, closer = "((", "))"
		case len(state.Transitions) == 0:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(string(state.ID)), closer))

		boundSet := make(map[domain.MessageID]bool)
		for _, info := range bound[state.ID] {
			if info.BoundAction {
				boundSet[info.Message] = true
			}
		}

		for _, t := range state.Transitions {
			label := string(t.Message)
			if t.Action != "" {
				label += " / " + t.Action
			}
			arrow := fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
			if boundSet[t.Message] {
				arrow = fmt.Sprintf("== \"%s\" ==>", escapeLabel(label))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(string(t.Next))))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(string(id))
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentState))))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
