package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// DescribeMachine renders a configuration as a Markdown document: one section per
// state with its transition table, followed by its description when one is given.
func DescribeMachine(name string, cfg *domain.Config, descriptions map[domain.StateID]string) string {
	var sb strings.Builder

	if name == "" {
		name = "machine"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "%d states, initial state **%s**.\n", len(cfg.States), cfg.Initial())

	for _, s := range cfg.States {
		fmt.Fprintf(&sb, "\n## %s\n\n", s.ID)

		if len(s.Transitions) == 0 {
			sb.WriteString("_Terminal state._\n")
		} else {
			sb.WriteString("| Message | Action | Next |\n")
			sb.WriteString("|---|---|---|\n")
			for _, t := range s.Transitions {
				action := t.Action
				if action == "" {
					action = "-"
				}
				fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", t.Message, escapeCell(action), t.Next)
			}
		}

		if d := descriptions[s.ID]; d != "" {
			sb.WriteString("\n")
			sb.WriteString(demoteHeadings(d))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// demoteHeadings pushes description headings below the state heading.
func demoteHeadings(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = "##" + line
		}
	}
	return strings.Join(lines, "\n")
}
