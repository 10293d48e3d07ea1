package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Kind classifies a finding.
type Kind string

const (
	// KindUnreachable marks a state no message sequence can reach from the initial state.
	KindUnreachable Kind = "unreachable"
	// KindTrap marks a state from which no terminal state can be reached.
	KindTrap Kind = "trap"
)

// Finding is a structural remark that does not prevent an engine from being built.
type Finding struct {
	Kind  Kind
	State domain.StateID
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.State)
}

// Report is the outcome of ValidateGraph.
type Report struct {
	// Err is the first structural or integrity violation. When set, no graph
	// analysis is performed.
	Err      error
	Initial  domain.StateID
	Terminal []domain.StateID
	Findings []Finding
}

// OK reports whether the configuration can back an engine.
func (r *Report) OK() bool {
	return r.Err == nil
}

// Summary renders the findings one per line.
func (r *Report) Summary() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if len(r.Findings) == 0 {
		return "no findings"
	}
	lines := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		lines = append(lines, f.String())
	}
	return fmt.Sprintf("found %d findings:\n- %s", len(r.Findings), strings.Join(lines, "\n- "))
}

// ValidateGraph checks cfg and, when it is valid, looks for unreachable states and
// states that cannot reach a terminal state.
func ValidateGraph(cfg *domain.Config) *Report {
	report := &Report{Err: cfg.Validate()}
	if report.Err != nil {
		return report
	}
	report.Initial = cfg.Initial()

	edges := make(map[domain.StateID][]domain.StateID, len(cfg.States))
	reverse := make(map[domain.StateID][]domain.StateID, len(cfg.States))
	for _, s := range cfg.States {
		if len(s.Transitions) == 0 {
			report.Terminal = append(report.Terminal, s.ID)
		}
		for _, t := range s.Transitions {
			edges[s.ID] = append(edges[s.ID], t.Next)
			reverse[t.Next] = append(reverse[t.Next], s.ID)
		}
	}

	reachable := crawl(edges, report.Initial)
	for _, s := range cfg.States {
		if !reachable[s.ID] {
			report.Findings = append(report.Findings, Finding{Kind: KindUnreachable, State: s.ID})
		}
	}

	// Without terminal states every machine cycles forever; that is not a trap.
	if len(report.Terminal) == 0 {
		return report
	}
	canFinish := crawl(reverse, report.Terminal...)
	for _, s := range cfg.States {
		if reachable[s.ID] && !canFinish[s.ID] {
			report.Findings = append(report.Findings, Finding{Kind: KindTrap, State: s.ID})
		}
	}

	return report
}

func crawl(edges map[domain.StateID][]domain.StateID, from ...domain.StateID) map[domain.StateID]bool {
	visited := make(map[domain.StateID]bool)
	queue := append([]domain.StateID(nil), from...)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range edges[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}
