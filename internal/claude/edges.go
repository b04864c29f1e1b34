package claude

import (
	"slices"

	"github.com/joshharrison/pertloom/internal/dag"
	"github.com/joshharrison/pertloom/internal/graph"
)

// Skipped is an inferred edge that was rejected, with the reason.
type Skipped struct {
	Edge   DepEdge `json:"edge"`
	Reason string  `json:"reason"`
}

// Skip reasons.
const (
	SkipUnknownBlocked = "unknown blocked_id"
	SkipUnknownBlocker = "unknown blocker_id"
	SkipSelf           = "self-dependency"
	SkipExisting       = "already a dependency"
	SkipCycle          = "would create a cycle"
)

// ValidateEdges filters inferred edges against g. Edges are taken greedily
// in the order given: an edge is dropped when it names an unknown task,
// points a task at itself, repeats an existing dependency, or would close a
// cycle with the dependencies accepted so far.
func ValidateEdges(g *graph.TaskGraph, edges []DepEdge) (accepted []DepEdge, skipped []Skipped) {
	// arcs run blocker -> blocked
	d := g.Weighted(func(int, int) int { return 0 })

	for _, e := range edges {
		blocked, ok := g.Index[e.BlockedID]
		if !ok {
			skipped = append(skipped, Skipped{e, SkipUnknownBlocked})
			continue
		}
		blocker, ok := g.Index[e.BlockerID]
		if !ok {
			skipped = append(skipped, Skipped{e, SkipUnknownBlocker})
			continue
		}
		if blocked == blocker {
			skipped = append(skipped, Skipped{e, SkipSelf})
			continue
		}
		if hasArc(d, blocker, blocked) {
			skipped = append(skipped, Skipped{e, SkipExisting})
			continue
		}
		if d.Reachable(blocked, blocker) {
			skipped = append(skipped, Skipped{e, SkipCycle})
			continue
		}
		d.AddArc(blocker, blocked, 0)
		accepted = append(accepted, e)
	}
	return accepted, skipped
}

func hasArc(d *dag.Graph, from, to int) bool {
	for _, i := range d.Out(from) {
		if d.Arc(i).To == to {
			return true
		}
	}
	return false
}

// ApplyEdges returns a copy of tasks with the accepted edges added to the
// blocked tasks' dependency lists.
func ApplyEdges(tasks []graph.Task, accepted []DepEdge) []graph.Task {
	out := graph.Clone(tasks)
	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.ID] = i
	}
	for _, e := range accepted {
		i, ok := index[e.BlockedID]
		if !ok || slices.Contains(out[i].Dependencies, e.BlockerID) {
			continue
		}
		out[i].Dependencies = append(out[i].Dependencies, e.BlockerID)
	}
	return out
}
