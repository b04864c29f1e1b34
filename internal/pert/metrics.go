package pert

import "github.com/joshharrison/pertloom/internal/graph"

// Node returns the node with the given id.
func (nw *Network) Node(id NodeID) Node {
	return nw.Nodes[id]
}

// TaskEdge returns the real edge carrying the task.
func (nw *Network) TaskEdge(taskID string) (Edge, bool) {
	i, ok := nw.taskEdge[taskID]
	if !ok {
		return Edge{}, false
	}
	return nw.Edges[i], true
}

// EventNode returns the node reached when the task completes.
func (nw *Network) EventNode(taskID string) (Node, bool) {
	id, ok := nw.event[taskID]
	if !ok {
		return Node{}, false
	}
	return nw.Nodes[id], true
}

// ConvergenceNodes returns the join nodes in creation order.
func (nw *Network) ConvergenceNodes() []Node {
	var out []Node
	for _, n := range nw.Nodes {
		if n.Kind == KindConvergence {
			out = append(out, n)
		}
	}
	return out
}

// TaskMetrics derives per-task timings from each task's real edge, in input
// order. The values match what cpm.Analyze reports for the same tasks.
func (nw *Network) TaskMetrics() []graph.TaskMetrics {
	out := make([]graph.TaskMetrics, 0, len(nw.tasks))
	for _, t := range nw.tasks {
		e := nw.Edges[nw.taskEdge[t.ID]]
		from, to := nw.Nodes[e.From], nw.Nodes[e.To]

		m := graph.TaskMetrics{
			ID:             t.ID,
			Name:           t.Name,
			Duration:       e.Duration,
			EarliestStart:  from.EarliestTime,
			EarliestFinish: from.EarliestTime + e.Duration,
			LatestFinish:   to.LatestTime,
			LatestStart:    to.LatestTime - e.Duration,
			TotalSlack:     e.Slack,
			IsCritical:     e.IsCritical,
		}
		m.FreeSlack = nw.freeSlack(e.To, m)
		out = append(out, m)
	}
	return out
}

// freeSlack is the gap between the task finishing and the earliest start of
// whatever leaves its completion event.
func (nw *Network) freeSlack(event NodeID, m graph.TaskMetrics) int {
	out := nw.g.Out(int(event))
	if len(out) == 0 {
		return m.TotalSlack
	}
	minStart := 0
	for k, i := range out {
		e := nw.Edges[i]
		start := nw.Nodes[e.To].EarliestTime - e.Duration
		if k == 0 || start < minStart {
			minStart = start
		}
	}
	return minStart - m.EarliestFinish
}

// Levels returns, per node, the largest number of edges on any path from
// start. Layout code uses it to place nodes in columns.
func (nw *Network) Levels() []int {
	levels := make([]int, len(nw.Nodes))
	for _, n := range nw.order {
		for _, i := range nw.g.In(n) {
			if l := levels[nw.Edges[i].From] + 1; l > levels[n] {
				levels[n] = l
			}
		}
	}
	return levels
}

// Output bundles the network with its task metrics for serialisation.
func (nw *Network) Output() Output {
	return Output{Network: nw, TaskMetrics: nw.TaskMetrics()}
}
