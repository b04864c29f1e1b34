// Package pert builds the activity-on-arrow (PERT) network for a task graph:
// nodes are completion events, edges are tasks or zero-duration dummies.
//
// Construction per task:
//   - no dependencies: real edge start -> after(task)
//   - one dependency: real edge after(dep) -> after(task)
//   - several: dummy edges after(dep) -> join(task), then real edge
//     join(task) -> after(task)
//
// Every task nothing depends on gets a dummy edge after(task) -> end.
package pert

import (
	"fmt"

	"github.com/joshharrison/pertloom/internal/dag"
	"github.com/joshharrison/pertloom/internal/graph"
)

// Network is a computed PERT network. Build returns it fully propagated.
type Network struct {
	Nodes           []Node `json:"nodes"`
	Edges           []Edge `json:"edges"`
	CriticalPath    []Edge `json:"criticalPath"`
	ProjectDuration int    `json:"projectDuration"`
	Start           NodeID `json:"start"`
	End             NodeID `json:"end"`

	g        *dag.Graph
	order    []int
	tasks    []graph.Task
	taskEdge map[string]int    // task id -> real edge index
	event    map[string]NodeID // task id -> after(task)
}

// FromTasks validates tasks and builds their network.
func FromTasks(tasks []graph.Task) (*Network, error) {
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}
	return Build(g)
}

// Build constructs the network for g and computes event times, slack and
// one critical path.
func Build(g *graph.TaskGraph) (*Network, error) {
	for _, t := range g.Tasks {
		if t.Duration < 0 {
			return nil, &graph.Error{Kind: graph.ErrInvalidDuration, TaskID: t.ID,
				Msg: fmt.Sprintf("duration %d is negative", t.Duration)}
		}
	}

	nw := &Network{
		Edges:    []Edge{},
		g:        dag.New(0),
		tasks:    graph.Clone(g.Tasks),
		taskEdge: make(map[string]int, len(g.Tasks)),
		event:    make(map[string]NodeID, len(g.Tasks)),
	}

	nw.Start = nw.addNode(KindStart, "", "Start")
	for _, t := range g.Tasks {
		nw.event[t.ID] = nw.addNode(KindEvent, t.ID, "after "+t.ID)
	}

	for i, t := range g.Tasks {
		var from NodeID
		switch preds := g.Preds[i]; len(preds) {
		case 0:
			from = nw.Start
		case 1:
			from = nw.event[g.Tasks[preds[0]].ID]
		default:
			from = nw.addNode(KindConvergence, t.ID, "join "+t.ID)
			for _, p := range preds {
				nw.addEdge(nw.event[g.Tasks[p].ID], from, nil)
			}
		}
		nw.taskEdge[t.ID] = nw.addEdge(from, nw.event[t.ID], &EdgeTask{
			ID:       t.ID,
			Name:     t.Name,
			Duration: t.Duration,
		})
	}

	nw.End = nw.addNode(KindEnd, "", "End")
	for _, id := range g.Leaves {
		nw.addEdge(nw.event[id], nw.End, nil)
	}

	order, err := nw.g.TopoOrder()
	if err != nil {
		return nil, &graph.Error{Kind: graph.ErrCyclicDependency, Msg: err.Error()}
	}
	nw.order = order

	nw.propagate()
	nw.CriticalPath = nw.findCriticalPath()
	return nw, nil
}

func (nw *Network) addNode(kind NodeKind, taskID, label string) NodeID {
	id := NodeID(nw.g.AddNode())
	nw.Nodes = append(nw.Nodes, Node{
		ID:     id,
		Number: int(id),
		Kind:   kind,
		TaskID: taskID,
		Label:  label,
	})
	return id
}

// addEdge adds a real edge when task is set, a dummy edge otherwise.
func (nw *Network) addEdge(from, to NodeID, task *EdgeTask) int {
	e := Edge{From: from, To: to, Task: task, IsDummy: task == nil}
	if task != nil {
		e.Duration = task.Duration
	}
	idx := nw.g.AddArc(int(from), int(to), e.Duration)
	nw.Edges = append(nw.Edges, e)
	return idx
}

// propagate fills in earliest/latest times and node and edge slack.
func (nw *Network) propagate() {
	earliest := nw.g.Earliest(nw.order)
	latest := nw.g.Latest(nw.order, func(n int) int { return earliest[n] })

	for i := range nw.Nodes {
		n := &nw.Nodes[i]
		n.EarliestTime = earliest[i]
		n.LatestTime = latest[i]
		n.Slack = n.LatestTime - n.EarliestTime
		n.IsCritical = n.Slack == 0
	}
	for i := range nw.Edges {
		e := &nw.Edges[i]
		e.Slack = latest[e.To] - earliest[e.From] - e.Duration
		e.IsCritical = e.Slack == 0
	}
	nw.ProjectDuration = earliest[nw.End]
}

// findCriticalPath walks from start along zero-slack edges, trying edges in
// the order they were added, and returns the first path that reaches end.
// Nodes proven not to reach end are not revisited.
func (nw *Network) findCriticalPath() []Edge {
	type frame struct {
		node int
		next int // next position in Out(node) to try
		via  int // edge used to reach node, -1 for start
	}

	dead := make([]bool, len(nw.Nodes))
	stack := []frame{{node: int(nw.Start), via: -1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.node == int(nw.End) {
			path := make([]Edge, 0, len(stack)-1)
			for _, f := range stack[1:] {
				path = append(path, nw.Edges[f.via])
			}
			return path
		}

		out := nw.g.Out(top.node)
		advanced := false
		for top.next < len(out) {
			e := out[top.next]
			top.next++
			if edge := nw.Edges[e]; edge.IsCritical && !dead[edge.To] {
				stack = append(stack, frame{node: int(edge.To), via: e})
				advanced = true
				break
			}
		}
		if !advanced {
			dead[top.node] = true
			stack = stack[:len(stack)-1]
		}
	}
	return []Edge{}
}
