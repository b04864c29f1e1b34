package pert

import "github.com/joshharrison/pertloom/internal/graph"

// NodeID indexes Network.Nodes. It is also the node's display number.
type NodeID int

// NodeKind says which event a node stands for.
type NodeKind string

const (
	KindStart       NodeKind = "start"
	KindEvent       NodeKind = "event"       // a task has completed
	KindConvergence NodeKind = "convergence" // all dependencies of a task have completed
	KindEnd         NodeKind = "end"
)

// Node is an event in the activity-on-arrow network.
type Node struct {
	ID           NodeID   `json:"id"`
	Number       int      `json:"nodeNumber"`
	Kind         NodeKind `json:"kind"`
	TaskID       string   `json:"taskId,omitempty"` // task completed (event) or joined (convergence)
	Label        string   `json:"label"`
	EarliestTime int      `json:"earliestTime"`
	LatestTime   int      `json:"latestTime"`
	Slack        int      `json:"slack"`
	IsCritical   bool     `json:"isCritical"`
}

// EdgeTask is the copy of a task carried by a real edge.
type EdgeTask struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// Edge is an activity (real edge) or an ordering constraint (dummy edge).
type Edge struct {
	From       NodeID    `json:"from"`
	To         NodeID    `json:"to"`
	Task       *EdgeTask `json:"task"` // nil for dummy edges
	Duration   int       `json:"duration"`
	IsDummy    bool      `json:"isDummy"`
	Slack      int       `json:"slack"`
	IsCritical bool      `json:"isCritical"`
}

// Output is the serialised form of a network: nodes, edges, critical path
// and project duration, plus per-task metrics.
type Output struct {
	*Network
	TaskMetrics []graph.TaskMetrics `json:"taskMetrics"`
}
