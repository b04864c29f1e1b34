package graph

import (
	"slices"
	"strconv"

	"github.com/joshharrison/pertloom/internal/dag"
)

// Build validates a task list and returns its indexed graph. The input is
// copied, so later changes to tasks do not affect the graph.
//
// Validation fails with ErrEmptyID, ErrDuplicateTask, ErrInvalidDuration,
// ErrUnknownDependency or ErrCyclicDependency, wrapped in *Error.
func Build(tasks []Task) (*TaskGraph, error) {
	g := &TaskGraph{
		Tasks: make([]Task, len(tasks)),
		Index: make(map[string]int, len(tasks)),
		Preds: make([][]int, len(tasks)),
		Succs: make([][]int, len(tasks)),
	}

	for i, t := range tasks {
		if t.ID == "" {
			return nil, &Error{Kind: ErrEmptyID, Msg: "task at position " + strconv.Itoa(i)}
		}
		if _, dup := g.Index[t.ID]; dup {
			return nil, &Error{Kind: ErrDuplicateTask, TaskID: t.ID}
		}
		if t.Duration < 0 {
			return nil, invalidDuration(t.ID, "duration %d is negative", t.Duration)
		}
		g.Index[t.ID] = i
		g.Tasks[i] = Task{
			ID:           t.ID,
			Name:         t.Name,
			Duration:     t.Duration,
			Dependencies: dedupe(t.Dependencies),
		}
	}

	for i, t := range g.Tasks {
		for _, dep := range t.Dependencies {
			j, ok := g.Index[dep]
			if !ok {
				return nil, &Error{Kind: ErrUnknownDependency, TaskID: t.ID, Dependency: dep}
			}
			g.Preds[i] = append(g.Preds[i], j)
			g.Succs[j] = append(g.Succs[j], i)
		}
	}

	for i, t := range g.Tasks {
		if len(g.Preds[i]) == 0 {
			g.Roots = append(g.Roots, t.ID)
		}
		if len(g.Succs[i]) == 0 {
			g.Leaves = append(g.Leaves, t.ID)
		}
	}

	d := g.Weighted(func(int, int) int { return 0 })
	if cycle := d.FindCycle(); cycle != nil {
		ids := make([]string, len(cycle))
		for k, n := range cycle {
			ids[k] = g.Tasks[n].ID
		}
		return nil, &Error{Kind: ErrCyclicDependency, TaskID: ids[0], Cycle: ids}
	}

	order, err := d.TopoOrder()
	if err != nil {
		// FindCycle already proved the graph acyclic
		return nil, &Error{Kind: ErrCyclicDependency, Msg: err.Error()}
	}
	g.Order = order

	return g, nil
}

// Weighted returns the dependency graph as a dag.Graph whose node i is task i
// and whose arcs run dependency -> dependent with the given weight.
func (g *TaskGraph) Weighted(weight func(from, to int) int) *dag.Graph {
	d := dag.New(len(g.Tasks))
	for to, preds := range g.Preds {
		for _, from := range preds {
			d.AddArc(from, to, weight(from, to))
		}
	}
	return d
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}

// Task returns the task with the given id.
func (g *TaskGraph) Task(id string) (Task, bool) {
	i, ok := g.Index[id]
	if !ok {
		return Task{}, false
	}
	return g.Tasks[i], true
}

// Dependents returns the ids of tasks that list id as a dependency.
func (g *TaskGraph) Dependents(id string) []string {
	i, ok := g.Index[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.Succs[i]))
	for _, s := range g.Succs[i] {
		out = append(out, g.Tasks[s].ID)
	}
	return out
}

// Filter returns a new TaskGraph containing only tasks matching the predicate.
// Dependencies on filtered-out tasks are dropped.
func (g *TaskGraph) Filter(pred func(Task) bool) (*TaskGraph, error) {
	keep := make(map[string]bool)
	var filtered []Task
	for _, t := range g.Tasks {
		if pred(t) {
			keep[t.ID] = true
			filtered = append(filtered, t)
		}
	}
	for i, t := range filtered {
		var deps []string
		for _, d := range t.Dependencies {
			if keep[d] {
				deps = append(deps, d)
			}
		}
		filtered[i].Dependencies = deps
	}
	return Build(filtered)
}

// Clone returns a deep copy of the task list.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t
		out[i].Dependencies = slices.Clone(t.Dependencies)
	}
	return out
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
