// Package dag provides an integer-indexed weighted directed graph with the
// longest-path propagation primitives shared by the CPM and PERT engines.
//
// Nodes are dense indices 0..N-1. Arcs keep their insertion order, which is
// the discovery order callers rely on for deterministic tie-breaking.
package dag

import (
	"container/heap"
	"errors"
)

// ErrCycle is returned by TopoOrder when the graph is not acyclic.
var ErrCycle = errors.New("graph has a cycle")

// Arc is a weighted directed edge.
type Arc struct {
	From, To int
	Weight   int
}

// Graph is a directed graph over N dense node indices.
type Graph struct {
	out [][]int // node -> arc indices leaving it
	in  [][]int // node -> arc indices entering it
	arc []Arc
}

// New returns an empty graph with n nodes.
func New(n int) *Graph {
	return &Graph{
		out: make([][]int, n),
		in:  make([][]int, n),
	}
}

// AddNode appends a node and returns its index.
func (g *Graph) AddNode() int {
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return len(g.out) - 1
}

// AddArc adds a weighted arc and returns its index.
func (g *Graph) AddArc(from, to, weight int) int {
	id := len(g.arc)
	g.arc = append(g.arc, Arc{From: from, To: to, Weight: weight})
	g.out[from] = append(g.out[from], id)
	g.in[to] = append(g.in[to], id)
	return id
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.out) }

// Arc returns the arc with index i.
func (g *Graph) Arc(i int) Arc { return g.arc[i] }

// Arcs returns the number of arcs.
func (g *Graph) Arcs() int { return len(g.arc) }

// Out returns the indices of arcs leaving node n, in insertion order.
func (g *Graph) Out(n int) []int { return g.out[n] }

// In returns the indices of arcs entering node n, in insertion order.
func (g *Graph) In(n int) []int { return g.in[n] }

// TopoOrder returns a topological order using Kahn's algorithm. Ready nodes
// are released lowest index first, so the order is deterministic.
func (g *Graph) TopoOrder() ([]int, error) {
	indeg := make([]int, g.Len())
	for n := range indeg {
		indeg[n] = len(g.in[n])
	}

	ready := &intHeap{}
	for n, d := range indeg {
		if d == 0 {
			*ready = append(*ready, n)
		}
	}
	heap.Init(ready)

	order := make([]int, 0, g.Len())
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		order = append(order, n)

		for _, a := range g.out[n] {
			to := g.arc[a].To
			indeg[to]--
			if indeg[to] == 0 {
				heap.Push(ready, to)
			}
		}
	}

	if len(order) != g.Len() {
		return nil, ErrCycle
	}
	return order, nil
}

// intHeap is a min-heap of node indices.
type intHeap []int

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *intHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// FindCycle returns one cycle as a node sequence whose first and last
// elements are equal, or nil if the graph is acyclic. It walks nodes in
// index order with an explicit stack (white/gray/black colouring), so deep
// graphs do not grow the goroutine stack.
func (g *Graph) FindCycle() []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, g.Len())
	parent := make([]int, g.Len())
	next := make([]int, g.Len()) // position in out[n] to resume from

	for root := range color {
		if color[root] != white {
			continue
		}
		parent[root] = -1
		color[root] = gray
		stack := []int{root}

		for len(stack) > 0 {
			u := stack[len(stack)-1]
			if next[u] == len(g.out[u]) {
				color[u] = black
				stack = stack[:len(stack)-1]
				continue
			}
			v := g.arc[g.out[u][next[u]]].To
			next[u]++

			switch color[v] {
			case white:
				parent[v] = u
				color[v] = gray
				stack = append(stack, v)
			case gray:
				// back edge u -> v closes v ... u -> v
				cycle := []int{v}
				for cur := u; cur != v && cur != -1; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				reverse(cycle[1 : len(cycle)-1])
				return cycle
			}
		}
	}
	return nil
}

// Reachable reports whether a path of one or more arcs leads from one node
// to another.
func (g *Graph) Reachable(from, to int) bool {
	seen := make([]bool, g.Len())
	stack := []int{from}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, a := range g.out[u] {
			v := g.arc[a].To
			if v == to {
				return true
			}
			if !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}
	return false
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Earliest computes, for every node, the longest weighted distance from any
// node without incoming arcs (which start at 0): max over incoming arcs of
// earliest[from] + weight. order must be a topological order of g.
func (g *Graph) Earliest(order []int) []int {
	earliest := make([]int, g.Len())
	for _, n := range order {
		best := 0
		for _, a := range g.in[n] {
			arc := g.arc[a]
			if v := earliest[arc.From] + arc.Weight; v > best {
				best = v
			}
		}
		earliest[n] = best
	}
	return earliest
}

// Latest computes, for every node, min over outgoing arcs of
// latest[to] - weight. Nodes without outgoing arcs take terminal(n).
// order must be a topological order of g; it is walked in reverse.
func (g *Graph) Latest(order []int, terminal func(n int) int) []int {
	latest := make([]int, g.Len())
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if len(g.out[n]) == 0 {
			latest[n] = terminal(n)
			continue
		}
		first := true
		for _, a := range g.out[n] {
			arc := g.arc[a]
			v := latest[arc.To] - arc.Weight
			if first || v < latest[n] {
				latest[n] = v
				first = false
			}
		}
	}
	return latest
}
