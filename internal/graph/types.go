package graph

// Task is a single unit of work with a duration and the ids of the tasks
// that must finish before it can start.
type Task struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Duration     int      `json:"duration" yaml:"duration"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

// TaskGraph is a validated, acyclic task list indexed by position.
// Index i always refers to Tasks[i], which keeps input order.
type TaskGraph struct {
	Tasks  []Task
	Index  map[string]int // task id -> position
	Preds  [][]int        // task -> its dependencies, in listed order
	Succs  [][]int        // task -> tasks depending on it, in input order
	Roots  []string       // tasks with no dependencies
	Leaves []string       // tasks nothing depends on
	Order  []int          // deterministic topological order
}
