package cpm

import "github.com/joshharrison/pertloom/internal/graph"

// Result holds the complete critical path analysis.
type Result struct {
	Schedule        []ScheduleItem      `json:"schedule"` // sorted by start, ties in input order
	CriticalTasks   []ScheduleItem      `json:"criticalTasks"`
	ProjectDuration int                 `json:"projectDuration"`
	TaskMetrics     []graph.TaskMetrics `json:"taskMetrics"` // input order
	CriticalPath    []string            `json:"criticalPath"` // critical task ids in topological order
	Waves           []Wave              `json:"waves"`
	TopoOrder       []string            `json:"topoOrder"`
}

// ScheduleItem holds the scheduling info for a single task.
type ScheduleItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Duration       int      `json:"duration"`
	Dependencies   []string `json:"dependencies"`
	Start          int      `json:"start"`
	End            int      `json:"end"`
	EarliestStart  int      `json:"earliestStart"`
	LatestStart    int      `json:"latestStart"`
	EarliestFinish int      `json:"earliestFinish"`
	LatestFinish   int      `json:"latestFinish"`
	TotalSlack     int      `json:"totalSlack"`
	FreeSlack      int      `json:"freeSlack"`
	IsCritical     bool     `json:"isCritical"`
	Color          string   `json:"color"`
	Wave           int      `json:"wave"` // which parallel wave this belongs to
}

// Wave represents a group of tasks sharing the same earliest start.
type Wave struct {
	Index      int      `json:"index"`
	Start      int      `json:"start"`
	TaskIDs    []string `json:"taskIds"`
	IsCritical bool     `json:"isCritical"` // true if wave contains critical tasks
}

// Item returns the schedule entry for a task id.
func (r *Result) Item(id string) (ScheduleItem, bool) {
	for _, it := range r.Schedule {
		if it.ID == id {
			return it, true
		}
	}
	return ScheduleItem{}, false
}
