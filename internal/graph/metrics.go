package graph

// TaskMetrics is the per-task timing row both schedulers report, so their
// results can be compared field by field.
type TaskMetrics struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Duration       int    `json:"duration"`
	EarliestStart  int    `json:"earliestStart"`
	LatestStart    int    `json:"latestStart"`
	EarliestFinish int    `json:"earliestFinish"`
	LatestFinish   int    `json:"latestFinish"`
	TotalSlack     int    `json:"totalSlack"`
	FreeSlack      int    `json:"freeSlack"`
	IsCritical     bool   `json:"isCritical"`
}
