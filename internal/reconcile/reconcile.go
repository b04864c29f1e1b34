// Package reconcile cross-checks the activity-on-node schedule against the
// activity-on-arrow network built from the same tasks. Both describe the same
// project, so every per-task timing has to agree.
package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/pert"
)

// Mismatch is one disagreement between the two engines.
type Mismatch struct {
	TaskID string `json:"taskId,omitempty"`
	Field  string `json:"field"`
	CPM    string `json:"cpm"`
	PERT   string `json:"pert"`
}

func (m Mismatch) String() string {
	if m.TaskID == "" {
		return fmt.Sprintf("%s: cpm=%s pert=%s", m.Field, m.CPM, m.PERT)
	}
	return fmt.Sprintf("task %s %s: cpm=%s pert=%s", m.TaskID, m.Field, m.CPM, m.PERT)
}

// Report is the outcome of Compare.
type Report struct {
	Tasks        int        `json:"tasks"`
	CPMDuration  int        `json:"cpmDuration"`
	PERTDuration int        `json:"pertDuration"`
	Mismatches   []Mismatch `json:"mismatches"`
}

// OK reports whether the engines agree on everything.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

func (r *Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%d tasks, duration %d: engines agree", r.Tasks, r.CPMDuration)
	}
	lines := make([]string, 0, len(r.Mismatches)+1)
	lines = append(lines, fmt.Sprintf("%d mismatches over %d tasks", len(r.Mismatches), r.Tasks))
	for _, m := range r.Mismatches {
		lines = append(lines, "  "+m.String())
	}
	return strings.Join(lines, "\n")
}

func (r *Report) add(taskID, field string, c, p any) {
	r.Mismatches = append(r.Mismatches, Mismatch{
		TaskID: taskID,
		Field:  field,
		CPM:    fmt.Sprint(c),
		PERT:   fmt.Sprint(p),
	})
}

// Compare checks project duration, every per-task metric and the extracted
// critical path of nw against res. Tasks are reported in the network's input
// order.
func Compare(res *cpm.Result, nw *pert.Network) *Report {
	rep := &Report{
		CPMDuration:  res.ProjectDuration,
		PERTDuration: nw.ProjectDuration,
		Mismatches:   []Mismatch{},
	}
	if res.ProjectDuration != nw.ProjectDuration {
		rep.add("", "projectDuration", res.ProjectDuration, nw.ProjectDuration)
	}

	byID := make(map[string]graph.TaskMetrics, len(res.TaskMetrics))
	for _, m := range res.TaskMetrics {
		byID[m.ID] = m
	}

	pm := nw.TaskMetrics()
	rep.Tasks = len(pm)
	seen := make(map[string]bool, len(pm))
	for _, p := range pm {
		seen[p.ID] = true
		c, ok := byID[p.ID]
		if !ok {
			rep.add(p.ID, "present", false, true)
			continue
		}
		compareMetrics(rep, c, p)
	}
	for _, c := range res.TaskMetrics {
		if !seen[c.ID] {
			rep.add(c.ID, "present", true, false)
		}
	}

	// Every task on the extracted path must be critical in the schedule.
	for _, e := range nw.CriticalPath {
		if e.Task == nil {
			continue
		}
		if c, ok := byID[e.Task.ID]; ok && !c.IsCritical {
			rep.add(e.Task.ID, "criticalPath", false, true)
		}
	}

	return rep
}

func compareMetrics(rep *Report, c, p graph.TaskMetrics) {
	ints := []struct {
		field string
		c, p  int
	}{
		{"duration", c.Duration, p.Duration},
		{"earliestStart", c.EarliestStart, p.EarliestStart},
		{"latestStart", c.LatestStart, p.LatestStart},
		{"earliestFinish", c.EarliestFinish, p.EarliestFinish},
		{"latestFinish", c.LatestFinish, p.LatestFinish},
		{"totalSlack", c.TotalSlack, p.TotalSlack},
		{"freeSlack", c.FreeSlack, p.FreeSlack},
	}
	for _, f := range ints {
		if f.c != f.p {
			rep.add(c.ID, f.field, strconv.Itoa(f.c), strconv.Itoa(f.p))
		}
	}
	if c.IsCritical != p.IsCritical {
		rep.add(c.ID, "isCritical", c.IsCritical, p.IsCritical)
	}
}
