package reconcile

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/pert"
)

func runBoth(t *testing.T, tasks []graph.Task) (*cpm.Result, *pert.Network) {
	t.Helper()
	g, err := graph.Build(tasks)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	res, err := cpm.Analyze(g)
	if err != nil {
		t.Fatalf("cpm: %v", err)
	}
	nw, err := pert.Build(g)
	if err != nil {
		t.Fatalf("pert: %v", err)
	}
	return res, nw
}

// randomTasks returns n tasks where each task may depend on any task created
// before it, shuffled so input order differs from dependency order.
func randomTasks(rng *rand.Rand, n int) []graph.Task {
	tasks := make([]graph.Task, n)
	for i := range tasks {
		tasks[i] = graph.Task{
			ID:       fmt.Sprintf("T%d", i),
			Duration: rng.Intn(10),
		}
		for j := 0; j < i; j++ {
			if rng.Intn(4) == 0 {
				tasks[i].Dependencies = append(tasks[i].Dependencies, tasks[j].ID)
			}
		}
	}
	rng.Shuffle(n, func(a, b int) { tasks[a], tasks[b] = tasks[b], tasks[a] })
	return tasks
}

func TestCompare_Diamond(t *testing.T) {
	res, nw := runBoth(t, []graph.Task{
		{ID: "A", Duration: 2},
		{ID: "B", Duration: 3, Dependencies: []string{"A"}},
		{ID: "C", Duration: 1, Dependencies: []string{"A"}},
		{ID: "D", Duration: 2, Dependencies: []string{"B", "C"}},
	})

	rep := Compare(res, nw)
	if !rep.OK() {
		t.Fatalf("expected agreement, got:\n%s", rep)
	}
	if rep.Tasks != 4 || rep.CPMDuration != 7 || rep.PERTDuration != 7 {
		t.Errorf("unexpected report header: %+v", rep)
	}
	if !strings.Contains(rep.String(), "engines agree") {
		t.Errorf("unexpected summary: %s", rep)
	}
}

func TestCompare_ReportsMismatches(t *testing.T) {
	res, nw := runBoth(t, []graph.Task{
		{ID: "A", Duration: 4},
		{ID: "B", Duration: 2, Dependencies: []string{"A"}},
	})

	res.ProjectDuration = 5
	res.TaskMetrics[1].FreeSlack = 3
	res.TaskMetrics[0].IsCritical = false

	rep := Compare(res, nw)
	if rep.OK() {
		t.Fatal("expected mismatches")
	}

	want := map[string]bool{
		"/projectDuration": false,
		"B/freeSlack":      false,
		"A/isCritical":     false,
		"A/criticalPath":   false,
	}
	for _, m := range rep.Mismatches {
		key := m.TaskID + "/" + m.Field
		if _, ok := want[key]; !ok {
			t.Errorf("unexpected mismatch %s", m)
			continue
		}
		want[key] = true
	}
	for k, found := range want {
		if !found {
			t.Errorf("expected mismatch %s", k)
		}
	}
	if !strings.Contains(rep.String(), "task B freeSlack: cpm=3 pert=0") {
		t.Errorf("unexpected report text:\n%s", rep)
	}
}

func TestCompare_MissingTask(t *testing.T) {
	res, nw := runBoth(t, []graph.Task{{ID: "A", Duration: 1}})
	res.TaskMetrics = append(res.TaskMetrics, graph.TaskMetrics{ID: "ghost"})

	rep := Compare(res, nw)
	if len(rep.Mismatches) != 1 || rep.Mismatches[0].TaskID != "ghost" || rep.Mismatches[0].Field != "present" {
		t.Errorf("expected a single presence mismatch, got %+v", rep.Mismatches)
	}
}

// TestEnginesAgree_RandomDAGs checks the cross-engine properties over a fixed
// set of generated graphs.
func TestEnginesAgree_RandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		tasks := randomTasks(rng, 1+rng.Intn(30))
		res, nw := runBoth(t, tasks)

		if rep := Compare(res, nw); !rep.OK() {
			t.Fatalf("run %d: engines disagree:\n%s", run, rep)
		}

		byID := make(map[string]graph.TaskMetrics)
		for _, m := range res.TaskMetrics {
			byID[m.ID] = m
			if m.TotalSlack < 0 {
				t.Errorf("run %d: %s has negative slack %d", run, m.ID, m.TotalSlack)
			}
			if m.FreeSlack < 0 || m.FreeSlack > m.TotalSlack {
				t.Errorf("run %d: %s free slack %d outside [0, %d]", run, m.ID, m.FreeSlack, m.TotalSlack)
			}
			if m.EarliestFinish > res.ProjectDuration {
				t.Errorf("run %d: %s finishes after the project", run, m.ID)
			}
		}

		joins := 0
		for _, task := range tasks {
			m := byID[task.ID]
			for _, dep := range task.Dependencies {
				if m.EarliestStart < byID[dep].EarliestFinish {
					t.Errorf("run %d: %s starts before %s finishes", run, task.ID, dep)
				}
			}
			if len(task.Dependencies) > 1 {
				joins++
			}
		}
		if got := len(nw.ConvergenceNodes()); got != joins {
			t.Errorf("run %d: expected %d convergence nodes, got %d", run, joins, got)
		}

		if nw.Nodes[nw.Start].Number != 0 || nw.Nodes[nw.End].Number != len(nw.Nodes)-1 {
			t.Errorf("run %d: start/end numbering broken", run)
		}

		path := nw.CriticalPath
		if len(path) == 0 || path[0].From != nw.Start || path[len(path)-1].To != nw.End {
			t.Fatalf("run %d: critical path does not join start to end", run)
		}
		total := 0
		for i, e := range path {
			if e.Slack != 0 {
				t.Errorf("run %d: critical edge %d has slack %d", run, i, e.Slack)
			}
			if i > 0 && path[i-1].To != e.From {
				t.Errorf("run %d: critical path broken at edge %d", run, i)
			}
			total += e.Duration
		}
		if total != nw.ProjectDuration {
			t.Errorf("run %d: critical path length %d, project duration %d", run, total, nw.ProjectDuration)
		}
	}
}
