package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/logging"
)

func diamond() []graph.Task {
	return []graph.Task{
		{ID: "A", Name: "Design", Duration: 2},
		{ID: "B", Name: "Build", Duration: 3, Dependencies: []string{"A"}},
		{ID: "C", Name: "Docs", Duration: 1, Dependencies: []string{"A"}},
		{ID: "D", Name: "Ship", Duration: 2, Dependencies: []string{"B", "C"}},
	}
}

func TestRun_Diamond(t *testing.T) {
	var logs bytes.Buffer
	res, err := Run(context.Background(), diamond(), logging.New(&logs, logging.LevelDebug, logging.FormatText))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.CPM.ProjectDuration != 7 || res.Network().ProjectDuration != 7 {
		t.Errorf("expected duration 7 from both engines, got %d / %d",
			res.CPM.ProjectDuration, res.Network().ProjectDuration)
	}
	if !res.Reconciliation.OK() {
		t.Errorf("expected engines to agree:\n%s", res.Reconciliation)
	}
	if len(res.PERT.TaskMetrics) != 4 {
		t.Errorf("expected PERT task metrics for 4 tasks, got %d", len(res.PERT.TaskMetrics))
	}
	if !strings.Contains(logs.String(), "analysis complete") {
		t.Errorf("expected debug log line, got %q", logs.String())
	}
}

func TestRun_JSONShape(t *testing.T) {
	res, err := Run(context.Background(), diamond(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out struct {
		CPM  map[string]json.RawMessage `json:"cpm"`
		PERT map[string]json.RawMessage `json:"pert"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"schedule", "criticalTasks", "projectDuration", "taskMetrics"} {
		if _, ok := out.CPM[k]; !ok {
			t.Errorf("cpm output missing %q", k)
		}
	}
	for _, k := range []string{"nodes", "edges", "criticalPath", "projectDuration", "taskMetrics"} {
		if _, ok := out.PERT[k]; !ok {
			t.Errorf("pert output missing %q", k)
		}
	}
}

func TestRun_ValidationError(t *testing.T) {
	res, err := Run(context.Background(), []graph.Task{
		{ID: "A", Duration: 1, Dependencies: []string{"B"}},
		{ID: "B", Duration: 1, Dependencies: []string{"A"}},
	}, nil)
	if res != nil {
		t.Error("expected no partial result")
	}
	if !errors.Is(err, graph.ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, diamond(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunGraph_Reused(t *testing.T) {
	g, err := graph.Build(diamond())
	if err != nil {
		t.Fatal(err)
	}
	first, err := RunGraph(context.Background(), g, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := RunGraph(context.Background(), g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.CPM == second.CPM || first.Network() == second.Network() {
		t.Error("expected independent results for each run")
	}
	if first.CPM.ProjectDuration != second.CPM.ProjectDuration {
		t.Error("expected identical durations across runs")
	}
}
