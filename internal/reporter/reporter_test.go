package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/pert"
	"github.com/joshharrison/pertloom/internal/reconcile"
)

func makeTasks() []graph.Task {
	return []graph.Task{
		{ID: "a", Name: "Task A", Duration: 2},
		{ID: "b", Name: "Task B", Duration: 3, Dependencies: []string{"a"}},
		{ID: "c", Name: "Task C", Duration: 1, Dependencies: []string{"a"}},
		{ID: "d", Name: "Task D", Duration: 2, Dependencies: []string{"b", "c"}},
	}
}

func makeReporter(t *testing.T) *Reporter {
	t.Helper()
	res, err := cpm.Schedule(makeTasks())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	nw, err := pert.FromTasks(makeTasks())
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	return New(res, nw)
}

func TestPrintSchedule(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := rpt.PrintSchedule(&buf); err != nil {
		t.Fatalf("PrintSchedule: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Project Schedule") {
		t.Error("expected header in output")
	}
	if !strings.Contains(out, "a → b → d") {
		t.Errorf("expected critical path a → b → d, got:\n%s", out)
	}
	for _, name := range []string{"Task A", "Task B", "Task C", "Task D"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %q in schedule table", name)
		}
	}
}

func TestPrintNetwork(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := rpt.PrintNetwork(&buf); err != nil {
		t.Fatalf("PrintNetwork: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "join d") {
		t.Error("expected convergence node for d")
	}
	if !strings.Contains(out, "(dummy)") {
		t.Error("expected dummy edges in edge table")
	}
	if !strings.Contains(out, "0 -a-> 1 -b-> 2 ··> 5 -d-> 4 ··> 6") {
		t.Errorf("expected critical path rendering, got:\n%s", out)
	}
}

func TestPathString_Empty(t *testing.T) {
	nw, err := pert.FromTasks(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := PathString(nw, nw.CriticalPath); got != "(none)" {
		t.Errorf("expected (none), got %q", got)
	}
}

func TestPrintCheck(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := PrintCheck(&buf, reconcile.Compare(rpt.CPM, rpt.Network)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "agree") {
		t.Errorf("expected agreement verdict, got:\n%s", buf.String())
	}

	rpt.CPM.TaskMetrics[2].FreeSlack = 9
	buf.Reset()
	if err := PrintCheck(&buf, reconcile.Compare(rpt.CPM, rpt.Network)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "mismatch") || !strings.Contains(out, "freeSlack") {
		t.Errorf("expected mismatch table, got:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, rpt.CPM); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed["projectDuration"] != float64(7) {
		t.Errorf("expected projectDuration 7, got %v", parsed["projectDuration"])
	}
	tasks, ok := parsed["criticalTasks"].([]interface{})
	if !ok || len(tasks) != 3 {
		t.Errorf("expected 3 critical tasks, got %v", parsed["criticalTasks"])
	}
}

func TestWriteScheduleCSV(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := WriteScheduleCSV(&buf, rpt.CPM); err != nil {
		t.Fatalf("WriteScheduleCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][10] != "critical" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	last := rows[4]
	if last[0] != "d" || last[9] != "b;c" || last[10] != "true" {
		t.Errorf("unexpected row for d: %v", last)
	}
}

func TestWriteNetworkCSV(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := WriteNetworkCSV(&buf, rpt.Network); err != nil {
		t.Fatalf("WriteNetworkCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != len(rpt.Network.Edges)+1 {
		t.Fatalf("expected one row per edge, got %d", len(rows)-1)
	}

	dummies := 0
	for _, r := range rows[1:] {
		if r[4] == "true" {
			dummies++
			if r[2] != "" {
				t.Errorf("dummy edge with task column %q", r[2])
			}
		}
	}
	if dummies != 3 {
		t.Errorf("expected 3 dummy rows, got %d", dummies)
	}
}

func TestWriteDOT(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	if err := WriteDOT(&buf, rpt.Network); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph pert {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("expected a digraph, got:\n%s", out)
	}
	if !strings.Contains(out, `n1 -> n3 [label="c (1)"];`) {
		t.Errorf("expected non-critical edge for c, got:\n%s", out)
	}
	if !strings.Contains(out, `n0 -> n1 [label="a (2)", color=red, penwidth=2];`) {
		t.Errorf("expected critical edge for a, got:\n%s", out)
	}
	if !strings.Contains(out, "style=dashed") {
		t.Error("expected dashed dummy edges")
	}
}

func TestWriteDOT_EscapesTaskIDs(t *testing.T) {
	nw, err := pert.FromTasks([]graph.Task{{ID: `say "hi"\x`, Duration: 1}})
	if err != nil {
		t.Fatalf("network: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDOT(&buf, nw); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	if !strings.Contains(buf.String(), `label="say \"hi\"\\x (1)"`) {
		t.Errorf("expected quotes and backslashes escaped, got:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged, got %q", got)
	}
	got := truncate("Tâche de déploiement", 8)
	if got != "Tâche..." {
		t.Errorf("expected %q, got %q", "Tâche...", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated name is not valid UTF-8: %q", got)
	}
}

func TestPrintWaves(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	PrintWaves(&buf, rpt.CPM)
	out := buf.String()

	if strings.Count(out, "Wave") != 3 {
		t.Errorf("expected 3 waves (t=0, 2, 5), got:\n%s", out)
	}
	if !strings.Contains(out, "└──→") {
		t.Error("expected dependent arrows")
	}
}
