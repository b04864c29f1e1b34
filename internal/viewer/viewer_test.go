package viewer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joshharrison/pertloom/internal/logging"
)

const diamondJSON = `[
  {"id": "A", "name": "Design", "duration": 2},
  {"id": "B", "name": "Build", "duration": 3, "dependencies": ["A"]},
  {"id": "C", "name": "Docs", "duration": 1, "dependencies": ["A"]},
  {"id": "D", "name": "Ship", "duration": 2, "dependencies": ["B", "C"]}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(Handler(logging.Nop()))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /analyze: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAnalyze_Diamond(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, diamondJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var out struct {
		CPM struct {
			ProjectDuration int `json:"projectDuration"`
		} `json:"cpm"`
		PERT struct {
			ProjectDuration int               `json:"projectDuration"`
			Nodes           []json.RawMessage `json:"nodes"`
			TaskMetrics     []json.RawMessage `json:"taskMetrics"`
		} `json:"pert"`
		Reconciliation struct {
			Mismatches []json.RawMessage `json:"mismatches"`
		} `json:"reconciliation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.CPM.ProjectDuration != 7 || out.PERT.ProjectDuration != 7 {
		t.Errorf("expected duration 7, got %d / %d", out.CPM.ProjectDuration, out.PERT.ProjectDuration)
	}
	if len(out.PERT.Nodes) != 7 {
		t.Errorf("expected 7 nodes, got %d", len(out.PERT.Nodes))
	}
	if len(out.PERT.TaskMetrics) != 4 {
		t.Errorf("expected 4 task metrics, got %d", len(out.PERT.TaskMetrics))
	}
	if len(out.Reconciliation.Mismatches) != 0 {
		t.Errorf("expected no mismatches, got %d", len(out.Reconciliation.Mismatches))
	}
}

func TestAnalyze_Cycle(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, `{"tasks": [
		{"id": "A", "duration": 1, "dependencies": ["B"]},
		{"id": "B", "duration": 1, "dependencies": ["A"]}
	]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Kind != "cyclic dependency" {
		t.Errorf("expected cyclic dependency kind, got %q", er.Kind)
	}
	if len(er.Cycle) != 3 {
		t.Errorf("expected closed cycle of 3 ids, got %v", er.Cycle)
	}
}

func TestAnalyze_BadInput(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		kind string
	}{
		{"malformed", `{not json`, ""},
		{"fractional duration", `[{"id": "A", "duration": 1.5}]`, "invalid duration"},
		{"string duration", `[{"id": "A", "duration": "2"}]`, "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var er ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if er.Kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, er.Kind)
			}
		})
	}
}

func TestAnalyze_GetLast(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/analyze")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any analysis, got %d", resp.StatusCode)
	}

	post(t, ts, diamondJSON)

	resp, err = http.Get(ts.URL + "/analyze")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 after analysis, got %d", resp.StatusCode)
	}
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/analyze", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, "127.0.0.1:0", logging.Nop(), func(addr string) { addrCh <- addr })
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("Serve failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	if !IsPortOpen(addr) {
		t.Errorf("expected %s to accept connections", addr)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
