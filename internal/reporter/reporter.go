package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/pert"
	"github.com/joshharrison/pertloom/internal/reconcile"
	"github.com/joshharrison/pertloom/internal/ui"
)

// Reporter renders analysis results for the terminal and for export.
// Either engine result may be nil when a command only ran one of them.
type Reporter struct {
	CPM     *cpm.Result
	Network *pert.Network
}

// New creates a new Reporter.
func New(res *cpm.Result, nw *pert.Network) *Reporter {
	return &Reporter{CPM: res, Network: nw}
}

// PrintSchedule writes the CPM header and the schedule table.
func (r *Reporter) PrintSchedule(w io.Writer) error {
	res := r.CPM
	fmt.Fprintf(w, "📅 %s\n", ui.BoldCyan("Project Schedule"))
	fmt.Fprintln(w, ui.Cyan("════════════════"))
	fmt.Fprintf(w, "Tasks:     %s\n", ui.Bold(len(res.Schedule)))
	fmt.Fprintf(w, "Duration:  %s\n", ui.Bold(res.ProjectDuration))
	if len(res.CriticalPath) > 0 {
		fmt.Fprintf(w, "⚡ Critical: %s (%d tasks)\n",
			ui.BoldYellow(strings.Join(res.CriticalPath, " → ")), len(res.CriticalPath))
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("", "ID", "Name", "Dur", "ES", "EF", "LS", "LF", "Slack", "Free", "Depends on")
	for _, it := range res.Schedule {
		_ = table.Append(
			ui.CriticalMarker(it.IsCritical),
			ui.TaskID(it.ID),
			truncate(it.Name, 40),
			strconv.Itoa(it.Duration),
			strconv.Itoa(it.EarliestStart),
			strconv.Itoa(it.EarliestFinish),
			strconv.Itoa(it.LatestStart),
			strconv.Itoa(it.LatestFinish),
			ui.Slack(it.TotalSlack),
			strconv.Itoa(it.FreeSlack),
			strings.Join(it.Dependencies, ", "),
		)
	}
	return table.Render()
}

// PrintNetwork writes the PERT event table, the activity table and the
// extracted critical path.
func (r *Reporter) PrintNetwork(w io.Writer) error {
	nw := r.Network
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("PERT Network"))
	fmt.Fprintln(w, ui.Cyan("════════════"))
	fmt.Fprintf(w, "Events:    %s (%d convergence)\n", ui.Bold(len(nw.Nodes)), len(nw.ConvergenceNodes()))
	fmt.Fprintf(w, "Edges:     %s\n", ui.Bold(len(nw.Edges)))
	fmt.Fprintf(w, "Duration:  %s\n", ui.Bold(nw.ProjectDuration))
	fmt.Fprintf(w, "⚡ Critical: %s\n\n", ui.BoldYellow(PathString(nw, nw.CriticalPath)))

	nodes := tablewriter.NewWriter(w)
	nodes.Header("", "#", "Event", "Earliest", "Latest", "Slack")
	for _, n := range nw.Nodes {
		_ = nodes.Append(
			ui.CriticalMarker(n.IsCritical),
			strconv.Itoa(n.Number),
			n.Label,
			strconv.Itoa(n.EarliestTime),
			strconv.Itoa(n.LatestTime),
			ui.Slack(n.Slack),
		)
	}
	if err := nodes.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	edges := tablewriter.NewWriter(w)
	edges.Header("", "From", "To", "Activity", "Dur", "Slack")
	for _, e := range nw.Edges {
		activity := ui.Dim("(dummy)")
		if e.Task != nil {
			activity = ui.TaskID(e.Task.ID)
			if e.Task.Name != "" {
				activity += " " + truncate(e.Task.Name, 30)
			}
		}
		_ = edges.Append(
			ui.CriticalMarker(e.IsCritical),
			strconv.Itoa(nw.Nodes[e.From].Number),
			strconv.Itoa(nw.Nodes[e.To].Number),
			activity,
			strconv.Itoa(e.Duration),
			ui.Slack(e.Slack),
		)
	}
	return edges.Render()
}

// PrintCheck writes the reconciliation verdict and any mismatches.
func PrintCheck(w io.Writer, rep *reconcile.Report) error {
	fmt.Fprintf(w, "🔍 %s  %s\n", ui.BoldCyan("CPM / PERT reconciliation"), ui.Verdict(rep.OK()))
	fmt.Fprintf(w, "Tasks:     %s\n", ui.Bold(rep.Tasks))
	fmt.Fprintf(w, "Duration:  cpm %s, pert %s\n", ui.Bold(rep.CPMDuration), ui.Bold(rep.PERTDuration))
	if rep.OK() {
		return nil
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("Task", "Field", "CPM", "PERT")
	for _, m := range rep.Mismatches {
		_ = table.Append(m.TaskID, m.Field, m.CPM, ui.Red(m.PERT))
	}
	return table.Render()
}

// PathString renders a PERT path as node numbers joined by the tasks on
// the real edges, e.g. "0 -A-> 1 -B-> 2 ··> 5".
func PathString(nw *pert.Network, path []pert.Edge) string {
	if len(path) == 0 {
		return "(none)"
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(nw.Nodes[path[0].From].Number))
	for _, e := range path {
		if e.Task != nil {
			fmt.Fprintf(&b, " -%s->", e.Task.ID)
		} else {
			b.WriteString(" ··>")
		}
		fmt.Fprintf(&b, " %d", nw.Nodes[e.To].Number)
	}
	return b.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
