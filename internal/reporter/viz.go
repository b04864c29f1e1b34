package reporter

import (
	"fmt"
	"io"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/pert"
	"github.com/joshharrison/pertloom/internal/ui"
)

// WriteDOT renders the PERT network as a Graphviz digraph. Events are
// circles numbered as in the tables, dummy edges are dashed and the critical
// path is drawn in red.
func WriteDOT(w io.Writer, nw *pert.Network) error {
	onPath := make(map[[2]pert.NodeID]bool, len(nw.CriticalPath))
	for _, e := range nw.CriticalPath {
		onPath[[2]pert.NodeID{e.From, e.To}] = true
	}

	fmt.Fprintln(w, "digraph pert {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=circle];")
	fmt.Fprintln(w)

	for _, n := range nw.Nodes {
		attrs := fmt.Sprintf(`label="%d\n%d/%d", tooltip=%q`, n.Number, n.EarliestTime, n.LatestTime, n.Label)
		if n.Kind == pert.KindStart || n.Kind == pert.KindEnd {
			attrs += ", shape=doublecircle"
		}
		if n.IsCritical {
			attrs += ", color=red"
		}
		fmt.Fprintf(w, "  n%d [%s];\n", n.Number, attrs)
	}

	fmt.Fprintln(w)

	for _, e := range nw.Edges {
		var attrs string
		if e.IsDummy {
			attrs = "style=dashed"
		} else {
			attrs = fmt.Sprintf("label=%q", fmt.Sprintf("%s (%d)", e.Task.ID, e.Duration))
		}
		if onPath[[2]pert.NodeID{e.From, e.To}] {
			attrs += ", color=red, penwidth=2"
		}
		fmt.Fprintf(w, "  n%d -> n%d [%s];\n", nw.Nodes[e.From].Number, nw.Nodes[e.To].Number, attrs)
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// PrintWaves draws the schedule as waves of tasks sharing an earliest start,
// each task followed by the tasks that depend on it.
func PrintWaves(w io.Writer, res *cpm.Result) {
	dependents := make(map[string][]string)
	byID := make(map[string]cpm.ScheduleItem, len(res.Schedule))
	for _, it := range res.Schedule {
		byID[it.ID] = it
	}
	for _, id := range res.TopoOrder {
		for _, dep := range byID[id].Dependencies {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range res.Waves {
		fmt.Fprintf(w, "%s 🌊 Wave %d  t=%d %s\n", ui.Cyan("──"), wave.Index+1, wave.Start, ui.Cyan("──────────────────────────"))
		for _, id := range wave.TaskIDs {
			it := byID[id]
			fmt.Fprintf(w, "  %s %s %s %s\n", ui.CriticalMarker(it.IsCritical), ui.TaskPrefix(id), it.Name,
				ui.Dim(fmt.Sprintf("(%d, slack %d)", it.Duration, it.TotalSlack)))
			for _, next := range dependents[id] {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(next))
			}
		}
		fmt.Fprintln(w)
	}
}
