package reporter

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/pert"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteScheduleCSV writes one row per scheduled task, in schedule order.
func WriteScheduleCSV(w io.Writer, res *cpm.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "name", "duration", "start", "end",
		"latest_start", "latest_finish", "total_slack", "free_slack",
		"dependencies", "critical",
	})
	for _, it := range res.Schedule {
		_ = cw.Write([]string{
			it.ID,
			it.Name,
			strconv.Itoa(it.Duration),
			strconv.Itoa(it.Start),
			strconv.Itoa(it.End),
			strconv.Itoa(it.LatestStart),
			strconv.Itoa(it.LatestFinish),
			strconv.Itoa(it.TotalSlack),
			strconv.Itoa(it.FreeSlack),
			strings.Join(it.Dependencies, ";"),
			strconv.FormatBool(it.IsCritical),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteNetworkCSV writes one row per network edge. Dummy edges have an empty
// task column.
func WriteNetworkCSV(w io.Writer, nw *pert.Network) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"from", "to", "task", "duration", "dummy", "slack", "critical"})
	for _, e := range nw.Edges {
		task := ""
		if e.Task != nil {
			task = e.Task.ID
		}
		_ = cw.Write([]string{
			strconv.Itoa(nw.Nodes[e.From].Number),
			strconv.Itoa(nw.Nodes[e.To].Number),
			task,
			strconv.Itoa(e.Duration),
			strconv.FormatBool(e.IsDummy),
			strconv.Itoa(e.Slack),
			strconv.FormatBool(e.IsCritical),
		})
	}
	cw.Flush()
	return cw.Error()
}
