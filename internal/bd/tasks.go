package bd

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/pertloom/internal/graph"
)

// depFetchLimit bounds concurrent bd dep list invocations.
const depFetchLimit = 8

// LoadTasks lists open issues, fetches their dependencies and converts them
// into tasks. A failed dependency lookup is logged and leaves that issue's
// edges to whatever its neighbours report.
func (c *Client) LoadTasks(ctx context.Context, logger *slog.Logger, unitMinutes int) ([]graph.Task, error) {
	raw, err := c.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(depFetchLimit)
	for i := range raw {
		i := i
		eg.Go(func() error {
			blocks, blockedBy, err := c.Deps(ectx, raw[i].ID)
			if err != nil {
				if ectx.Err() != nil {
					return ectx.Err()
				}
				logger.Warn("failed to fetch deps", "task", raw[i].ID, "error", err)
				return nil
			}
			raw[i].Blocks = blocks
			raw[i].BlockedBy = blockedBy
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("loaded issues from bd", "count", len(raw))
	return ToTasks(raw, unitMinutes), nil
}

// ToTasks converts bd issues into tasks. Duration is the estimate in units of
// unitMinutes, rounded up, or 1 when an issue has no estimate. Dependencies
// come from both BlockedBy and the Blocks lists of other issues, restricted to
// issues present in raw, so closed blockers do not dangle.
func ToTasks(raw []RawTask, unitMinutes int) []graph.Task {
	if unitMinutes <= 0 {
		unitMinutes = 1
	}

	known := make(map[string]int, len(raw))
	for i, rt := range raw {
		known[rt.ID] = i
	}

	deps := make([][]string, len(raw))
	seen := make([]map[string]bool, len(raw))
	addDep := func(task int, blocker string) {
		if _, ok := known[blocker]; !ok || raw[task].ID == blocker {
			return
		}
		if seen[task] == nil {
			seen[task] = make(map[string]bool)
		}
		if seen[task][blocker] {
			return
		}
		seen[task][blocker] = true
		deps[task] = append(deps[task], blocker)
	}

	for i, rt := range raw {
		for _, blocker := range rt.BlockedBy {
			addDep(i, blocker)
		}
	}
	for _, rt := range raw {
		for _, blocked := range rt.Blocks {
			if j, ok := known[blocked]; ok {
				addDep(j, rt.ID)
			}
		}
	}

	tasks := make([]graph.Task, len(raw))
	for i, rt := range raw {
		dur := 1
		if rt.Estimate > 0 {
			dur = (rt.Estimate + unitMinutes - 1) / unitMinutes
		}
		tasks[i] = graph.Task{
			ID:           rt.ID,
			Name:         rt.Title,
			Duration:     dur,
			Dependencies: deps[i],
		}
		if tasks[i].Dependencies == nil {
			tasks[i].Dependencies = []string{}
		}
	}
	return tasks
}
