// Package analysis runs the CPM scheduler and the PERT network builder over
// one validated task graph and reconciles their answers.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/logging"
	"github.com/joshharrison/pertloom/internal/pert"
	"github.com/joshharrison/pertloom/internal/reconcile"
)

// Result is everything one run produces.
type Result struct {
	CPM            *cpm.Result       `json:"cpm"`
	PERT           pert.Output       `json:"pert"`
	Reconciliation *reconcile.Report `json:"reconciliation"`
}

// Network returns the PERT network behind the result.
func (r *Result) Network() *pert.Network { return r.PERT.Network }

// Run validates tasks and analyses them. Validation errors are returned as
// *graph.Error and no partial result is produced.
func Run(ctx context.Context, tasks []graph.Task, logger *slog.Logger) (*Result, error) {
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}
	return RunGraph(ctx, g, logger)
}

// RunGraph analyses an already validated graph. The two engines only read g,
// so they run concurrently.
func RunGraph(ctx context.Context, g *graph.TaskGraph, logger *slog.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	started := time.Now()

	var (
		res *cpm.Result
		nw  *pert.Network
	)
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		res, err = cpm.Analyze(g)
		if err != nil {
			return fmt.Errorf("cpm: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		nw, err = pert.Build(g)
		if err != nil {
			return fmt.Errorf("pert: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := reconcile.Compare(res, nw)
	logger.Debug("analysis complete",
		"tasks", g.TaskCount(),
		"duration", res.ProjectDuration,
		"nodes", len(nw.Nodes),
		"edges", len(nw.Edges),
		"critical", len(res.CriticalTasks),
		"elapsed", time.Since(started))
	if !rep.OK() {
		logger.Warn("engines disagree", "mismatches", len(rep.Mismatches))
	}

	return &Result{
		CPM:            res,
		PERT:           nw.Output(),
		Reconciliation: rep,
	}, nil
}
