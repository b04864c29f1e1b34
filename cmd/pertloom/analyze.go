package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/pertloom/internal/analysis"
	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/pert"
	"github.com/joshharrison/pertloom/internal/reporter"
	"github.com/joshharrison/pertloom/internal/ui"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [tasks-file]",
		Short: "Compute the CPM schedule, slack and critical path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(args)
			if err != nil {
				return err
			}

			result, err := cpm.Schedule(tasks)
			if err != nil {
				return fmt.Errorf("CPM analysis: %w", err)
			}
			logger.Debug("scheduled", "tasks", len(result.Schedule), "duration", result.ProjectDuration)

			return emit(result,
				func(w io.Writer) error { return reporter.New(result, nil).PrintSchedule(w) },
				func(w io.Writer) error { return reporter.WriteScheduleCSV(w, result) },
			)
		},
	}

	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks (id=A,B, duration<=N, duration>=N, duration=N, name~X)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write output to file instead of stdout")

	return cmd
}

func networkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network [tasks-file]",
		Short: "Build the PERT event network and its critical path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(args)
			if err != nil {
				return err
			}

			nw, err := pert.FromTasks(tasks)
			if err != nil {
				return fmt.Errorf("PERT network: %w", err)
			}
			logger.Debug("network built", "nodes", len(nw.Nodes), "edges", len(nw.Edges))

			return emit(nw.Output(),
				func(w io.Writer) error { return reporter.New(nil, nw).PrintNetwork(w) },
				func(w io.Writer) error { return reporter.WriteNetworkCSV(w, nw) },
			)
		},
	}

	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks (id=A,B, duration<=N, duration>=N, duration=N, name~X)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write output to file instead of stdout")

	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [tasks-file]",
		Short: "Run both engines and verify they agree",
		Long: `Schedules the tasks with CPM, builds the PERT network and compares every
task's earliest and latest times, slack and criticality between the two.
Exits non-zero when they disagree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(args)
			if err != nil {
				return err
			}

			res, err := analysis.Run(cmd.Context(), tasks, logger)
			if err != nil {
				return err
			}

			if outputFormat() == "json" {
				if err := reporter.WriteJSON(os.Stdout, res); err != nil {
					return err
				}
			} else if err := reporter.PrintCheck(os.Stdout, res.Reconciliation); err != nil {
				return err
			}

			if !res.Reconciliation.OK() {
				return fmt.Errorf("engines disagree on %d values", len(res.Reconciliation.Mismatches))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks (id=A,B, duration<=N, duration>=N, duration=N, name~X)")

	return cmd
}

func vizCmd() *cobra.Command {
	var flagStyle string

	cmd := &cobra.Command{
		Use:   "viz [tasks-file]",
		Short: "Print the schedule as ASCII waves or the PERT network as Graphviz DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(args)
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput()
			if err != nil {
				return err
			}
			return closeWith(renderViz(w, tasks, flagStyle), closeFn)
		},
	}

	cmd.Flags().StringVar(&flagStyle, "style", "ascii", "Rendering (ascii, dot)")
	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks (id=A,B, duration<=N, duration>=N, duration=N, name~X)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write output to file instead of stdout")

	return cmd
}

func renderViz(w io.Writer, tasks []graph.Task, style string) error {
	switch style {
	case "dot":
		nw, err := pert.FromTasks(tasks)
		if err != nil {
			return fmt.Errorf("PERT network: %w", err)
		}
		return reporter.WriteDOT(w, nw)
	case "ascii", "":
		result, err := cpm.Schedule(tasks)
		if err != nil {
			return fmt.Errorf("CPM analysis: %w", err)
		}
		reporter.PrintWaves(w, result)
		_, err = fmt.Fprintf(w, "\n⏱️  Project duration: %s\n", ui.Bold(result.ProjectDuration))
		return err
	default:
		return fmt.Errorf("unsupported style %q (use ascii or dot)", style)
	}
}
