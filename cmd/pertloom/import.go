package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/pertloom/internal/bd"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/reporter"
	"github.com/joshharrison/pertloom/internal/ui"
)

func importCmd() *cobra.Command {
	var flagUnit int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Export open issues from a Beads database as a task file",
		Long: `Lists open issues with the bd CLI, collects their blocking relations and
writes them as a task list. Estimates (minutes) become durations in units of
--unit minutes, rounded up; issues without an estimate get duration 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := bd.NewClient(cfg.BD.Bin, cfg.BD.DB)

			tasks, err := client.LoadTasks(cmd.Context(), logger, flagUnit)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("no open tasks found")
			}

			// catch dependency cycles recorded in bd before writing
			if _, err := graph.Build(tasks); err != nil {
				return fmt.Errorf("imported tasks are invalid: %w", err)
			}

			if flagOutput == "" || flagOutput == "-" {
				return reporter.WriteJSON(os.Stdout, tasks)
			}
			if err := graph.WriteFile(flagOutput, tasks); err != nil {
				return fmt.Errorf("write tasks: %w", err)
			}
			fmt.Fprintf(os.Stderr, "📥 Imported %s tasks to %s\n", ui.Bold(len(tasks)), ui.Dim(flagOutput))
			return nil
		},
	}

	cmd.Flags().String("db", "", "Beads database path")
	cmd.Flags().String("bd", "", "bd binary (default bd on PATH)")
	_ = v.BindPFlag("bd.db", cmd.Flags().Lookup("db"))
	_ = v.BindPFlag("bd.bin", cmd.Flags().Lookup("bd"))
	cmd.Flags().IntVar(&flagUnit, "unit", 60, "Minutes per duration unit")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Task file to write (.json, .yaml); stdout when empty")

	return cmd
}
