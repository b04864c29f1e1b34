package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/pertloom/internal/claude"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/reporter"
	"github.com/joshharrison/pertloom/internal/ui"
)

func inferDepsCmd() *cobra.Command {
	var (
		flagApply    bool
		flagFromFile string
	)

	cmd := &cobra.Command{
		Use:   "infer-deps [tasks-file]",
		Short: "Use Claude to infer missing dependencies between tasks",
		Long: `Sends the task list to Claude and asks for missing dependency edges.
Edges naming unknown tasks, repeating known dependencies or closing a cycle
are skipped. By default runs in dry-run mode; use --apply to write the
accepted dependencies back to the task file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "tasks.json"
			if len(args) > 0 {
				path = args[0]
			}
			tasks, err := graph.LoadFile(path)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("no tasks found in %s", path)
			}
			g, err := graph.Build(tasks)
			if err != nil {
				return err
			}

			var result *claude.InferDepsResult
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				result, err = claude.ParseResult(string(data))
				if err != nil {
					return fmt.Errorf("parse from-file: %w", err)
				}
				fmt.Fprintf(os.Stderr, "📂 Loaded %s edges from %s\n", ui.Bold(len(result.Edges)), ui.Dim(flagFromFile))
			} else {
				fmt.Fprintf(os.Stderr, "🔍 Sending %s tasks to Claude for dependency inference...\n", ui.Bold(len(tasks)))

				client, err := claude.NewClient("", cfg.Claude.Model, cfg.Claude.MaxTokens)
				if err != nil {
					return err
				}
				result, err = client.InferDeps(cmd.Context(), claude.Summaries(tasks))
				if err != nil {
					return fmt.Errorf("infer deps: %w", err)
				}
			}

			accepted, skipped := claude.ValidateEdges(g, result.Edges)
			logger.Debug("validated inferred edges", "received", len(result.Edges), "accepted", len(accepted), "skipped", len(skipped))

			if outputFormat() == "json" {
				out := struct {
					Edges   []claude.DepEdge `json:"edges"`
					Skipped []claude.Skipped `json:"skipped"`
					Summary string           `json:"summary"`
				}{
					Edges:   accepted,
					Skipped: skipped,
					Summary: result.Summary,
				}
				if err := reporter.WriteJSON(os.Stdout, out); err != nil {
					return err
				}
			} else {
				printInferred(result, accepted, skipped)
			}

			if !flagApply {
				if outputFormat() != "json" {
					fmt.Printf("\n🎯 %s\n", ui.Yellow("Dry run. Use --apply to write these dependencies to "+path+"."))
				}
				return nil
			}
			if path == "-" {
				return fmt.Errorf("--apply needs a task file, not stdin")
			}

			updated := claude.ApplyEdges(tasks, accepted)
			if err := graph.WriteFile(path, updated); err != nil {
				return fmt.Errorf("write tasks: %w", err)
			}
			fmt.Fprintf(os.Stderr, "🏁 Applied %s dependencies to %s\n", ui.BoldGreen(len(accepted)), ui.Dim(path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write inferred deps to the task file (default: dry-run)")
	cmd.Flags().String("model", "", "Claude model to use (default "+cfg.Claude.Model+")")
	_ = v.BindPFlag("claude.model", cmd.Flags().Lookup("model"))
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load inferred deps from a JSON file instead of calling Claude")

	return cmd
}

func printInferred(result *claude.InferDepsResult, accepted []claude.DepEdge, skipped []claude.Skipped) {
	for _, s := range skipped {
		fmt.Printf("  %s %s blocked by %s: %s\n", ui.Yellow("⏭️  SKIP:"), s.Edge.BlockedID, s.Edge.BlockerID, s.Reason)
	}

	fmt.Printf("\n🔗 Inferred %s dependencies (%d from Claude, %d after validation):\n\n",
		ui.Bold(len(accepted)), len(result.Edges), len(accepted))
	for _, e := range accepted {
		line := fmt.Sprintf("  %s %s blocked by %s", ui.Cyan("→"), ui.TaskID(e.BlockedID), ui.TaskID(e.BlockerID))
		if e.Reason != "" {
			line += "  " + ui.Dim("("+e.Reason+")")
		}
		fmt.Println(line)
	}
	if result.Summary != "" {
		fmt.Printf("\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
	}
}
