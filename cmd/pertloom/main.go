package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshharrison/pertloom/internal/config"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/logging"
	"github.com/joshharrison/pertloom/internal/reporter"
	"github.com/joshharrison/pertloom/internal/ui"
)

var (
	flagConfig  string
	flagVerbose bool
	flagJSON    bool
	flagNoColor bool
	flagFormat  string
	flagFilter  string
	flagOutput  string
)

var (
	v      = viper.New()
	cfg    = config.Default()
	logger = logging.Nop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pertloom",
		Short: "Critical path and PERT analysis for task graphs",
		Long: `Pertloom reads a list of tasks with durations and dependencies, schedules
them with the critical path method, builds the equivalent PERT event network
and checks that both agree on every task's timing.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintLogo(cmd.ErrOrStderr())
			return cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default ./pertloom.yaml or "+config.ConfigDir()+"/pertloom.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output (same as --format json)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "Output format (table, json, csv)")
	_ = v.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(networkCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(inferDepsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup reads configuration and prepares colours and logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Init(v, flagConfig); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	ui.SetEnabled(cfg.Output.Color && !flagNoColor)

	level := cfg.Log.Level
	if flagVerbose {
		level = logging.LevelDebug
	}
	logger = logging.New(os.Stderr, level, cfg.Log.Format)
	slog.SetDefault(logger)

	if f := v.ConfigFileUsed(); f != "" {
		logger.Debug("loaded config", "file", f)
	}
	return nil
}

// outputFormat resolves the effective output format for this invocation.
func outputFormat() string {
	if flagJSON {
		return "json"
	}
	return strings.ToLower(cfg.Output.Format)
}

// loadTasks reads the task file named by args, defaulting to tasks.json, and
// applies --filter when given.
func loadTasks(args []string) ([]graph.Task, error) {
	path := "tasks.json"
	if len(args) > 0 {
		path = args[0]
	}

	tasks, err := graph.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in %s", path)
	}
	logger.Debug("loaded tasks", "file", path, "count", len(tasks))

	if flagFilter == "" {
		return tasks, nil
	}
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}
	g, err = applyFilter(g, flagFilter)
	if err != nil {
		return nil, fmt.Errorf("apply filter: %w", err)
	}
	if g.TaskCount() == 0 {
		return nil, fmt.Errorf("filter %q matched no tasks", flagFilter)
	}
	return g.Tasks, nil
}

func applyFilter(g *graph.TaskGraph, filter string) (*graph.TaskGraph, error) {
	// Supported formats: "id=A,B", "duration<=N", "duration>=N", "duration=N", "name~X"
	switch {
	case strings.HasPrefix(filter, "id="):
		ids := make(map[string]bool)
		for _, id := range strings.Split(strings.TrimPrefix(filter, "id="), ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids[id] = true
			}
		}
		return g.Filter(func(t graph.Task) bool { return ids[t.ID] })
	case strings.HasPrefix(filter, "name~"):
		sub := strings.ToLower(strings.TrimPrefix(filter, "name~"))
		return g.Filter(func(t graph.Task) bool {
			return strings.Contains(strings.ToLower(t.Name), sub)
		})
	case strings.HasPrefix(filter, "duration"):
		return filterByDuration(g, strings.TrimPrefix(filter, "duration"))
	}
	return nil, fmt.Errorf("unsupported filter: %s (use id=A,B, duration<=N, duration>=N, duration=N or name~X)", filter)
}

func filterByDuration(g *graph.TaskGraph, filter string) (*graph.TaskGraph, error) {
	for _, op := range []string{"<=", ">=", "="} {
		if !strings.HasPrefix(filter, op) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(filter, op))
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %w", err)
		}
		switch op {
		case "<=":
			return g.Filter(func(t graph.Task) bool { return t.Duration <= n })
		case ">=":
			return g.Filter(func(t graph.Task) bool { return t.Duration >= n })
		default:
			return g.Filter(func(t graph.Task) bool { return t.Duration == n })
		}
	}
	return nil, fmt.Errorf("invalid duration filter: duration%s", filter)
}

// openOutput returns stdout, or the --output file when set.
func openOutput() (io.Writer, func() error, error) {
	if flagOutput == "" || flagOutput == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(flagOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

// emit writes v as JSON or runs the table or csv printer, depending on the
// output format.
func emit(v any, table, csv func(io.Writer) error) error {
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}

	switch format := outputFormat(); format {
	case "json":
		err = reporter.WriteJSON(w, v)
	case "csv":
		err = csv(w)
	case "table", "":
		err = table(w)
	default:
		err = fmt.Errorf("unsupported format %q (use %s)", format, strings.Join(config.ValidOutputFormats(), ", "))
	}

	err = closeWith(err, closeFn)
	if err == nil && flagOutput != "" && flagOutput != "-" {
		fmt.Fprintf(os.Stderr, "💾 Saved to %s\n", ui.Dim(flagOutput))
	}
	return err
}

// closeWith runs closeFn and returns err, or the close error when err is nil.
func closeWith(err error, closeFn func() error) error {
	if cerr := closeFn(); err == nil {
		return cerr
	}
	return err
}
