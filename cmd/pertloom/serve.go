package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/pertloom/internal/ui"
	"github.com/joshharrison/pertloom/internal/viewer"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses over HTTP",
		Long: `Starts an HTTP server that accepts a task list on POST /analyze and answers
with the CPM schedule, PERT network and reconciliation report. GET /analyze
returns the most recent result. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Serve.Addr
			if viewer.IsPortOpen(addr) {
				return fmt.Errorf("%s is already in use", addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := viewer.Serve(ctx, addr, logger, func(bound string) {
				fmt.Fprintf(os.Stderr, "🌐 Listening on %s\n", ui.BoldCyan("http://"+bound))
				fmt.Fprintf(os.Stderr, "   %s\n", ui.Dim("POST a task list to /analyze, Ctrl+C to stop"))
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "\n👋 %s\n", ui.Dim("Server stopped"))
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default "+cfg.Serve.Addr+")")
	_ = v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
