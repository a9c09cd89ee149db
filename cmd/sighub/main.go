package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sighub",
		Short: "Signal/slot broadcast hub",
		Long: `sighub runs a broadcast hub built on the sigslot registry.

Payloads emitted over HTTP or by connected WebSocket clients are fanned
out synchronously to every connected client. Commands:

  • serve  run the hub server with Prometheus metrics
  • bench  measure in-process emit throughput`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		benchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
