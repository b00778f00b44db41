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
		Use:   "weft-bench",
		Short: "Benchmark harness for the weft reactive core",
		Long: `weft-bench drives synthetic reactive workloads against an
in-memory scene graph and reports throughput and teardown behavior.

Scenarios:

  chain    one value pushed through a deep map chain
  fanout   one value bound by many elements at once
  switch   a child slot swapping subtrees every tick`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
