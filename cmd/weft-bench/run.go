package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/weft-ui/weft/pkg/inspect"
	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/weft"
)

func runCmd() *cobra.Command {
	var (
		configPath string
		scenario   string
		writes     int
		inspectOn  string
		jsonOut    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if scenario != "" {
				cfg.Scenario = scenario
			}
			if writes > 0 {
				cfg.Writes = writes
			}
			if inspectOn != "" {
				cfg.Inspect = inspectOn
			}
			if jsonOut != "" {
				cfg.JSONOutput = jsonOut
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return runBench(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario to run (chain, fanout, switch)")
	cmd.Flags().IntVar(&writes, "writes", 0, "number of writes against the source value")
	cmd.Flags().StringVar(&inspectOn, "inspect", "", "serve inspection endpoints on this address during the run")
	cmd.Flags().StringVarP(&jsonOut, "json", "j", "", "write the report to this file as JSON")
	return cmd
}

func runBench(cfg benchConfig) error {
	tree := scene.NewTree()
	promReg := prometheus.NewRegistry()

	opts := []weft.Option{weft.WithMetrics(promReg)}
	if cfg.TickBudget > 0 {
		opts = append(opts, weft.WithTickBudget(cfg.TickBudget))
	}
	app := weft.New(tree, opts...)

	if cfg.Inspect != "" {
		srv := inspect.NewServer(app, inspect.WithGatherer(promReg))
		addr, err := srv.Start(cfg.Inspect)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "inspection on http://%s\n", addr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	var run scenarioFunc
	switch cfg.Scenario {
	case "chain":
		run = chainScenario
	case "fanout":
		run = fanoutScenario
	case "switch":
		run = switchScenario
	}

	rep, err := run(app, tree, cfg)
	if err != nil {
		return err
	}
	if err := app.Close(); err != nil {
		return fmt.Errorf("close after %s scenario: %w", cfg.Scenario, err)
	}

	if cfg.JSONOutput != "" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(cfg.JSONOutput, data, 0o644)
	}
	rep.print()
	return nil
}
