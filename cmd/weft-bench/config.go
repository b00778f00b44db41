package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// benchConfig describes one benchmark run. Loaded from YAML, with flags
// overriding individual fields.
type benchConfig struct {
	// Scenario is one of chain, fanout, switch.
	Scenario string `yaml:"scenario"`

	// Depth of the map chain (chain scenario).
	Depth int `yaml:"depth"`

	// Elements bound to the shared value (fanout scenario).
	Elements int `yaml:"elements"`

	// Writes performed against the source value.
	Writes int `yaml:"writes"`

	// Switches performed against the child slot (switch scenario).
	Switches int `yaml:"switches"`

	// TickBudget overrides the app's drain pass budget when > 0.
	TickBudget int `yaml:"tick_budget"`

	// Inspect serves the inspection endpoints on this address for the
	// duration of the run ("" disables).
	Inspect string `yaml:"inspect"`

	// JSONOutput writes the report to this file ("" prints text).
	JSONOutput string `yaml:"json_output"`
}

func defaultConfig() benchConfig {
	return benchConfig{
		Scenario: "chain",
		Depth:    64,
		Elements: 500,
		Writes:   10000,
		Switches: 1000,
	}
}

func loadConfig(path string) (benchConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c benchConfig) validate() error {
	switch c.Scenario {
	case "chain":
		if c.Depth < 1 {
			return fmt.Errorf("chain scenario needs depth >= 1, got %d", c.Depth)
		}
	case "fanout":
		if c.Elements < 1 {
			return fmt.Errorf("fanout scenario needs elements >= 1, got %d", c.Elements)
		}
	case "switch":
		if c.Switches < 1 {
			return fmt.Errorf("switch scenario needs switches >= 1, got %d", c.Switches)
		}
	default:
		return fmt.Errorf("unknown scenario %q (chain, fanout, switch)", c.Scenario)
	}
	if c.Writes < 1 && c.Scenario != "switch" {
		return fmt.Errorf("writes must be >= 1, got %d", c.Writes)
	}
	return nil
}

// report is the benchmark result, printable as text or JSON.
type report struct {
	Scenario      string        `json:"scenario"`
	Writes        int           `json:"writes"`
	Ticks         int           `json:"ticks"`
	Mutations     int64         `json:"mutations"`
	Subscriptions int           `json:"subscriptionsPeak"`
	Nodes         int           `json:"nodesPeak"`
	Elapsed       time.Duration `json:"elapsedNs"`
	WritesPerSec  float64       `json:"writesPerSec"`
}

func (r report) print() {
	fmt.Printf("scenario:       %s\n", r.Scenario)
	fmt.Printf("writes:         %d\n", r.Writes)
	fmt.Printf("ticks:          %d\n", r.Ticks)
	fmt.Printf("mutations:      %d\n", r.Mutations)
	fmt.Printf("subscriptions:  %d (peak)\n", r.Subscriptions)
	fmt.Printf("nodes:          %d (peak)\n", r.Nodes)
	fmt.Printf("elapsed:        %s\n", r.Elapsed)
	fmt.Printf("writes/sec:     %.0f\n", r.WritesPerSec)
}
