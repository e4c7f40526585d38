/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command storekit is the interactive debug surface over a storekit data
// directory: run diagnostics, print the human-readable report, or clear a
// scope with an auditable before/after delta.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/storekit"
	"github.com/suparena/storekit/diagnostics"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "storekit",
		Short:         "Debug tooling for storekit data directories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "storekit.yaml", "config file path")

	root.AddCommand(versionCmd(), diagCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := storekit.GetVersionInfo()
			fmt.Printf("storekit version %s\n", info.Version)
			fmt.Printf("Git commit: %s\n", info.GitCommit)
			fmt.Printf("Build date: %s\n", info.BuildDate)
			fmt.Printf("Go version: %s\n", info.GoVersion)
		},
	}
}

// setup builds the store set and a diagnostics runner from config.
func setup() (*storekit.Stores, *diagnostics.Runner, *zap.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := cfg.buildLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	stores, err := storekit.Bootstrap(cfg.Dir, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return stores, diagnostics.NewRunner(stores.Manager, logger), logger, nil
}

func diagCmd() *cobra.Command {
	diag := &cobra.Command{
		Use:   "diag",
		Short: "Storage diagnostics",
	}

	diag.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Generate a diagnostics report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, runner, _, err := setup()
			if err != nil {
				return err
			}
			defer stores.Close()

			report := runner.Run(cmd.Context())
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	})

	diag.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Generate a diagnostics report and print it human-readably",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, runner, _, err := setup()
			if err != nil {
				return err
			}
			defer stores.Close()

			fmt.Print(diagnostics.Render(runner.Run(cmd.Context())))
			return nil
		},
	})

	var scope string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear a storage scope, reporting before and after",
		RunE: func(cmd *cobra.Command, args []string) error {
			cs := diagnostics.ClearScope(scope)
			switch cs {
			case diagnostics.ClearLocal, diagnostics.ClearSession, diagnostics.ClearBoth:
			default:
				return fmt.Errorf("invalid scope %q (want local, session or both)", scope)
			}

			stores, runner, _, err := setup()
			if err != nil {
				return err
			}
			defer stores.Close()

			res := runner.ClearWithDiagnostics(cmd.Context(), cs)
			fmt.Println("=== Before ===")
			fmt.Print(diagnostics.Render(res.Before))
			fmt.Println("=== After ===")
			fmt.Print(diagnostics.Render(res.After))
			return nil
		},
	}
	clearCmd.Flags().StringVar(&scope, "scope", "both", "scope to clear: local, session or both")
	diag.AddCommand(clearCmd)

	return diag
}
