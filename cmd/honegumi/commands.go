// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/honegumi/cmd/honegumi/config"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

// newRootCmd builds the command tree. Each call returns fresh flag state, so
// tests can execute it repeatedly.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	// needsApp wraps a RunE that uses the loaded configuration.
	needsApp := func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()
			return run(cmd, a, args)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "honegumi",
		Short: "Generate every valid Bayesian optimization script for a matrix of options",
		Long: `honegumi enumerates every combination of a set of option rows, decides which
combinations are valid, renders an example script (plus test and notebook) for
each, and assembles a single-page configurator that looks up the right script
for the current selection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultFileName,
		"Path to the honegumi.yaml config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&flags.schemaPath, "schema", "",
		"YAML option schema to use instead of the built-in Ax rows")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "Write logs to stderr as JSON")
	rootCmd.PersistentFlags().BoolVar(&flags.trace, "trace", false, "Print OpenTelemetry spans to stderr")

	// --- Generation ---
	var genOpts generateOptions
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Render every combination, run the generated tests and assemble the page",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runGenerate(cmd, a, genOpts) // Defined in cmd_generate.go
		}),
	}
	generateCmd.Flags().BoolVar(&genOpts.skipTests, "skip-tests", false, "Do not run the generated tests")
	generateCmd.Flags().BoolVar(&genOpts.smoke, "smoke", false, "Shrink expensive parameters in generated tests")
	generateCmd.Flags().BoolVar(&genOpts.noFormat, "no-format", false, "Do not run the code formatter")
	generateCmd.Flags().BoolVar(&genOpts.inMemory, "in-memory", false, "Keep lookup tables in memory only")

	var watchOpts watchOptions
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a template or the schema changes",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runWatch(cmd, a, watchOpts) // Defined in cmd_watch.go
		}),
	}
	watchCmd.Flags().DurationVar(&watchOpts.debounce, "debounce", defaultDebounce, "Quiet period before regenerating")
	watchCmd.Flags().BoolVar(&watchOpts.generate.skipTests, "skip-tests", true, "Do not run the generated tests")
	watchCmd.Flags().BoolVar(&watchOpts.generate.noFormat, "no-format", false, "Do not run the code formatter")

	// --- Interactive ---
	var serveOpts serveOptions
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configurator page and HTTP API from the lookup store",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runServe(cmd, a, serveOpts) // Defined in cmd_serve.go
		}),
	}
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "", "Listen address (overrides config)")

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Pick options interactively and print the matching script",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runConfigure(cmd, a) // Defined in cmd_configure.go
		}),
	}

	var devSets []string
	deviationsCmd := &cobra.Command{
		Use:   "deviations",
		Short: "Show which single-option changes would make a selection invalid",
		Example: `  honegumi deviations --set objective=single --set custom_threshold=True
  honegumi deviations   # all defaults`,
		Args: cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runDeviations(cmd, a, devSets) // Defined in cmd_stem.go
		}),
	}
	deviationsCmd.Flags().StringArrayVar(&devSets, "set", nil, "name=value; unset visible rows use their first option")

	// --- Stems ---
	stemCmd := &cobra.Command{
		Use:   "stem",
		Short: "Encode and decode file-name stems",
	}
	var encodeSets []string
	stemEncodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the stem of a selection",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runStemEncode(cmd, a, encodeSets) // Defined in cmd_stem.go
		}),
	}
	stemEncodeCmd.Flags().StringArrayVar(&encodeSets, "set", nil, "name=value; unset visible rows use their first option")
	stemDecodeCmd := &cobra.Command{
		Use:   "decode [stem]",
		Short: "Print the selection a stem encodes and its verdict",
		Args:  cobra.ExactArgs(1),
		RunE: needsApp(func(cmd *cobra.Command, a *app, args []string) error {
			return runStemDecode(cmd, a, args[0]) // Defined in cmd_stem.go
		}),
	}
	stemCmd.AddCommand(stemEncodeCmd, stemDecodeCmd)

	var combosOpts combosOptions
	combosCmd := &cobra.Command{
		Use:   "combos",
		Short: "List every combination with its verdict",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runCombos(cmd, a, combosOpts) // Defined in cmd_stem.go
		}),
	}
	combosCmd.Flags().BoolVar(&combosOpts.invalidOnly, "invalid", false, "Only list incompatible combinations")
	combosCmd.Flags().BoolVar(&combosOpts.json, "json", false, "Print JSON lines")

	// --- Publishing ---
	var publishOpts publishOptions
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the page, scripts and notebooks to Google Cloud Storage",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runPublish(cmd, a, publishOpts) // Defined in cmd_publish.go
		}),
	}
	publishCmd.Flags().StringVar(&publishOpts.bucket, "bucket", "", "Bucket name (overrides config)")
	publishCmd.Flags().StringVar(&publishOpts.prefix, "prefix", "", "Object prefix (overrides config)")

	// --- Config / Version ---
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage honegumi.yaml",
	}
	var force bool
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default honegumi.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, flags.configPath, force) // Defined in cmd_config.go
		},
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: needsApp(func(cmd *cobra.Command, a *app, _ []string) error {
			return runConfigShow(cmd, a) // Defined in cmd_config.go
		}),
	}
	configCmd.AddCommand(configInitCmd, configShowCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the honegumi version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "honegumi %s\n", version)
		},
	}

	rootCmd.AddCommand(
		generateCmd,
		watchCmd,
		serveCmd,
		configureCmd,
		deviationsCmd,
		stemCmd,
		combosCmd,
		publishCmd,
		configCmd,
		versionCmd,
	)
	return rootCmd
}
