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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ontograph/cmd/ontograph/config"
	"github.com/AleutianAI/ontograph/pkg/logging"
	"github.com/AleutianAI/ontograph/pkg/ux"
	"github.com/AleutianAI/ontograph/services/ontograph/telemetry"
)

// app holds the state shared by every command of one invocation.
type app struct {
	// Global flags.
	configPath  string
	logLevel    string
	jsonOutput  bool
	metricsFile string

	cfg      *config.OntographConfig
	logger   *logging.Logger
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ontograph",
		Short: "Query ontologies and labeled graphs",
		Long: `ontograph loads an ontology (OBO) with its annotations (GAF) into a
labeled graph and answers closure queries over it: the maximum depth of a
term, the terms an entity is annotated with, and the entities annotated
to a term or any of its descendants.

It also runs the underlying graph algorithms (BFS, DFS with edge
classification, topological sort, single-source shortest paths) on
SIF and TAB edge files.

Configuration is read from ~/.ontograph/ontograph.yaml, which is created
with defaults on first run.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (default ~/.ontograph/ontograph.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false,
		"Output as JSON for scripting")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this file on exit (enables the prometheus exporter)")

	root.AddCommand(
		newStatsCmd(a),
		newDepthCmd(a),
		newTermsCmd(a),
		newEntitiesCmd(a),
		newGraphCmd(a),
		newSnapshotCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads the configuration, then builds the logger and telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, created, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	levelName := cfg.Logging.Level
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		Format:  logging.Format(cfg.Logging.Format),
		LogDir:  cfg.Logging.Dir,
		Service: "ontograph",
		Output:  cmd.ErrOrStderr(),
	})
	if created {
		a.log().Info("created default config", slog.String("command", cmd.Name()))
	}

	telCfg := cfg.Telemetry
	telCfg.Writer = cmd.ErrOrStderr()
	if a.metricsFile != "" {
		telCfg.MetricExporter = "prometheus"
	}
	a.shutdown, err = telemetry.Init(cmd.Context(), telCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.metricsFile != "" {
		if err := telemetry.WriteMetricsFile(a.metricsFile); err != nil {
			a.log().Warn("metrics file not written", slog.String("error", err.Error()))
		}
	}
	if a.shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.shutdown(shutdownCtx); err != nil {
			a.log().Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}
	if a.logger != nil {
		return a.logger.Close()
	}
	return nil
}

func (a *app) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger.Slog()
}

func (a *app) printer(cmd *cobra.Command) *ux.Printer {
	return ux.NewPrinter(cmd.OutOrStdout())
}
