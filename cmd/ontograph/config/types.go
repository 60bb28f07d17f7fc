// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"time"

	"github.com/AleutianAI/ontograph/services/ontograph/telemetry"
)

// OntographConfig is the on-disk configuration of the ontograph CLI.
type OntographConfig struct {
	Logging   LoggingConfig    `yaml:"logging"`
	Storage   StorageConfig    `yaml:"storage"`
	Query     QueryConfig      `yaml:"query"`
	Server    ServerConfig     `yaml:"server"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// LoggingConfig controls pkg/logging. --log-level and --json override it.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=auto text json"`

	// Dir enables a JSON log file per day. Empty disables file logging.
	Dir string `yaml:"dir"`
}

// StorageConfig locates the snapshot store.
type StorageConfig struct {
	Path       string        `yaml:"path" validate:"required"`
	SyncWrites bool          `yaml:"sync_writes"`
	GCInterval time.Duration `yaml:"gc_interval" validate:"gte=0"`
}

// QueryConfig tunes ontology queries.
type QueryConfig struct {
	// CacheSize bounds the closure cache. 0 selects the default.
	CacheSize int `yaml:"cache_size" validate:"gte=0"`

	// Workers bounds concurrent depth computations in stats.
	Workers int `yaml:"workers" validate:"gte=1,lte=256"`
}

// ServerConfig configures "ontograph serve".
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() OntographConfig {
	return OntographConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Storage: StorageConfig{
			Path:       "~/.ontograph/snapshots",
			GCInterval: 10 * time.Minute,
		},
		Query: QueryConfig{
			CacheSize: 256,
			Workers:   4,
		},
		Server: ServerConfig{
			Addr:            "localhost:8088",
			ShutdownTimeout: 10 * time.Second,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}
