// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the ontograph CLI configuration from
// ~/.ontograph/ontograph.yaml, creating it with defaults on first run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultPath returns ~/.ontograph/ontograph.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".ontograph", "ontograph.yaml"), nil
}

// Load reads and validates the configuration at path.
//
// Description:
//
//	An empty path means DefaultPath(). A missing file is created with
//	DefaultConfig() first. Keys absent from the file keep their defaults.
//	A leading ~ in Storage.Path and Logging.Dir is expanded.
//
// Outputs:
//
//	*OntographConfig - The validated configuration.
//	bool - True if the file was created by this call.
//	error - Read, parse, or validation failure.
func Load(path string) (*OntographConfig, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, false, err
		}
	}

	created := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, false, err
		}
		created = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Logging.Dir = expandHome(cfg.Logging.Dir)
	return &cfg, created, nil
}

// Validate checks the struct tags of every section.
func (c *OntographConfig) Validate() error {
	return validate.Struct(c)
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0640)
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
