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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ontograph/services/ontograph/loader"
	"github.com/AleutianAI/ontograph/services/ontograph/ontology"
	"github.com/AleutianAI/ontograph/services/ontograph/storage/badger"
)

// ontologySource holds the flags that select where an ontology comes from:
// source files, or a stored snapshot.
type ontologySource struct {
	obo         string
	gaf         string
	snapshot    string
	skipNegated bool
}

func (s *ontologySource) register(cmd *cobra.Command, allowSnapshot bool) {
	cmd.Flags().StringVar(&s.obo, "obo", "", "OBO ontology file")
	cmd.Flags().StringVar(&s.gaf, "gaf", "", "GAF annotation file (requires --obo)")
	cmd.Flags().BoolVar(&s.skipNegated, "skip-negated", false, "Drop GAF records qualified with NOT")
	if allowSnapshot {
		cmd.Flags().StringVar(&s.snapshot, "snapshot", "", "Load a stored snapshot instead of source files")
		cmd.MarkFlagsMutuallyExclusive("snapshot", "obo")
		cmd.MarkFlagsMutuallyExclusive("snapshot", "gaf")
	}
}

// load returns a sealed ontology from files or from the snapshot store.
func (s *ontologySource) load(ctx context.Context, a *app) (*ontology.Ontology, error) {
	opts := []ontology.Option{
		ontology.WithLogger(a.log()),
		ontology.WithCacheSize(a.cfg.Query.CacheSize),
	}

	if s.snapshot != "" {
		var o *ontology.Ontology
		err := a.withStore(func(store *badger.SnapshotStore) error {
			var err error
			o, _, err = store.Load(ctx, s.snapshot, opts...)
			return err
		})
		return o, err
	}

	if s.obo == "" {
		return nil, errors.New("one of --obo or --snapshot is required")
	}
	return s.loadFiles(ctx, a, opts)
}

func (s *ontologySource) loadFiles(ctx context.Context, a *app, opts []ontology.Option) (*ontology.Ontology, error) {
	collector := &ontology.Collector{}
	reporter := ontology.MultiReporter(collector, ontology.LogReporter{Logger: a.log()})

	f, err := os.Open(s.obo)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	o, _, err := loader.LoadOBO(ctx, f, loader.OBOOptions{
		Source:   filepath.Base(s.obo),
		Reporter: reporter,
		Logger:   a.log(),
		Ontology: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.obo, err)
	}

	if s.gaf != "" {
		g, err := os.Open(s.gaf)
		if err != nil {
			return nil, err
		}
		defer g.Close()

		_, err = loader.LoadGAF(ctx, o, g, loader.GAFOptions{
			Source:      filepath.Base(s.gaf),
			Reporter:    reporter,
			Logger:      a.log(),
			SkipNegated: s.skipNegated,
		})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.gaf, err)
		}
	}

	if n := collector.Len(); n > 0 {
		counts := collector.CountByKind()
		attrs := []any{slog.Int("total", n)}
		for _, kind := range []ontology.DiagnosticKind{
			ontology.DiagnosticMalformedRecord,
			ontology.DiagnosticUnresolvedTerm,
			ontology.DiagnosticInvalidEntity,
		} {
			if counts[kind] > 0 {
				attrs = append(attrs, slog.Int(kind.String(), counts[kind]))
			}
		}
		a.log().Warn("records skipped while loading", attrs...)
	}
	return o, nil
}

// withStore opens the snapshot store for the duration of fn.
func (a *app) withStore(fn func(*badger.SnapshotStore) error) error {
	cfg := badger.DefaultConfig()
	cfg.Path = a.cfg.Storage.Path
	cfg.SyncWrites = a.cfg.Storage.SyncWrites
	cfg.GCInterval = a.cfg.Storage.GCInterval
	cfg.Logger = a.log()

	db, err := badger.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(badger.NewSnapshotStore(db, a.log()))
}

// resolveTerm maps an alternative id onto its canonical term. Unknown ids
// are returned unchanged so the query reports them.
func resolveTerm(o *ontology.Ontology, id string) string {
	if term, ok := o.ResolveTerm(id); ok {
		return term
	}
	return id
}
