// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ontology

import (
	"fmt"
	"log/slog"
	"sync"
)

// DiagnosticKind classifies a non-fatal loader problem.
type DiagnosticKind int

const (
	// DiagnosticMalformedRecord is a record with too few columns or an
	// unparseable field.
	DiagnosticMalformedRecord DiagnosticKind = iota

	// DiagnosticUnresolvedTerm is an annotation naming a term that is not
	// in the ontology, even through the alt-id table.
	DiagnosticUnresolvedTerm

	// DiagnosticInvalidEntity is an annotation whose entity id is a term.
	DiagnosticInvalidEntity
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticMalformedRecord:
		return "malformed_record"
	case DiagnosticUnresolvedTerm:
		return "unresolved_term"
	case DiagnosticInvalidEntity:
		return "invalid_entity"
	default:
		return "unknown"
	}
}

// Diagnostic describes one skipped record.
type Diagnostic struct {
	Kind    DiagnosticKind
	Source  string
	Line    int
	Entity  string
	Term    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.Source, d.Line, d.Kind, d.Message)
}

// Reporter receives diagnostics. Reporting never aborts a load.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Collector keeps every diagnostic in arrival order.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of diagnostics collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CountByKind tallies the collected diagnostics.
func (c *Collector) CountByKind() map[DiagnosticKind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[DiagnosticKind]int)
	for _, d := range c.items {
		counts[d.Kind]++
	}
	return counts
}

// LogReporter writes each diagnostic as a warning.
type LogReporter struct {
	Logger *slog.Logger
}

// Report logs d.
func (r LogReporter) Report(d Diagnostic) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("record skipped",
		slog.String("kind", d.Kind.String()),
		slog.String("source", d.Source),
		slog.Int("line", d.Line),
		slog.String("entity", d.Entity),
		slog.String("term", d.Term),
		slog.String("reason", d.Message),
	)
}

// MultiReporter fans every diagnostic out to all reporters.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}
