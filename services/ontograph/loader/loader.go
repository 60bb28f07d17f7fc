// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader reads graphs and ontologies from text formats.
//
// Formats:
//
//	OBO  - ontology dumps ([Term] stanzas with is_a / part_of relations).
//	GAF  - tab-separated annotation files attaching entities to terms.
//	SIF  - simple interaction format: "source relation target...".
//	TAB  - delimited edge tables with a header row naming edge attributes.
//
// Loaders are thin adapters: every record becomes calls on graph.Graph or
// ontology.Ontology. Records that cannot be used are reported through an
// ontology.Reporter where the format allows it and never abort a load;
// I/O failures and structurally broken input are returned as errors.
package loader

import (
	"bufio"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
)

// ErrMalformedInput indicates input that cannot be parsed at all.
var ErrMalformedInput = errors.New("malformed input")

// maxLineBytes bounds a single input line. OBO definitions can be long.
const maxLineBytes = 4 * 1024 * 1024

// contextCheckInterval is how many lines are read between cancellation
// checks.
const contextCheckInterval = 1000

var tracer = otel.Tracer("ontograph.loader")

// newScanner returns a line scanner sized for long records.
func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return sc
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
