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
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	o := newFixture(t)
	o.AddAltID("GO:0099", "GO:7")

	s, err := o.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 30, s.Terms)
	assert.Equal(t, 5, s.Entities)
	assert.Equal(t, 28, s.HierarchyEdges)
	assert.Equal(t, 6, s.AnnotationEdges)
	assert.Equal(t, 1, s.AltIDs)
	assert.Equal(t, map[string]int{RelationIsA: 27, RelationPartOf: 1}, s.Relations)
	assert.Equal(t, []string{"GO:1", "GO:11", "GO:21"}, s.Roots)
	assert.Equal(t, []NamespaceCount{
		{Namespace: "biological_process", Terms: 10, Annotations: 3},
		{Namespace: "cellular_component", Terms: 10, Annotations: 1},
		{Namespace: "molecular_function", Terms: 10, Annotations: 2},
	}, s.Namespaces)

	assert.InDelta(t, 0.5, s.AnnotationShare("biological_process"), 1e-9)
	assert.Equal(t, 0.0, s.AnnotationShare("missing"))
	assert.Equal(t, 0.0, (&Summary{}).AnnotationShare("biological_process"))
}

func TestDiagnostics(t *testing.T) {
	t.Run("collector", func(t *testing.T) {
		var c Collector
		c.Report(Diagnostic{Kind: DiagnosticUnresolvedTerm, Source: "gene.gaf", Line: 4, Term: "GO:404"})
		c.Report(Diagnostic{Kind: DiagnosticMalformedRecord, Source: "gene.gaf", Line: 9})
		c.Report(Diagnostic{Kind: DiagnosticUnresolvedTerm, Source: "gene.gaf", Line: 12})

		assert.Equal(t, 3, c.Len())
		assert.Equal(t, map[DiagnosticKind]int{
			DiagnosticUnresolvedTerm:  2,
			DiagnosticMalformedRecord: 1,
		}, c.CountByKind())

		got := c.Diagnostics()
		got[0].Line = 99
		assert.Equal(t, 4, c.Diagnostics()[0].Line, "Diagnostics returns a copy")
	})

	t.Run("string form", func(t *testing.T) {
		d := Diagnostic{Kind: DiagnosticMalformedRecord, Source: "x.gaf", Line: 3, Message: "7 columns"}
		assert.Equal(t, "x.gaf:3: malformed_record: 7 columns", d.String())
		assert.Equal(t, "unknown", DiagnosticKind(42).String())
	})

	t.Run("log reporter", func(t *testing.T) {
		var buf bytes.Buffer
		r := LogReporter{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
		r.Report(Diagnostic{Kind: DiagnosticUnresolvedTerm, Source: "gene.gaf", Line: 2, Entity: "P1", Term: "GO:404"})

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "unresolved_term", entry["kind"])
		assert.Equal(t, "GO:404", entry["term"])
		assert.Equal(t, float64(2), entry["line"])
	})

	t.Run("multi reporter", func(t *testing.T) {
		var a, b Collector
		r := MultiReporter(&a, nil, &b, Discard)
		r.Report(Diagnostic{Kind: DiagnosticInvalidEntity})
		assert.Equal(t, 1, a.Len())
		assert.Equal(t, 1, b.Len())
	})
}
