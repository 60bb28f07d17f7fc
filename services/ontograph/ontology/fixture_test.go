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
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// hierarchyFixture lists child -> parent relations of a 30-term ontology
// with three roots: GO:1, GO:11 and GO:21.
var hierarchyFixture = [][2]string{
	{"GO:10", "GO:2"},
	{"GO:9", "GO:3"},
	{"GO:7", "GO:3"},
	{"GO:6", "GO:4"},
	{"GO:5", "GO:4"},
	{"GO:8", "GO:7"},
	{"GO:8", "GO:6"},
	{"GO:2", "GO:1"},
	{"GO:3", "GO:1"},
	{"GO:4", "GO:1"},
	{"GO:12", "GO:11"},
	{"GO:13", "GO:12"},
	{"GO:14", "GO:12"},
	{"GO:15", "GO:14"},
	{"GO:16", "GO:14"},
	{"GO:17", "GO:13"},
	{"GO:18", "GO:17"},
	{"GO:19", "GO:17"},
	{"GO:20", "GO:17"},
	{"GO:22", "GO:21"},
	{"GO:23", "GO:21"},
	{"GO:24", "GO:21"},
	{"GO:25", "GO:22"},
	{"GO:26", "GO:22"},
	{"GO:27", "GO:24"},
	{"GO:28", "GO:24"},
	{"GO:29", "GO:23"},
	{"GO:30", "GO:23"},
}

// annotationFixture lists entity -> term annotations.
var annotationFixture = [][2]string{
	{"A", "GO:10"},
	{"A", "GO:16"},
	{"B", "GO:3"},
	{"C", "GO:8"},
	{"D", "GO:13"},
	{"E", "GO:24"},
}

func namespaceOf(n int) string {
	switch {
	case n <= 10:
		return "biological_process"
	case n <= 20:
		return "molecular_function"
	default:
		return "cellular_component"
	}
}

// buildFixture returns the fixture ontology in PhaseBuild, without
// annotations.
func buildFixture(t *testing.T, opts ...Option) *Ontology {
	t.Helper()

	o := New(opts...)
	for _, rel := range hierarchyFixture {
		relation := RelationIsA
		if rel[0] == "GO:8" && rel[1] == "GO:6" {
			relation = RelationPartOf
		}
		_, err := o.Relate(rel[0], rel[1], relation)
		require.NoError(t, err)
	}
	for n := 1; n <= 30; n++ {
		id := fmt.Sprintf("GO:%d", n)
		_, err := o.AddTerm(id, graph.Attrs{
			AttrName:      graph.StringValue("term " + id),
			AttrNamespace: graph.StringValue(namespaceOf(n)),
		})
		require.NoError(t, err)
	}
	return o
}

// newFixture returns the sealed, annotated fixture ontology.
func newFixture(t *testing.T, opts ...Option) *Ontology {
	t.Helper()

	o := buildFixture(t, opts...)
	require.NoError(t, o.Seal(context.Background()))
	for _, a := range annotationFixture {
		_, err := o.Annotate(a[0], a[1], "IEA", EntityInfo{Name: "gene " + a[0]})
		require.NoError(t, err)
	}
	return o
}

// recursiveDepth is the textbook definition MaxDepth must agree with.
func recursiveDepth(idx DescendantsIndex, term string) int {
	best := 0
	for _, child := range idx[term] {
		best = max(best, 1+recursiveDepth(idx, child))
	}
	return best
}
