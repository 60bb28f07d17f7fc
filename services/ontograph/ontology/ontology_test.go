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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "build", PhaseBuild.String())
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "unknown", Phase(7).String())
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("queries refused before seal", func(t *testing.T) {
		o := buildFixture(t)
		assert.Equal(t, PhaseBuild, o.Phase())
		assert.Nil(t, o.Index())

		_, err := o.MaxDepth(ctx, "GO:1")
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = o.AncestorsOf(ctx, "A", true)
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = o.AnnotatedEntities(ctx, "GO:1", true)
		assert.ErrorIs(t, err, ErrNotReady)
		_, err = o.Summary(ctx)
		assert.ErrorIs(t, err, ErrNotReady)
	})

	t.Run("hierarchy frozen after seal", func(t *testing.T) {
		o := buildFixture(t)
		require.NoError(t, o.Seal(ctx))
		assert.Equal(t, PhaseReady, o.Phase())

		_, err := o.Relate("GO:31", "GO:1", RelationIsA)
		assert.ErrorIs(t, err, ErrIndexSealed)
		_, err = o.AddTerm("GO:31", nil)
		assert.ErrorIs(t, err, ErrIndexSealed)
		assert.ErrorIs(t, o.Seal(ctx), ErrIndexSealed)
	})

	t.Run("annotations allowed in both phases", func(t *testing.T) {
		o := buildFixture(t)
		_, err := o.Annotate("early", "GO:5", "", EntityInfo{})
		require.NoError(t, err)
		require.NoError(t, o.Seal(ctx))
		_, err = o.Annotate("late", "GO:5", "", EntityInfo{})
		require.NoError(t, err)

		got, err := o.AnnotatedEntities(ctx, "GO:5", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"early", "late"}, got)
		assert.False(t, o.Index().Has("early"), "entities never enter the index")
	})
}

func TestAddTerm(t *testing.T) {
	t.Run("merges stanza attributes into referenced term", func(t *testing.T) {
		o := New()
		_, err := o.Relate("GO:2", "GO:1", "")
		require.NoError(t, err)

		attrs, err := o.AddTerm("GO:1", graph.Attrs{AttrName: graph.StringValue("root")})
		require.NoError(t, err)
		assert.Equal(t, "root", attrs.GetString(AttrName))
		assert.Equal(t, "GO:1", attrs.GetString(AttrID))
		assert.Equal(t, TypeTerm, attrs.GetString(AttrType))

		edge, _ := o.Graph().EdgeAttrs("GO:2", "GO:1")
		assert.Equal(t, RelationIsA, edge.GetString(AttrType), "empty relation means is_a")
	})

	t.Run("entity cannot become a term", func(t *testing.T) {
		o := New()
		_, err := o.AddTerm("GO:1", nil)
		require.NoError(t, err)
		_, err = o.Annotate("P1", "GO:1", "", EntityInfo{})
		require.NoError(t, err)

		_, err = o.AddTerm("P1", nil)
		assert.ErrorIs(t, err, ErrInvalidEntity)
		_, err = o.Relate("P1", "GO:1", RelationIsA)
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})
}

func TestAnnotate(t *testing.T) {
	t.Run("evidence codes accumulate", func(t *testing.T) {
		o := buildFixture(t)
		_, err := o.Annotate("P1", "GO:5", "IEA", EntityInfo{})
		require.NoError(t, err)
		edge, err := o.Annotate("P1", "GO:5", "IDA", EntityInfo{})
		require.NoError(t, err)
		_, err = o.Annotate("P1", "GO:5", "", EntityInfo{})
		require.NoError(t, err)

		assert.Equal(t, []string{"IEA", "IDA"}, edge[AttrEvidence].Strings())
		assert.Equal(t, 1, o.Graph().OutDegree("P1"))
	})

	t.Run("entity attributes and name table", func(t *testing.T) {
		o := buildFixture(t)
		_, err := o.Annotate("P1", "GO:5", "", EntityInfo{
			Name:        "abc1",
			Description: "first",
			Aliases:     []string{"x", "y"},
		})
		require.NoError(t, err)
		_, err = o.Annotate("P1", "GO:6", "", EntityInfo{Description: "second"})
		require.NoError(t, err)
		_, err = o.Annotate("P2", "GO:6", "", EntityInfo{Name: "abc1"})
		require.NoError(t, err)

		node, ok := o.Graph().Node("P1")
		require.True(t, ok)
		assert.Equal(t, graph.KindEntity, node.Kind)
		assert.Equal(t, TypeEntity, node.Attrs.GetString(AttrType))
		assert.Equal(t, "abc1", node.Attrs.GetString(AttrName))
		assert.Equal(t, "second", node.Attrs.GetString(AttrDesc))
		assert.Equal(t, []string{"x", "y"}, node.Attrs[AttrAliases].Strings())

		id, ok := o.EntityByName("abc1")
		require.True(t, ok)
		assert.Equal(t, "P1", id, "first entity keeps the name")
	})

	t.Run("alt id resolves to canonical term", func(t *testing.T) {
		o := buildFixture(t)
		o.AddAltID("GO:0099", "GO:7")

		resolved, ok := o.ResolveTerm("GO:0099")
		require.True(t, ok)
		assert.Equal(t, "GO:7", resolved)

		_, err := o.Annotate("P1", "GO:0099", "", EntityInfo{})
		require.NoError(t, err)
		assert.True(t, o.Graph().HasEdge("P1", "GO:7"))
		assert.False(t, o.Graph().HasNode("GO:0099"))
	})

	t.Run("alt id to missing term does not resolve", func(t *testing.T) {
		o := buildFixture(t)
		o.AddAltID("GO:0099", "GO:404")
		_, ok := o.ResolveTerm("GO:0099")
		assert.False(t, ok)
	})

	t.Run("unresolved term", func(t *testing.T) {
		o := buildFixture(t)
		_, err := o.Annotate("P1", "GO:404", "IEA", EntityInfo{})
		if !errors.Is(err, ErrUnresolvedTerm) {
			t.Errorf("Annotate() error = %v, want ErrUnresolvedTerm", err)
		}
		assert.False(t, o.Graph().HasNode("P1"), "failed annotation must not create the entity")
	})

	t.Run("term cannot be annotated as entity", func(t *testing.T) {
		o := buildFixture(t)
		_, err := o.Annotate("GO:5", "GO:4", "", EntityInfo{})
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})

	t.Run("term-shaped id outside the ontology is not an entity", func(t *testing.T) {
		o := newFixture(t)
		_, err := o.Annotate("GO:777", "GO:1", "IEA", EntityInfo{})
		assert.ErrorIs(t, err, ErrInvalidEntity)
		assert.False(t, o.Graph().HasNode("GO:777"))

		entities, err := o.AnnotatedEntities(context.Background(), "GO:1", false)
		require.NoError(t, err)
		assert.NotContains(t, entities, "GO:777")

		_, err = o.AncestorsOf(context.Background(), "GO:777", true)
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	o := newFixture(t)
	o.AddAltID("GO:0099", "GO:7")
	o.AddHeader("format-version", "1.2")

	restored, err := Restore(ctx, o.Graph(), o.Tables())
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, restored.Phase())
	assert.True(t, o.Index().Equal(restored.Index()))

	resolved, ok := restored.ResolveTerm("GO:0099")
	require.True(t, ok)
	assert.Equal(t, "GO:7", resolved)
	assert.Equal(t, []HeaderTag{{Key: "format-version", Value: "1.2"}}, restored.Header())

	id, ok := restored.EntityByName("gene A")
	require.True(t, ok)
	assert.Equal(t, "A", id)

	_, err = Restore(ctx, graph.NewUndirected[string](false), Tables{})
	assert.Error(t, err)

	t.Run("untagged graph is classified", func(t *testing.T) {
		g := graph.New[string]()
		g.AddEdge("GO:2", "GO:1", graph.Attrs{AttrType: graph.StringValue(RelationIsA)}, nil, nil)
		g.AddEdge("P1", "GO:2", graph.Attrs{AttrType: graph.StringValue(RelationAnnotation)}, nil, nil)

		restored, err := Restore(ctx, g, Tables{})
		require.NoError(t, err)

		kind, _ := restored.Graph().Kind("P1")
		assert.Equal(t, graph.KindEntity, kind)
		depth, err := restored.MaxDepth(ctx, "GO:1")
		require.NoError(t, err)
		assert.Equal(t, 1, depth)

		terms, err := restored.AncestorsOf(ctx, "P1", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"GO:1", "GO:2"}, terms)
	})

	t.Run("entity without annotation edges", func(t *testing.T) {
		g := graph.New[string]()
		g.AddEdge("GO:2", "GO:1", graph.Attrs{AttrType: graph.StringValue(RelationIsA)}, nil, nil)
		g.AddNode("P9", nil)

		restored, err := Restore(ctx, g, Tables{})
		require.NoError(t, err)
		for _, transitive := range []bool{false, true} {
			_, err = restored.AncestorsOf(ctx, "P9", transitive)
			assert.ErrorIs(t, err, ErrInvalidEntity)
		}
	})
}

func TestClassifyNodes(t *testing.T) {
	g := graph.New[string]()
	g.AddEdge("P1", "GO:0005634", nil, nil, nil)
	g.AddEdge("GO:0005634", "GO:0043231", nil, nil, nil)
	g.AddNodeOfKind("GO:kept", graph.KindEntity, nil)

	assert.Equal(t, 3, ClassifyNodes(g))
	assert.Equal(t, 0, ClassifyNodes(g), "classification runs once")

	for id, want := range map[string]graph.NodeKind{
		"P1":         graph.KindEntity,
		"GO:0005634": graph.KindTerm,
		"GO:0043231": graph.KindTerm,
		"GO:kept":    graph.KindEntity,
	} {
		got, _ := g.Kind(id)
		assert.Equal(t, want, got, id)
	}

	assert.True(t, IsTermID("HP:0000118"))
	assert.False(t, IsTermID("YAL001C"))
	assert.False(t, IsTermID(":1"))
}
