// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKind_String(t *testing.T) {
	tests := []struct {
		kind     NodeKind
		expected string
	}{
		{KindUnknown, "unknown"},
		{KindTerm, "term"},
		{KindEntity, "entity"},
		{NodeKind(99), "unknown"},
	}

	for _, tc := range tests {
		got := tc.kind.String()
		if got != tc.expected {
			t.Errorf("NodeKind(%d).String() = %q, expected %q", tc.kind, got, tc.expected)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		g := New[string]()

		if !g.IsDirected() {
			t.Error("default graph should be directed")
		}
		if g.IsWeighted() {
			t.Error("default graph should be unweighted")
		}
		if g.NodeCount() != 0 {
			t.Errorf("NodeCount = %d, expected 0", g.NodeCount())
		}
		if g.EdgeCount() != 0 {
			t.Errorf("EdgeCount = %d, expected 0", g.EdgeCount())
		}
	})

	t.Run("custom options", func(t *testing.T) {
		g := New[int](WithDirected(false), WithWeighted(true))

		if g.IsDirected() {
			t.Error("graph should be undirected")
		}
		if !g.IsWeighted() {
			t.Error("graph should be weighted")
		}
	})

	t.Run("helpers", func(t *testing.T) {
		assert.True(t, NewDirected[string](false).IsDirected())
		u := NewUndirected[string](true)
		assert.False(t, u.IsDirected())
		assert.True(t, u.IsWeighted())
	})
}

func TestAddNode(t *testing.T) {
	t.Run("inserts attributes", func(t *testing.T) {
		g := New[string]()
		attrs := g.AddNode("A", Attrs{"size": IntValue(172), "weight": FloatValue(58.5)})

		require.True(t, g.HasNode("A"))
		size, ok := attrs["size"].AsInt()
		require.True(t, ok)
		assert.Equal(t, int64(172), size)
		assert.Empty(t, g.Neighbors("A"))
	})

	t.Run("nil attributes become empty map", func(t *testing.T) {
		g := New[string]()
		attrs := g.AddNode("A", nil)

		require.NotNil(t, attrs)
		attrs.SetString("name", "alpha")
		node, _ := g.Node("A")
		assert.Equal(t, "alpha", node.Attrs.GetString("name"))
	})

	t.Run("duplicate returns existing attributes unchanged", func(t *testing.T) {
		g := New[string]()
		first := g.AddNode("A", Attrs{"v": IntValue(1)})
		second := g.AddNode("A", Attrs{"v": IntValue(2)})

		assert.Equal(t, 1, g.NodeCount())
		v, _ := second["v"].AsInt()
		assert.Equal(t, int64(1), v)

		first["v"] = IntValue(3)
		v, _ = second["v"].AsInt()
		assert.Equal(t, int64(3), v, "both calls must return the same map")
	})

	t.Run("kind is set once", func(t *testing.T) {
		g := New[string]()
		g.AddEdge("E", "T", nil, nil, nil)

		kind, _ := g.Kind("T")
		assert.Equal(t, KindUnknown, kind)

		g.AddNodeOfKind("T", KindTerm, nil)
		kind, _ = g.Kind("T")
		assert.Equal(t, KindTerm, kind)

		g.AddNodeOfKind("T", KindEntity, nil)
		kind, _ = g.Kind("T")
		assert.Equal(t, KindTerm, kind)
	})
}

func TestAddEdge(t *testing.T) {
	t.Run("creates missing endpoints", func(t *testing.T) {
		g := New[string]()
		g.AddNode("A", Attrs{"size": IntValue(172)})
		g.AddEdge("A", "B", Attrs{"weight": IntValue(5)}, nil, Attrs{"hint": StringValue("b")})

		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.EdgeCount())
		assert.Equal(t, []string{"B"}, g.Neighbors("A"))
		assert.Empty(t, g.Neighbors("B"))

		b, _ := g.Node("B")
		assert.Equal(t, "b", b.Attrs.GetString("hint"))
	})

	t.Run("endpoint hints ignored for existing nodes", func(t *testing.T) {
		g := New[string]()
		g.AddNode("A", Attrs{"v": IntValue(1)})
		g.AddEdge("A", "B", nil, Attrs{"v": IntValue(2)}, nil)

		a, _ := g.Node("A")
		v, _ := a.Attrs["v"].AsInt()
		assert.Equal(t, int64(1), v)
	})

	t.Run("duplicate edge is first write wins", func(t *testing.T) {
		g := New[string]()
		first := g.AddEdge("A", "B", Attrs{"weight": IntValue(5)}, nil, nil)
		second := g.AddEdge("A", "B", Attrs{"weight": IntValue(9)}, nil, nil)

		assert.Equal(t, 1, g.EdgeCount())
		w, _ := second["weight"].AsInt()
		assert.Equal(t, int64(5), w)
		first["weight"] = IntValue(7)
		w, _ = second["weight"].AsInt()
		assert.Equal(t, int64(7), w)
	})

	t.Run("directed edge has no reverse", func(t *testing.T) {
		g := New[string]()
		g.AddEdge("A", "B", nil, nil, nil)

		assert.True(t, g.HasEdge("A", "B"))
		assert.False(t, g.HasEdge("B", "A"))
	})

	t.Run("undirected pair shares attributes", func(t *testing.T) {
		g := New[string](WithDirected(false))
		ab := g.AddEdge("A", "B", Attrs{"type": StringValue("binds")}, nil, nil)

		require.True(t, g.HasEdge("B", "A"))
		assert.Equal(t, 1, g.EdgeCount(), "undirected pair counts once")

		ab.SetString("type", "inhibits")
		ba, _ := g.EdgeAttrs("B", "A")
		assert.Equal(t, "inhibits", ba.GetString("type"))

		again := g.AddEdge("B", "A", Attrs{"type": StringValue("other")}, nil, nil)
		assert.Equal(t, "inhibits", again.GetString("type"))
		assert.Equal(t, 1, g.EdgeCount())
	})

	t.Run("undirected self loop counts once", func(t *testing.T) {
		g := New[string](WithDirected(false))
		g.AddEdge("A", "A", nil, nil, nil)

		assert.Equal(t, 1, g.EdgeCount())
		assert.Equal(t, []string{"A"}, g.Neighbors("A"))
	})

	t.Run("integer keys", func(t *testing.T) {
		g := New[int]()
		g.AddEdge(1, 2, nil, nil, nil)
		g.AddEdge(1, 3, nil, nil, nil)

		assert.Equal(t, []int{2, 3}, g.Neighbors(1))
		assert.Equal(t, []int{1, 2, 3}, g.NodeIDs())
	})
}

func TestEdges_Order(t *testing.T) {
	g := New[string]()
	g.AddEdge("B", "C", nil, nil, nil)
	g.AddEdge("A", "C", nil, nil, nil)
	g.AddEdge("B", "A", nil, nil, nil)

	var got []EdgeKey[string]
	for _, e := range g.Edges() {
		got = append(got, EdgeKey[string]{From: e.From, To: e.To})
	}
	assert.Equal(t, []EdgeKey[string]{
		{From: "B", To: "C"},
		{From: "B", To: "A"},
		{From: "A", To: "C"},
	}, got)
}

func TestNodes_Iterator(t *testing.T) {
	g := New[string]()
	g.AddNode("x", nil)
	g.AddNode("y", nil)
	g.AddNode("z", nil)

	var ids []string
	for id := range g.Nodes() {
		ids = append(ids, id)
		if id == "y" {
			break
		}
	}
	assert.Equal(t, []string{"x", "y"}, ids)
}

func TestStats(t *testing.T) {
	g := New[string]()
	g.AddNodeOfKind("GO:1", KindTerm, nil)
	g.AddNodeOfKind("P1", KindEntity, nil)
	g.AddEdge("P1", "GO:1", nil, nil, nil)
	g.AddEdge("P1", "X", nil, nil, nil)

	stats := g.Stats()
	assert.Equal(t, 3, stats.NodeCount)
	assert.Equal(t, 2, stats.EdgeCount)
	assert.Equal(t, 1, stats.NodesByKind[KindTerm])
	assert.Equal(t, 1, stats.NodesByKind[KindEntity])
	assert.Equal(t, 1, stats.NodesByKind[KindUnknown])
	assert.True(t, stats.Directed)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Run("directed", func(t *testing.T) {
		g := New[string](WithWeighted(true))
		g.AddNodeOfKind("A", KindTerm, Attrs{"name": StringValue("alpha")})
		g.AddEdge("A", "B", Attrs{"weight": IntValue(-4)}, nil, nil)
		g.AddEdge("A", "C", Attrs{"codes": StringsValue("IEA", "IDA")}, nil, nil)

		data, err := json.Marshal(g.Snapshot())
		require.NoError(t, err)

		var snap Snapshot[string]
		require.NoError(t, json.Unmarshal(data, &snap))
		rebuilt, err := FromSnapshot(&snap)
		require.NoError(t, err)

		assert.True(t, rebuilt.IsWeighted())
		assert.Equal(t, g.NodeIDs(), rebuilt.NodeIDs())
		assert.Equal(t, g.EdgeCount(), rebuilt.EdgeCount())
		assert.Equal(t, []string{"B", "C"}, rebuilt.Neighbors("A"))

		kind, _ := rebuilt.Kind("A")
		assert.Equal(t, KindTerm, kind)
		w, _ := rebuilt.EdgeAttrs("A", "B")
		n, _ := w["weight"].AsInt()
		assert.Equal(t, int64(-4), n)
		codes, _ := rebuilt.EdgeAttrs("A", "C")
		assert.Equal(t, []string{"IEA", "IDA"}, codes["codes"].Strings())
	})

	t.Run("undirected keeps sharing", func(t *testing.T) {
		g := New[string](WithDirected(false))
		g.AddEdge("A", "B", Attrs{"type": StringValue("pp")}, nil, nil)

		snap := g.Snapshot()
		require.Len(t, snap.Edges, 1)

		rebuilt, err := FromSnapshot(snap)
		require.NoError(t, err)
		assert.Equal(t, 1, rebuilt.EdgeCount())

		ab, _ := rebuilt.EdgeAttrs("A", "B")
		ab.SetString("type", "changed")
		ba, _ := rebuilt.EdgeAttrs("B", "A")
		assert.Equal(t, "changed", ba.GetString("type"))
	})

	t.Run("dangling edge rejected", func(t *testing.T) {
		snap := &Snapshot[string]{
			Directed: true,
			Nodes:    []SnapshotNode[string]{{ID: "A"}},
			Edges:    []SnapshotEdge[string]{{From: "A", To: "missing"}},
		}
		_, err := FromSnapshot(snap)
		if !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("FromSnapshot() error = %v, want ErrInvalidSnapshot", err)
		}
	})
}
