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
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dressingGraph builds the "getting dressed" precedence DAG.
func dressingGraph() *Graph[string] {
	g := New[string]()
	before := func(from string, to ...string) {
		for _, t := range to {
			g.AddEdge(from, t, Attrs{"type": StringValue("before")}, nil, nil)
		}
	}
	before("underwear", "trousers", "shoes")
	before("trousers", "belt", "shoes")
	before("belt", "jacket")
	before("shirt", "belt", "tie")
	before("tie", "jacket")
	before("socks", "shoes")
	return g
}

// bellmanGraph builds the weighted cyclic graph used for DFS and
// shortest-path tests. Weights are strings, as a delimited loader stores them.
func bellmanGraph() *Graph[string] {
	g := New[string]()
	edges := []struct {
		from, to, weight string
	}{
		{"A", "B", "6"}, {"A", "E", "7"},
		{"B", "C", "5"}, {"B", "D", "-4"}, {"B", "E", "8"},
		{"C", "B", "-2"},
		{"D", "A", "2"}, {"D", "C", "7"},
		{"E", "C", "-3"}, {"E", "D", "9"},
	}
	for _, e := range edges {
		g.AddEdge(e.from, e.to, Attrs{"weight": StringValue(e.weight)}, nil, nil)
	}
	return g
}

// =============================================================================
// BFS
// =============================================================================

func TestBFS_Dressing(t *testing.T) {
	g := dressingGraph()

	result, err := BFS(context.Background(), g, "underwear")
	require.NoError(t, err)

	expectedDistance := map[string]int{
		"underwear": 0,
		"trousers":  1,
		"shoes":     1,
		"belt":      2,
		"jacket":    3,
		"shirt":     Unreachable,
		"tie":       Unreachable,
		"socks":     Unreachable,
	}
	assert.Equal(t, expectedDistance, result.Distance)

	expectedPredecessor := map[string]string{
		"trousers": "underwear",
		"shoes":    "underwear",
		"belt":     "trousers",
		"jacket":   "belt",
	}
	assert.Equal(t, expectedPredecessor, result.Predecessor)

	for _, id := range []string{"underwear", "trousers", "shoes", "belt", "jacket"} {
		assert.Equal(t, Black, result.Color[id], "color of %s", id)
	}
	for _, id := range []string{"shirt", "tie", "socks"} {
		assert.Equal(t, White, result.Color[id], "color of %s", id)
		assert.False(t, result.Reached(id))
		_, ok := result.PredecessorOf(id)
		assert.False(t, ok)
	}
	assert.Equal(t, []string{"underwear", "trousers", "shoes", "belt", "jacket"}, result.Order)
}

func TestBFS_DistanceMonotonicity(t *testing.T) {
	for _, g := range []*Graph[string]{dressingGraph(), bellmanGraph()} {
		for _, source := range g.NodeIDs() {
			result, err := BFS(context.Background(), g, source)
			require.NoError(t, err)

			for id, d := range result.Distance {
				if id == source || d == Unreachable {
					continue
				}
				p, ok := result.Predecessor[id]
				require.True(t, ok, "reached node %s needs a predecessor", id)
				assert.Equal(t, result.Distance[p]+1, d, "distance of %s from %s", id, source)
			}
		}
	}
}

func TestBFS_TieBreakFollowsInsertionOrder(t *testing.T) {
	g := New[string]()
	g.AddEdge("s", "b", nil, nil, nil)
	g.AddEdge("s", "a", nil, nil, nil)
	g.AddEdge("a", "t", nil, nil, nil)
	g.AddEdge("b", "t", nil, nil, nil)

	result, err := BFS(context.Background(), g, "s")
	require.NoError(t, err)
	assert.Equal(t, "b", result.Predecessor["t"])
}

func TestBFS_UnknownSource(t *testing.T) {
	_, err := BFS(context.Background(), dressingGraph(), "hat")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("BFS() error = %v, want ErrNodeNotFound", err)
	}
}

func TestBFS_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BFS(ctx, dressingGraph(), "underwear")
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// DFS
// =============================================================================

func TestDFS_Bellman(t *testing.T) {
	result, err := DFS(context.Background(), bellmanGraph())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 5, "E": 7}, result.Discovery)
	assert.Equal(t, map[string]int{"C": 4, "D": 6, "E": 8, "B": 9, "A": 10}, result.Finish)
	assert.Equal(t, 10, result.Time)
	assert.Equal(t, map[string]string{"B": "A", "C": "B", "D": "B", "E": "B"}, result.Predecessor)

	type key = EdgeKey[string]
	expected := map[EdgeKey[string]]EdgeClass{
		key{"A", "B"}: TreeEdge,
		key{"B", "C"}: TreeEdge,
		key{"C", "B"}: BackEdge,
		key{"B", "D"}: TreeEdge,
		key{"D", "A"}: BackEdge,
		key{"D", "C"}: CrossEdge,
		key{"B", "E"}: TreeEdge,
		key{"E", "C"}: CrossEdge,
		key{"E", "D"}: CrossEdge,
		key{"A", "E"}: ForwardEdge,
	}
	assert.Equal(t, expected, result.EdgeClass)

	for id, c := range result.Color {
		assert.Equal(t, Black, c, "color of %s", id)
	}
	assert.Equal(t, []string{"C", "D", "E", "B", "A"}, result.FinishOrder)
}

func TestDFS_ClassifiesEveryEdgeOnce(t *testing.T) {
	for name, g := range map[string]*Graph[string]{
		"dressing": dressingGraph(),
		"bellman":  bellmanGraph(),
	} {
		t.Run(name, func(t *testing.T) {
			result, err := DFS(context.Background(), g)
			require.NoError(t, err)

			stored := g.Edges()
			assert.Len(t, result.Edges, len(stored))
			assert.Len(t, result.EdgeClass, len(stored))
			for _, e := range stored {
				_, ok := result.EdgeClass[EdgeKey[string]{From: e.From, To: e.To}]
				assert.True(t, ok, "edge %s -> %s not classified", e.From, e.To)
			}

			total := 0
			for _, n := range result.CountByClass() {
				total += n
			}
			assert.Equal(t, len(stored), total)
		})
	}
}

func TestDFS_Forest(t *testing.T) {
	result, err := DFS(context.Background(), dressingGraph())
	require.NoError(t, err)

	// underwear, shirt and socks are never reached from an earlier root.
	for _, root := range []string{"underwear", "shirt", "socks"} {
		_, hasParent := result.Predecessor[root]
		assert.False(t, hasParent, "%s should be a forest root", root)
	}
	assert.Equal(t, 2*dressingGraph().NodeCount(), result.Time)
}

func TestDFS_DeepChainDoesNotRecurse(t *testing.T) {
	g := New[int]()
	const depth = 200_000
	for i := 0; i < depth; i++ {
		g.AddEdge(i, i+1, nil, nil, nil)
	}

	result, err := DFS(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Discovery[0])
	assert.Equal(t, 2*(depth+1), result.Finish[0])
	assert.False(t, result.HasBackEdge())
}

// =============================================================================
// IsAcyclic / TopologicalSort
// =============================================================================

func TestIsAcyclic(t *testing.T) {
	ok, err := IsAcyclic(context.Background(), dressingGraph())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAcyclic(context.Background(), bellmanGraph())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAcyclic_BackEdgeNotFirst(t *testing.T) {
	// The first classified edge is a tree edge; the only back edge comes last.
	g := New[string]()
	g.AddEdge("a", "b", nil, nil, nil)
	g.AddEdge("b", "c", nil, nil, nil)
	g.AddEdge("c", "d", nil, nil, nil)
	g.AddEdge("d", "b", nil, nil, nil)

	ok, err := IsAcyclic(context.Background(), g)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTopologicalSort_Dressing(t *testing.T) {
	g := dressingGraph()

	order, err := TopologicalSort(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, order, g.NodeCount())

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, position[e.From], position[e.To], "%s must precede %s", e.From, e.To)
	}
}

func TestTopologicalSort_DescendingFinishTime(t *testing.T) {
	g := New[string]()
	g.AddEdge("a", "b", nil, nil, nil)
	g.AddEdge("c", "b", nil, nil, nil)

	order, err := TopologicalSort(context.Background(), g)
	require.NoError(t, err)
	// finish order: b(3) a(4) c(6)
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestTopologicalSort_Cyclic(t *testing.T) {
	_, err := TopologicalSort(context.Background(), bellmanGraph())
	if !errors.Is(err, ErrCyclicGraph) {
		t.Fatalf("TopologicalSort() error = %v, want ErrCyclicGraph", err)
	}
}

// =============================================================================
// ShortestPaths
// =============================================================================

func TestShortestPaths_Bellman(t *testing.T) {
	result, err := ShortestPaths(context.Background(), bellmanGraph(), "C", "weight")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"A": -4, "B": -2, "C": 0, "D": -6, "E": 3}, result.Distance)
	assert.Equal(t, map[string]string{"A": "D", "B": "C", "D": "B", "E": "A"}, result.Predecessor)
	assert.Equal(t, []string{"C", "B", "D", "A", "E"}, result.PathTo("E"))
	assert.LessOrEqual(t, result.Rounds, 4)
}

func TestShortestPaths_Unreachable(t *testing.T) {
	g := New[string]()
	g.AddEdge("a", "b", Attrs{"w": IntValue(3)}, nil, nil)
	g.AddNode("island", nil)

	result, err := ShortestPaths(context.Background(), g, "a", "w")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Distance["b"])
	assert.Equal(t, int64(NoPath), result.Distance["island"])
	assert.Nil(t, result.PathTo("island"))
	_, ok := result.Predecessor["island"]
	assert.False(t, ok)
}

func TestShortestPaths_NeedsFullRoundBound(t *testing.T) {
	// Edges are stored so that each round only settles one more hop; the
	// last node is only correct after |V|-1 rounds.
	g := New[string]()
	g.AddNode("n4", nil)
	g.AddNode("n3", nil)
	g.AddNode("n2", nil)
	g.AddNode("n1", nil)
	g.AddNode("n0", nil)
	g.AddEdge("n3", "n4", Attrs{"weight": IntValue(1)}, nil, nil)
	g.AddEdge("n2", "n3", Attrs{"weight": IntValue(1)}, nil, nil)
	g.AddEdge("n1", "n2", Attrs{"weight": IntValue(1)}, nil, nil)
	g.AddEdge("n0", "n1", Attrs{"weight": IntValue(1)}, nil, nil)

	result, err := ShortestPaths(context.Background(), g, "n0", "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Distance["n4"])
	assert.Equal(t, 4, result.Rounds)
}

func TestShortestPaths_Errors(t *testing.T) {
	tests := []struct {
		name    string
		attrs   Attrs
		source  string
		wantErr error
	}{
		{"unknown source", Attrs{"weight": IntValue(1)}, "zz", ErrNodeNotFound},
		{"missing weight", Attrs{}, "a", ErrInvalidWeight},
		{"non-integer weight", Attrs{"weight": StringValue("1.5")}, "a", ErrInvalidWeight},
		{"fractional float", Attrs{"weight": FloatValue(0.5)}, "a", ErrInvalidWeight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := New[string]()
			g.AddEdge("a", "b", tc.attrs, nil, nil)

			_, err := ShortestPaths(context.Background(), g, tc.source, "weight")
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ShortestPaths() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func ExampleTopologicalSort() {
	g := New[string]()
	g.AddEdge("socks", "shoes", nil, nil, nil)
	g.AddEdge("trousers", "shoes", nil, nil, nil)

	order, _ := TopologicalSort(context.Background(), g)
	fmt.Println(order)
	// Output: [trousers socks shoes]
}
