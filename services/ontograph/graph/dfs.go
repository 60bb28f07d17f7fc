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
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// =============================================================================
// Depth-First Search
// =============================================================================

// EdgeClass is the classification DFS assigns to an edge.
type EdgeClass uint8

const (
	// TreeEdge leads to a newly discovered node.
	TreeEdge EdgeClass = iota

	// BackEdge leads to a node on the current search path. Its presence
	// proves a cycle.
	BackEdge

	// ForwardEdge leads to a finished descendant of the current node.
	ForwardEdge

	// CrossEdge leads to a finished node discovered before the current one.
	CrossEdge
)

var edgeClassNames = map[EdgeClass]string{
	TreeEdge:    "tree",
	BackEdge:    "back",
	ForwardEdge: "forward",
	CrossEdge:   "cross",
}

// String returns the string representation of the EdgeClass.
func (c EdgeClass) String() string {
	if name, ok := edgeClassNames[c]; ok {
		return name
	}
	return "unknown"
}

// EdgeKey identifies an ordered pair.
type EdgeKey[K comparable] struct {
	From K
	To   K
}

// ClassifiedEdge is an edge together with its DFS classification.
type ClassifiedEdge[K comparable] struct {
	EdgeKey[K]
	Class EdgeClass
}

// DFSResult contains the output of a full depth-first search.
type DFSResult[K comparable] struct {
	// Color holds the final visit state of every node (all Black).
	Color map[K]Color

	// Predecessor holds the DFS-forest parent of every non-root node.
	Predecessor map[K]K

	// Discovery holds the timestamp at which each node turned Gray.
	Discovery map[K]int

	// Finish holds the timestamp at which each node turned Black.
	Finish map[K]int

	// Time is the last timestamp issued (2 × node count).
	Time int

	// EdgeClass maps every ordered pair of the graph to its class.
	EdgeClass map[EdgeKey[K]]EdgeClass

	// Edges lists classified edges in the order they were examined.
	Edges []ClassifiedEdge[K]

	// FinishOrder lists nodes in the order they turned Black.
	FinishOrder []K
}

// HasBackEdge reports whether any edge was classified as a back edge.
//
// Every classified edge is examined; the answer does not depend on the
// order in which edges were classified.
func (r *DFSResult[K]) HasBackEdge() bool {
	for _, e := range r.Edges {
		if e.Class == BackEdge {
			return true
		}
	}
	return false
}

// CountByClass returns the number of edges in each class.
func (r *DFSResult[K]) CountByClass() map[EdgeClass]int {
	counts := make(map[EdgeClass]int, len(edgeClassNames))
	for _, e := range r.Edges {
		counts[e.Class]++
	}
	return counts
}

// dfsFrame is one entry of the explicit search stack.
type dfsFrame[K comparable] struct {
	node K
	next int
}

// dfsState is the traversal context owned by a single DFS call.
type dfsState[K comparable] struct {
	g      *Graph[K]
	result *DFSResult[K]
	clock  int
}

func (s *dfsState[K]) tick() int {
	s.clock++
	return s.clock
}

func (s *dfsState[K]) discover(id K) {
	s.result.Color[id] = Gray
	s.result.Discovery[id] = s.tick()
}

func (s *dfsState[K]) finish(id K) {
	s.result.Color[id] = Black
	s.result.Finish[id] = s.tick()
	s.result.FinishOrder = append(s.result.FinishOrder, id)
}

func (s *dfsState[K]) classify(from, to K, class EdgeClass) {
	key := EdgeKey[K]{From: from, To: to}
	s.result.EdgeClass[key] = class
	s.result.Edges = append(s.result.Edges, ClassifiedEdge[K]{EdgeKey: key, Class: class})
}

// visit explores everything reachable from root that is still White.
//
// The search uses an explicit stack instead of recursion, so long chains
// cannot exhaust the goroutine stack. Stamps and classifications match the
// recursive formulation exactly.
func (s *dfsState[K]) visit(ctx context.Context, root K) error {
	s.discover(root)
	stack := []dfsFrame[K]{{node: root}}
	steps := 0

	for len(stack) > 0 {
		steps++
		if steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		top := &stack[len(stack)-1]
		u := top.node
		neighbors := s.g.Neighbors(u)
		if top.next < len(neighbors) {
			v := neighbors[top.next]
			top.next++

			switch s.result.Color[v] {
			case White:
				s.classify(u, v, TreeEdge)
				s.result.Predecessor[v] = u
				s.discover(v)
				stack = append(stack, dfsFrame[K]{node: v})
			case Gray:
				s.classify(u, v, BackEdge)
			default:
				if s.result.Discovery[v] < s.result.Discovery[u] {
					s.classify(u, v, CrossEdge)
				} else {
					s.classify(u, v, ForwardEdge)
				}
			}
			continue
		}

		s.finish(u)
		stack = stack[:len(stack)-1]
	}
	return nil
}

// DFS runs a depth-first search over the whole graph.
//
// Description:
//
//	Visits every node, in node insertion order, building a DFS forest. A
//	node is discovered (turned Gray) with a discovery stamp, its outgoing
//	edges are examined in insertion order, then it is finished (turned
//	Black) with a finish stamp. The stamp counter is incremented before
//	each stamp, so the first discovery is 1. Each examined edge (u, v) is
//	classified:
//
//	  - v White: tree edge, v is explored next
//	  - v Gray (on the current path): back edge
//	  - v Black, discovered before u: cross edge
//	  - v Black, discovered after u: forward edge
//
//	In undirected mode each pair is examined in both directions; the
//	reverse of a tree edge is therefore reported as a back edge.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	g - The graph to search.
//
// Outputs:
//
//	*DFSResult[K] - Stamps, forest and classification.
//	error - Non-nil only if ctx is cancelled.
//
// Complexity: O(V + E).
func DFS[K comparable](ctx context.Context, g *Graph[K]) (*DFSResult[K], error) {
	start := time.Now()
	ctx, span := startTraversalSpan(ctx, "DFS", g.NodeCount(), g.EdgeCount())
	defer span.End()

	n := g.NodeCount()
	state := &dfsState[K]{
		g: g,
		result: &DFSResult[K]{
			Color:       make(map[K]Color, n),
			Predecessor: make(map[K]K),
			Discovery:   make(map[K]int, n),
			Finish:      make(map[K]int, n),
			EdgeClass:   make(map[EdgeKey[K]]EdgeClass),
			Edges:       make([]ClassifiedEdge[K], 0),
			FinishOrder: make([]K, 0, n),
		},
	}
	for _, id := range g.NodeIDs() {
		state.result.Color[id] = White
	}

	for _, id := range g.NodeIDs() {
		if state.result.Color[id] != White {
			continue
		}
		if err := state.visit(ctx, id); err != nil {
			span.RecordError(err)
			recordTraversalMetrics(ctx, "DFS", time.Since(start), len(state.result.FinishOrder), false)
			return nil, err
		}
	}
	state.result.Time = state.clock

	span.SetAttributes(
		attribute.Int("dfs.classified_edges", len(state.result.Edges)),
		attribute.Bool("dfs.has_back_edge", state.result.HasBackEdge()),
	)
	recordTraversalMetrics(ctx, "DFS", time.Since(start), n, true)
	return state.result, nil
}

// IsAcyclic reports whether g contains no cycle.
//
// Description:
//
//	Runs DFS and returns false iff at least one edge is a back edge. All
//	classified edges are examined before concluding.
func IsAcyclic[K comparable](ctx context.Context, g *Graph[K]) (bool, error) {
	result, err := DFS(ctx, g)
	if err != nil {
		return false, err
	}
	return !result.HasBackEdge(), nil
}
