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
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Unreachable is the distance reported for nodes that a search never reached.
const Unreachable = math.MaxInt

// contextCheckInterval is how often to check context during traversal.
const contextCheckInterval = 100

// Color is the visit state of a node during a search.
type Color uint8

const (
	// White marks a node that has not been discovered.
	White Color = iota

	// Gray marks a discovered node whose neighbors are still being explored.
	Gray

	// Black marks a node whose exploration is complete.
	Black
)

// String returns the string representation of the Color.
func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Gray:
		return "gray"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// BFSResult contains the output of a breadth-first search.
type BFSResult[K comparable] struct {
	// Source is the node the search started from.
	Source K

	// Color holds the final visit state of every node. Reached nodes are
	// Black, unreached nodes stay White.
	Color map[K]Color

	// Distance holds the number of edges on the shortest path from Source.
	// Unreached nodes hold Unreachable.
	Distance map[K]int

	// Predecessor holds the BFS-tree parent of every reached node other
	// than Source. Source and unreached nodes have no entry.
	Predecessor map[K]K

	// Order lists nodes in the order they were dequeued.
	Order []K
}

// PredecessorOf returns the BFS-tree parent of id.
func (r *BFSResult[K]) PredecessorOf(id K) (K, bool) {
	p, ok := r.Predecessor[id]
	return p, ok
}

// Reached reports whether the search reached id.
func (r *BFSResult[K]) Reached(id K) bool {
	d, ok := r.Distance[id]
	return ok && d != Unreachable
}

// BFS runs a breadth-first search from source.
//
// Description:
//
//	Classic layered search. Every node starts White with distance
//	Unreachable and no predecessor; source starts Gray at distance 0. A
//	FIFO queue processes nodes in discovery order and neighbors are
//	visited in edge insertion order, which decides the predecessor on
//	ties. A node goes White -> Gray when first discovered (distance =
//	parent distance + 1) and Gray -> Black once dequeued and expanded.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked every contextCheckInterval nodes.
//	g - The graph to search.
//	source - The start node.
//
// Outputs:
//
//	*BFSResult[K] - Colors, distances and predecessors.
//	error - ErrNodeNotFound if source is not in g, or the context error.
//
// Complexity: O(V + E).
func BFS[K comparable](ctx context.Context, g *Graph[K], source K) (*BFSResult[K], error) {
	start := time.Now()
	ctx, span := startTraversalSpan(ctx, "BFS", g.NodeCount(), g.EdgeCount())
	defer span.End()

	if !g.HasNode(source) {
		err := fmt.Errorf("%w: bfs source %v", ErrNodeNotFound, source)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordTraversalMetrics(ctx, "BFS", time.Since(start), 0, false)
		return nil, err
	}

	result := &BFSResult[K]{
		Source:      source,
		Color:       make(map[K]Color, g.NodeCount()),
		Distance:    make(map[K]int, g.NodeCount()),
		Predecessor: make(map[K]K),
		Order:       make([]K, 0),
	}
	for _, id := range g.NodeIDs() {
		result.Color[id] = White
		result.Distance[id] = Unreachable
	}
	result.Color[source] = Gray
	result.Distance[source] = 0

	queue := []K{source}
	for len(queue) > 0 {
		if len(result.Order)%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				span.RecordError(err)
				recordTraversalMetrics(ctx, "BFS", time.Since(start), len(result.Order), false)
				return nil, err
			}
		}

		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Neighbors(u) {
			if result.Color[v] != White {
				continue
			}
			result.Color[v] = Gray
			result.Distance[v] = result.Distance[u] + 1
			result.Predecessor[v] = u
			queue = append(queue, v)
		}
		result.Color[u] = Black
		result.Order = append(result.Order, u)
	}

	span.SetAttributes(attribute.Int("bfs.reached", len(result.Order)))
	recordTraversalMetrics(ctx, "BFS", time.Since(start), len(result.Order), true)
	return result, nil
}
