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

// =============================================================================
// Single-Source Shortest Paths (Bellman-Ford relaxation)
// =============================================================================

// DefaultWeightKey is the edge attribute read for weights when none is given.
const DefaultWeightKey = "weight"

// NoPath is the distance reported for nodes not reachable from the source.
const NoPath = math.MaxInt64

// PathResult contains the output of ShortestPaths.
type PathResult[K comparable] struct {
	// Source is the start node.
	Source K

	// Distance holds the minimum total weight from Source. Nodes that are
	// not reachable hold NoPath.
	Distance map[K]int64

	// Predecessor holds the last hop of the best path to each reached node
	// other than Source.
	Predecessor map[K]K

	// Rounds is the number of relaxation rounds performed.
	Rounds int
}

// PathTo returns the node sequence of the best path from Source to target.
//
// Outputs:
//
//	[]K - Source ... target, or nil if target was not reached.
func (r *PathResult[K]) PathTo(target K) []K {
	d, ok := r.Distance[target]
	if !ok || d == NoPath {
		return nil
	}

	path := []K{target}
	seen := map[K]bool{target: true}
	cur := target
	for cur != r.Source {
		prev, ok := r.Predecessor[cur]
		if !ok || seen[prev] {
			return nil
		}
		seen[prev] = true
		path = append(path, prev)
		cur = prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ShortestPaths computes single-source shortest paths by edge relaxation.
//
// Description:
//
//	Every distance starts at NoPath except source (0). All stored edges are
//	then relaxed, in Edges() order, for |V|-1 rounds: an edge (u, v) with
//	weight w updates v when Distance[u] + w is strictly smaller than
//	Distance[v]. Weights are read from the weightKey attribute and must be
//	integers (an Int value or a decimal string).
//
//	The loop stops early once a full round makes no update. There is no
//	negative-cycle detection pass; on graphs with a negative cycle
//	reachable from source the distances are those after |V|-1 rounds.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked once per round.
//	g - The graph to search.
//	source - The start node.
//	weightKey - Edge attribute holding the weight. "" means DefaultWeightKey.
//
// Outputs:
//
//	*PathResult[K] - Distances and predecessors.
//	error - ErrNodeNotFound, ErrInvalidWeight, or the context error.
//
// Complexity: O(V × E).
func ShortestPaths[K comparable](ctx context.Context, g *Graph[K], source K, weightKey string) (*PathResult[K], error) {
	start := time.Now()
	ctx, span := startTraversalSpan(ctx, "ShortestPaths", g.NodeCount(), g.EdgeCount())
	defer span.End()

	fail := func(err error) (*PathResult[K], error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordTraversalMetrics(ctx, "ShortestPaths", time.Since(start), 0, false)
		return nil, err
	}

	if weightKey == "" {
		weightKey = DefaultWeightKey
	}
	if !g.HasNode(source) {
		return fail(fmt.Errorf("%w: shortest path source %v", ErrNodeNotFound, source))
	}

	type weightedEdge struct {
		from, to K
		weight   int64
	}
	stored := g.Edges()
	edges := make([]weightedEdge, 0, len(stored))
	for _, e := range stored {
		w, ok := e.Attrs[weightKey].Integer()
		if !ok {
			return fail(fmt.Errorf("%w: edge %v -> %v attribute %q = %s",
				ErrInvalidWeight, e.From, e.To, weightKey, e.Attrs[weightKey]))
		}
		edges = append(edges, weightedEdge{from: e.From, to: e.To, weight: w})
	}

	result := &PathResult[K]{
		Source:      source,
		Distance:    make(map[K]int64, g.NodeCount()),
		Predecessor: make(map[K]K),
	}
	for _, id := range g.NodeIDs() {
		result.Distance[id] = NoPath
	}
	result.Distance[source] = 0

	for round := 1; round < g.NodeCount(); round++ {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		result.Rounds = round

		updated := false
		for _, e := range edges {
			du := result.Distance[e.from]
			if du == NoPath {
				continue
			}
			if candidate := du + e.weight; candidate < result.Distance[e.to] {
				result.Distance[e.to] = candidate
				result.Predecessor[e.to] = e.from
				updated = true
			}
		}
		if !updated {
			break
		}
	}

	reached := 0
	for _, d := range result.Distance {
		if d != NoPath {
			reached++
		}
	}
	span.SetAttributes(
		attribute.Int("shortest_paths.rounds", result.Rounds),
		attribute.Int("shortest_paths.reached", reached),
	)
	recordTraversalMetrics(ctx, "ShortestPaths", time.Since(start), reached, true)
	return result, nil
}
