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

	"go.opentelemetry.io/otel/codes"
)

// TopologicalSort orders the nodes of an acyclic graph.
//
// Description:
//
//	Runs DFS once. If any edge is a back edge the graph has a cycle and
//	ErrCyclicGraph is returned, naming the first back edge found. Otherwise
//	nodes are returned by descending finish time: the node that finished
//	last comes first, so for every edge (u, v) u precedes v.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	g - The graph to sort.
//
// Outputs:
//
//	[]K - Node keys in topological order.
//	error - ErrCyclicGraph, or the context error.
//
// Example:
//
//	order, err := graph.TopologicalSort(ctx, g)
//	if errors.Is(err, graph.ErrCyclicGraph) {
//	    // report the cycle
//	}
func TopologicalSort[K comparable](ctx context.Context, g *Graph[K]) ([]K, error) {
	ctx, span := tracer.Start(ctx, "graph.TopologicalSort")
	defer span.End()

	result, err := DFS(ctx, g)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, e := range result.Edges {
		if e.Class == BackEdge {
			err := fmt.Errorf("%w: back edge %v -> %v", ErrCyclicGraph, e.From, e.To)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	n := len(result.FinishOrder)
	order := make([]K, n)
	for i, id := range result.FinishOrder {
		order[n-1-i] = id
	}
	return order, nil
}
