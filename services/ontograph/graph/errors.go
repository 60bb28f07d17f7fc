// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides a labeled directed/undirected graph store and the
// traversal algorithms that run over it.
//
// The graph is generic over the node key type. Nodes carry an attribute map
// and a kind tag; edges are deduplicated per ordered (source, target) pair and
// carry their own attribute map.
//
// # Attribute Ownership
//
// AddNode and AddEdge return the live attribute map stored in the graph, not
// a copy. Writes through the returned map are visible to every later reader.
// In undirected mode the two directions of a pair share one map.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use while it is being populated. It is
// designed for:
//   - Single-writer access during load (AddNode, AddEdge calls)
//   - Read-only access afterwards
//
// Concurrent readers are safe only while no writer is active. The package
// itself takes no locks.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Create with New[K]()
//  2. Populate with AddNode() and AddEdge() calls
//  3. Query with BFS, DFS, TopologicalSort, ShortestPaths
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrNodeNotFound is returned when a traversal is started from a node
	// that does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrCyclicGraph is returned by TopologicalSort when depth-first search
	// classifies at least one edge as a back edge.
	ErrCyclicGraph = errors.New("graph contains a cycle")

	// ErrInvalidWeight is returned by ShortestPaths when an edge has no
	// weight attribute or the attribute is not an integer.
	ErrInvalidWeight = errors.New("invalid edge weight")

	// ErrInvalidSnapshot is returned when a snapshot references an edge
	// endpoint that is not listed among its nodes.
	ErrInvalidSnapshot = errors.New("invalid graph snapshot")
)
