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

import "fmt"

// SnapshotNode is the serialisable form of a node.
type SnapshotNode[K comparable] struct {
	ID    K        `json:"id"`
	Kind  NodeKind `json:"kind"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// SnapshotEdge is the serialisable form of an inserted edge.
type SnapshotEdge[K comparable] struct {
	From  K     `json:"from"`
	To    K     `json:"to"`
	Attrs Attrs `json:"attrs,omitempty"`
}

// Snapshot is a serialisable copy of a graph's structure.
//
// Edges lists each inserted pair once. Replaying it with AddEdge reproduces
// the node set, the edge set and the shared attribute maps of undirected
// pairs. For directed graphs neighbor order is reproduced as well.
type Snapshot[K comparable] struct {
	Directed bool              `json:"directed"`
	Weighted bool              `json:"weighted"`
	Nodes    []SnapshotNode[K] `json:"nodes"`
	Edges    []SnapshotEdge[K] `json:"edges"`
}

// Snapshot captures the graph. Attribute maps are shared with the graph,
// not copied; encode the snapshot before mutating the graph further.
func (g *Graph[K]) Snapshot() *Snapshot[K] {
	snap := &Snapshot[K]{
		Directed: g.options.Directed,
		Weighted: g.options.Weighted,
		Nodes:    make([]SnapshotNode[K], 0, len(g.order)),
		Edges:    make([]SnapshotEdge[K], 0, g.edgeCount),
	}
	for _, id := range g.order {
		node := g.nodes[id]
		snap.Nodes = append(snap.Nodes, SnapshotNode[K]{ID: id, Kind: node.Kind, Attrs: node.Attrs})
	}

	type pair struct{ a, b K }
	emitted := make(map[pair]bool)
	for _, id := range g.order {
		node := g.nodes[id]
		for _, to := range node.out {
			if !g.options.Directed && emitted[pair{to, id}] {
				continue
			}
			emitted[pair{id, to}] = true
			snap.Edges = append(snap.Edges, SnapshotEdge[K]{From: id, To: to, Attrs: node.outAttrs[to]})
		}
	}
	return snap
}

// FromSnapshot rebuilds a graph from a snapshot.
//
// Outputs:
//
//	*Graph[K] - The rebuilt graph.
//	error - ErrInvalidSnapshot if an edge endpoint is not a listed node.
func FromSnapshot[K comparable](snap *Snapshot[K]) (*Graph[K], error) {
	g := New[K](WithDirected(snap.Directed), WithWeighted(snap.Weighted))
	for _, n := range snap.Nodes {
		g.AddNodeOfKind(n.ID, n.Kind, n.Attrs)
	}
	for i, e := range snap.Edges {
		if !g.HasNode(e.From) || !g.HasNode(e.To) {
			return nil, fmt.Errorf("%w: edge[%d] %v -> %v references unknown node", ErrInvalidSnapshot, i, e.From, e.To)
		}
		g.AddEdge(e.From, e.To, e.Attrs, nil, nil)
	}
	return g, nil
}
