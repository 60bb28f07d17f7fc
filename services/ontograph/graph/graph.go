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

// Graph is a labeled graph without parallel edges.
//
// Description:
//
//	Nodes are kept in insertion order and every node keeps its outgoing
//	edges in insertion order. Traversals iterate in those orders, so
//	tie-breaking (BFS predecessors, DFS discovery times) is deterministic
//	for a given insertion sequence.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use while being populated. Once no
//	more writes happen it may be read from multiple goroutines.
type Graph[K comparable] struct {
	// nodes maps node key to Node. Unexported to prevent direct access.
	nodes map[K]*Node[K]

	// order lists node keys in insertion order.
	order []K

	// edgeCount is the number of inserted pairs. An undirected pair
	// counts once even though both directions are stored.
	edgeCount int

	options Options
}

// New creates an empty graph.
//
// Description:
//
//	The default graph is directed and unweighted.
//
// Example:
//
//	g := graph.New[string]()
//	u := graph.New[int](graph.WithDirected(false))
func New[K comparable](opts ...Option) *Graph[K] {
	options := Options{Directed: true}
	for _, opt := range opts {
		opt(&options)
	}
	return &Graph[K]{
		nodes:   make(map[K]*Node[K]),
		order:   make([]K, 0),
		options: options,
	}
}

// NewDirected creates an empty directed graph.
func NewDirected[K comparable](weighted bool) *Graph[K] {
	return New[K](WithDirected(true), WithWeighted(weighted))
}

// NewUndirected creates an empty undirected graph.
func NewUndirected[K comparable](weighted bool) *Graph[K] {
	return New[K](WithDirected(false), WithWeighted(weighted))
}

// IsDirected reports whether the graph is directed.
func (g *Graph[K]) IsDirected() bool {
	return g.options.Directed
}

// IsWeighted reports the weighted flag.
func (g *Graph[K]) IsWeighted() bool {
	return g.options.Weighted
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph[K]) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges inserted into the graph.
//
// In undirected mode each pair is counted once even though it can be read
// in both directions.
func (g *Graph[K]) EdgeCount() int {
	return g.edgeCount
}

// AddNode adds a node and returns its attributes.
//
// Description:
//
//	Idempotent. If the node already exists its attributes are returned
//	unchanged and attrs is ignored. Otherwise the node is inserted with
//	attrs (or an empty map when attrs is nil) and no outgoing edges.
//
// Inputs:
//
//	id - The node key.
//	attrs - Initial attributes. May be nil.
//
// Outputs:
//
//	Attrs - The live attribute map stored for the node.
func (g *Graph[K]) AddNode(id K, attrs Attrs) Attrs {
	return g.AddNodeOfKind(id, KindUnknown, attrs)
}

// AddNodeOfKind adds a node with a kind tag and returns its attributes.
//
// Description:
//
//	Behaves like AddNode. When the node already exists with KindUnknown
//	(for example because an edge referenced it first), its kind is set to
//	kind. A node that already carries a kind keeps it.
func (g *Graph[K]) AddNodeOfKind(id K, kind NodeKind, attrs Attrs) Attrs {
	if node, exists := g.nodes[id]; exists {
		if node.Kind == KindUnknown {
			node.Kind = kind
		}
		return node.Attrs
	}

	if attrs == nil {
		attrs = Attrs{}
	}
	g.nodes[id] = &Node[K]{
		ID:       id,
		Kind:     kind,
		Attrs:    attrs,
		out:      make([]K, 0),
		outAttrs: make(map[K]Attrs),
	}
	g.order = append(g.order, id)
	return attrs
}

// AddEdge adds an edge from src to dst and returns its attributes.
//
// Description:
//
//	Missing endpoints are created first, using srcAttrs and dstAttrs as
//	their initial attributes. If the ordered pair already exists, its
//	attributes are returned unchanged (first write wins). Otherwise the
//	edge is inserted and EdgeCount grows by one. In undirected mode the
//	reverse pair is registered with the SAME attribute map, so a write
//	through one direction is visible through the other.
//
// Inputs:
//
//	src - Source node key.
//	dst - Target node key.
//	attrs - Edge attributes. May be nil.
//	srcAttrs - Attributes for src if it has to be created. May be nil.
//	dstAttrs - Attributes for dst if it has to be created. May be nil.
//
// Outputs:
//
//	Attrs - The live attribute map stored for the edge.
func (g *Graph[K]) AddEdge(src, dst K, attrs, srcAttrs, dstAttrs Attrs) Attrs {
	if _, ok := g.nodes[src]; !ok {
		g.AddNode(src, srcAttrs)
	}
	if _, ok := g.nodes[dst]; !ok {
		g.AddNode(dst, dstAttrs)
	}

	from := g.nodes[src]
	if existing, ok := from.outAttrs[dst]; ok {
		return existing
	}

	if attrs == nil {
		attrs = Attrs{}
	}
	from.out = append(from.out, dst)
	from.outAttrs[dst] = attrs

	if !g.options.Directed {
		to := g.nodes[dst]
		if _, ok := to.outAttrs[src]; !ok {
			to.out = append(to.out, src)
			to.outAttrs[src] = attrs
		}
	}

	g.edgeCount++
	return attrs
}

// Node retrieves a node by key.
//
// Outputs:
//
//	*Node[K] - The node if found, nil otherwise.
//	bool - True if the node was found.
func (g *Graph[K]) Node(id K) (*Node[K], bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// HasNode reports whether id is a node of the graph.
func (g *Graph[K]) HasNode(id K) bool {
	_, ok := g.nodes[id]
	return ok
}

// Kind returns the kind tag of a node.
func (g *Graph[K]) Kind(id K) (NodeKind, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return KindUnknown, false
	}
	return node.Kind, true
}

// EdgeAttrs returns the attributes of the ordered pair (src, dst).
func (g *Graph[K]) EdgeAttrs(src, dst K) (Attrs, bool) {
	node, ok := g.nodes[src]
	if !ok {
		return nil, false
	}
	attrs, ok := node.outAttrs[dst]
	return attrs, ok
}

// HasEdge reports whether the ordered pair (src, dst) exists.
func (g *Graph[K]) HasEdge(src, dst K) bool {
	_, ok := g.EdgeAttrs(src, dst)
	return ok
}

// Neighbors returns the outgoing neighbors of id in edge insertion order.
//
// The returned slice is the graph's own storage and must not be modified.
// Returns nil for unknown nodes.
func (g *Graph[K]) Neighbors(id K) []K {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return node.out
}

// OutDegree returns the number of outgoing edges of id.
func (g *Graph[K]) OutDegree(id K) int {
	return len(g.Neighbors(id))
}

// NodeIDs returns node keys in insertion order.
//
// The returned slice is the graph's own storage and must not be modified.
func (g *Graph[K]) NodeIDs() []K {
	return g.order
}

// Nodes returns an iterator over nodes in insertion order.
//
// Example:
//
//	for id, node := range g.Nodes() {
//	    fmt.Printf("Node: %v\n", id)
//	}
func (g *Graph[K]) Nodes() func(yield func(K, *Node[K]) bool) {
	return func(yield func(K, *Node[K]) bool) {
		for _, id := range g.order {
			if !yield(id, g.nodes[id]) {
				return
			}
		}
	}
}

// Edges returns every stored ordered pair.
//
// Description:
//
//	Pairs are listed by source node insertion order, then by edge insertion
//	order. In undirected mode both directions of each pair are listed, so
//	the result can be longer than EdgeCount.
func (g *Graph[K]) Edges() []Edge[K] {
	edges := make([]Edge[K], 0, g.edgeCount)
	for _, id := range g.order {
		node := g.nodes[id]
		for _, to := range node.out {
			edges = append(edges, Edge[K]{From: id, To: to, Attrs: node.outAttrs[to]})
		}
	}
	return edges
}

// Stats returns counts describing the graph.
func (g *Graph[K]) Stats() Stats {
	byKind := make(map[NodeKind]int)
	for _, node := range g.nodes {
		byKind[node.Kind]++
	}
	return Stats{
		NodeCount:   len(g.order),
		EdgeCount:   g.edgeCount,
		NodesByKind: byKind,
		Directed:    g.options.Directed,
		Weighted:    g.options.Weighted,
	}
}
