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

// NodeKind tags a node with the role it plays in a domain layer.
//
// The tag is assigned once, when the node is created by a loader, and is
// never re-derived from the node key afterwards.
type NodeKind uint8

const (
	// KindUnknown is the tag of nodes created without an explicit kind,
	// for example endpoints auto-created by AddEdge.
	KindUnknown NodeKind = iota

	// KindTerm marks an ontology concept.
	KindTerm

	// KindEntity marks an annotated object such as a gene product.
	KindEntity
)

var nodeKindNames = map[NodeKind]string{
	KindUnknown: "unknown",
	KindTerm:    "term",
	KindEntity:  "entity",
}

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node is a graph vertex.
//
// The Attrs map is owned by the graph; callers may mutate it in place.
type Node[K comparable] struct {
	// ID is the caller-chosen node key.
	ID K

	// Kind is the domain tag of the node.
	Kind NodeKind

	// Attrs holds arbitrary named attributes.
	Attrs Attrs

	// out lists outgoing neighbor keys in edge insertion order.
	out []K

	// outAttrs maps neighbor key to edge attributes.
	outAttrs map[K]Attrs
}

// Edge is a materialised view of one ordered (From, To) pair.
type Edge[K comparable] struct {
	// From is the source node key.
	From K

	// To is the target node key.
	To K

	// Attrs is the live attribute map of the edge.
	Attrs Attrs
}

// Options configures a Graph.
type Options struct {
	// Directed selects directed mode. Default: true.
	Directed bool

	// Weighted records that edges carry a weight attribute. The flag is
	// informational; ShortestPaths reads weights from a named attribute
	// regardless.
	Weighted bool
}

// Option is a functional option for configuring Graph.
type Option func(*Options)

// WithDirected sets directed or undirected mode.
func WithDirected(directed bool) Option {
	return func(o *Options) {
		o.Directed = directed
	}
}

// WithWeighted sets the weighted flag.
func WithWeighted(weighted bool) Option {
	return func(o *Options) {
		o.Weighted = weighted
	}
}

// Stats contains counts describing a graph.
type Stats struct {
	// NodeCount is the total number of nodes.
	NodeCount int

	// EdgeCount is the number of inserted pairs (undirected pairs once).
	EdgeCount int

	// NodesByKind maps each NodeKind to its node count.
	NodesByKind map[NodeKind]int

	// Directed reports the graph mode.
	Directed bool

	// Weighted reports the weighted flag.
	Weighted bool
}
