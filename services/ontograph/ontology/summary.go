// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ontology

import (
	"context"
	"slices"
	"strings"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// NamespaceCount holds per-namespace totals.
type NamespaceCount struct {
	Namespace   string `json:"namespace"`
	Terms       int    `json:"terms"`
	Annotations int    `json:"annotations"`
}

// Summary describes the contents of a sealed ontology.
type Summary struct {
	Terms           int              `json:"terms"`
	Entities        int              `json:"entities"`
	HierarchyEdges  int              `json:"hierarchy_edges"`
	AnnotationEdges int              `json:"annotation_edges"`
	AltIDs          int              `json:"alt_ids"`
	Relations       map[string]int   `json:"relations"`
	Namespaces      []NamespaceCount `json:"namespaces"`

	// Roots lists terms without a parent term, sorted.
	Roots []string `json:"roots"`
}

// AnnotationShare returns the fraction of annotation edges pointing into
// namespace, or 0 when there are no annotations.
func (s *Summary) AnnotationShare(namespace string) float64 {
	if s.AnnotationEdges == 0 {
		return 0
	}
	for _, ns := range s.Namespaces {
		if ns.Namespace == namespace {
			return float64(ns.Annotations) / float64(s.AnnotationEdges)
		}
	}
	return 0
}

// Summary counts terms, entities and edges of the ontology.
//
// Description:
//
//	Hierarchy edges are edges between two terms, tallied by relation in
//	Relations. Annotation edges are attributed to the namespace of the term
//	they point at. Terms without a namespace attribute count under "".
//
// Outputs:
//
//	*Summary - The counts.
//	error - ErrNotReady before Seal, or the context error.
func (o *Ontology) Summary(ctx context.Context) (*Summary, error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	_, span := tracer.Start(ctx, "ontology.Summary")
	defer span.End()

	s := &Summary{
		AltIDs:    len(o.altIDs),
		Relations: make(map[string]int),
		Roots:     make([]string, 0),
	}
	byNamespace := make(map[string]*NamespaceCount)
	bucket := func(ns string) *NamespaceCount {
		c, ok := byNamespace[ns]
		if !ok {
			c = &NamespaceCount{Namespace: ns}
			byNamespace[ns] = c
		}
		return c
	}

	scanned := 0
	for id, node := range o.graph.Nodes() {
		scanned++
		if scanned%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		isTerm := node.Kind == graph.KindTerm
		if isTerm {
			s.Terms++
			bucket(node.Attrs.GetString(AttrNamespace)).Terms++
		} else {
			s.Entities++
		}

		hasParent := false
		for _, to := range o.graph.Neighbors(id) {
			target, _ := o.graph.Node(to)
			if target.Kind != graph.KindTerm {
				continue
			}
			edge, _ := o.graph.EdgeAttrs(id, to)
			if isTerm {
				hasParent = true
				s.HierarchyEdges++
				s.Relations[edge.GetString(AttrType)]++
				continue
			}
			s.AnnotationEdges++
			bucket(target.Attrs.GetString(AttrNamespace)).Annotations++
		}
		if isTerm && !hasParent {
			s.Roots = append(s.Roots, id)
		}
	}

	for _, c := range byNamespace {
		s.Namespaces = append(s.Namespaces, *c)
	}
	slices.SortFunc(s.Namespaces, func(a, b NamespaceCount) int {
		return strings.Compare(a.Namespace, b.Namespace)
	})
	slices.Sort(s.Roots)
	return s, nil
}
