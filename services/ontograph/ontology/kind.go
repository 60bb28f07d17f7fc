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
	"regexp"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// Node and edge attribute keys written by the ontology.
const (
	AttrID        = "id"
	AttrType      = "type"
	AttrName      = "name"
	AttrNamespace = "namespace"
	AttrDef       = "def"
	AttrDesc      = "desc"
	AttrAliases   = "aliases"
	AttrEvidence  = "evidence-codes"
)

// Values of the "type" attribute.
const (
	TypeTerm   = "OntologyTerm"
	TypeEntity = "AnnotatedEntity"

	RelationIsA        = "is_a"
	RelationPartOf     = "part_of"
	RelationAnnotation = "annotation"
)

// TermPattern matches namespaced term codes such as "GO:0008150".
var TermPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*:[A-Za-z0-9_.]+$`)

// IsTermID reports whether id looks like a namespaced term code.
func IsTermID(id string) bool {
	return TermPattern.MatchString(id)
}

// ClassifyNodes tags every untagged node of g as a term or an entity.
//
// Description:
//
//	For graphs assembled without kinds (for example from a generic edge
//	list). Ids matching TermPattern become KindTerm, everything else
//	KindEntity. Nodes that already carry a kind are left alone, so this
//	runs once at build time and queries never inspect ids again.
//
// Outputs:
//
//	int - Number of nodes that were tagged.
func ClassifyNodes(g *graph.Graph[string]) int {
	tagged := 0
	for _, id := range g.NodeIDs() {
		kind, _ := g.Kind(id)
		if kind != graph.KindUnknown {
			continue
		}
		if IsTermID(id) {
			g.AddNodeOfKind(id, graph.KindTerm, nil)
		} else {
			g.AddNodeOfKind(id, graph.KindEntity, nil)
		}
		tagged++
	}
	return tagged
}
