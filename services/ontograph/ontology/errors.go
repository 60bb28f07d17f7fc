// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ontology models a hierarchy of typed terms with entities annotated
// onto it and answers closure queries over it.
//
// Description:
//
//	An Ontology wraps a directed graph.Graph[string]. Term nodes point at
//	their parents (is_a / part_of edges) and entity nodes point at the terms
//	they are annotated with. A descendants index (parent -> direct children)
//	is derived from the hierarchy once, when the ontology is sealed, and the
//	closure queries (MaxDepth, AncestorsOf, AnnotatedEntities) read it.
//
// Lifecycle:
//
//	PhaseBuild: terms, alt ids and hierarchy edges may be added.
//	PhaseReady: entered once via Seal. The hierarchy is frozen; annotations
//	may still be added. Queries are only answered in this phase.
//
// Thread Safety:
//
//	Mutation is single-writer. READY-phase queries may run concurrently; the
//	depth memo and the closure cache are internally synchronised.
package ontology

import "errors"

var (
	// ErrInvalidEntity indicates an entity query named a term or an unknown id.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrNotInIndex indicates a term query named an id the descendants index
	// does not contain.
	ErrNotInIndex = errors.New("term not in descendants index")

	// ErrNotReady indicates a query ran before Seal.
	ErrNotReady = errors.New("ontology not sealed")

	// ErrIndexSealed indicates a hierarchy mutation after Seal.
	ErrIndexSealed = errors.New("descendants index already built")

	// ErrCyclicHierarchy indicates the descendants index contains a cycle.
	ErrCyclicHierarchy = errors.New("cyclic term hierarchy")

	// ErrUnresolvedTerm indicates an annotation referenced a term that is not
	// in the ontology, even through the alt-id table.
	ErrUnresolvedTerm = errors.New("unresolved term")
)
