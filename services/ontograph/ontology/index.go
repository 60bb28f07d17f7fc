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
	"fmt"
	"slices"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// DescendantsIndex maps every term to its direct children.
//
// Children are listed in edge iteration order of the source graph. Every
// term has an entry, possibly empty; entities never have one.
type DescendantsIndex map[string][]string

// BuildDescendantsIndex derives the descendants index from g.
//
// Description:
//
//	Every KindTerm node gets an entry. Every edge child -> parent whose
//	endpoints are both terms appends child to the parent's list, so
//	annotation edges (entity -> term) never enter the index. The function
//	does not modify g; building twice from the same graph yields equal
//	indexes.
//
// Complexity: O(V + E).
func BuildDescendantsIndex(g *graph.Graph[string]) DescendantsIndex {
	idx := make(DescendantsIndex)
	for id, node := range g.Nodes() {
		if node.Kind == graph.KindTerm {
			idx[id] = []string{}
		}
	}

	for _, e := range g.Edges() {
		if _, childIsTerm := idx[e.From]; !childIsTerm {
			continue
		}
		if _, parentIsTerm := idx[e.To]; !parentIsTerm {
			continue
		}
		idx[e.To] = append(idx[e.To], e.From)
	}
	return idx
}

// Children returns the direct children of term.
func (idx DescendantsIndex) Children(term string) ([]string, bool) {
	children, ok := idx[term]
	return children, ok
}

// Has reports whether term has an entry.
func (idx DescendantsIndex) Has(term string) bool {
	_, ok := idx[term]
	return ok
}

// Terms returns the indexed terms in sorted order.
func (idx DescendantsIndex) Terms() []string {
	terms := make([]string, 0, len(idx))
	for t := range idx {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms
}

// Equal reports whether both indexes hold the same entries with the same
// child order.
func (idx DescendantsIndex) Equal(other DescendantsIndex) bool {
	if len(idx) != len(other) {
		return false
	}
	for term, children := range idx {
		o, ok := other[term]
		if !ok || !slices.Equal(children, o) {
			return false
		}
	}
	return true
}

// Depth returns the length of the longest downward path from term to a leaf.
//
// Description:
//
//	Equivalent to depth(t) = 0 for a leaf, 1 + max depth(child) otherwise,
//	computed by an explicit post-order stack so deep hierarchies cannot
//	overflow the goroutine stack. Results for every term visited are stored
//	in memo when memo is non-nil, and memoised values are reused.
//
// Inputs:
//
//	term - The term to measure.
//	memo - Optional depth cache. Not synchronised; callers that share it
//	       must serialise access.
//
// Outputs:
//
//	int - The depth.
//	error - ErrNotInIndex if term has no entry, ErrCyclicHierarchy if a
//	        child chain leads back to a term still being measured.
func (idx DescendantsIndex) Depth(term string, memo map[string]int) (int, error) {
	if memo == nil {
		memo = make(map[string]int)
	}
	return idx.depth(term, memo, nil)
}

// depth is Depth with a second, read-only source of known depths. Depths
// found through known are reused but not copied into memo; memo receives
// only the terms this call measured.
func (idx DescendantsIndex) depth(term string, memo map[string]int, known func(string) (int, bool)) (int, error) {
	if _, ok := idx[term]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotInIndex, term)
	}
	lookup := func(t string) (int, bool) {
		if d, ok := memo[t]; ok {
			return d, true
		}
		if known != nil {
			return known(t)
		}
		return 0, false
	}
	if d, ok := lookup(term); ok {
		return d, nil
	}

	type frame struct {
		term string
		next int
		best int
	}
	onPath := map[string]bool{term: true}
	stack := []frame{{term: term}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := idx[top.term]

		if top.next < len(children) {
			child := children[top.next]
			top.next++

			if d, ok := lookup(child); ok {
				top.best = max(top.best, d+1)
				continue
			}
			if onPath[child] {
				return 0, fmt.Errorf("%w: %s reaches itself below %s", ErrCyclicHierarchy, child, top.term)
			}
			onPath[child] = true
			stack = append(stack, frame{term: child})
			continue
		}

		done, depth := top.term, top.best
		memo[done] = depth
		delete(onPath, done)
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := &stack[len(stack)-1]
			parent.best = max(parent.best, depth+1)
		}
	}
	return memo[term], nil
}

// Closure returns term together with all of its transitive children.
//
// Description:
//
//	Breadth-first over the index starting at term. Every term appears once
//	even when reachable along several paths.
//
// Outputs:
//
//	[]string - term first, then descendants in discovery order.
//	error - ErrNotInIndex if term has no entry.
func (idx DescendantsIndex) Closure(term string) ([]string, error) {
	if _, ok := idx[term]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInIndex, term)
	}

	seen := map[string]bool{term: true}
	out := []string{term}
	for i := 0; i < len(out); i++ {
		for _, child := range idx[out[i]] {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
			}
		}
	}
	return out, nil
}
