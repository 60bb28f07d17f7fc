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
	"fmt"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// contextCheckInterval is how often closure loops check for cancellation.
const contextCheckInterval = 256

// MaxDepth returns the length of the longest downward path from term to a
// leaf of the hierarchy. A leaf has depth 0.
//
// Description:
//
//	Results are memoised for the lifetime of the ontology; the hierarchy
//	cannot change once sealed, so memoised depths never go stale.
//
// Outputs:
//
//	int - The depth.
//	error - ErrNotReady, ErrNotInIndex for ids without an index entry
//	        (entities and unknown ids), or ErrCyclicHierarchy.
func (o *Ontology) MaxDepth(ctx context.Context, term string) (depth int, err error) {
	if err := o.ready(); err != nil {
		return 0, err
	}
	_, done := startQuery(ctx, "MaxDepth", term)
	defer func() { done(err) }()

	if d, ok := o.knownDepth(term); ok {
		return d, nil
	}

	// Walk against a private memo so concurrent callers only contend on
	// lookups and the final merge.
	local := make(map[string]int)
	depth, err = o.index.depth(term, local, o.knownDepth)
	if err != nil {
		return 0, err
	}
	o.depthMu.Lock()
	maps.Copy(o.depths, local)
	o.depthMu.Unlock()
	return depth, nil
}

func (o *Ontology) knownDepth(term string) (int, bool) {
	o.depthMu.RLock()
	defer o.depthMu.RUnlock()
	d, ok := o.depths[term]
	return d, ok
}

// Depths computes MaxDepth for several terms with bounded concurrency.
//
// Inputs:
//
//	ctx - Cancels outstanding work.
//	terms - Terms to measure.
//	workers - Concurrency limit. Values < 1 mean one worker.
//
// Outputs:
//
//	map[string]int - Depth per term.
//	error - The first error any worker hit.
func (o *Ontology) Depths(ctx context.Context, terms []string, workers int) (map[string]int, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]int, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, term := range terms {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := o.MaxDepth(gctx, term)
			if err != nil {
				return err
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	depths := make(map[string]int, len(terms))
	for i, term := range terms {
		depths[term] = results[i]
	}
	return depths, nil
}

// AncestorsOf returns the terms an entity is annotated with.
//
// Description:
//
//	With transitive=false the result is the entity's direct annotation
//	targets. With transitive=true it is the fixed point of following
//	out-edges from those targets, i.e. every term reachable upward through
//	is_a and part_of edges. The result is a sorted set.
//
// Outputs:
//
//	[]string - Sorted term ids, never empty.
//	error - ErrNotReady, ErrInvalidEntity if entity is a term, is not in
//	        the graph, or has no annotation edge, or the context error.
func (o *Ontology) AncestorsOf(ctx context.Context, entity string, transitive bool) (terms []string, err error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	ctx, done := startQuery(ctx, "AncestorsOf", entity)
	defer func() { done(err) }()

	kind, ok := o.graph.Kind(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in the graph", ErrInvalidEntity, entity)
	}
	if kind == graph.KindTerm {
		return nil, fmt.Errorf("%w: %s is a term", ErrInvalidEntity, entity)
	}

	direct := o.graph.Neighbors(entity)
	if len(direct) == 0 {
		return nil, fmt.Errorf("%w: %s has no annotations", ErrInvalidEntity, entity)
	}
	if !transitive {
		out := append(make([]string, 0, len(direct)), direct...)
		slices.Sort(out)
		return out, nil
	}

	seen := make(map[string]bool, len(direct))
	out := make([]string, 0, len(direct))
	for _, t := range direct {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for i := 0; i < len(out); i++ {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, parent := range o.graph.Neighbors(out[i]) {
			if !seen[parent] {
				seen[parent] = true
				out = append(out, parent)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

// AnnotatedEntities returns the entities annotated with term.
//
// Description:
//
//	With transitive=false only entities with an edge straight into term are
//	returned. With transitive=true every entity with an edge into term or
//	any of its transitive children is returned. Transitive results are
//	cached until the next Annotate.
//
// Outputs:
//
//	[]string - Sorted, de-duplicated entity ids. Empty, never nil.
//	error - ErrNotReady, ErrNotInIndex if term has no index entry, or the
//	        context error.
func (o *Ontology) AnnotatedEntities(ctx context.Context, term string, transitive bool) (entities []string, err error) {
	if err := o.ready(); err != nil {
		return nil, err
	}
	ctx, done := startQuery(ctx, "AnnotatedEntities", term)
	defer func() { done(err) }()

	if !o.index.Has(term) {
		return nil, fmt.Errorf("%w: %s", ErrNotInIndex, term)
	}

	targets := map[string]bool{term: true}
	if transitive {
		if cached, ok := o.cache.get(term); ok {
			recordCacheLookup(ctx, true)
			return cached, nil
		}
		recordCacheLookup(ctx, false)

		closure, err := o.index.Closure(term)
		if err != nil {
			return nil, err
		}
		for _, t := range closure {
			targets[t] = true
		}
	}

	out := make([]string, 0)
	scanned := 0
	for id, node := range o.graph.Nodes() {
		scanned++
		if scanned%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if node.Kind == graph.KindTerm {
			continue
		}
		for _, t := range o.graph.Neighbors(id) {
			if targets[t] {
				out = append(out, id)
				break
			}
		}
	}
	slices.Sort(out)

	if transitive {
		o.cache.put(term, out)
	}
	return out, nil
}
