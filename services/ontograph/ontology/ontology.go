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
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// Phase is the lifecycle state of an Ontology.
type Phase int

const (
	// PhaseBuild accepts terms and hierarchy edges. Queries are refused.
	PhaseBuild Phase = iota

	// PhaseReady has a frozen hierarchy and a descendants index.
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// HeaderTag is one "key: value" line from the header of an ontology dump.
type HeaderTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EntityInfo carries the descriptive fields of an annotation record.
// Empty fields leave the entity's existing attributes untouched.
type EntityInfo struct {
	Name        string
	Description string
	Aliases     []string
}

// Tables holds the ontology state that lives outside the graph.
type Tables struct {
	AltIDs map[string]string `json:"alt_ids,omitempty"`
	Names  map[string]string `json:"names,omitempty"`
	Header []HeaderTag       `json:"header,omitempty"`
}

// Option configures an Ontology.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	cacheSize int
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCacheSize sets how many transitive AnnotatedEntities results are kept.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// Ontology is a term hierarchy with annotated entities.
//
// Description:
//
//	Terms are KindTerm nodes; an edge child -> parent records an is_a or
//	part_of relation. Entities are KindEntity nodes; an edge entity -> term
//	records an annotation and carries its evidence codes. Node kinds are set
//	when nodes are added and never re-derived from ids.
//
// Thread Safety:
//
//	Build methods are single-writer. Query methods are safe for concurrent
//	use once the ontology is READY and no writer is active.
type Ontology struct {
	graph  *graph.Graph[string]
	altIDs map[string]string
	names  map[string]string
	header []HeaderTag

	phase Phase
	index DescendantsIndex

	depthMu sync.RWMutex
	depths  map[string]int

	cache  *closureCache
	logger *slog.Logger
}

// New creates an empty ontology in PhaseBuild.
func New(opts ...Option) *Ontology {
	cfg := options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ontology{
		graph:  graph.New[string](graph.WithDirected(true)),
		altIDs: make(map[string]string),
		names:  make(map[string]string),
		depths: make(map[string]int),
		cache:  newClosureCache(cfg.cacheSize),
		logger: cfg.logger,
	}
}

// Restore wraps an existing graph and side tables and seals the result.
//
// Description:
//
//	Used to rebuild an ontology from a stored snapshot or a graph built
//	elsewhere. Nodes without a kind are tagged by ClassifyNodes; the
//	descendants index is then rebuilt from the kinds. g is modified in
//	place.
//
// Outputs:
//
//	*Ontology - The ontology, in PhaseReady.
//	error - Non-nil if g is undirected.
func Restore(ctx context.Context, g *graph.Graph[string], tables Tables, opts ...Option) (*Ontology, error) {
	if !g.IsDirected() {
		return nil, fmt.Errorf("ontology graph must be directed")
	}
	o := New(opts...)
	if n := ClassifyNodes(g); n > 0 {
		o.logger.Debug("classified untagged nodes", slog.Int("nodes", n))
	}
	o.graph = g
	if tables.AltIDs != nil {
		o.altIDs = maps.Clone(tables.AltIDs)
	}
	if tables.Names != nil {
		o.names = maps.Clone(tables.Names)
	}
	o.header = slices.Clone(tables.Header)
	if err := o.Seal(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Graph returns the underlying graph. Callers must treat it as read-only.
func (o *Ontology) Graph() *graph.Graph[string] {
	return o.graph
}

// Phase returns the lifecycle state.
func (o *Ontology) Phase() Phase {
	return o.phase
}

// Index returns the descendants index, or nil before Seal. Callers must
// treat it as read-only.
func (o *Ontology) Index() DescendantsIndex {
	return o.index
}

// Tables returns a copy of the alt-id table, the entity name table and the
// header tags.
func (o *Ontology) Tables() Tables {
	return Tables{
		AltIDs: maps.Clone(o.altIDs),
		Names:  maps.Clone(o.names),
		Header: slices.Clone(o.header),
	}
}

// Header returns the header tags in file order.
func (o *Ontology) Header() []HeaderTag {
	return slices.Clone(o.header)
}

// AddHeader records a header tag.
func (o *Ontology) AddHeader(key, value string) {
	o.header = append(o.header, HeaderTag{Key: key, Value: value})
}

// AddTerm adds a term node, or merges attrs into an existing one.
//
// Description:
//
//	A term referenced by an earlier Relate already exists with only its
//	id and type; the attributes of its own stanza are merged in here.
//	The id and type attributes are always set.
//
// Outputs:
//
//	graph.Attrs - The live attribute map of the term.
//	error - ErrIndexSealed in PhaseReady, ErrInvalidEntity if id is
//	        already an entity.
func (o *Ontology) AddTerm(id string, attrs graph.Attrs) (graph.Attrs, error) {
	if o.phase == PhaseReady {
		return nil, fmt.Errorf("%w: cannot add term %s", ErrIndexSealed, id)
	}
	kind, existed := o.graph.Kind(id)
	if existed && kind == graph.KindEntity {
		return nil, fmt.Errorf("%w: %s is already an entity", ErrInvalidEntity, id)
	}

	stored := o.graph.AddNodeOfKind(id, graph.KindTerm, attrs)
	if existed {
		for k, v := range attrs {
			stored[k] = v
		}
	}
	stored.SetString(AttrID, id)
	stored.SetString(AttrType, TypeTerm)
	return stored, nil
}

// AddAltID maps an alternative id onto its canonical term.
func (o *Ontology) AddAltID(alt, canonical string) {
	o.altIDs[alt] = canonical
}

// ResolveTerm returns the canonical term for id, consulting the alt-id
// table when id itself is not a term.
func (o *Ontology) ResolveTerm(id string) (string, bool) {
	if o.isTerm(id) {
		return id, true
	}
	if canonical, ok := o.altIDs[id]; ok && o.isTerm(canonical) {
		return canonical, true
	}
	return "", false
}

// EntityByName returns the entity registered under a display name.
func (o *Ontology) EntityByName(name string) (string, bool) {
	id, ok := o.names[name]
	return id, ok
}

// Relate records that child is a specialisation (or part) of parent.
//
// Description:
//
//	Both endpoints become terms if they are not already. The edge
//	child -> parent carries type = relation; an empty relation means is_a.
//	Relating the same pair twice keeps the first relation.
//
// Outputs:
//
//	graph.Attrs - The live edge attributes.
//	error - ErrIndexSealed in PhaseReady, ErrInvalidEntity if an endpoint
//	        is an entity.
func (o *Ontology) Relate(child, parent, relation string) (graph.Attrs, error) {
	if o.phase == PhaseReady {
		return nil, fmt.Errorf("%w: cannot relate %s -> %s", ErrIndexSealed, child, parent)
	}
	if relation == "" {
		relation = RelationIsA
	}
	for _, id := range []string{child, parent} {
		if _, err := o.AddTerm(id, nil); err != nil {
			return nil, err
		}
	}
	return o.graph.AddEdge(child, parent, graph.Attrs{AttrType: graph.StringValue(relation)}, nil, nil), nil
}

// Annotate records that entity is annotated with term.
//
// Description:
//
//	term is resolved through the alt-id table first. The entity node is
//	created on first use; later records overwrite its name, description
//	and aliases when they are non-empty. The first entity to claim a
//	display name keeps it. evidence, when non-empty, is appended to the
//	edge's evidence-codes list, never replacing earlier codes.
//
//	Annotations never enter the descendants index, so this is allowed in
//	both phases. In PhaseReady it invalidates cached closure results.
//
// Outputs:
//
//	graph.Attrs - The live edge attributes.
//	error - ErrUnresolvedTerm, or ErrInvalidEntity when entity is a term or
//	        matches TermPattern.
func (o *Ontology) Annotate(entity, term, evidence string, info EntityInfo) (graph.Attrs, error) {
	canonical, ok := o.ResolveTerm(term)
	if !ok {
		return nil, fmt.Errorf("%w: %s (entity %s)", ErrUnresolvedTerm, term, entity)
	}
	if o.isTerm(entity) {
		return nil, fmt.Errorf("%w: %s is a term", ErrInvalidEntity, entity)
	}
	if IsTermID(entity) {
		return nil, fmt.Errorf("%w: %s has the form of a term id", ErrInvalidEntity, entity)
	}

	attrs := o.graph.AddNodeOfKind(entity, graph.KindEntity, nil)
	attrs.SetString(AttrID, entity)
	attrs.SetString(AttrType, TypeEntity)
	if info.Name != "" {
		attrs.SetString(AttrName, info.Name)
		if _, taken := o.names[info.Name]; !taken {
			o.names[info.Name] = entity
		}
	}
	if info.Description != "" {
		attrs.SetString(AttrDesc, info.Description)
	}
	if len(info.Aliases) > 0 {
		attrs[AttrAliases] = graph.StringsValue(info.Aliases...)
	}

	edge := o.graph.AddEdge(entity, canonical, graph.Attrs{AttrType: graph.StringValue(RelationAnnotation)}, nil, nil)
	if evidence != "" {
		edge[AttrEvidence] = edge[AttrEvidence].Append(graph.StringValue(evidence))
	}

	if o.phase == PhaseReady {
		o.cache.purge()
	}
	return edge, nil
}

// Seal builds the descendants index and moves the ontology to PhaseReady.
//
// Outputs:
//
//	error - ErrIndexSealed if already sealed.
func (o *Ontology) Seal(ctx context.Context) error {
	if o.phase == PhaseReady {
		return fmt.Errorf("%w: seal called twice", ErrIndexSealed)
	}
	_, span := tracer.Start(ctx, "ontology.Seal")
	defer span.End()

	o.index = BuildDescendantsIndex(o.graph)
	o.phase = PhaseReady

	stats := o.graph.Stats()
	span.SetAttributes(
		attribute.Int("ontology.terms", len(o.index)),
		attribute.Int("ontology.nodes", stats.NodeCount),
		attribute.Int("ontology.edges", stats.EdgeCount),
	)
	o.logger.Info("descendants index built",
		slog.Int("terms", len(o.index)),
		slog.Int("entities", stats.NodesByKind[graph.KindEntity]),
		slog.Int("edges", stats.EdgeCount),
		slog.Int("alt_ids", len(o.altIDs)),
	)
	return nil
}

// CacheStats reports closure cache usage.
func (o *Ontology) CacheStats() CacheStats {
	return o.cache.stats()
}

func (o *Ontology) isTerm(id string) bool {
	kind, ok := o.graph.Kind(id)
	return ok && kind == graph.KindTerm
}

func (o *Ontology) ready() error {
	if o.phase != PhaseReady {
		return ErrNotReady
	}
	return nil
}
