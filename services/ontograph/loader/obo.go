// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
	"github.com/AleutianAI/ontograph/services/ontograph/ontology"
)

// OBOOptions configures LoadOBO.
type OBOOptions struct {
	// Source names the input in diagnostics. Defaults to "obo".
	Source string

	// Reporter receives stanzas that had to be skipped. Defaults to
	// ontology.Discard.
	Reporter ontology.Reporter

	// Logger receives a summary line. Defaults to a discard logger.
	Logger *slog.Logger

	// Ontology options applied to the new ontology.
	Ontology []ontology.Option
}

// OBOStats counts what LoadOBO read.
type OBOStats struct {
	Terms     int
	Obsolete  int
	Relations int
	AltIDs    int
	Skipped   int
}

// oboStanza is one [Term] block, collected before it is applied so that an
// is_obsolete tag anywhere in the block can discard the whole term.
type oboStanza struct {
	line     int
	id       string
	attrs    graph.Attrs
	altIDs   []string
	parents  [][2]string // parent, relation
	obsolete bool
}

// LoadOBO reads an OBO ontology dump and returns a sealed ontology.
//
// Description:
//
//	Header "key: value" lines before the first stanza are kept as header
//	tags. Only [Term] stanzas are read; other stanza types ([Typedef],
//	[Instance]) are skipped. A stanza tagged "is_obsolete: true" is
//	dropped entirely. Recognised tags:
//
//	  id:         term id
//	  name:       name attribute
//	  namespace:  namespace attribute
//	  def:        def attribute (quoted text only)
//	  alt_id:     alternative id mapped onto this term
//	  is_a:       parent term (text after '!' is a comment)
//	  relationship: part_of X   parent term via part_of
//
//	Other relationship types are ignored. A stanza without an id is
//	reported as a malformed record.
//
// Outputs:
//
//	*ontology.Ontology - The ontology in PhaseReady.
//	OBOStats - What was read and skipped.
//	error - Read errors, or the context error.
func LoadOBO(ctx context.Context, r io.Reader, opts OBOOptions) (*ontology.Ontology, OBOStats, error) {
	ctx, span := tracer.Start(ctx, "loader.LoadOBO")
	defer span.End()

	source := opts.Source
	if source == "" {
		source = "obo"
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = ontology.Discard
	}
	logger := loggerOrDiscard(opts.Logger)

	o := ontology.New(opts.Ontology...)
	var stats OBOStats

	var (
		inHeader = true
		inTerm   bool
		current  *oboStanza
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		err := applyStanza(o, current, source, reporter, &stats)
		current = nil
		return err
	}

	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		line := strings.TrimRight(sc.Text(), " \t\r")

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flush(); err != nil {
				return nil, stats, err
			}
			inHeader = false
			inTerm = line == "[Term]"
			if inTerm {
				current = &oboStanza{line: lineNo, attrs: graph.Attrs{}}
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch {
		case inHeader:
			o.AddHeader(key, value)
		case inTerm:
			current.add(key, value)
		}
	}
	if err := sc.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, stats, fmt.Errorf("reading %s: %w", source, err)
	}
	if err := flush(); err != nil {
		return nil, stats, err
	}

	if err := o.Seal(ctx); err != nil {
		return nil, stats, err
	}

	span.SetAttributes(
		attribute.Int("obo.terms", stats.Terms),
		attribute.Int("obo.obsolete", stats.Obsolete),
		attribute.Int("obo.relations", stats.Relations),
	)
	logger.Info("ontology loaded",
		slog.String("source", source),
		slog.Int("terms", stats.Terms),
		slog.Int("obsolete", stats.Obsolete),
		slog.Int("relations", stats.Relations),
		slog.Int("alt_ids", stats.AltIDs),
		slog.Int("skipped", stats.Skipped),
	)
	return o, stats, nil
}

func (s *oboStanza) add(key, value string) {
	switch key {
	case "id":
		s.id = value
	case "name":
		s.attrs.SetString(ontology.AttrName, value)
	case "namespace":
		s.attrs.SetString(ontology.AttrNamespace, value)
	case "def":
		s.attrs.SetString(ontology.AttrDef, quotedText(value))
	case "alt_id":
		s.altIDs = append(s.altIDs, value)
	case "is_obsolete":
		s.obsolete = value == "true"
	case "is_a":
		if parent := stripComment(value); parent != "" {
			s.parents = append(s.parents, [2]string{parent, ontology.RelationIsA})
		}
	case "relationship":
		fields := strings.Fields(stripComment(value))
		if len(fields) >= 2 && fields[0] == ontology.RelationPartOf {
			s.parents = append(s.parents, [2]string{fields[1], ontology.RelationPartOf})
		}
	}
}

func applyStanza(o *ontology.Ontology, s *oboStanza, source string, reporter ontology.Reporter, stats *OBOStats) error {
	if s.obsolete {
		stats.Obsolete++
		return nil
	}
	if s.id == "" {
		stats.Skipped++
		reporter.Report(ontology.Diagnostic{
			Kind:    ontology.DiagnosticMalformedRecord,
			Source:  source,
			Line:    s.line,
			Message: "[Term] stanza without id",
		})
		return nil
	}

	if _, err := o.AddTerm(s.id, s.attrs); err != nil {
		return fmt.Errorf("%s:%d: %w", source, s.line, err)
	}
	stats.Terms++
	for _, alt := range s.altIDs {
		o.AddAltID(alt, s.id)
		stats.AltIDs++
	}
	for _, p := range s.parents {
		if _, err := o.Relate(s.id, p[0], p[1]); err != nil {
			return fmt.Errorf("%s:%d: %w", source, s.line, err)
		}
		stats.Relations++
	}
	return nil
}

// stripComment drops a trailing "! comment" and "{qualifiers}".
func stripComment(value string) string {
	if i := strings.IndexByte(value, '!'); i >= 0 {
		value = value[:i]
	}
	if i := strings.IndexByte(value, '{'); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

// quotedText returns the text between the first pair of double quotes, or
// value unchanged when it is not quoted.
func quotedText(value string) string {
	if !strings.HasPrefix(value, `"`) {
		return value
	}
	rest := value[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			i++
		case '"':
			return strings.ReplaceAll(rest[:i], `\"`, `"`)
		}
	}
	return value
}
