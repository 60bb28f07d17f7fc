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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/ontograph/services/ontograph/ontology"
)

// GAF column positions (0-based).
const (
	gafColID        = 1
	gafColName      = 2
	gafColQualifier = 3
	gafColTerm      = 4
	gafColEvidence  = 6
	gafColDesc      = 9
	gafColAliases   = 10

	gafMinColumns = gafColAliases + 1
)

// GAFOptions configures LoadGAF.
type GAFOptions struct {
	// Source names the input in diagnostics. Defaults to "gaf".
	Source string

	// Reporter receives skipped records. Defaults to ontology.Discard.
	Reporter ontology.Reporter

	// Logger receives a summary line. Defaults to a discard logger.
	Logger *slog.Logger

	// SkipNegated drops records whose qualifier column contains NOT.
	SkipNegated bool
}

// GAFStats counts what LoadGAF read.
type GAFStats struct {
	Records     int
	Annotations int
	Comments    int
	Negated     int
	Skipped     int
}

// LoadGAF attaches the annotations of a GAF file to o.
//
// Description:
//
//	Lines starting with '!' are comments. Every other non-empty line is a
//	tab-separated record; the columns used are 1 (entity id), 2 (display
//	name), 4 (term id), 6 (evidence code), 9 (description) and 10
//	(|-separated aliases). Term ids are resolved through the alt-id table.
//
//	Records with fewer than 11 columns, with an unresolved term, or whose
//	entity id is itself a term are reported and skipped; the load carries
//	on. o may be in either phase.
//
// Outputs:
//
//	GAFStats - What was read and skipped.
//	error - Read errors, or the context error.
func LoadGAF(ctx context.Context, o *ontology.Ontology, r io.Reader, opts GAFOptions) (GAFStats, error) {
	ctx, span := tracer.Start(ctx, "loader.LoadGAF")
	defer span.End()

	source := opts.Source
	if source == "" {
		source = "gaf"
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = ontology.Discard
	}
	logger := loggerOrDiscard(opts.Logger)

	var stats GAFStats
	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.HasPrefix(line, "!") {
			stats.Comments++
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Records++

		cols := strings.Split(line, "\t")
		if len(cols) < gafMinColumns {
			stats.Skipped++
			reporter.Report(ontology.Diagnostic{
				Kind:    ontology.DiagnosticMalformedRecord,
				Source:  source,
				Line:    lineNo,
				Message: fmt.Sprintf("%d columns, need at least %d", len(cols), gafMinColumns),
			})
			continue
		}
		if opts.SkipNegated && strings.Contains(cols[gafColQualifier], "NOT") {
			stats.Negated++
			continue
		}

		entity, term := cols[gafColID], cols[gafColTerm]
		_, err := o.Annotate(entity, term, cols[gafColEvidence], ontology.EntityInfo{
			Name:        cols[gafColName],
			Description: cols[gafColDesc],
			Aliases:     splitAliases(cols[gafColAliases]),
		})
		switch {
		case err == nil:
			stats.Annotations++
		case errors.Is(err, ontology.ErrUnresolvedTerm):
			stats.Skipped++
			reporter.Report(ontology.Diagnostic{
				Kind:    ontology.DiagnosticUnresolvedTerm,
				Source:  source,
				Line:    lineNo,
				Entity:  entity,
				Term:    term,
				Message: fmt.Sprintf("entity %s annotated with unknown term %s", entity, term),
			})
		case errors.Is(err, ontology.ErrInvalidEntity):
			stats.Skipped++
			reporter.Report(ontology.Diagnostic{
				Kind:    ontology.DiagnosticInvalidEntity,
				Source:  source,
				Line:    lineNo,
				Entity:  entity,
				Term:    term,
				Message: err.Error(),
			})
		default:
			return stats, fmt.Errorf("%s:%d: %w", source, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, fmt.Errorf("reading %s: %w", source, err)
	}

	span.SetAttributes(
		attribute.Int("gaf.records", stats.Records),
		attribute.Int("gaf.annotations", stats.Annotations),
		attribute.Int("gaf.skipped", stats.Skipped),
	)
	logger.Info("annotations loaded",
		slog.String("source", source),
		slog.Int("records", stats.Records),
		slog.Int("annotations", stats.Annotations),
		slog.Int("skipped", stats.Skipped),
		slog.Int("negated", stats.Negated),
	)
	return stats, nil
}

func splitAliases(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, "|")
	aliases := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			aliases = append(aliases, p)
		}
	}
	return aliases
}
