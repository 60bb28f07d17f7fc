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
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// TABOptions configures LoadTAB.
type TABOptions struct {
	// Delimiter separates columns. Defaults to tab.
	Delimiter rune

	// Directed selects the graph mode. Use DefaultTABOptions for the
	// common directed case.
	Directed bool

	// Weighted marks the graph as weighted.
	Weighted bool
}

// DefaultTABOptions returns tab-delimited, directed, unweighted options.
func DefaultTABOptions() TABOptions {
	return TABOptions{Delimiter: '\t', Directed: true}
}

// LoadTAB reads a delimited edge table.
//
// Description:
//
//	The first row is a header. Column 0 is the source node, column 1 the
//	target node, and every further column becomes an edge attribute named
//	by its header cell. Cells are stored as strings; empty cells are
//	omitted. Lines starting with '#' are comments.
//
// Outputs:
//
//	*graph.Graph[string] - The graph.
//	error - ErrMalformedInput for a missing or short header, a row whose
//	        column count differs from the header, or a quoting error.
func LoadTAB(r io.Reader, opts TABOptions) (*graph.Graph[string], error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	g := graph.New[string](graph.WithDirected(opts.Directed), graph.WithWeighted(opts.Weighted))

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.Comment = '#'
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: tab input has no header", ErrMalformedInput)
	}
	if err != nil {
		return nil, tabError(err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: tab header needs source and target columns, got %d", ErrMalformedInput, len(header))
	}
	attrNames := append([]string(nil), header[2:]...)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, tabError(err)
		}

		attrs := make(graph.Attrs, len(attrNames))
		for i, name := range attrNames {
			if cell := row[i+2]; cell != "" {
				attrs[name] = graph.StringValue(cell)
			}
		}
		g.AddEdge(row[0], row[1], attrs, nil, nil)
	}
	return g, nil
}

func tabError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return fmt.Errorf("reading tab: %w", err)
}
