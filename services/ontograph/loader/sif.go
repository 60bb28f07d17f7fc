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
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
)

// EdgeTypeAttr is the edge attribute LoadSIF stores the relation in.
const EdgeTypeAttr = "type"

// LoadSIF reads a simple interaction format file.
//
// Description:
//
//	Each line is "source relation target1 target2 ...". Fields are split on
//	tabs when the line contains one, on runs of whitespace otherwise. Every
//	target yields an edge source -> target with attribute type = relation.
//	A line holding a single field declares an isolated node. Blank lines
//	are skipped.
//
// Outputs:
//
//	*graph.Graph[string] - The graph, unweighted.
//	error - ErrMalformedInput for a line with exactly two fields, or a
//	        read error.
func LoadSIF(r io.Reader, directed bool) (*graph.Graph[string], error) {
	g := graph.New[string](graph.WithDirected(directed))

	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var fields []string
		if strings.Contains(line, "\t") {
			fields = strings.Split(line, "\t")
		} else {
			fields = strings.Fields(line)
		}

		switch len(fields) {
		case 1:
			g.AddNode(fields[0], nil)
		case 2:
			return nil, fmt.Errorf("%w: sif line %d: relation %q has no target", ErrMalformedInput, lineNo, fields[1])
		default:
			source, relation := fields[0], fields[1]
			for _, target := range fields[2:] {
				if target == "" {
					continue
				}
				g.AddEdge(source, target, graph.Attrs{EdgeTypeAttr: graph.StringValue(relation)}, nil, nil)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading sif: %w", err)
	}
	return g, nil
}
