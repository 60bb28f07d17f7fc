// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ontograph/services/ontograph/graph"
	"github.com/AleutianAI/ontograph/services/ontograph/loader"
)

// edgeFile selects how a graph subcommand reads its input.
type edgeFile struct {
	format     string
	undirected bool
	delimiter  string
}

func (f *edgeFile) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "Input format: sif or tab (default from file extension)")
	cmd.Flags().BoolVar(&f.undirected, "undirected", false, "Treat edges as undirected")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "\t", "Column delimiter for tab input")
}

func (f *edgeFile) load(path string, weighted bool) (*graph.Graph[string], error) {
	format := f.format
	if format == "" {
		format = "tab"
		if strings.EqualFold(filepath.Ext(path), ".sif") {
			format = "sif"
		}
	}

	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var g *graph.Graph[string]
	switch format {
	case "sif":
		g, err = loader.LoadSIF(r, !f.undirected)
	case "tab":
		delim := []rune(f.delimiter)
		if len(delim) != 1 {
			return nil, fmt.Errorf("--delimiter must be a single character, got %q", f.delimiter)
		}
		g, err = loader.LoadTAB(r, loader.TABOptions{Delimiter: delim[0], Directed: !f.undirected, Weighted: weighted})
	default:
		return nil, fmt.Errorf("unknown format %q (want sif or tab)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Run graph algorithms on SIF or TAB edge files",
		Long: `Run graph algorithms on a plain edge file.

SIF files hold "source relation target..." lines. TAB files are delimited
tables whose first two columns are the source and target node and whose
remaining columns become edge attributes.`,
	}
	cmd.AddCommand(
		newBFSCmd(a),
		newDFSCmd(a),
		newTopoSortCmd(a),
		newAcyclicCmd(a),
		newShortestPathCmd(a),
	)
	return cmd
}

func newBFSCmd(a *app) *cobra.Command {
	var in edgeFile
	cmd := &cobra.Command{
		Use:   "bfs FILE SOURCE",
		Short: "Breadth-first search from a source node",
		Example: `  ontograph graph bfs network.sif TP53
  ontograph graph bfs edges.tsv A --undirected --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(args[0], false)
			if err != nil {
				return err
			}
			res, err := graph.BFS(cmd.Context(), g, args[1])
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			rows := make([][]string, 0, len(res.Order))
			type visit struct {
				Node        string `json:"node"`
				Distance    int    `json:"distance"`
				Predecessor string `json:"predecessor,omitempty"`
			}
			visits := make([]visit, 0, len(res.Order))
			for _, id := range res.Order {
				pred, _ := res.PredecessorOf(id)
				visits = append(visits, visit{Node: id, Distance: res.Distance[id], Predecessor: pred})
				rows = append(rows, []string{id, strconv.Itoa(res.Distance[id]), pred})
			}
			if a.jsonOutput {
				return p.JSON(visits)
			}
			p.Table([]string{"node", "distance", "predecessor"}, rows)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newDFSCmd(a *app) *cobra.Command {
	var in edgeFile
	cmd := &cobra.Command{
		Use:   "dfs FILE",
		Short: "Depth-first search with edge classification",
		Long: `Search the whole graph depth-first, restarting from every undiscovered
node in node order. Prints discovery and finish times for every node, then
every edge with its class: tree, back, forward or cross.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(args[0], false)
			if err != nil {
				return err
			}
			res, err := graph.DFS(cmd.Context(), g)
			if err != nil {
				return err
			}

			type timing struct {
				Node      string `json:"node"`
				Discovery int    `json:"discovery"`
				Finish    int    `json:"finish"`
			}
			type classified struct {
				From  string `json:"from"`
				To    string `json:"to"`
				Class string `json:"class"`
			}
			var out struct {
				Nodes   []timing     `json:"nodes"`
				Edges   []classified `json:"edges"`
				Acyclic bool         `json:"acyclic"`
			}
			for _, id := range g.NodeIDs() {
				out.Nodes = append(out.Nodes, timing{Node: id, Discovery: res.Discovery[id], Finish: res.Finish[id]})
			}
			for _, e := range res.Edges {
				out.Edges = append(out.Edges, classified{From: e.From, To: e.To, Class: e.Class.String()})
			}
			out.Acyclic = !res.HasBackEdge()

			p := a.printer(cmd)
			if a.jsonOutput {
				return p.JSON(out)
			}
			nodeRows := make([][]string, len(out.Nodes))
			for i, n := range out.Nodes {
				nodeRows[i] = []string{n.Node, strconv.Itoa(n.Discovery), strconv.Itoa(n.Finish)}
			}
			edgeRows := make([][]string, len(out.Edges))
			for i, e := range out.Edges {
				edgeRows[i] = []string{e.From, e.To, e.Class}
			}
			p.Title("Nodes")
			p.Table([]string{"node", "discovery", "finish"}, nodeRows)
			p.Title("Edges")
			p.Table([]string{"from", "to", "class"}, edgeRows)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newTopoSortCmd(a *app) *cobra.Command {
	var in edgeFile
	cmd := &cobra.Command{
		Use:   "toposort FILE",
		Short: "Order nodes so every edge points forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(args[0], false)
			if err != nil {
				return err
			}
			order, err := graph.TopologicalSort(cmd.Context(), g)
			if err != nil {
				return err
			}
			return printSet(a, cmd, order)
		},
	}
	in.register(cmd)
	return cmd
}

func newAcyclicCmd(a *app) *cobra.Command {
	var in edgeFile
	cmd := &cobra.Command{
		Use:   "acyclic FILE",
		Short: "Report whether a graph contains a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(args[0], false)
			if err != nil {
				return err
			}
			ok, err := graph.IsAcyclic(cmd.Context(), g)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if a.jsonOutput {
				return p.JSON(map[string]bool{"acyclic": ok})
			}
			if ok {
				p.Success("graph is acyclic")
			} else {
				p.Warning("graph contains a cycle")
			}
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newShortestPathCmd(a *app) *cobra.Command {
	var (
		in        edgeFile
		weightKey string
		target    string
	)
	cmd := &cobra.Command{
		Use:   "shortest-path FILE SOURCE",
		Short: "Single-source shortest paths over integer edge weights",
		Long: `Compute the minimum total weight from SOURCE to every node. Weights
are read from the --weight-key column and may be negative. Unreachable
nodes are reported as "-".`,
		Example: `  ontograph graph shortest-path edges.tsv C
  ontograph graph shortest-path edges.tsv C --to D --weight-key cost`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := in.load(args[0], true)
			if err != nil {
				return err
			}
			res, err := graph.ShortestPaths(cmd.Context(), g, args[1], weightKey)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if target != "" {
				path := res.PathTo(target)
				if a.jsonOutput {
					return p.JSON(map[string]any{"path": path, "distance": distanceOrNil(res.Distance[target])})
				}
				if path == nil {
					p.Warning(fmt.Sprintf("%s is not reachable from %s", target, args[1]))
					return nil
				}
				p.Lines([]string{strings.Join(path, " -> "), strconv.FormatInt(res.Distance[target], 10)})
				return nil
			}

			ids := g.NodeIDs()
			if a.jsonOutput {
				out := make(map[string]any, len(ids))
				for _, id := range ids {
					out[id] = distanceOrNil(res.Distance[id])
				}
				return p.JSON(out)
			}
			rows := make([][]string, len(ids))
			for i, id := range ids {
				d := "-"
				if res.Distance[id] != graph.NoPath {
					d = strconv.FormatInt(res.Distance[id], 10)
				}
				rows[i] = []string{id, d}
			}
			p.Table([]string{"node", "distance"}, rows)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&weightKey, "weight-key", graph.DefaultWeightKey, "Edge attribute holding the weight")
	cmd.Flags().StringVar(&target, "to", "", "Print only the path to this node")
	return cmd
}

func distanceOrNil(d int64) any {
	if d == graph.NoPath {
		return nil
	}
	return d
}
