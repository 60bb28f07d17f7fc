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
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ontograph/pkg/validation"
	"github.com/AleutianAI/ontograph/services/ontograph/ontology"
)

// statsOutput is the --json form of "ontograph stats".
type statsOutput struct {
	*ontology.Summary
	RootDepths map[string]int `json:"root_depths"`
}

func newStatsCmd(a *app) *cobra.Command {
	var src ontologySource
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise an ontology and the depth of its roots",
		Long: `Count terms, entities, hierarchy and annotation edges, broken down by
relation and namespace, and compute the maximum depth below every root.

Examples:
  ontograph stats --obo go-basic.obo --gaf goa_human.gaf
  ontograph stats --snapshot go-2026-01 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			o, err := src.load(ctx, a)
			if err != nil {
				return err
			}
			summary, err := o.Summary(ctx)
			if err != nil {
				return err
			}
			depths, err := o.Depths(ctx, summary.Roots, a.cfg.Query.Workers)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if a.jsonOutput {
				return p.JSON(statsOutput{Summary: summary, RootDepths: depths})
			}

			p.Title("Ontology")
			p.KeyValues([][2]string{
				{"terms", strconv.Itoa(summary.Terms)},
				{"entities", strconv.Itoa(summary.Entities)},
				{"hierarchy edges", strconv.Itoa(summary.HierarchyEdges)},
				{"annotation edges", strconv.Itoa(summary.AnnotationEdges)},
				{"alt ids", strconv.Itoa(summary.AltIDs)},
			})

			var relRows [][]string
			for _, rel := range slices.Sorted(maps.Keys(summary.Relations)) {
				relRows = append(relRows, []string{rel, strconv.Itoa(summary.Relations[rel])})
			}
			p.Title("Relations")
			p.Table([]string{"relation", "edges"}, relRows)

			var nsRows [][]string
			for _, ns := range summary.Namespaces {
				nsRows = append(nsRows, []string{
					ns.Namespace,
					strconv.Itoa(ns.Terms),
					strconv.Itoa(ns.Annotations),
					fmt.Sprintf("%.1f%%", 100*summary.AnnotationShare(ns.Namespace)),
				})
			}
			p.Title("Namespaces")
			p.Table([]string{"namespace", "terms", "annotations", "share"}, nsRows)

			var rootRows [][]string
			for _, root := range summary.Roots {
				rootRows = append(rootRows, []string{root, strconv.Itoa(depths[root])})
			}
			p.Title("Roots")
			p.Table([]string{"root", "depth"}, rootRows)
			return nil
		},
	}
	src.register(cmd, true)
	return cmd
}

func newDepthCmd(a *app) *cobra.Command {
	var src ontologySource
	cmd := &cobra.Command{
		Use:   "depth TERM...",
		Short: "Print the maximum depth of the hierarchy below terms",
		Long: `Print the length of the longest child chain below each term. A leaf
has depth 0. Alternative ids are resolved to their canonical term.

Examples:
  ontograph depth GO:0008150 --obo go-basic.obo
  ontograph depth GO:0003674 GO:0005575 --snapshot go-2026-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := sanitizeArgs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			o, err := src.load(ctx, a)
			if err != nil {
				return err
			}

			terms := make([]string, len(ids))
			for i, id := range ids {
				terms[i] = resolveTerm(o, id)
			}
			depths, err := o.Depths(ctx, terms, a.cfg.Query.Workers)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if a.jsonOutput {
				return p.JSON(depths)
			}
			rows := make([][]string, len(terms))
			for i, term := range terms {
				rows[i] = []string{term, strconv.Itoa(depths[term])}
			}
			p.Table([]string{"term", "depth"}, rows)
			return nil
		},
	}
	src.register(cmd, true)
	return cmd
}

func newTermsCmd(a *app) *cobra.Command {
	var (
		src    ontologySource
		direct bool
	)
	cmd := &cobra.Command{
		Use:   "terms ENTITY",
		Short: "List the terms an entity is annotated with",
		Long: `List the terms an entity is annotated with, together with every
ancestor term reachable through is_a and part_of. With --direct only the
annotated terms themselves are listed.

Examples:
  ontograph terms P04637 --obo go-basic.obo --gaf goa_human.gaf
  ontograph terms P04637 --snapshot go-2026-01 --direct`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := validation.SanitizeIdentifier(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			o, err := src.load(ctx, a)
			if err != nil {
				return err
			}
			terms, err := o.AncestorsOf(ctx, entity, !direct)
			if err != nil {
				return err
			}
			return printSet(a, cmd, terms)
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "Only the annotated terms, without ancestors")
	src.register(cmd, true)
	return cmd
}

func newEntitiesCmd(a *app) *cobra.Command {
	var (
		src    ontologySource
		direct bool
	)
	cmd := &cobra.Command{
		Use:   "entities TERM",
		Short: "List the entities annotated to a term or its descendants",
		Long: `List the entities annotated to a term or to any term below it. With
--direct only entities annotated to the term itself are listed.

Examples:
  ontograph entities GO:0006915 --obo go-basic.obo --gaf goa_human.gaf
  ontograph entities GO:0006915 --snapshot go-2026-01 --direct --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := validation.SanitizeIdentifier(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			o, err := src.load(ctx, a)
			if err != nil {
				return err
			}
			entities, err := o.AnnotatedEntities(ctx, resolveTerm(o, term), !direct)
			if err != nil {
				return err
			}
			return printSet(a, cmd, entities)
		},
	}
	cmd.Flags().BoolVar(&direct, "direct", false, "Only entities annotated to the term itself")
	src.register(cmd, true)
	return cmd
}

// sanitizeArgs trims and validates identifier arguments.
func sanitizeArgs(args []string) ([]string, error) {
	ids := make([]string, len(args))
	for i, arg := range args {
		ids[i] = strings.TrimSpace(arg)
	}
	if err := validation.ValidateIdentifiers(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func printSet(a *app, cmd *cobra.Command, items []string) error {
	p := a.printer(cmd)
	if a.jsonOutput {
		return p.JSON(items)
	}
	p.Lines(items)
	return nil
}
