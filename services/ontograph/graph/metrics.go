// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for traversal operations.
var (
	tracer = otel.Tracer("ontograph.graph")
	meter  = otel.Meter("ontograph.graph")
)

// Metrics for traversal operations.
var (
	traversalLatency metric.Float64Histogram
	traversalTotal   metric.Int64Counter
	nodesVisited     metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		traversalLatency, err = meter.Float64Histogram(
			"graph_traversal_duration_seconds",
			metric.WithDescription("Duration of graph traversal operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalTotal, err = meter.Int64Counter(
			"graph_traversal_total",
			metric.WithDescription("Total number of graph traversal operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesVisited, err = meter.Int64Histogram(
			"graph_traversal_nodes_visited",
			metric.WithDescription("Number of nodes reached per traversal"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordTraversalMetrics records metrics for a traversal operation.
func recordTraversalMetrics(ctx context.Context, algorithm string, duration time.Duration, visited int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.Bool("success", success),
	)

	traversalLatency.Record(ctx, duration.Seconds(), attrs)
	traversalTotal.Add(ctx, 1, attrs)
	if success {
		nodesVisited.Record(ctx, int64(visited), metric.WithAttributes(attribute.String("algorithm", algorithm)))
	}
}

// startTraversalSpan creates a span for a traversal operation.
func startTraversalSpan(ctx context.Context, algorithm string, nodeCount, edgeCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "graph."+algorithm,
		trace.WithAttributes(
			attribute.String("graph.algorithm", algorithm),
			attribute.Int("graph.node_count", nodeCount),
			attribute.Int("graph.edge_count", edgeCount),
		),
	)
}
