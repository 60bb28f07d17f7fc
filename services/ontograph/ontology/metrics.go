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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("ontograph.ontology")
	meter  = otel.Meter("ontograph.ontology")
)

var (
	queryLatency metric.Float64Histogram
	queryTotal   metric.Int64Counter
	cacheLookups metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		queryLatency, err = meter.Float64Histogram(
			"ontology_query_duration_seconds",
			metric.WithDescription("Duration of ontology closure queries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		queryTotal, err = meter.Int64Counter(
			"ontology_query_total",
			metric.WithDescription("Total number of ontology closure queries"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheLookups, err = meter.Int64Counter(
			"ontology_closure_cache_lookups_total",
			metric.WithDescription("Closure cache lookups by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startQuery opens a span for a closure query and returns a function that
// records the outcome and ends the span.
func startQuery(ctx context.Context, query, target string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "ontology."+query,
		trace.WithAttributes(
			attribute.String("ontology.query", query),
			attribute.String("ontology.target", target),
		),
	)
	return ctx, func(err error) {
		defer span.End()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if initMetrics() != nil {
			return
		}
		attrs := metric.WithAttributes(
			attribute.String("query", query),
			attribute.Bool("success", err == nil),
		)
		queryLatency.Record(ctx, time.Since(start).Seconds(), attrs)
		queryTotal.Add(ctx, 1, attrs)
	}
}

func recordCacheLookup(ctx context.Context, hit bool) {
	if initMetrics() != nil {
		return
	}
	cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
