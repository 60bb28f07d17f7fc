// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes a sealed ontology over HTTP for "ontograph serve".
package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/ontograph/services/ontograph/telemetry"
)

// RegisterRoutes registers the /ontograph endpoints on rg.
//
// Endpoints:
//
//	GET /v1/ontograph/health - Health check
//	GET /v1/ontograph/summary - Ontology summary and cache statistics
//	GET /v1/ontograph/terms/:id - Term attributes, parents and children
//	GET /v1/ontograph/terms/:id/depth - Maximum depth below the term
//	GET /v1/ontograph/terms/:id/entities - Entities annotated to the term
//	GET /v1/ontograph/entities?name=NAME - Entity id by display name
//	GET /v1/ontograph/entities/:id/terms - Terms an entity is annotated with
//
// Term ids may be alternative ids; they are resolved before querying.
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	og := rg.Group("/ontograph")
	{
		og.GET("/health", handlers.HandleHealth)
		og.GET("/summary", handlers.HandleSummary)

		og.GET("/terms/:id", handlers.HandleTerm)
		og.GET("/terms/:id/depth", handlers.HandleTermDepth)
		og.GET("/terms/:id/entities", handlers.HandleTermEntities)

		og.GET("/entities", handlers.HandleEntityLookup)
		og.GET("/entities/:id/terms", handlers.HandleEntityTerms)
	}
}

// NewRouter builds the complete engine: recovery, tracing middleware,
// the v1 routes, and /metrics when the Prometheus exporter is enabled.
func NewRouter(handlers *Handlers, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestID())

	if metrics := telemetry.MetricsHandler(); metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

// RequestID echoes the X-Request-ID header, generating a uuid when the
// client sent none, on every response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		getOrCreateRequestID(c)
		c.Next()
	}
}
