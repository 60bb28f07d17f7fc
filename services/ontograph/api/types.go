// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import "github.com/AleutianAI/ontograph/services/ontograph/ontology"

// ServiceVersion is the query API version.
const ServiceVersion = "0.1.0"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}

// HealthResponse is returned by GET /v1/ontograph/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Phase   string `json:"phase"`
}

// TermResponse describes one term.
type TermResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Namespace  string   `json:"namespace,omitempty"`
	Definition string   `json:"definition,omitempty"`
	Parents    []string `json:"parents"`
	Children   []string `json:"children"`
}

// DepthResponse is returned by GET /v1/ontograph/terms/:id/depth.
type DepthResponse struct {
	// Requested is the id as given, which may be an alternative id.
	Requested string `json:"requested"`
	Term      string `json:"term"`
	Depth     int    `json:"depth"`
}

// EntitiesResponse is returned by GET /v1/ontograph/terms/:id/entities.
type EntitiesResponse struct {
	Term     string   `json:"term"`
	Direct   bool     `json:"direct"`
	Count    int      `json:"count"`
	Entities []string `json:"entities"`
}

// TermsResponse is returned by GET /v1/ontograph/entities/:id/terms.
type TermsResponse struct {
	Entity string   `json:"entity"`
	Direct bool     `json:"direct"`
	Count  int      `json:"count"`
	Terms  []string `json:"terms"`
}

// EntityLookupResponse is returned by GET /v1/ontograph/entities?name=.
type EntityLookupResponse struct {
	Name   string `json:"name"`
	Entity string `json:"entity"`
}

// SummaryResponse is returned by GET /v1/ontograph/summary.
type SummaryResponse struct {
	*ontology.Summary
	CacheStats ontology.CacheStats `json:"cache"`
}
