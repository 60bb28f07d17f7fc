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

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/ontograph/pkg/validation"
	"github.com/AleutianAI/ontograph/services/ontograph/graph"
	"github.com/AleutianAI/ontograph/services/ontograph/ontology"
	"github.com/AleutianAI/ontograph/services/ontograph/telemetry"
)

// Handlers serves read-only queries against one sealed ontology.
//
// Thread Safety: Safe for concurrent use. The ontology must not be
// mutated while the handlers are serving.
type Handlers struct {
	onto   *ontology.Ontology
	logger *slog.Logger
}

// NewHandlers creates handlers over o. logger may be nil.
func NewHandlers(o *ontology.Ontology, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{onto: o, logger: logger}
}

// HandleHealth handles GET /v1/ontograph/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
		Phase:   h.onto.Phase().String(),
	})
}

// HandleSummary handles GET /v1/ontograph/summary.
func (h *Handlers) HandleSummary(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSummary")

	summary, err := h.onto.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{Summary: summary, CacheStats: h.onto.CacheStats()})
}

// HandleTerm handles GET /v1/ontograph/terms/:id.
//
// Response:
//
//	200 OK: TermResponse
//	404 Not Found: Unknown term id
func (h *Handlers) HandleTerm(c *gin.Context) {
	logger := h.requestLogger(c, "HandleTerm")

	term, ok := h.resolve(c, logger)
	if !ok {
		return
	}
	node, _ := h.onto.Graph().Node(term)
	children, _ := h.onto.Index().Children(term)

	var parents []string
	for _, n := range h.onto.Graph().Neighbors(term) {
		if kind, _ := h.onto.Graph().Kind(n); kind == graph.KindTerm {
			parents = append(parents, n)
		}
	}
	slices.Sort(parents)
	sortedChildren := slices.Sorted(slices.Values(children))

	c.JSON(http.StatusOK, TermResponse{
		ID:         term,
		Name:       node.Attrs.GetString(ontology.AttrName),
		Namespace:  node.Attrs.GetString(ontology.AttrNamespace),
		Definition: node.Attrs.GetString(ontology.AttrDef),
		Parents:    nonNil(parents),
		Children:   nonNil(sortedChildren),
	})
}

// HandleTermDepth handles GET /v1/ontograph/terms/:id/depth.
//
// Response:
//
//	200 OK: DepthResponse
//	404 Not Found: Unknown term id
//	422 Unprocessable Entity: The hierarchy below the term has a cycle
func (h *Handlers) HandleTermDepth(c *gin.Context) {
	logger := h.requestLogger(c, "HandleTermDepth")

	term, ok := h.resolve(c, logger)
	if !ok {
		return
	}
	depth, err := h.onto.MaxDepth(c.Request.Context(), term)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, DepthResponse{Requested: c.Param("id"), Term: term, Depth: depth})
}

// HandleTermEntities handles GET /v1/ontograph/terms/:id/entities.
//
// Query Parameters:
//
//	direct: Only entities annotated to the term itself (optional, default false)
func (h *Handlers) HandleTermEntities(c *gin.Context) {
	logger := h.requestLogger(c, "HandleTermEntities")

	direct, ok := h.directParam(c)
	if !ok {
		return
	}
	term, ok := h.resolve(c, logger)
	if !ok {
		return
	}
	entities, err := h.onto.AnnotatedEntities(c.Request.Context(), term, !direct)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, EntitiesResponse{Term: term, Direct: direct, Count: len(entities), Entities: entities})
}

// HandleEntityTerms handles GET /v1/ontograph/entities/:id/terms.
//
// Query Parameters:
//
//	direct: Only the terms the entity is annotated with (optional, default false)
func (h *Handlers) HandleEntityTerms(c *gin.Context) {
	logger := h.requestLogger(c, "HandleEntityTerms")

	direct, ok := h.directParam(c)
	if !ok {
		return
	}
	entity, ok := h.idParam(c)
	if !ok {
		return
	}
	terms, err := h.onto.AncestorsOf(c.Request.Context(), entity, !direct)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, TermsResponse{Entity: entity, Direct: direct, Count: len(terms), Terms: terms})
}

// HandleEntityLookup handles GET /v1/ontograph/entities?name=NAME.
func (h *Handlers) HandleEntityLookup(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name query parameter is required", Code: "INVALID_REQUEST"})
		return
	}
	entity, ok := h.onto.EntityByName(name)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no entity named " + strconv.Quote(name), Code: "ENTITY_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, EntityLookupResponse{Name: name, Entity: entity})
}

// resolve maps the :id parameter onto a canonical term, writing a 404
// when it names neither a term nor an alternative id.
func (h *Handlers) resolve(c *gin.Context, logger *slog.Logger) (string, bool) {
	id, ok := h.idParam(c)
	if !ok {
		return "", false
	}
	term, ok := h.onto.ResolveTerm(id)
	if !ok {
		logger.Debug("unknown term", slog.String("id", id))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown term " + id, Code: "TERM_NOT_FOUND"})
		return "", false
	}
	return term, true
}

// idParam returns the :id parameter, writing a 400 when it is not a valid
// identifier.
func (h *Handlers) idParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := validation.ValidateIdentifier(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return "", false
	}
	return id, true
}

func (h *Handlers) directParam(c *gin.Context) (bool, bool) {
	direct, err := strconv.ParseBool(c.DefaultQuery("direct", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "direct must be a boolean", Code: "INVALID_REQUEST"})
		return false, false
	}
	return direct, true
}

// writeError maps ontology errors onto HTTP statuses.
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	code := "QUERY_FAILED"

	switch {
	case errors.Is(err, ontology.ErrNotInIndex):
		status, code = http.StatusNotFound, "TERM_NOT_FOUND"
	case errors.Is(err, ontology.ErrInvalidEntity):
		status, code = http.StatusNotFound, "ENTITY_NOT_FOUND"
	case errors.Is(err, ontology.ErrCyclicHierarchy):
		status, code = http.StatusUnprocessableEntity, "CYCLIC_HIERARCHY"
	case errors.Is(err, ontology.ErrNotReady):
		status, code = http.StatusServiceUnavailable, "NOT_READY"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("query failed", slog.String("error", err.Error()))
	} else {
		logger.Debug("query rejected", slog.String("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return telemetry.LoggerWithTrace(c.Request.Context(), h.logger).With(
		slog.String("request_id", getOrCreateRequestID(c)),
		slog.String("handler", handler),
	)
}

// requestIDKey is the gin context key RequestID stores the id under.
const requestIDKey = "request_id"

// getOrCreateRequestID returns the id RequestID assigned, or assigns one
// when the handler runs without the middleware.
func getOrCreateRequestID(c *gin.Context) string {
	if requestID := c.GetString(requestIDKey); requestID != "" {
		return requestID
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDKey, requestID)
	c.Header("X-Request-ID", requestID)
	return requestID
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
