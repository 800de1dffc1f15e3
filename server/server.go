// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the resolution pipeline over HTTP: a single-query
// endpoint, a batch CSV upload and a health probe.
package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jamaicageo/jamlocate/batch"
	"github.com/jamaicageo/jamlocate/boundary"
	"github.com/jamaicageo/jamlocate/geocode"
)

// maxUploadBytes caps batch uploads at 16 MiB.
const maxUploadBytes = 16 << 20

type Server struct {
	resolver   *geocode.Resolver
	cache      geocode.ResolutionRepository
	boundaries *boundary.Index
	addr       string
}

// NewServer wires the HTTP surface. The cache and boundary index may be nil,
// batch runs are then uncached and /health reports no boundaries.
func NewServer(resolver *geocode.Resolver, cache geocode.ResolutionRepository, boundaries *boundary.Index, addr string) *Server {
	return &Server{
		resolver:   resolver,
		cache:      cache,
		boundaries: boundaries,
		addr:       addr,
	}
}

func (s *Server) Run() error {
	router := gin.Default()
	s.registerRoutes(router)

	return router.Run(s.addr)
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", s.health)
	router.GET("/api/resolve", s.resolve)
	router.POST("/api/resolve/batch", s.resolveBatch)
}

// ResolveResponse is the wire shape of a successful resolution.
type ResolveResponse struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Quality         string  `json:"quality"`
	Strategy        string  `json:"strategy"`
	DisplayName     string  `json:"display_name,omitempty"`
	ParishCode      string  `json:"parish_pcode,omitempty"`
	ParishName      string  `json:"parish_name,omitempty"`
	CommunityCode   string  `json:"community_pcode,omitempty"`
	CommunityName   string  `json:"community_name,omitempty"`
	NearestBoundary bool    `json:"nearest_boundary,omitempty"`
}

func (s *Server) resolve(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	resolution, err := s.resolver.Resolve(ctx.Request.Context(), query)
	if err != nil {
		if reason, ok := geocode.ReasonOf(err); ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": string(reason)})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, ResolveResponse{
		Latitude:        resolution.Point.Lat,
		Longitude:       resolution.Point.Lng,
		Quality:         resolution.Quality.String(),
		Strategy:        resolution.Strategy.String(),
		DisplayName:     resolution.DisplayName,
		ParishCode:      resolution.ParishCode,
		ParishName:      resolution.ParishName,
		CommunityCode:   resolution.CommunityCode,
		CommunityName:   resolution.CommunityName,
		NearestBoundary: resolution.NearestBoundary,
	})
}

func (s *Server) resolveBatch(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadBytes)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})

		return
	}

	if fileHeader.Filename == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})

		return
	}

	limit := 0
	if limitParam := ctx.PostForm("limit"); limitParam != "" {
		if _, err := fmt.Sscanf(limitParam, "%d", &limit); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})

			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}
	defer file.Close()

	processor := batch.NewProcessor(s.resolver, s.cache, batch.Options{
		Column: ctx.PostForm("column"),
		Limit:  limit,
	})

	var out bytes.Buffer
	if _, err := processor.Run(ctx.Request.Context(), file, &out); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="geocoded_addresses.csv"`)
	ctx.Data(http.StatusOK, "text/csv", out.Bytes())
}

func (s *Server) health(ctx *gin.Context) {
	features := 0
	if s.boundaries != nil {
		features = s.boundaries.Stats().Features
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"boundaries_loaded": s.boundaries != nil,
		"features":          features,
	})
}
