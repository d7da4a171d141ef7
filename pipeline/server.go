// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server exposes the map payloads over HTTP.
type Server struct {
	store *Store
	addr  string
}

// NewServer creates the HTTP server around a store.
func NewServer(store *Store, addr string) *Server {
	return &Server{
		store: store,
		addr:  addr,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", s.health)
	r.GET("/api/mapa/geojson", s.getGeoJSON)
	r.GET("/api/mapa/itens", s.getItems)
	r.GET("/api/mapa/estatisticas", s.getStats)
	r.POST("/api/mapa/atualizar", s.refresh)
	r.POST("/api/cache/limpar", s.clearCache)
	r.GET("/api/cache/estado", s.cacheStats)

	return r
}

// Run blocks serving the API.
func (s *Server) Run() error {
	return s.Router().Run(s.addr)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getGeoJSON(ctx *gin.Context) {
	fc, err := s.store.MapData(ctx.Request.Context(), ctx.Query("criador"))
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, fc)
}

func (s *Server) getItems(ctx *gin.Context) {
	items, err := s.store.Items(ctx.Request.Context(), ctx.Query("criador"))
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (s *Server) getStats(ctx *gin.Context) {
	fc, err := s.store.MapData(ctx.Request.Context(), ctx.Query("criador"))
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, fc.Metadata)
}

func (s *Server) refresh(ctx *gin.Context) {
	fc, err := s.store.Refresh(ctx.Request.Context(), ctx.Query("criador"))
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, fc.Metadata)
}

func (s *Server) clearCache(ctx *gin.Context) {
	if err := s.store.ClearCache(ctx.Request.Context(), ctx.Query("criador")); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) cacheStats(ctx *gin.Context) {
	stats, err := s.store.CacheStats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"keys": stats})
}
