// Package server exposes the retrieval core over HTTP. It is deliberately
// thin glue: request decoding, error-to-status mapping, and nothing else.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docqa/internal/engine"
	"docqa/internal/ingest"
	"docqa/internal/vectorindex"
)

type Server struct {
	engine   *engine.Engine
	pipeline *ingest.Pipeline
	index    vectorindex.Index
	logger   *zap.Logger
}

func New(e *engine.Engine, p *ingest.Pipeline, idx vectorindex.Index, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: e, pipeline: p, index: idx, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	{
		api.POST("/documents", s.handleUpload)
		api.POST("/query", s.handleQuery)
		api.GET("/stats", s.handleStats)
		api.DELETE("/tenants/:tenant_id", s.handleClearTenant)
		api.POST("/admin/reset", s.handleReset)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
