package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/language"
)

const (
	defaultThreshold = 0.7
	maxUploadBytes   = 10 << 20
)

func (s *Server) handleUpload(c *gin.Context) {
	tenantID := strings.TrimSpace(c.PostForm("tenant_id"))
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload size limit"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()
	// Cap the read too; the header check alone does not bound this reader.
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload size limit"})
		return
	}

	summary, err := s.pipeline.IngestDocument(c.Request.Context(), tenantID, fileHeader.Filename, data)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

type queryRequest struct {
	TenantID  string   `json:"tenant_id" binding:"required"`
	Question  string   `json:"question" binding:"required"`
	TopK      int      `json:"top_k"`
	Threshold *float32 `json:"similarity_threshold"`
	Language  string   `json:"language"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language != "" && !language.IsSupported(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language filter"})
		return
	}
	threshold := float32(defaultThreshold)
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	results, err := s.engine.Search(c.Request.Context(), req.Question, req.TenantID, req.TopK, threshold, req.Language)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.index.Stats(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleClearTenant(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	removed, err := s.index.ClearTenant(c.Request.Context(), tenantID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID, "removed": removed})
}

// handleReset wipes every tenant's records. Destructive and deliberately on
// its own admin path, away from the per-tenant delete.
func (s *Server) handleReset(c *gin.Context) {
	if err := s.index.Reset(c.Request.Context()); err != nil {
		s.renderError(c, err)
		return
	}
	s.logger.Warn("index reset, all tenants cleared")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// renderError maps the domain taxonomy onto status codes. Backend failures
// become 503s; they are never flattened into an empty 200 result.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrIndexUnavailable):
		s.logger.Error("backend unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrDimensionConflict):
		s.logger.Error("dimension error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
