package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/db"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/http/middleware"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/places"
)

// Analyzer runs one analysis for a clinic; satisfied by
// service.AnalyzerService.
type Analyzer interface {
	Analyze(ctx context.Context, orgID, clinicID, userID string) (models.AnalysisResult, error)
}

type Handler struct {
	Store     *db.Store
	Places    places.Source
	Analyzer  Analyzer
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func orgID(c *gin.Context) string {
	return c.GetString(middleware.OrgIDKey)
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

func (h *Handler) bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}
