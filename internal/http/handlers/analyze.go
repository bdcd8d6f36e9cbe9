package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

// @Summary Run a marketing analysis for a clinic
// @Tags analysis
// @Produce json
// @Success 200 {object} models.AnalysisResult
// @Failure 404 {object} map[string]any
// @Router /api/clinics/{id}/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	result, err := h.Analyzer.Analyze(c.Request.Context(), orgID(c), c.Param("id"), userID(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Clinic not found", nil)
			return
		}
		h.Logger.Error().Err(err).Str("clinic_id", c.Param("id")).Msg("analysis failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_FAILED", "Analysis failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) AnalysisList(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	items, err := h.Store.ListAnalysisResults(c.Request.Context(), clinic.ID, limitParam(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list analysis results", err.Error())
		return
	}
	if items == nil {
		items = []models.AnalysisResult{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AnalysisLatest(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	latest, err := h.Store.LatestAnalysisResult(c.Request.Context(), clinic.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load latest analysis", err.Error())
		return
	}
	if latest == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No analysis has been run for this clinic", nil)
		return
	}
	c.JSON(http.StatusOK, latest)
}
