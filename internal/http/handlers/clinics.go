package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

type ClinicRequest struct {
	Name        string   `json:"name" validate:"required"`
	Prefecture  string   `json:"prefecture" validate:"required"`
	City        string   `json:"city" validate:"required"`
	Address     string   `json:"address"`
	PlaceID     *string  `json:"place_id"`
	WebsiteURL  *string  `json:"website_url"`
	Specialties []string `json:"specialties"`
}

// @Summary Register a clinic
// @Tags clinics
// @Accept json
// @Produce json
// @Success 201 {object} models.Clinic
// @Failure 400 {object} map[string]any
// @Router /api/clinics [post]
func (h *Handler) ClinicCreate(c *gin.Context) {
	var req ClinicRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	now := time.Now().UTC()
	clinic := models.Clinic{
		ID:             uuid.NewString(),
		OrganizationID: orgID(c),
		Name:           req.Name,
		Prefecture:     req.Prefecture,
		City:           req.City,
		Address:        req.Address,
		PlaceID:        req.PlaceID,
		WebsiteURL:     req.WebsiteURL,
		Specialties:    req.Specialties,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.Store.CreateClinic(c.Request.Context(), clinic); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create clinic", err.Error())
		return
	}
	c.JSON(http.StatusCreated, clinic)
}

func (h *Handler) ClinicsList(c *gin.Context) {
	items, err := h.Store.ListClinics(c.Request.Context(), orgID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list clinics", err.Error())
		return
	}
	if items == nil {
		items = []models.Clinic{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ClinicDetails(c *gin.Context) {
	ctx := c.Request.Context()
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}

	review, err := h.Store.LatestReview(ctx, clinic.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load review data", err.Error())
		return
	}
	analytics, err := h.Store.LatestAnalytics(ctx, clinic.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load analytics data", err.Error())
		return
	}
	latest, err := h.Store.LatestAnalysisResult(ctx, clinic.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load analysis history", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clinic":           clinic,
		"latest_review":    review,
		"latest_analytics": analytics,
		"latest_analysis":  latest,
	})
}

func (h *Handler) ClinicUpdate(c *gin.Context) {
	var req ClinicRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	clinic := models.Clinic{
		ID:             c.Param("id"),
		OrganizationID: orgID(c),
		Name:           req.Name,
		Prefecture:     req.Prefecture,
		City:           req.City,
		Address:        req.Address,
		PlaceID:        req.PlaceID,
		WebsiteURL:     req.WebsiteURL,
		Specialties:    req.Specialties,
	}
	if err := h.Store.UpdateClinic(c.Request.Context(), clinic); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Clinic not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update clinic", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ClinicDelete(c *gin.Context) {
	if err := h.Store.SoftDeleteClinic(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Clinic not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete clinic", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// loadClinic resolves the :id route param inside the caller's tenant
// scope, writing the error response itself on failure.
func (h *Handler) loadClinic(c *gin.Context) (models.Clinic, bool) {
	clinic, err := h.Store.GetClinic(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Clinic not found", nil)
			return models.Clinic{}, false
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load clinic", err.Error())
		return models.Clinic{}, false
	}
	return clinic, true
}
