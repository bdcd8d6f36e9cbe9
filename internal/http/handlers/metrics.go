package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/places"
)

// --- review snapshots ---

type ReviewIngestRequest struct {
	AverageRating *float64 `json:"average_rating" validate:"omitempty,min=0,max=5"`
	TotalReviews  *int     `json:"total_reviews" validate:"omitempty,min=0"`
}

// ReviewIngest records a review snapshot for the clinic. With an empty
// body the current numbers are fetched from the place source instead,
// which requires the clinic to have a place_id.
func (h *Handler) ReviewIngest(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}

	var req ReviewIngestRequest
	if c.Request.ContentLength > 0 {
		if !h.bindAndValidate(c, &req) {
			return
		}
	}

	record := models.ReviewRecord{
		ID:        uuid.NewString(),
		ClinicID:  clinic.ID,
		FetchedAt: time.Now().UTC(),
	}
	switch {
	case req.AverageRating != nil && req.TotalReviews != nil:
		record.AverageRating = *req.AverageRating
		record.TotalReviews = *req.TotalReviews
	case clinic.PlaceID != nil:
		details, err := h.Places.Details(c.Request.Context(), *clinic.PlaceID)
		if err != nil {
			if errors.Is(err, places.ErrNotFound) {
				writeError(c, http.StatusNotFound, "PLACE_NOT_FOUND", "Registered place no longer exists", nil)
				return
			}
			writeError(c, http.StatusBadGateway, "PLACE_SOURCE_ERROR", "Failed to fetch review data", err.Error())
			return
		}
		record.AverageRating = details.Rating
		record.TotalReviews = details.TotalReviews
	default:
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Provide review numbers or register a place_id first", nil)
		return
	}

	if err := h.Store.InsertReview(c.Request.Context(), record); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save review record", err.Error())
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) ReviewsList(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	items, err := h.Store.ListReviews(c.Request.Context(), clinic.ID, limitParam(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list review records", err.Error())
		return
	}
	if items == nil {
		items = []models.ReviewRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// --- analytics ---

type AnalyticsIngestRequest struct {
	PeriodStart        time.Time      `json:"period_start" validate:"required"`
	PeriodEnd          time.Time      `json:"period_end" validate:"required"`
	TotalSessions      int            `json:"total_sessions" validate:"min=0"`
	TotalUsers         int            `json:"total_users" validate:"min=0"`
	NewUsers           int            `json:"new_users" validate:"min=0"`
	AvgSessionDuration float64        `json:"avg_session_duration" validate:"min=0"`
	BounceRate         float64        `json:"bounce_rate" validate:"min=0,max=100"`
	RegionSessions     map[string]int `json:"region_sessions"`
	PaidSessions       *int           `json:"paid_sessions" validate:"omitempty,min=0"`
	PaidBounceRate     *float64       `json:"paid_bounce_rate" validate:"omitempty,min=0,max=100"`
}

func (h *Handler) AnalyticsIngest(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	var req AnalyticsIngestRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "period_end must be after period_start", nil)
		return
	}

	record := models.AnalyticsRecord{
		ID:                 uuid.NewString(),
		ClinicID:           clinic.ID,
		PeriodStart:        req.PeriodStart,
		PeriodEnd:          req.PeriodEnd,
		TotalSessions:      req.TotalSessions,
		TotalUsers:         req.TotalUsers,
		NewUsers:           req.NewUsers,
		AvgSessionDuration: req.AvgSessionDuration,
		BounceRate:         req.BounceRate,
		RegionSessions:     req.RegionSessions,
		PaidSessions:       req.PaidSessions,
		PaidBounceRate:     req.PaidBounceRate,
		CreatedAt:          time.Now().UTC(),
	}
	if err := h.Store.InsertAnalytics(c.Request.Context(), record); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save analytics record", err.Error())
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) AnalyticsList(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	items, err := h.Store.ListAnalytics(c.Request.Context(), clinic.ID, limitParam(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list analytics records", err.Error())
		return
	}
	if items == nil {
		items = []models.AnalyticsRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// --- competitors ---

type CompetitorCreateRequest struct {
	Name    string  `json:"name" validate:"required"`
	PlaceID *string `json:"place_id"`
}

// CompetitorCreate registers a competitor. When a place_id is given the
// current rating is fetched and stored as the competitor's first review
// snapshot so it counts in analysis immediately.
func (h *Handler) CompetitorCreate(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	var req CompetitorCreateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	competitor := models.Competitor{
		ID:        uuid.NewString(),
		ClinicID:  clinic.ID,
		Name:      req.Name,
		PlaceID:   req.PlaceID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	var details *places.Details
	if req.PlaceID != nil {
		d, err := h.Places.Details(ctx, *req.PlaceID)
		if err != nil {
			if errors.Is(err, places.ErrNotFound) {
				writeError(c, http.StatusNotFound, "PLACE_NOT_FOUND", "Place not found", nil)
				return
			}
			writeError(c, http.StatusBadGateway, "PLACE_SOURCE_ERROR", "Failed to fetch place details", err.Error())
			return
		}
		details = &d
	}

	if err := h.Store.CreateCompetitor(ctx, competitor); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create competitor", err.Error())
		return
	}
	if details != nil {
		now := time.Now().UTC()
		if err := h.Store.InsertCompetitorReview(ctx, uuid.NewString(), competitor.ID, details.Rating, details.TotalReviews, now); err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save competitor review snapshot", err.Error())
			return
		}
		competitor.LatestReview = &models.ReviewRecord{
			AverageRating: details.Rating,
			TotalReviews:  details.TotalReviews,
			FetchedAt:     now,
		}
	}
	c.JSON(http.StatusCreated, competitor)
}

func (h *Handler) CompetitorsList(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	items, err := h.Store.ActiveCompetitors(c.Request.Context(), clinic.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list competitors", err.Error())
		return
	}
	if items == nil {
		items = []models.Competitor{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CompetitorDeactivate(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	if err := h.Store.DeactivateCompetitor(c.Request.Context(), clinic.ID, c.Param("competitorId")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Competitor not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to deactivate competitor", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CompetitorSearch proxies a place search scoped to the clinic's
// locality, for picking competitors to register.
func (h *Handler) CompetitorSearch(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	query := places.BuildSearchQuery(clinic.Prefecture, clinic.City, c.Query("q"))
	results, err := h.Places.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, http.StatusBadGateway, "PLACE_SOURCE_ERROR", "Place search failed", err.Error())
		return
	}
	if results == nil {
		results = []places.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}

// --- patient records ---

type PatientRecordRequest struct {
	Year             int                     `json:"year" validate:"required,min=2000,max=2100"`
	Month            int                     `json:"month" validate:"required,min=1,max=12"`
	TotalNewPatients int                     `json:"total_new_patients" validate:"min=0"`
	ByComplaint      []models.ComplaintCount `json:"by_complaint"`
}

func (h *Handler) PatientRecordUpsert(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	var req PatientRecordRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	record := models.PatientRecord{
		ID:               uuid.NewString(),
		ClinicID:         clinic.ID,
		Year:             req.Year,
		Month:            req.Month,
		TotalNewPatients: req.TotalNewPatients,
		ByComplaint:      req.ByComplaint,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.Store.UpsertPatientRecord(c.Request.Context(), record); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save patient record", err.Error())
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) PatientRecordsList(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	items, err := h.Store.ListPatientRecords(c.Request.Context(), clinic.ID, limitParam(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list patient records", err.Error())
		return
	}
	if items == nil {
		items = []models.PatientRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// --- measures ---

type MeasureCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
	Cost     int    `json:"cost" validate:"min=0"`
}

func (h *Handler) MeasureCreate(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	var req MeasureCreateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	measure := models.Measure{
		ID:        uuid.NewString(),
		ClinicID:  clinic.ID,
		Name:      req.Name,
		Category:  req.Category,
		Cost:      req.Cost,
		Status:    models.MeasureStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateMeasure(c.Request.Context(), measure); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create measure", err.Error())
		return
	}
	c.JSON(http.StatusCreated, measure)
}

func (h *Handler) MeasuresList(c *gin.Context) {
	clinic, ok := h.loadClinic(c)
	if !ok {
		return
	}
	items, err := h.Store.ListMeasures(c.Request.Context(), clinic.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list measures", err.Error())
		return
	}
	if items == nil {
		items = []models.Measure{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type MeasureEffectRequest struct {
	ROI float64 `json:"roi" validate:"required"`
}

func (h *Handler) MeasureEffectRecord(c *gin.Context) {
	if _, ok := h.loadClinic(c); !ok {
		return
	}
	var req MeasureEffectRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	err := h.Store.RecordMeasureEffect(c.Request.Context(), uuid.NewString(), c.Param("measureId"), req.ROI, time.Now().UTC())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to record measure effect", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func limitParam(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}
