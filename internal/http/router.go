package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/config"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/db"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/http/handlers"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/http/middleware"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/places"

	_ "github.com/freehazamanet-dot/dental-marketing-analyzer/docs"
)

func Router(cfg config.Config, store *db.Store, analyzer handlers.Analyzer, source places.Source, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id", middleware.OrgIDHeader, middleware.UserIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Places:    source,
		Analyzer:  analyzer,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.OrgScope())
	{
		api.GET("/clinics", h.ClinicsList)
		api.GET("/clinics/:id", h.ClinicDetails)
		api.GET("/clinics/:id/reviews", h.ReviewsList)
		api.GET("/clinics/:id/analytics", h.AnalyticsList)
		api.GET("/clinics/:id/competitors", h.CompetitorsList)
		api.GET("/clinics/:id/competitors/search", h.CompetitorSearch)
		api.GET("/clinics/:id/patients", h.PatientRecordsList)
		api.GET("/clinics/:id/measures", h.MeasuresList)
		api.GET("/clinics/:id/analysis", h.AnalysisList)
		api.GET("/clinics/:id/analysis/latest", h.AnalysisLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/clinics", h.ClinicCreate)
		admin.PUT("/clinics/:id", h.ClinicUpdate)
		admin.DELETE("/clinics/:id", h.ClinicDelete)
		admin.POST("/clinics/:id/reviews", h.ReviewIngest)
		admin.POST("/clinics/:id/analytics", h.AnalyticsIngest)
		admin.POST("/clinics/:id/competitors", h.CompetitorCreate)
		admin.DELETE("/clinics/:id/competitors/:competitorId", h.CompetitorDeactivate)
		admin.PUT("/clinics/:id/patients", h.PatientRecordUpsert)
		admin.POST("/clinics/:id/measures", h.MeasureCreate)
		admin.POST("/clinics/:id/measures/:measureId/effects", h.MeasureEffectRecord)
		admin.POST("/clinics/:id/analyze", h.Analyze)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
