package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/http/middleware"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

type stubAnalyzer struct {
	result models.AnalysisResult
	err    error

	gotOrgID    string
	gotClinicID string
	gotUserID   string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, orgID, clinicID, userID string) (models.AnalysisResult, error) {
	s.gotOrgID = orgID
	s.gotClinicID = clinicID
	s.gotUserID = userID
	return s.result, s.err
}

func analyzeRouter(stub *stubAnalyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{Analyzer: stub, Logger: zerolog.Nop()}
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.OrgScope())
	api.POST("/clinics/:id/analyze", h.Analyze)
	return r
}

func TestAnalyzeHandler(t *testing.T) {
	score := 54
	stub := &stubAnalyzer{result: models.AnalysisResult{
		ID:       "run-1",
		ClinicID: "c-1",
		Status:   models.AnalysisStatusCompleted,
		Scores:   models.Scores{OverallScore: &score},
		Issues:   []models.Issue{},
	}}
	r := analyzeRouter(stub)

	req, _ := http.NewRequest(http.MethodPost, "/api/clinics/c-1/analyze", nil)
	req.Header.Set(middleware.OrgIDHeader, "org-1")
	req.Header.Set(middleware.UserIDHeader, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if stub.gotOrgID != "org-1" || stub.gotClinicID != "c-1" || stub.gotUserID != "user-1" {
		t.Fatalf("unexpected analyzer args: %s %s %s", stub.gotOrgID, stub.gotClinicID, stub.gotUserID)
	}

	var body models.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != "run-1" || body.Status != models.AnalysisStatusCompleted {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.OverallScore == nil || *body.OverallScore != 54 {
		t.Fatalf("unexpected overall score: %v", body.OverallScore)
	}
}

func TestAnalyzeHandlerClinicNotFound(t *testing.T) {
	stub := &stubAnalyzer{err: pgx.ErrNoRows}
	r := analyzeRouter(stub)

	req, _ := http.NewRequest(http.MethodPost, "/api/clinics/missing/analyze", nil)
	req.Header.Set(middleware.OrgIDHeader, "org-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeHandlerRequiresOrgScope(t *testing.T) {
	stub := &stubAnalyzer{}
	r := analyzeRouter(stub)

	req, _ := http.NewRequest(http.MethodPost, "/api/clinics/c-1/analyze", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without org header, got %d", w.Code)
	}
	if stub.gotClinicID != "" {
		t.Fatalf("analyzer should not run without org scope")
	}
}
