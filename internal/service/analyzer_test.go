package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

type fakeStore struct {
	clinic    models.Clinic
	clinicErr error
	review    *models.ReviewRecord
	analytics *models.AnalyticsRecord

	saved *models.AnalysisResult
}

func (f *fakeStore) GetClinic(ctx context.Context, orgID, clinicID string) (models.Clinic, error) {
	return f.clinic, f.clinicErr
}

func (f *fakeStore) LatestReview(ctx context.Context, clinicID string) (*models.ReviewRecord, error) {
	return f.review, nil
}

func (f *fakeStore) LatestAnalytics(ctx context.Context, clinicID string) (*models.AnalyticsRecord, error) {
	return f.analytics, nil
}

func (f *fakeStore) ActiveCompetitors(ctx context.Context, clinicID string) ([]models.Competitor, error) {
	return nil, nil
}

func (f *fakeStore) LatestPatientRecord(ctx context.Context, clinicID string) (*models.PatientRecord, error) {
	return nil, nil
}

func (f *fakeStore) ActiveMeasures(ctx context.Context, clinicID string) ([]models.Measure, error) {
	return nil, nil
}

func (f *fakeStore) InsertAnalysisResult(ctx context.Context, r models.AnalysisResult) error {
	f.saved = &r
	return nil
}

type staticAdapter struct {
	reply string
	err   error
}

func (a staticAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	return a.reply, a.err
}

func TestAnalyze_SavesResultWithNarrative(t *testing.T) {
	store := &fakeStore{
		clinic:    models.Clinic{ID: "c-1", Name: "さくら歯科", Prefecture: "東京都"},
		review:    &models.ReviewRecord{AverageRating: 4.0, TotalReviews: 40},
		analytics: &models.AnalyticsRecord{TotalSessions: 2000, BounceRate: 40, AvgSessionDuration: 150},
	}
	svc := &AnalyzerService{
		Store:  store,
		AI:     staticAdapter{reply: `{"currentAnalysis": "良好な状態です", "mainIssues": ["課題1"], "expectedEffects": "効果"}`},
		Logger: zerolog.Nop(),
	}

	result, err := svc.Analyze(context.Background(), "org-1", "c-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.saved == nil {
		t.Fatalf("expected result persisted")
	}
	if result.Status != models.AnalysisStatusCompleted {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.AnalyzedByID != "user-1" || result.ClinicID != "c-1" {
		t.Fatalf("unexpected attribution: %+v", result)
	}
	if result.AIAnalysis == nil || result.AIAnalysis.CurrentAnalysis != "良好な状態です" {
		t.Fatalf("expected normalized AI narrative, got %+v", result.AIAnalysis)
	}
	if result.AIAnalyzedAt == nil {
		t.Fatalf("expected AI timestamp")
	}
	if result.OverallScore == nil || *result.OverallScore != 54 {
		t.Fatalf("unexpected overall score: %v", result.OverallScore)
	}
}

func TestAnalyze_ModelFailureStillSaves(t *testing.T) {
	store := &fakeStore{
		clinic: models.Clinic{ID: "c-1", Name: "さくら歯科"},
		review: &models.ReviewRecord{AverageRating: 3.0, TotalReviews: 5},
	}
	svc := &AnalyzerService{
		Store:  store,
		AI:     staticAdapter{err: errors.New("model unavailable")},
		Logger: zerolog.Nop(),
	}

	result, err := svc.Analyze(context.Background(), "org-1", "c-1", "user-1")
	if err != nil {
		t.Fatalf("expected model failure absorbed, got %v", err)
	}
	if result.AIAnalysis != nil || result.AIAnalyzedAt != nil {
		t.Fatalf("expected no AI narrative, got %+v", result.AIAnalysis)
	}
	if store.saved == nil {
		t.Fatalf("expected result persisted despite model failure")
	}
	if len(result.Issues) == 0 {
		t.Fatalf("expected rule issues regardless of model outcome")
	}
	if result.Status != models.AnalysisStatusCompleted {
		t.Fatalf("unexpected status: %s", result.Status)
	}
}

func TestAnalyze_ClinicLookupFailureAborts(t *testing.T) {
	wantErr := errors.New("no rows")
	store := &fakeStore{clinicErr: wantErr}
	svc := &AnalyzerService{Store: store, AI: staticAdapter{}, Logger: zerolog.Nop()}

	_, err := svc.Analyze(context.Background(), "org-1", "missing", "user-1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected clinic error to propagate, got %v", err)
	}
	if store.saved != nil {
		t.Fatalf("expected nothing persisted on lookup failure")
	}
}
