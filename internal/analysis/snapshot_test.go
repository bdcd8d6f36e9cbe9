package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

type fakeMetricsStore struct {
	clinic      models.Clinic
	clinicErr   error
	review      *models.ReviewRecord
	analytics   *models.AnalyticsRecord
	competitors []models.Competitor
	patients    *models.PatientRecord
	measures    []models.Measure

	metricsErr error
}

func (f *fakeMetricsStore) GetClinic(ctx context.Context, orgID, clinicID string) (models.Clinic, error) {
	return f.clinic, f.clinicErr
}

func (f *fakeMetricsStore) LatestReview(ctx context.Context, clinicID string) (*models.ReviewRecord, error) {
	return f.review, f.metricsErr
}

func (f *fakeMetricsStore) LatestAnalytics(ctx context.Context, clinicID string) (*models.AnalyticsRecord, error) {
	return f.analytics, f.metricsErr
}

func (f *fakeMetricsStore) ActiveCompetitors(ctx context.Context, clinicID string) ([]models.Competitor, error) {
	return f.competitors, f.metricsErr
}

func (f *fakeMetricsStore) LatestPatientRecord(ctx context.Context, clinicID string) (*models.PatientRecord, error) {
	return f.patients, f.metricsErr
}

func (f *fakeMetricsStore) ActiveMeasures(ctx context.Context, clinicID string) ([]models.Measure, error) {
	return f.measures, f.metricsErr
}

func TestAssemble_ClinicErrorAborts(t *testing.T) {
	wantErr := errors.New("no such clinic")
	store := &fakeMetricsStore{clinicErr: wantErr}
	_, err := Assemble(context.Background(), store, "org-1", "c-1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected clinic error to propagate, got %v", err)
	}
}

func TestAssemble_MetricErrorPropagates(t *testing.T) {
	store := &fakeMetricsStore{metricsErr: errors.New("db down")}
	_, err := Assemble(context.Background(), store, "org-1", "c-1")
	if err == nil {
		t.Fatalf("expected error from metric fetch")
	}
}

func TestAssemble_ZeroDataClinicIsValid(t *testing.T) {
	store := &fakeMetricsStore{clinic: models.Clinic{ID: "c-1", Name: "ひまわり歯科"}}
	snap, err := Assemble(context.Background(), store, "org-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Clinic.ID != "c-1" {
		t.Fatalf("unexpected clinic: %+v", snap.Clinic)
	}
	if snap.Review != nil || snap.Analytics != nil || snap.PatientData != nil {
		t.Fatalf("expected absent sources to stay nil")
	}
	if len(snap.Competitors) != 0 || len(snap.Measures) != 0 {
		t.Fatalf("expected no competitors or measures")
	}
}

func TestAssemble_FiltersCompetitorsWithoutReviews(t *testing.T) {
	store := &fakeMetricsStore{
		clinic: models.Clinic{ID: "c-1"},
		competitors: []models.Competitor{
			{ID: "comp-1", Name: "A歯科", LatestReview: &models.ReviewRecord{AverageRating: 4.2, TotalReviews: 55}},
			{ID: "comp-2", Name: "B歯科"},
		},
	}
	snap, err := Assemble(context.Background(), store, "org-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Competitors) != 1 {
		t.Fatalf("expected 1 competitor with review data, got %+v", snap.Competitors)
	}
	if snap.Competitors[0].Name != "A歯科" || snap.Competitors[0].TotalReviews != 55 {
		t.Fatalf("unexpected competitor metrics: %+v", snap.Competitors[0])
	}
}

func TestAssemble_LocalTrafficRate(t *testing.T) {
	store := &fakeMetricsStore{
		clinic: models.Clinic{ID: "c-1", Prefecture: "東京都"},
		analytics: &models.AnalyticsRecord{
			TotalSessions:  1000,
			RegionSessions: map[string]int{"東京": 60, "大阪": 30, "神奈川": 10},
		},
	}
	snap, err := Assemble(context.Background(), store, "org-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.LocalTrafficRate == nil {
		t.Fatalf("expected local traffic rate")
	}
	if *snap.LocalTrafficRate != 60 {
		t.Fatalf("expected 60%%, got %f", *snap.LocalTrafficRate)
	}
}

func TestAssemble_LocalTrafficRateNilWithoutRegions(t *testing.T) {
	store := &fakeMetricsStore{
		clinic:    models.Clinic{ID: "c-1", Prefecture: "東京都"},
		analytics: &models.AnalyticsRecord{TotalSessions: 1000},
	}
	snap, err := Assemble(context.Background(), store, "org-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.LocalTrafficRate != nil {
		t.Fatalf("expected nil rate without a region breakdown, got %f", *snap.LocalTrafficRate)
	}
}

func TestCompetitorMeans(t *testing.T) {
	snap := Snapshot{Competitors: []CompetitorMetrics{
		{AverageRating: 4.0, TotalReviews: 40},
		{AverageRating: 3.0, TotalReviews: 60},
	}}
	if got := snap.CompetitorMeanReviews(); got != 50 {
		t.Fatalf("expected mean reviews 50, got %f", got)
	}
	if got := snap.CompetitorMeanRating(); got != 3.5 {
		t.Fatalf("expected mean rating 3.5, got %f", got)
	}
	if got := (Snapshot{}).CompetitorMeanReviews(); got != 0 {
		t.Fatalf("expected 0 without competitors, got %f", got)
	}
}
