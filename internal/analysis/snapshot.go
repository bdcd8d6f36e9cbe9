package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

// MetricsStore is the slice of storage the assembler reads. Latest-record
// lookups return nil (not an error) when no record exists.
type MetricsStore interface {
	GetClinic(ctx context.Context, orgID, clinicID string) (models.Clinic, error)
	LatestReview(ctx context.Context, clinicID string) (*models.ReviewRecord, error)
	LatestAnalytics(ctx context.Context, clinicID string) (*models.AnalyticsRecord, error)
	ActiveCompetitors(ctx context.Context, clinicID string) ([]models.Competitor, error)
	LatestPatientRecord(ctx context.Context, clinicID string) (*models.PatientRecord, error)
	ActiveMeasures(ctx context.Context, clinicID string) ([]models.Measure, error)
}

type CompetitorMetrics struct {
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Snapshot is the immutable per-run input to the rule engine, score
// calculator and prompt builder. Optional sources are nil when the clinic
// has no data for them; that is a normal state, not an error.
type Snapshot struct {
	Clinic           models.Clinic
	Review           *models.ReviewRecord
	Analytics        *models.AnalyticsRecord
	LocalTrafficRate *float64
	Competitors      []CompetitorMetrics
	PatientData      *models.PatientRecord
	Measures         []models.Measure
	Issues           []models.Issue
}

// Assemble fetches the latest known records for one clinic. The clinic
// lookup runs first so a missing clinic aborts before any metric work;
// the five metric fetches are independent and run concurrently.
func Assemble(ctx context.Context, store MetricsStore, orgID, clinicID string) (Snapshot, error) {
	clinic, err := store.GetClinic(ctx, orgID, clinicID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Clinic: clinic}
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		firstErr    error
		competitors []models.Competitor
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		r, err := store.LatestReview(ctx, clinicID)
		if err != nil {
			fail(err)
			return
		}
		snap.Review = r
	}()
	go func() {
		defer wg.Done()
		a, err := store.LatestAnalytics(ctx, clinicID)
		if err != nil {
			fail(err)
			return
		}
		snap.Analytics = a
	}()
	go func() {
		defer wg.Done()
		c, err := store.ActiveCompetitors(ctx, clinicID)
		if err != nil {
			fail(err)
			return
		}
		competitors = c
	}()
	go func() {
		defer wg.Done()
		p, err := store.LatestPatientRecord(ctx, clinicID)
		if err != nil {
			fail(err)
			return
		}
		snap.PatientData = p
	}()
	go func() {
		defer wg.Done()
		m, err := store.ActiveMeasures(ctx, clinicID)
		if err != nil {
			fail(err)
			return
		}
		snap.Measures = m
	}()
	wg.Wait()
	if firstErr != nil {
		return Snapshot{}, firstErr
	}

	// Only competitors with at least one review snapshot take part in
	// the analysis.
	for _, c := range competitors {
		if c.LatestReview == nil {
			continue
		}
		snap.Competitors = append(snap.Competitors, CompetitorMetrics{
			Name:          c.Name,
			AverageRating: c.LatestReview.AverageRating,
			TotalReviews:  c.LatestReview.TotalReviews,
		})
	}

	if snap.Analytics != nil {
		snap.LocalTrafficRate = localTrafficRate(clinic.Prefecture, snap.Analytics)
	}
	return snap, nil
}

// localTrafficRate is the share of sessions whose region matches the
// clinic prefecture. Nil when no region breakdown was ingested.
func localTrafficRate(prefecture string, a *models.AnalyticsRecord) *float64 {
	if len(a.RegionSessions) == 0 {
		return nil
	}
	total := 0
	local := 0
	for region, sessions := range a.RegionSessions {
		total += sessions
		if regionMatches(region, prefecture) {
			local += sessions
		}
	}
	if total == 0 {
		return nil
	}
	rate := float64(local) / float64(total) * 100
	return &rate
}

func regionMatches(region, prefecture string) bool {
	region = strings.TrimSpace(region)
	prefecture = strings.TrimSpace(prefecture)
	if region == "" || prefecture == "" {
		return false
	}
	// GA region names drop the 都/府/県 suffix ("Tokyo", "東京");
	// prefecture values in clinic records carry it ("東京都").
	return strings.EqualFold(region, prefecture) ||
		strings.HasPrefix(prefecture, region) ||
		strings.HasPrefix(region, prefecture)
}

// CompetitorMeanReviews is the mean review count across the snapshot's
// competitors; zero when there are none.
func (s Snapshot) CompetitorMeanReviews() float64 {
	if len(s.Competitors) == 0 {
		return 0
	}
	sum := 0
	for _, c := range s.Competitors {
		sum += c.TotalReviews
	}
	return float64(sum) / float64(len(s.Competitors))
}

// CompetitorMeanRating is the mean average rating across the snapshot's
// competitors; zero when there are none.
func (s Snapshot) CompetitorMeanRating() float64 {
	if len(s.Competitors) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range s.Competitors {
		sum += c.AverageRating
	}
	return sum / float64(len(s.Competitors))
}
