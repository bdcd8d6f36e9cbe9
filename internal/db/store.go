package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/ai"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- clinics ---

func (s *Store) CreateClinic(ctx context.Context, c models.Clinic) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO clinics (id, organization_id, name, prefecture, city, address, place_id, website_url, specialties, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, c.ID, c.OrganizationID, c.Name, c.Prefecture, c.City, c.Address, c.PlaceID, c.WebsiteURL, c.Specialties, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *Store) ListClinics(ctx context.Context, orgID string) ([]models.Clinic, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, organization_id, name, prefecture, city, address, place_id, website_url, specialties, created_at, updated_at
		FROM clinics
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Clinic
	for rows.Next() {
		var c models.Clinic
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Prefecture, &c.City, &c.Address, &c.PlaceID, &c.WebsiteURL, &c.Specialties, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClinic(ctx context.Context, orgID, clinicID string) (models.Clinic, error) {
	var c models.Clinic
	err := s.Pool.QueryRow(ctx, `
		SELECT id, organization_id, name, prefecture, city, address, place_id, website_url, specialties, created_at, updated_at
		FROM clinics
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, clinicID, orgID).Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Prefecture, &c.City, &c.Address, &c.PlaceID, &c.WebsiteURL, &c.Specialties, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Clinic{}, err
	}
	return c, nil
}

func (s *Store) UpdateClinic(ctx context.Context, c models.Clinic) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE clinics
		SET name = $1, prefecture = $2, city = $3, address = $4, place_id = $5, website_url = $6, specialties = $7, updated_at = NOW()
		WHERE id = $8 AND organization_id = $9 AND deleted_at IS NULL
	`, c.Name, c.Prefecture, c.City, c.Address, c.PlaceID, c.WebsiteURL, c.Specialties, c.ID, c.OrganizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SoftDeleteClinic(ctx context.Context, orgID, clinicID string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE clinics SET deleted_at = NOW() WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, clinicID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// --- review records ---

func (s *Store) InsertReview(ctx context.Context, r models.ReviewRecord) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO review_records (id, clinic_id, average_rating, total_reviews, fetched_at)
		VALUES ($1,$2,$3,$4,$5)
	`, r.ID, r.ClinicID, r.AverageRating, r.TotalReviews, r.FetchedAt)
	return err
}

func (s *Store) ListReviews(ctx context.Context, clinicID string, limit int) ([]models.ReviewRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, clinic_id, average_rating, total_reviews, fetched_at
		FROM review_records WHERE clinic_id = $1 ORDER BY fetched_at DESC LIMIT $2
	`, clinicID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewRecord
	for rows.Next() {
		var r models.ReviewRecord
		if err := rows.Scan(&r.ID, &r.ClinicID, &r.AverageRating, &r.TotalReviews, &r.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LatestReview(ctx context.Context, clinicID string) (*models.ReviewRecord, error) {
	var r models.ReviewRecord
	err := s.Pool.QueryRow(ctx, `
		SELECT id, clinic_id, average_rating, total_reviews, fetched_at
		FROM review_records WHERE clinic_id = $1 ORDER BY fetched_at DESC LIMIT 1
	`, clinicID).Scan(&r.ID, &r.ClinicID, &r.AverageRating, &r.TotalReviews, &r.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// --- analytics records ---

func (s *Store) InsertAnalytics(ctx context.Context, a models.AnalyticsRecord) error {
	regions, err := json.Marshal(a.RegionSessions)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO analytics_records (id, clinic_id, period_start, period_end, total_sessions, total_users, new_users, avg_session_duration, bounce_rate, region_sessions, paid_sessions, paid_bounce_rate, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, a.ID, a.ClinicID, a.PeriodStart, a.PeriodEnd, a.TotalSessions, a.TotalUsers, a.NewUsers, a.AvgSessionDuration, a.BounceRate, regions, a.PaidSessions, a.PaidBounceRate, a.CreatedAt)
	return err
}

func (s *Store) ListAnalytics(ctx context.Context, clinicID string, limit int) ([]models.AnalyticsRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, clinic_id, period_start, period_end, total_sessions, total_users, new_users, avg_session_duration, bounce_rate, region_sessions, paid_sessions, paid_bounce_rate, created_at
		FROM analytics_records WHERE clinic_id = $1 ORDER BY period_end DESC LIMIT $2
	`, clinicID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AnalyticsRecord
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) LatestAnalytics(ctx context.Context, clinicID string) (*models.AnalyticsRecord, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, clinic_id, period_start, period_end, total_sessions, total_users, new_users, avg_session_duration, bounce_rate, region_sessions, paid_sessions, paid_bounce_rate, created_at
		FROM analytics_records WHERE clinic_id = $1 ORDER BY period_end DESC LIMIT 1
	`, clinicID)
	a, err := scanAnalytics(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAnalytics(row pgx.Row) (models.AnalyticsRecord, error) {
	var (
		a       models.AnalyticsRecord
		regions []byte
	)
	if err := row.Scan(&a.ID, &a.ClinicID, &a.PeriodStart, &a.PeriodEnd, &a.TotalSessions, &a.TotalUsers, &a.NewUsers, &a.AvgSessionDuration, &a.BounceRate, &regions, &a.PaidSessions, &a.PaidBounceRate, &a.CreatedAt); err != nil {
		return models.AnalyticsRecord{}, err
	}
	if len(regions) > 0 {
		_ = json.Unmarshal(regions, &a.RegionSessions)
	}
	return a, nil
}

// --- competitors ---

func (s *Store) CreateCompetitor(ctx context.Context, c models.Competitor) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO competitors (id, clinic_id, name, place_id, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.ClinicID, c.Name, c.PlaceID, c.IsActive, c.CreatedAt)
	return err
}

// ActiveCompetitors returns active competitors with each one's latest
// review snapshot (nil when none has been recorded yet).
func (s *Store) ActiveCompetitors(ctx context.Context, clinicID string) ([]models.Competitor, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, c.clinic_id, c.name, c.place_id, c.is_active, c.created_at,
			r.id, r.average_rating, r.total_reviews, r.fetched_at
		FROM competitors c
		LEFT JOIN LATERAL (
			SELECT id, average_rating, total_reviews, fetched_at
			FROM competitor_review_records
			WHERE competitor_id = c.id
			ORDER BY fetched_at DESC LIMIT 1
		) r ON TRUE
		WHERE c.clinic_id = $1 AND c.is_active
		ORDER BY c.created_at ASC
	`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Competitor
	for rows.Next() {
		var (
			c         models.Competitor
			reviewID  *string
			rating    *float64
			total     *int
			fetchedAt *time.Time
		)
		if err := rows.Scan(&c.ID, &c.ClinicID, &c.Name, &c.PlaceID, &c.IsActive, &c.CreatedAt, &reviewID, &rating, &total, &fetchedAt); err != nil {
			return nil, err
		}
		if reviewID != nil {
			c.LatestReview = &models.ReviewRecord{
				ID:            *reviewID,
				AverageRating: *rating,
				TotalReviews:  *total,
				FetchedAt:     *fetchedAt,
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DeactivateCompetitor(ctx context.Context, clinicID, competitorID string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE competitors SET is_active = FALSE WHERE id = $1 AND clinic_id = $2 AND is_active
	`, competitorID, clinicID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) InsertCompetitorReview(ctx context.Context, id, competitorID string, rating float64, totalReviews int, fetchedAt time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO competitor_review_records (id, competitor_id, average_rating, total_reviews, fetched_at)
		VALUES ($1,$2,$3,$4,$5)
	`, id, competitorID, rating, totalReviews, fetchedAt)
	return err
}

// --- patient records ---

func (s *Store) UpsertPatientRecord(ctx context.Context, p models.PatientRecord) error {
	byComplaint, err := json.Marshal(p.ByComplaint)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO patient_records (id, clinic_id, year, month, total_new_patients, by_complaint, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (clinic_id, year, month) DO UPDATE SET
			total_new_patients = EXCLUDED.total_new_patients,
			by_complaint = EXCLUDED.by_complaint
	`, p.ID, p.ClinicID, p.Year, p.Month, p.TotalNewPatients, byComplaint, p.CreatedAt)
	return err
}

func (s *Store) ListPatientRecords(ctx context.Context, clinicID string, limit int) ([]models.PatientRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 24
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, clinic_id, year, month, total_new_patients, by_complaint, created_at
		FROM patient_records WHERE clinic_id = $1 ORDER BY year DESC, month DESC LIMIT $2
	`, clinicID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PatientRecord
	for rows.Next() {
		p, err := scanPatientRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) LatestPatientRecord(ctx context.Context, clinicID string) (*models.PatientRecord, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, clinic_id, year, month, total_new_patients, by_complaint, created_at
		FROM patient_records WHERE clinic_id = $1 ORDER BY year DESC, month DESC LIMIT 1
	`, clinicID)
	p, err := scanPatientRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatientRecord(row pgx.Row) (models.PatientRecord, error) {
	var (
		p           models.PatientRecord
		byComplaint []byte
	)
	if err := row.Scan(&p.ID, &p.ClinicID, &p.Year, &p.Month, &p.TotalNewPatients, &byComplaint, &p.CreatedAt); err != nil {
		return models.PatientRecord{}, err
	}
	if len(byComplaint) > 0 {
		_ = json.Unmarshal(byComplaint, &p.ByComplaint)
	}
	return p, nil
}

// --- measures ---

func (s *Store) CreateMeasure(ctx context.Context, m models.Measure) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO measures (id, clinic_id, name, category, cost, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, m.ID, m.ClinicID, m.Name, m.Category, m.Cost, m.Status, m.CreatedAt)
	return err
}

func (s *Store) ListMeasures(ctx context.Context, clinicID string) ([]models.Measure, error) {
	return s.queryMeasures(ctx, clinicID, false)
}

// ActiveMeasures returns active measures with the latest recorded ROI.
func (s *Store) ActiveMeasures(ctx context.Context, clinicID string) ([]models.Measure, error) {
	return s.queryMeasures(ctx, clinicID, true)
}

func (s *Store) queryMeasures(ctx context.Context, clinicID string, activeOnly bool) ([]models.Measure, error) {
	query := `
		SELECT m.id, m.clinic_id, m.name, m.category, m.cost, m.status, m.created_at, e.roi
		FROM measures m
		LEFT JOIN LATERAL (
			SELECT roi FROM measure_effects WHERE measure_id = m.id ORDER BY analyzed_at DESC LIMIT 1
		) e ON TRUE
		WHERE m.clinic_id = $1`
	if activeOnly {
		query += ` AND m.status = 'ACTIVE'`
	}
	query += ` ORDER BY m.created_at ASC`

	rows, err := s.Pool.Query(ctx, query, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Measure
	for rows.Next() {
		var m models.Measure
		if err := rows.Scan(&m.ID, &m.ClinicID, &m.Name, &m.Category, &m.Cost, &m.Status, &m.CreatedAt, &m.ROI); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) RecordMeasureEffect(ctx context.Context, id, measureID string, roi float64, analyzedAt time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO measure_effects (id, measure_id, roi, analyzed_at) VALUES ($1,$2,$3,$4)
	`, id, measureID, roi, analyzedAt)
	return err
}

// --- analysis results ---

// InsertAnalysisResult appends one run's result; rows are never updated.
func (s *Store) InsertAnalysisResult(ctx context.Context, r models.AnalysisResult) error {
	issues, err := json.Marshal(r.Issues)
	if err != nil {
		return err
	}
	var aiBlob []byte
	if r.AIAnalysis != nil {
		if aiBlob, err = json.Marshal(r.AIAnalysis); err != nil {
			return err
		}
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO analysis_results (id, clinic_id, analyzed_by_id, analyzed_at, period_start, period_end, traffic_score, engagement_score, review_score, overall_score, issues, ai_analysis, ai_analyzed_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, r.ID, r.ClinicID, r.AnalyzedByID, r.AnalyzedAt, r.PeriodStart, r.PeriodEnd, r.TrafficScore, r.EngagementScore, r.ReviewScore, r.OverallScore, issues, aiBlob, r.AIAnalyzedAt, r.Status)
	return err
}

func (s *Store) ListAnalysisResults(ctx context.Context, clinicID string, limit int) ([]models.AnalysisResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, clinic_id, analyzed_by_id, analyzed_at, period_start, period_end, traffic_score, engagement_score, review_score, overall_score, issues, ai_analysis, ai_analyzed_at, status
		FROM analysis_results WHERE clinic_id = $1 ORDER BY analyzed_at DESC LIMIT $2
	`, clinicID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AnalysisResult
	for rows.Next() {
		r, err := scanAnalysisResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LatestAnalysisResult(ctx context.Context, clinicID string) (*models.AnalysisResult, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, clinic_id, analyzed_by_id, analyzed_at, period_start, period_end, traffic_score, engagement_score, review_score, overall_score, issues, ai_analysis, ai_analyzed_at, status
		FROM analysis_results WHERE clinic_id = $1 ORDER BY analyzed_at DESC LIMIT 1
	`, clinicID)
	r, err := scanAnalysisResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanAnalysisResult(row pgx.Row) (models.AnalysisResult, error) {
	var (
		r      models.AnalysisResult
		issues []byte
		aiBlob []byte
	)
	if err := row.Scan(&r.ID, &r.ClinicID, &r.AnalyzedByID, &r.AnalyzedAt, &r.PeriodStart, &r.PeriodEnd, &r.TrafficScore, &r.EngagementScore, &r.ReviewScore, &r.OverallScore, &issues, &aiBlob, &r.AIAnalyzedAt, &r.Status); err != nil {
		return models.AnalysisResult{}, err
	}
	r.Issues = []models.Issue{}
	if len(issues) > 0 {
		_ = json.Unmarshal(issues, &r.Issues)
	}
	if len(aiBlob) > 0 {
		// Records written before this service existed may carry
		// string-shaped list fields; the normalizer absorbs that.
		normalized := ai.NormalizeResponse(string(aiBlob))
		r.AIAnalysis = &normalized
	}
	return r, nil
}
