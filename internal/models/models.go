package models

import "time"

// Severity levels for detected issues. Closed set; the rule engine and
// display layers must not invent other values.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

type IssueType string

const (
	IssueLowReviewCount      IssueType = "LOW_REVIEW_COUNT"
	IssueLowReviewScore      IssueType = "LOW_REVIEW_SCORE"
	IssueLowTraffic          IssueType = "LOW_TRAFFIC"
	IssueLowEngagement       IssueType = "LOW_ENGAGEMENT"
	IssueAdInefficiency      IssueType = "AD_INEFFICIENCY"
	IssueCompetitorReviewGap IssueType = "COMPETITOR_REVIEW_GAP"
)

type Issue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

type Clinic struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Prefecture     string     `json:"prefecture"`
	City           string     `json:"city"`
	Address        string     `json:"address"`
	PlaceID        *string    `json:"place_id,omitempty"`
	WebsiteURL     *string    `json:"website_url,omitempty"`
	Specialties    []string   `json:"specialties"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// ReviewRecord is one fetched snapshot of a clinic's (or competitor's)
// review presence.
type ReviewRecord struct {
	ID            string    `json:"id"`
	ClinicID      string    `json:"clinic_id"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	FetchedAt     time.Time `json:"fetched_at"`
}

type AnalyticsRecord struct {
	ID                 string         `json:"id"`
	ClinicID           string         `json:"clinic_id"`
	PeriodStart        time.Time      `json:"period_start"`
	PeriodEnd          time.Time      `json:"period_end"`
	TotalSessions      int            `json:"total_sessions"`
	TotalUsers         int            `json:"total_users"`
	NewUsers           int            `json:"new_users"`
	AvgSessionDuration float64        `json:"avg_session_duration"`
	BounceRate         float64        `json:"bounce_rate"`
	RegionSessions     map[string]int `json:"region_sessions,omitempty"`
	PaidSessions       *int           `json:"paid_sessions,omitempty"`
	PaidBounceRate     *float64       `json:"paid_bounce_rate,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

type Competitor struct {
	ID           string        `json:"id"`
	ClinicID     string        `json:"clinic_id"`
	Name         string        `json:"name"`
	PlaceID      *string       `json:"place_id,omitempty"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
	LatestReview *ReviewRecord `json:"latest_review,omitempty"`
}

type ComplaintCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PatientRecord is one month of manually entered new-patient counts.
type PatientRecord struct {
	ID               string           `json:"id"`
	ClinicID         string           `json:"clinic_id"`
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	TotalNewPatients int              `json:"total_new_patients"`
	ByComplaint      []ComplaintCount `json:"by_complaint"`
	CreatedAt        time.Time        `json:"created_at"`
}

const (
	MeasureStatusActive   = "ACTIVE"
	MeasureStatusPaused   = "PAUSED"
	MeasureStatusFinished = "FINISHED"
)

type Measure struct {
	ID        string    `json:"id"`
	ClinicID  string    `json:"clinic_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Cost      int       `json:"cost"`
	Status    string    `json:"status"`
	ROI       *float64  `json:"roi,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Scores are nil whenever the underlying data source was absent from the
// snapshot. OverallScore is the unweighted mean of the non-nil component
// scores, nil when all three are nil.
type Scores struct {
	TrafficScore    *int `json:"traffic_score"`
	EngagementScore *int `json:"engagement_score"`
	ReviewScore     *int `json:"review_score"`
	OverallScore    *int `json:"overall_score"`
}

const AnalysisStatusCompleted = "COMPLETED"

// AnalysisResult is append-only: one row per analyze run, never updated.
// The most recent row per clinic is treated as the current analysis.
type AnalysisResult struct {
	ID           string `json:"id"`
	ClinicID     string `json:"clinic_id"`
	AnalyzedByID string `json:"analyzed_by_id"`
	Scores
	AnalyzedAt   time.Time         `json:"analyzed_at"`
	PeriodStart  time.Time         `json:"period_start"`
	PeriodEnd    time.Time         `json:"period_end"`
	Issues       []Issue           `json:"issues"`
	AIAnalysis   *AIAnalysisResult `json:"ai_analysis"`
	AIAnalyzedAt *time.Time        `json:"ai_analyzed_at,omitempty"`
	Status       string            `json:"status"`
}

// ProposedService and AIAnalysisResult keep camelCase JSON tags: the keys
// are part of the output contract stated in the analysis prompt, and
// persisted blobs must round-trip against records written before this
// service existed.
type ProposedService struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Priority       Severity `json:"priority"`
	EstimatedCost  string   `json:"estimatedCost"`
	ExpectedEffect string   `json:"expectedEffect"`
	Reason         string   `json:"reason"`
	Timeline       string   `json:"timeline,omitempty"`
}

type AIAnalysisResult struct {
	CurrentAnalysis    string            `json:"currentAnalysis"`
	MainIssues         []string          `json:"mainIssues"`
	CompetitorAnalysis *string           `json:"competitorAnalysis,omitempty"`
	WebAnalysis        *string           `json:"webAnalysis,omitempty"`
	ReviewAnalysis     *string           `json:"reviewAnalysis,omitempty"`
	ComplaintAnalysis  *string           `json:"complaintAnalysis,omitempty"`
	MeasureEvaluation  *string           `json:"measureEvaluation,omitempty"`
	Recommendations    []string          `json:"recommendations"`
	ProposedServices   []ProposedService `json:"proposedServices"`
	ExpectedEffects    string            `json:"expectedEffects"`
}
