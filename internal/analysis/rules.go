package analysis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

// Rule thresholds. The numbers are product policy carried over unchanged
// so historical results stay comparable.
const (
	minHealthyReviews    = 30
	minHealthyRating     = 3.5
	minHealthySessions   = 500
	minHealthyDuration   = 60
	maxHealthyPaidBounce = 70
	competitorGapFactor  = 0.7
)

// EvaluateIssues runs the fixed rule set against a snapshot. Rules are
// evaluated in a fixed order and never short-circuit each other; a rule
// whose data source is absent is skipped. The returned order is part of
// the contract consumers may rely on.
func EvaluateIssues(s Snapshot) []models.Issue {
	issues := []models.Issue{}

	if s.Review != nil {
		if s.Review.TotalReviews < minHealthyReviews {
			issues = append(issues, models.Issue{
				Type:     models.IssueLowReviewCount,
				Severity: models.SeverityMedium,
				Message:  fmt.Sprintf("口コミ数が%d件と少ないため、比較検討時に不利になる可能性があります。", s.Review.TotalReviews),
			})
		}
		if s.Review.AverageRating < minHealthyRating {
			issues = append(issues, models.Issue{
				Type:     models.IssueLowReviewScore,
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("口コミ評価が%.1f点と低めです。評価改善が必要です。", s.Review.AverageRating),
			})
		}
	}

	if s.Analytics != nil {
		if s.Analytics.TotalSessions < minHealthySessions {
			issues = append(issues, models.Issue{
				Type:     models.IssueLowTraffic,
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("月間流入数が%d件と少なめです。広告やSEO対策で集客強化が必要です。", s.Analytics.TotalSessions),
			})
		}
		if s.Analytics.AvgSessionDuration < minHealthyDuration {
			issues = append(issues, models.Issue{
				Type:     models.IssueLowEngagement,
				Severity: models.SeverityMedium,
				Message:  fmt.Sprintf("平均滞在時間が%d秒と短いため、HPに魅力が少ない可能性があります。", int(math.Floor(s.Analytics.AvgSessionDuration))),
			})
		}
		if s.Analytics.PaidBounceRate != nil && *s.Analytics.PaidBounceRate > maxHealthyPaidBounce {
			issues = append(issues, models.Issue{
				Type:     models.IssueAdInefficiency,
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("広告経由の直帰率が%s%%と高く、広告がうまくいっていない可能性があります。", formatRate(*s.Analytics.PaidBounceRate)),
			})
		}
	}

	if s.Review != nil && len(s.Competitors) > 0 {
		mean := s.CompetitorMeanReviews()
		if float64(s.Review.TotalReviews) < mean*competitorGapFactor {
			issues = append(issues, models.Issue{
				Type:     models.IssueCompetitorReviewGap,
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("口コミ数が競合平均（%d件）より少ない状況です。", int(math.Round(mean))),
			})
		}
	}

	return issues
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
