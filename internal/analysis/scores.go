package analysis

import (
	"math"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

// ComputeScores derives the four 0-100 scores from a snapshot. Component
// scores are nil when their data source is absent; the overall score is
// the unweighted mean of whichever components exist. Each base score is
// clamped before its penalty or adjustment is applied, because those are
// defined relative to an already-bounded base.
func ComputeScores(s Snapshot) models.Scores {
	var scores models.Scores

	if s.Review != nil {
		base := clamp(math.Round((s.Review.AverageRating - 2.5) * 40))
		// Being above or below the local competitive average shifts the
		// score ±10 points per full star of gap.
		if meanRating := s.CompetitorMeanRating(); meanRating > 0 {
			base = clamp(base + (s.Review.AverageRating-meanRating)*10)
		}
		scores.ReviewScore = roundPtr(base)
	}

	if s.Analytics != nil {
		traffic := clamp(trafficBase(float64(s.Analytics.TotalSessions)))
		penalty := math.Max(0, (s.Analytics.BounceRate-40)*0.5)
		scores.TrafficScore = roundPtr(clamp(traffic - penalty))

		// Bounce rate does not penalize engagement.
		scores.EngagementScore = roundPtr(clamp(engagementBase(s.Analytics.AvgSessionDuration)))
	}

	scores.OverallScore = overall(scores.ReviewScore, scores.TrafficScore, scores.EngagementScore)
	return scores
}

// trafficBase maps monthly sessions onto 0-100: under 500 sessions scales
// 0-30, 500-5000 scales 30-100.
func trafficBase(sessions float64) float64 {
	if sessions < 500 {
		return sessions / 500 * 30
	}
	return 30 + (sessions-500)/4500*70
}

// engagementBase maps average session duration (seconds) onto 0-100:
// under 60s scales 0-30, 60-420s scales 30-100.
func engagementBase(duration float64) float64 {
	if duration < 60 {
		return duration / 60 * 30
	}
	return 30 + (duration-60)/360*70
}

func overall(components ...*int) *int {
	sum, n := 0, 0
	for _, c := range components {
		if c != nil {
			sum += *c
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := int(math.Round(float64(sum) / float64(n)))
	return &v
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func roundPtr(v float64) *int {
	r := int(math.Round(v))
	return &r
}
