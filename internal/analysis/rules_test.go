package analysis

import (
	"testing"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

func TestEvaluateIssues_EmptySnapshot(t *testing.T) {
	issues := EvaluateIssues(Snapshot{})
	if issues == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestEvaluateIssues_OrderIsFixed(t *testing.T) {
	bounce := 90.0
	snap := Snapshot{
		Review: &models.ReviewRecord{TotalReviews: 10, AverageRating: 3.0},
		Analytics: &models.AnalyticsRecord{
			TotalSessions:      1000,
			AvgSessionDuration: 120,
			BounceRate:         50,
			PaidBounceRate:     &bounce,
		},
	}
	issues := EvaluateIssues(snap)
	want := []models.IssueType{
		models.IssueLowReviewCount,
		models.IssueLowReviewScore,
		models.IssueAdInefficiency,
	}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), issues)
	}
	for i, typ := range want {
		if issues[i].Type != typ {
			t.Fatalf("issue %d: expected %s, got %s", i, typ, issues[i].Type)
		}
	}
}

func TestEvaluateIssues_Messages(t *testing.T) {
	bounce := 90.0
	snap := Snapshot{
		Review: &models.ReviewRecord{TotalReviews: 10, AverageRating: 3.0},
		Analytics: &models.AnalyticsRecord{
			TotalSessions:      300,
			AvgSessionDuration: 45.9,
			BounceRate:         50,
			PaidBounceRate:     &bounce,
		},
	}
	issues := EvaluateIssues(snap)
	byType := map[models.IssueType]models.Issue{}
	for _, is := range issues {
		byType[is.Type] = is
	}

	if got := byType[models.IssueLowReviewCount].Message; got != "口コミ数が10件と少ないため、比較検討時に不利になる可能性があります。" {
		t.Fatalf("unexpected review count message: %s", got)
	}
	if got := byType[models.IssueLowReviewScore].Message; got != "口コミ評価が3.0点と低めです。評価改善が必要です。" {
		t.Fatalf("unexpected review score message: %s", got)
	}
	if got := byType[models.IssueLowTraffic].Message; got != "月間流入数が300件と少なめです。広告やSEO対策で集客強化が必要です。" {
		t.Fatalf("unexpected traffic message: %s", got)
	}
	// Duration is floored, not rounded.
	if got := byType[models.IssueLowEngagement].Message; got != "平均滞在時間が45秒と短いため、HPに魅力が少ない可能性があります。" {
		t.Fatalf("unexpected engagement message: %s", got)
	}
	if got := byType[models.IssueAdInefficiency].Message; got != "広告経由の直帰率が90%と高く、広告がうまくいっていない可能性があります。" {
		t.Fatalf("unexpected ad message: %s", got)
	}
}

func TestEvaluateIssues_SkipsAbsentSources(t *testing.T) {
	snap := Snapshot{
		Analytics: &models.AnalyticsRecord{TotalSessions: 300, AvgSessionDuration: 200, BounceRate: 30},
	}
	issues := EvaluateIssues(snap)
	if len(issues) != 1 || issues[0].Type != models.IssueLowTraffic {
		t.Fatalf("expected only LOW_TRAFFIC without review data, got %+v", issues)
	}
}

func TestEvaluateIssues_CompetitorGap(t *testing.T) {
	snap := Snapshot{
		Review: &models.ReviewRecord{TotalReviews: 30, AverageRating: 4.0},
		Competitors: []CompetitorMetrics{
			{Name: "A歯科", TotalReviews: 60, AverageRating: 4.2},
			{Name: "B歯科", TotalReviews: 40, AverageRating: 4.0},
		},
	}
	issues := EvaluateIssues(snap)
	if len(issues) != 1 || issues[0].Type != models.IssueCompetitorReviewGap {
		t.Fatalf("expected competitor gap issue, got %+v", issues)
	}
	if issues[0].Message != "口コミ数が競合平均（50件）より少ない状況です。" {
		t.Fatalf("unexpected gap message: %s", issues[0].Message)
	}

	// 70% of the competitor mean is the boundary; at it, no issue.
	snap.Review.TotalReviews = 35
	if issues := EvaluateIssues(snap); len(issues) != 0 {
		t.Fatalf("expected no issue at the gap boundary, got %+v", issues)
	}
}

func TestEvaluateIssues_NoGapRuleWithoutCompetitors(t *testing.T) {
	snap := Snapshot{
		Review: &models.ReviewRecord{TotalReviews: 5, AverageRating: 4.5},
	}
	issues := EvaluateIssues(snap)
	if len(issues) != 1 || issues[0].Type != models.IssueLowReviewCount {
		t.Fatalf("expected only LOW_REVIEW_COUNT, got %+v", issues)
	}
}
