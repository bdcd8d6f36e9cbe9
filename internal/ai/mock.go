package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/utils"
)

// MockAdapter fabricates a deterministic reply from the prompt hash so
// the analyze pipeline works end to end without an API key. Half of the
// replies come back fenced in a markdown block, which keeps the
// normalizer's fencing path exercised in dev.
type MockAdapter struct {
	ModelVersion string
}

func (m MockAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	h := utils.HashStringToUint64(prompt)

	priorities := []models.Severity{models.SeverityHigh, models.SeverityMedium, models.SeverityLow}
	services := []string{
		"MEO対策（Googleビジネスプロフィール最適化）",
		"口コミ促進施策",
		"リスティング広告（Google/Yahoo）",
		"SEO対策",
		"HP改善（デザイン・導線・コンテンツ）",
	}

	// Index with uint64 arithmetic: converting the hash to int first can
	// go negative and take the modulo below zero.
	pickService := func(seed uint64) string {
		return services[int(seed%uint64(len(services)))]
	}
	pickPriority := func(seed uint64) models.Severity {
		return priorities[int(seed%uint64(len(priorities)))]
	}

	result := models.AIAnalysisResult{
		CurrentAnalysis: fmt.Sprintf("モック分析（%s）: 提供データに基づくスタブの現状分析です。", m.ModelVersion),
		MainIssues: []string{
			"【優先度1】口コミ数が業界平均を下回っています",
			"【優先度2】Web流入の伸びしろがあります",
		},
		Recommendations: []string{
			"【今すぐ実施】Googleビジネスプロフィールの更新",
			"【1ヶ月以内】口コミ依頼フローの整備",
		},
		ProposedServices: []models.ProposedService{
			{
				Name:           pickService(h),
				Description:    "モック提案サービス",
				Priority:       pickPriority(h / 7),
				EstimatedCost:  "月額30,000円〜50,000円",
				ExpectedEffect: "新規患者+3人/月",
				Reason:         "検出された課題に基づく自動提案",
				Timeline:       "1〜3ヶ月",
			},
			{
				Name:           pickService(h / 13),
				Description:    "モック提案サービス",
				Priority:       pickPriority(h / 17),
				EstimatedCost:  "月額20,000円〜40,000円",
				ExpectedEffect: "口コミ+5件/月",
				Reason:         "検出された課題に基づく自動提案",
				Timeline:       "継続",
			},
		},
		ExpectedEffects: "3ヶ月後に月間セッション+20%、6ヶ月後に新規患者+10人/月を目標とします。",
	}

	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	if h%2 == 0 {
		return "```json\n" + string(b) + "\n```", nil
	}
	return string(b), nil
}
