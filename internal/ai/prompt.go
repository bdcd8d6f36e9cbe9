package ai

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/analysis"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

// Industry reference values for dental clinics. Shared with the model as
// context; changing them changes every narrative the model produces.
type benchmarkRange struct {
	Poor, Average, Good, Excellent float64
}

var benchmarks = struct {
	Sessions    benchmarkRange
	BounceRate  benchmarkRange
	AvgDuration benchmarkRange
	Reviews     benchmarkRange
	Rating      benchmarkRange
}{
	Sessions:    benchmarkRange{Poor: 500, Average: 1500, Good: 3000, Excellent: 5000},
	BounceRate:  benchmarkRange{Excellent: 30, Good: 45, Average: 55, Poor: 70},
	AvgDuration: benchmarkRange{Poor: 60, Average: 120, Good: 180, Excellent: 300},
	Reviews:     benchmarkRange{Poor: 10, Average: 30, Good: 50, Excellent: 100},
	Rating:      benchmarkRange{Poor: 3.0, Average: 3.8, Good: 4.2, Excellent: 4.5},
}

const (
	levelPoor         = "要改善"
	levelBelowAverage = "平均以下"
	levelAverage      = "平均的"
	levelGood         = "良好"
)

// BuildAnalysisPrompt renders one deterministic prompt from a snapshot.
// Section order is fixed; sections whose data source is absent state so
// and recommend enabling it. The prompt ends with the output schema the
// normalizer expects and the catalog of proposable services.
func BuildAnalysisPrompt(snap analysis.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, `あなたは歯科医院マーケティングの専門家です。10年以上の実績を持ち、数百件の歯科医院の集客改善を手がけてきました。
以下のデータを多角的に分析し、具体的で実行可能な改善提案を作成してください。

## 分析対象医院
- 医院名: %s
- 所在地: %s%s
- 診療科目: %s

## 業界ベンチマーク（参考値）
- 月間セッション: 平均%d件、優良%d件以上
- 直帰率: 平均%d%%、優良%d%%以下
- 平均滞在時間: 平均%d分、優良%d分以上
- 口コミ数: 平均%d件、優良%d件以上
- 口コミ評価: 平均%s点、優良%s点以上
`,
		snap.Clinic.Name,
		snap.Clinic.Prefecture, snap.Clinic.City,
		specialtiesOrDefault(snap.Clinic.Specialties),
		int(benchmarks.Sessions.Average), int(benchmarks.Sessions.Good),
		int(benchmarks.BounceRate.Average), int(benchmarks.BounceRate.Good),
		int(benchmarks.AvgDuration.Average/60), int(benchmarks.AvgDuration.Good/60),
		int(benchmarks.Reviews.Average), int(benchmarks.Reviews.Good),
		formatFloat(benchmarks.Rating.Average), formatFloat(benchmarks.Rating.Good),
	)

	writeAnalyticsSection(&b, snap)
	writeReviewSection(&b, snap)
	writeCompetitorSection(&b, snap)
	writePatientSection(&b, snap)
	writeMeasureSection(&b, snap)
	writeIssueSection(&b, snap.Issues)
	writeTaskSection(&b)

	return b.String()
}

func writeAnalyticsSection(b *strings.Builder, snap analysis.Snapshot) {
	a := snap.Analytics
	if a == nil {
		b.WriteString(`
## Webサイト分析データ
※ Google Analyticsデータが未連携のため、Web集客の詳細分析ができません。
→ 改善提案: GA4を設定し、データに基づいた改善サイクルを構築することを強く推奨します。
`)
		return
	}

	sessionLevel := levelHigherBetter(float64(a.TotalSessions), benchmarks.Sessions)
	bounceLevel := levelLowerBetter(a.BounceRate, benchmarks.BounceRate)
	durationLevel := levelHigherBetter(a.AvgSessionDuration, benchmarks.AvgDuration)

	fmt.Fprintf(b, `
## Webサイト分析データ
| 指標 | 値 | 業界水準 | 評価 |
|------|-----|---------|------|
| 月間セッション | %d件 | 平均%d件 | %s |
| 月間ユーザー | %d人 | - | - |
| 地域流入率 | %s | 60%%以上が理想 | %s |
| 平均滞在時間 | %s | 平均%d分 | %s |
| 直帰率 | %s%% | 平均%d%% | %s |
`,
		a.TotalSessions, int(benchmarks.Sessions.Average), sessionLevel,
		a.TotalUsers,
		localTrafficCell(snap.LocalTrafficRate), localTrafficLevel(snap.LocalTrafficRate),
		formatDuration(a.AvgSessionDuration), int(benchmarks.AvgDuration.Average/60), durationLevel,
		formatFloat(a.BounceRate), int(benchmarks.BounceRate.Average), bounceLevel,
	)
	if a.PaidSessions != nil {
		fmt.Fprintf(b, "| 広告経由セッション | %d件 | - | - |\n", *a.PaidSessions)
	}
	if a.PaidBounceRate != nil {
		verdict := levelGood
		if *a.PaidBounceRate > 50 {
			verdict = levelPoor
		}
		fmt.Fprintf(b, "| 広告経由直帰率 | %s%% | 50%%以下が理想 | %s |\n", formatFloat(*a.PaidBounceRate), verdict)
	}

	fmt.Fprintf(b, `
### Webサイト分析のポイント
- セッション数が%sのため、%s
- 直帰率%s%%は%s。%s
- 平均滞在時間%sは%s。%s
`,
		sessionLevel, pick(needsWork(sessionLevel), "SEO対策や広告運用の強化が必要", "現状維持しつつ質の向上を目指す"),
		formatFloat(a.BounceRate), bounceLevel, pick(needsWork(bounceLevel), "LPの改善やコンテンツの充実が急務", "引き続き良質なコンテンツを提供"),
		formatDuration(a.AvgSessionDuration), durationLevel, pick(needsWork(durationLevel), "ユーザーの興味を引くコンテンツが不足している可能性", "情報提供は適切"),
	)
	if snap.LocalTrafficRate == nil {
		b.WriteString("- 地域流入率は未計測。GA4の地域レポート連携を有効化し、診療圏からの流入を把握することを推奨\n")
	}
}

func writeReviewSection(b *strings.Builder, snap analysis.Snapshot) {
	r := snap.Review
	if r == nil {
		b.WriteString(`
## 口コミデータ
※ Google Place IDが未設定のため、口コミデータが取得できていません。
→ 改善提案: Google Place IDを設定して口コミ分析を有効化することを推奨します。
   口コミは新規患者の来院決定に大きく影響します（約80%の患者が口コミを参考にしています）。
`)
		return
	}

	reviewLevel := levelHigherBetter(float64(r.TotalReviews), benchmarks.Reviews)
	ratingLevel := levelHigherBetter(r.AverageRating, benchmarks.Rating)

	fmt.Fprintf(b, `
## 口コミデータ
| 指標 | 値 | 業界水準 | 評価 |
|------|-----|---------|------|
| 口コミ数 | %d件 | 平均%d件 | %s |
| 平均評価 | %s点 | 平均%s点 | %s |

### 口コミ分析のポイント
- 口コミ数%d件は%s。%s
- 評価%s点は%s。%s
`,
		r.TotalReviews, int(benchmarks.Reviews.Average), reviewLevel,
		formatFloat(r.AverageRating), formatFloat(benchmarks.Rating.Average), ratingLevel,
		r.TotalReviews, reviewLevel, pick(needsWork(reviewLevel), "口コミ獲得施策が急務。来院時の声がけやフォローアップメールを検討", "継続的に口コミを増やす取り組みを"),
		formatFloat(r.AverageRating), ratingLevel, pick(needsWork(ratingLevel), "低評価の原因分析と改善が必要。待ち時間、説明の丁寧さ、痛みへの配慮を見直す", "高評価を維持しつつ、さらなる向上を"),
	)
}

func writeCompetitorSection(b *strings.Builder, snap analysis.Snapshot) {
	if len(snap.Competitors) == 0 {
		return
	}
	meanRating := snap.CompetitorMeanRating()
	meanReviews := snap.CompetitorMeanReviews()

	b.WriteString(`
## 競合比較データ
| 医院名 | 口コミ数 | 評価 | 自院との差（評価） |
|--------|---------|------|-------------------|
`)
	for _, c := range snap.Competitors {
		fmt.Fprintf(b, "| %s | %d件 | %s点 | %s |\n",
			c.Name, c.TotalReviews, formatFloat(c.AverageRating), ratingDiffCell(snap.Review, c.AverageRating))
	}
	fmt.Fprintf(b, "| **競合平均** | **%d件** | **%.1f点** | %s |\n",
		int(math.Round(meanReviews)), meanRating, ratingDiffCell(snap.Review, meanRating))

	b.WriteString("\n### 競合分析のポイント\n")
	if snap.Review != nil {
		fmt.Fprintf(b, "- 自院の評価%s点は競合平均%.1f点と比較して%s\n",
			formatFloat(snap.Review.AverageRating), meanRating,
			pick(snap.Review.AverageRating >= meanRating, "同等以上", "下回っている"))
		fmt.Fprintf(b, "- 口コミ数%d件は競合平均%d件と比較して%s\n",
			snap.Review.TotalReviews, int(math.Round(meanReviews)),
			pick(float64(snap.Review.TotalReviews) >= meanReviews, "同等以上", "下回っている"))
	} else {
		b.WriteString("- 口コミデータがないため競合との詳細比較ができません\n")
	}
}

func writePatientSection(b *strings.Builder, snap analysis.Snapshot) {
	p := snap.PatientData
	if p == nil {
		return
	}
	total := p.TotalNewPatients

	top := make([]models.ComplaintCount, len(p.ByComplaint))
	copy(top, p.ByComplaint)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > 3 {
		top = top[:3]
	}

	fmt.Fprintf(b, `
## 新規患者データ（%d年%d月）
- 新規患者合計: %d人
- 主訴別内訳:
`, p.Year, p.Month, total)
	for _, c := range p.ByComplaint {
		fmt.Fprintf(b, "  - %s: %d人（%.1f%%）\n", c.Name, c.Count, percent(c.Count, total))
	}

	if len(top) > 0 {
		names := make([]string, len(top))
		for i, c := range top {
			names[i] = c.Name
		}
		fmt.Fprintf(b, `
### 患者データ分析のポイント
- 上位主訴: %s
- %sが最多（%d人、%.1f%%）
- この主訴に対応した施策（LP作成、広告キーワード設定等）が効果的
`, strings.Join(names, "、"), top[0].Name, top[0].Count, percent(top[0].Count, total))
	}
}

func writeMeasureSection(b *strings.Builder, snap analysis.Snapshot) {
	if len(snap.Measures) == 0 {
		return
	}
	b.WriteString("\n## 実施中の施策\n")
	for _, m := range snap.Measures {
		fmt.Fprintf(b, "- %s（%s）: ¥%s/月", m.Name, m.Category, formatYen(m.Cost))
		if m.ROI != nil {
			fmt.Fprintf(b, "、ROI: %s%%", formatFloat(*m.ROI))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n### 施策評価のポイント\n")
	for _, m := range snap.Measures {
		fmt.Fprintf(b, "- %s: %s\n", m.Name, measureVerdict(m.ROI))
	}
}

func writeIssueSection(b *strings.Builder, issues []models.Issue) {
	if len(issues) == 0 {
		return
	}
	b.WriteString("\n## システム検出課題\n")
	for _, i := range issues {
		fmt.Fprintf(b, "- [%s] %s\n", severityLabel(i.Severity), i.Message)
	}
}

func writeTaskSection(b *strings.Builder) {
	b.WriteString(`
---

## 分析タスク
上記データを基に、以下の観点から総合的に分析してください：

1. **現状の強み・弱み分析**: 数値データに基づいた客観的評価
2. **課題の優先順位付け**: 緊急度と影響度のマトリクスで整理
3. **競合との差別化ポイント**: 勝てる領域と改善すべき領域
4. **投資対効果の高い施策**: 限られた予算で最大効果を出す方法
5. **短期・中期のアクションプラン**: 今すぐ始めるべきこと、3ヶ月後に始めるべきこと

以下のJSON形式で出力してください：

{
  "currentAnalysis": "現状分析（400-500文字）：データに基づいた客観的な現状説明。強み・弱みを明確に。業界水準との比較を含める。",
  "mainIssues": [
    "【優先度1】最も緊急性の高い課題とその根拠（具体的な数値を含める）",
    "【優先度2】2番目に重要な課題とその根拠",
    "【優先度3】3番目に重要な課題とその根拠",
    "【優先度4】中期的に対応すべき課題",
    "【優先度5】長期的に検討すべき課題"
  ],
  "competitorAnalysis": "競合分析（200-300文字）：競合との比較結果、差別化ポイント、勝てる領域。競合データがない場合は一般的な競合環境を想定して記載。",
  "webAnalysis": "Web集客分析（200-300文字）：流入数、直帰率、滞在時間の評価と改善方向性。データがない場合は改善の重要性を記載。",
  "reviewAnalysis": "口コミ分析（200-300文字）：口コミの量と質の評価、改善方向性。データがない場合は口コミ獲得の重要性を記載。",
  "complaintAnalysis": "主訴別分析（150-200文字）：注力すべき主訴、マーケティング施策への活用方法。患者データがない場合はnull。",
  "measureEvaluation": "施策効果評価（150-200文字）：実施中施策の効果評価と改善提案。施策データがない場合はnull。",
  "recommendations": [
    "【今すぐ実施】1週間以内に始めるべき施策（具体的なアクション）",
    "【1ヶ月以内】準備期間が必要な施策",
    "【3ヶ月以内】中期的に取り組む施策",
    "【継続的】定期的に行うべき施策",
    "【検討事項】状況に応じて検討する施策"
  ],
  "proposedServices": [
    {
      "name": "サービス名",
      "description": "具体的な内容（80文字程度）",
      "priority": "HIGH/MEDIUM/LOW",
      "estimatedCost": "月額○○円〜○○円",
      "expectedEffect": "期待効果（例：新規患者+○人/月、口コミ+○件/月）",
      "reason": "提案理由（データに基づく根拠）",
      "timeline": "実施期間の目安"
    }
  ],
  "expectedEffects": "施策実施後の期待効果（200-250文字）：3ヶ月後、6ヶ月後の具体的な目標数値を含める"
}

proposedServicesは以下のサービスから課題に応じて3-5個提案してください：
- リスティング広告（Google/Yahoo）
- MEO対策（Googleビジネスプロフィール最適化）
- HP改善（デザイン・導線・コンテンツ）
- 口コミ促進施策
- ポスティング
- SEO対策
- LP作成（主訴別）
- SNS運用
- 動画制作
- チラシ・パンフレット制作

JSONのみを出力してください。`)
}

func levelHigherBetter(v float64, b benchmarkRange) string {
	switch {
	case v < b.Poor:
		return levelPoor
	case v < b.Average:
		return levelBelowAverage
	case v < b.Good:
		return levelAverage
	default:
		return levelGood
	}
}

func levelLowerBetter(v float64, b benchmarkRange) string {
	switch {
	case v > b.Poor:
		return levelPoor
	case v > b.Average:
		return levelBelowAverage
	case v > b.Good:
		return levelAverage
	default:
		return levelGood
	}
}

func needsWork(level string) bool {
	return level == levelPoor || level == levelBelowAverage
}

func severityLabel(s models.Severity) string {
	switch s {
	case models.SeverityHigh:
		return "🔴重要"
	case models.SeverityMedium:
		return "🟡注意"
	default:
		return "🔵参考"
	}
}

func measureVerdict(roi *float64) string {
	if roi == nil {
		return "ROI未計測（効果測定を推奨）"
	}
	switch {
	case *roi > 100:
		return "効果あり（継続推奨）"
	case *roi > 0:
		return "効果限定的（改善検討）"
	default:
		return "効果なし（見直し必要）"
	}
}

func ratingDiffCell(review *models.ReviewRecord, competitorRating float64) string {
	if review == nil {
		return "-"
	}
	diff := review.AverageRating - competitorRating
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f点", sign, diff)
}

func localTrafficCell(rate *float64) string {
	if rate == nil {
		return "未計測"
	}
	return fmt.Sprintf("%.1f%%", *rate)
}

func localTrafficLevel(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return pick(*rate >= 60, levelGood, levelPoor)
}

func formatDuration(seconds float64) string {
	return fmt.Sprintf("%d分%d秒", int(seconds)/60, int(seconds)%60)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatYen(v int) string {
	s := strconv.Itoa(v)
	if v < 0 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func specialtiesOrDefault(specialties []string) string {
	if len(specialties) == 0 {
		return "未設定"
	}
	return strings.Join(specialties, ", ")
}
