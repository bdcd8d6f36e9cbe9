package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// NormalizeResponse turns a raw model reply into a well-formed
// AIAnalysisResult. It never fails: markdown fencing is stripped, legacy
// string-shaped list fields are split into lists, absent fields get
// defaults, and a reply that is not JSON at all becomes a degraded result
// carrying the full raw text as the current analysis.
func NormalizeResponse(raw string) models.AIAnalysisResult {
	jsonStr := raw
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	}

	var parsed struct {
		CurrentAnalysis    string                   `json:"currentAnalysis"`
		MainIssues         json.RawMessage          `json:"mainIssues"`
		CompetitorAnalysis *string                  `json:"competitorAnalysis"`
		WebAnalysis        *string                  `json:"webAnalysis"`
		ReviewAnalysis     *string                  `json:"reviewAnalysis"`
		ComplaintAnalysis  *string                  `json:"complaintAnalysis"`
		MeasureEvaluation  *string                  `json:"measureEvaluation"`
		Recommendations    json.RawMessage          `json:"recommendations"`
		ProposedServices   []models.ProposedService `json:"proposedServices"`
		ExpectedEffects    string                   `json:"expectedEffects"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonStr)), &parsed); err != nil {
		return models.AIAnalysisResult{
			CurrentAnalysis:  raw,
			MainIssues:       []string{},
			Recommendations:  []string{},
			ProposedServices: []models.ProposedService{},
		}
	}

	services := parsed.ProposedServices
	if services == nil {
		services = []models.ProposedService{}
	}

	return models.AIAnalysisResult{
		CurrentAnalysis:    parsed.CurrentAnalysis,
		MainIssues:         coerceList(parsed.MainIssues),
		CompetitorAnalysis: optional(parsed.CompetitorAnalysis),
		WebAnalysis:        optional(parsed.WebAnalysis),
		ReviewAnalysis:     optional(parsed.ReviewAnalysis),
		ComplaintAnalysis:  optional(parsed.ComplaintAnalysis),
		MeasureEvaluation:  optional(parsed.MeasureEvaluation),
		Recommendations:    coerceList(parsed.Recommendations),
		ProposedServices:   services,
		ExpectedEffects:    parsed.ExpectedEffects,
	}
}

// coerceList accepts either a list of strings or a single legacy string
// joined by newlines or bullet glyphs; lists pass through unchanged.
func coerceList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			return []string{}
		}
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return splitBullets(s)
	}
	return []string{}
}

func splitBullets(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '・' || r == '●' || r == '•'
	})
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Absent and empty narrative sections are both treated as absent.
func optional(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}
