package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/ai"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/analysis"
	"github.com/freehazamanet-dot/dental-marketing-analyzer/internal/models"
)

// Store is the storage surface an analysis run needs: the assembler's
// reads plus the append-only result write.
type Store interface {
	analysis.MetricsStore
	InsertAnalysisResult(ctx context.Context, r models.AnalysisResult) error
}

type AnalyzerService struct {
	Store  Store
	AI     ai.Adapter
	Logger zerolog.Logger
}

// Analyze runs the full pipeline for one clinic: assemble the metric
// snapshot, detect issues, compute scores, ask the model for a
// narrative, and persist one append-only result. The model call is the
// only fallible step after assembly; its failure is absorbed and the
// result is saved without an AI narrative.
func (s *AnalyzerService) Analyze(ctx context.Context, orgID, clinicID, userID string) (models.AnalysisResult, error) {
	snap, err := analysis.Assemble(ctx, s.Store, orgID, clinicID)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	snap.Issues = analysis.EvaluateIssues(snap)
	scores := analysis.ComputeScores(snap)

	var (
		aiResult   *models.AIAnalysisResult
		aiAnalyzed *time.Time
	)
	prompt := ai.BuildAnalysisPrompt(snap)
	reply, err := s.AI.Complete(ctx, prompt)
	if err != nil {
		s.Logger.Warn().Err(err).Str("clinic_id", clinicID).Msg("model call failed, saving analysis without AI narrative")
	} else {
		normalized := ai.NormalizeResponse(reply)
		aiResult = &normalized
		now := time.Now().UTC()
		aiAnalyzed = &now
	}

	now := time.Now().UTC()
	result := models.AnalysisResult{
		ID:           uuid.NewString(),
		ClinicID:     clinicID,
		AnalyzedByID: userID,
		AnalyzedAt:   now,
		PeriodStart:  now.AddDate(0, -1, 0),
		PeriodEnd:    now,
		Scores:       scores,
		Issues:       snap.Issues,
		AIAnalysis:   aiResult,
		AIAnalyzedAt: aiAnalyzed,
		Status:       models.AnalysisStatusCompleted,
	}
	if err := s.Store.InsertAnalysisResult(ctx, result); err != nil {
		return models.AnalysisResult{}, err
	}

	s.Logger.Info().
		Str("clinic_id", clinicID).
		Str("analysis_id", result.ID).
		Int("issues", len(result.Issues)).
		Bool("ai_narrative", aiResult != nil).
		Msg("analysis completed")
	return result, nil
}
