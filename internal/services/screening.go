package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/features"
	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/scoring"
)

// neutralSimilarity is the similarity sub-score used when no job
// description is available to compare against.
const neutralSimilarity = 50.0

type ScreeningService interface {
	// Screen scores a resume against a job synchronously. The only hard
	// failure is an empty resume; every other missing signal degrades to
	// its neutral value.
	Screen(ctx context.Context, req *models.ScreenRequest) (*models.ScreenResponse, error)

	// ScreenCandidate runs the same pipeline for a stored candidate and
	// persists the outcome. Called from the worker.
	ScreenCandidate(ctx context.Context, candidateID uuid.UUID) error
}

type screeningService struct {
	candidateRepo repositories.CandidateRepository
	registry      *ml.Registry
	extractor     *features.Extractor
	weights       scoring.Weights
	talentIndex   TalentIndexService
	summary       SummaryService
	logger        *zap.Logger
}

func NewScreeningService(
	candidateRepo repositories.CandidateRepository,
	registry *ml.Registry,
	extractor *features.Extractor,
	weights scoring.Weights,
	talentIndex TalentIndexService,
	summary SummaryService,
	logger *zap.Logger,
) ScreeningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &screeningService{
		candidateRepo: candidateRepo,
		registry:      registry,
		extractor:     extractor,
		weights:       weights,
		talentIndex:   talentIndex,
		summary:       summary,
		logger:        logger,
	}
}

// Screen implements ScreeningService.
func (s *screeningService) Screen(ctx context.Context, req *models.ScreenRequest) (*models.ScreenResponse, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		return nil, fmt.Errorf("%w: resume text is empty", ml.ErrDataQuality)
	}

	set := s.registry.Current()

	resume := s.extractor.Extract(req.ResumeText)
	job := s.extractor.Extract(req.JobDescription)

	similarity := neutralSimilarity
	if strings.TrimSpace(req.JobDescription) != "" {
		similarity = set.Embedder.Similarity(req.ResumeText, req.JobDescription) * 100
	}

	expectedYears := req.JobExpectedYears
	if expectedYears == 0 && job.ExperienceYears > 0 {
		expectedYears = job.ExperienceYears
	}

	breakdown := scoring.Score(
		resume.Skills,
		job.Skills,
		similarity,
		resume.ExperienceYears,
		expectedYears,
		s.weights,
	)

	resp := &models.ScreenResponse{
		SimilarityScore: breakdown.SimilarityScore,
		SkillMatchScore: breakdown.SkillMatchScore,
		ExperienceScore: breakdown.ExperienceScore,
		TotalScore:      breakdown.TotalScore,
		Category:        breakdown.Category,
		MissingSkills:   breakdown.MissingSkills,
		Skills:          resume.Skills,
		ExperienceYears: resume.ExperienceYears,
	}

	// Job category prediction is best effort: a registry without a
	// trained classifier simply leaves the field empty.
	if set.Classifier != nil {
		if category, err := set.Classifier.Predict(set.Embedder.Embed(req.ResumeText)); err == nil {
			resp.JobCategory = category
		} else {
			s.logger.Warn("job category prediction failed", zap.Error(err))
		}
	}

	return resp, nil
}

// ScreenCandidate implements ScreeningService.
func (s *screeningService) ScreenCandidate(ctx context.Context, candidateID uuid.UUID) error {
	if err := s.candidateRepo.UpdateStatus(candidateID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		s.candidateRepo.UpdateError(candidateID, err.Error())
		return fmt.Errorf("failed to get candidate: %w", err)
	}

	resp, err := s.Screen(ctx, &models.ScreenRequest{
		ResumeText:       candidate.ResumeText,
		JobDescription:   candidate.JobDescription,
		JobExpectedYears: candidate.JobExpectedYears,
	})
	if err != nil {
		s.candidateRepo.UpdateError(candidateID, err.Error())
		return fmt.Errorf("failed to screen candidate: %w", err)
	}

	data := &repositories.CandidateResultData{
		SimilarityScore: &resp.SimilarityScore,
		SkillMatchScore: &resp.SkillMatchScore,
		ExperienceScore: &resp.ExperienceScore,
		TotalScore:      &resp.TotalScore,
		FitCategory:     &resp.Category,
		ExperienceYears: &resp.ExperienceYears,
	}
	missing := strings.Join(resp.MissingSkills, ",")
	data.MissingSkills = &missing
	if resp.JobCategory != "" {
		data.JobCategory = &resp.JobCategory
	}

	// The recruiter summary and the talent index are both optional
	// enrichment; failures are logged, never fatal.
	if s.summary != nil {
		if summary, err := s.summary.GenerateScreeningSummary(ctx, candidate.JobTitle, resp); err == nil {
			data.Summary = &summary
		} else {
			s.logger.Warn("summary generation failed",
				zap.String("candidate_id", candidateID.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.candidateRepo.UpdateResult(candidateID, data); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if s.talentIndex != nil {
		vector := s.registry.Current().Embedder.Embed(candidate.ResumeText)
		if err := s.talentIndex.IndexCandidate(ctx, candidate, vector); err != nil {
			s.logger.Warn("talent index upsert failed",
				zap.String("candidate_id", candidateID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("candidate screened",
		zap.String("candidate_id", candidateID.String()),
		zap.Float64("total_score", resp.TotalScore),
		zap.String("category", resp.Category),
	)
	return nil
}
