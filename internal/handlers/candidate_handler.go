package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type CandidateHandler struct {
	candidateRepo repositories.CandidateRepository
	worker        services.Worker
	talentIndex   services.TalentIndexService
	registry      *ml.Registry
}

func NewCandidateHandler(
	candidateRepo repositories.CandidateRepository,
	worker services.Worker,
	talentIndex services.TalentIndexService,
	registry *ml.Registry,
) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo: candidateRepo,
		worker:        worker,
		talentIndex:   talentIndex,
		registry:      registry,
	}
}

// HandleCreate handles POST /candidates: store the candidate and queue an
// asynchronous screening job.
func (h *CandidateHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateCandidateRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.ResumeText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_text is required",
		})
	}

	candidate := &models.Candidate{
		ID:               uuid.New(),
		Name:             req.Name,
		ResumeText:       req.ResumeText,
		JobTitle:         req.JobTitle,
		JobDescription:   req.JobDescription,
		JobExpectedYears: req.JobExpectedYears,
		Status:           models.StatusQueued,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.candidateRepo.Create(candidate); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create screening job",
		})
	}

	h.worker.EnqueueJob(candidate.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.CreateCandidateResponse{
		ID:     candidate.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetResult handles GET /candidates/:id.
func (h *CandidateHandler) HandleGetResult(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}

	response := models.CandidateResultResponse{
		ID:       candidate.ID.String(),
		Name:     candidate.Name,
		JobTitle: candidate.JobTitle,
		Status:   string(candidate.Status),
	}

	if candidate.Status == models.StatusCompleted {
		response.Result = buildScreeningData(candidate)
	}
	if candidate.Status == models.StatusFailed && candidate.ErrorMessage != nil {
		response.ErrorMessage = candidate.ErrorMessage
	}

	return c.JSON(response)
}

// HandleGetSimilar handles GET /candidates/:id/similar.
func (h *CandidateHandler) HandleGetSimilar(c *fiber.Ctx) error {
	if h.talentIndex == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Talent index is not configured",
		})
	}

	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}

	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 50 {
		limit = 5
	}

	vector := h.registry.Current().Embedder.Embed(candidate.ResumeText)
	results, err := h.talentIndex.SearchSimilar(c.UserContext(), vector, limit, candidate.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search similar candidates",
		})
	}

	return c.JSON(fiber.Map{
		"id":      candidate.ID.String(),
		"similar": results,
	})
}

func buildScreeningData(candidate *models.Candidate) *models.ScreeningData {
	data := &models.ScreeningData{MissingSkills: []string{}}

	if candidate.SimilarityScore != nil {
		data.SimilarityScore = *candidate.SimilarityScore
	}
	if candidate.SkillMatchScore != nil {
		data.SkillMatchScore = *candidate.SkillMatchScore
	}
	if candidate.ExperienceScore != nil {
		data.ExperienceScore = *candidate.ExperienceScore
	}
	if candidate.TotalScore != nil {
		data.TotalScore = *candidate.TotalScore
	}
	if candidate.FitCategory != nil {
		data.Category = *candidate.FitCategory
	}
	if candidate.JobCategory != nil {
		data.JobCategory = *candidate.JobCategory
	}
	if candidate.MissingSkills != nil && *candidate.MissingSkills != "" {
		data.MissingSkills = strings.Split(*candidate.MissingSkills, ",")
	}
	if candidate.ExperienceYears != nil {
		data.ExperienceYears = *candidate.ExperienceYears
	}
	if candidate.Summary != nil {
		data.Summary = *candidate.Summary
	}
	return data
}
