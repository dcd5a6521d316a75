package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/models"
)

type SummaryService interface {
	// GenerateScreeningSummary produces a short recruiter-facing note for
	// a completed screening.
	GenerateScreeningSummary(ctx context.Context, jobTitle string, result *models.ScreenResponse) (string, error)

	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

type summaryService struct {
	client     *genai.Client
	modelName  string
	maxRetries int
}

func NewSummaryService(apiKey string, maxRetries int) (SummaryService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &summaryService{
		client:     client,
		modelName:  "gemini-2.5-flash",
		maxRetries: maxRetries,
	}, nil
}

// GenerateScreeningSummary implements SummaryService.
func (s *summaryService) GenerateScreeningSummary(ctx context.Context, jobTitle string, result *models.ScreenResponse) (string, error) {
	var b strings.Builder
	b.WriteString("You are a technical recruiter. Write a short (3-4 sentence) screening note for a hiring manager.\n\n")
	if jobTitle != "" {
		fmt.Fprintf(&b, "Role: %s\n", jobTitle)
	}
	fmt.Fprintf(&b, "Overall score: %.1f/100 (%s)\n", result.TotalScore, result.Category)
	fmt.Fprintf(&b, "Semantic match: %.1f, skill match: %.1f, experience: %.1f\n",
		result.SimilarityScore, result.SkillMatchScore, result.ExperienceScore)
	fmt.Fprintf(&b, "Detected skills: %s\n", strings.Join(result.Skills, ", "))
	if len(result.MissingSkills) > 0 {
		fmt.Fprintf(&b, "Missing required skills: %s\n", strings.Join(result.MissingSkills, ", "))
	}
	fmt.Fprintf(&b, "Years of experience: %.1f\n", result.ExperienceYears)
	b.WriteString("\nBe factual and base the note only on the data above. Plain text, no markdown.")

	summary, err := s.GenerateTextWithRetry(ctx, b.String(), 0.5, s.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to generate screening summary: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// GenerateText implements SummaryService.
func (s *summaryService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1024,
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// GenerateTextWithRetry implements SummaryService.
func (s *summaryService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := s.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
