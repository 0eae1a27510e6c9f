package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

type ScorerService interface {
	// Score asks the model for an analysis of resumeText and returns the raw
	// response. There is no retry at this layer.
	Score(ctx context.Context, resumeText, jobDescription string) (string, error)
}

type scorerService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

func NewScorerService(gemini GeminiService, timeout time.Duration) ScorerService {
	return &scorerService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

// Score implements ScorerService.
func (s *scorerService) Score(ctx context.Context, resumeText, jobDescription string) (string, error) {
	prompt := s.promptBuilder.BuildAnalysisPrompt(resumeText, jobDescription)
	log.Printf("📝 Analysis prompt length: %d characters", len(prompt))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.gemini.GenerateText(ctx, prompt, DeterministicJSON)
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis: %w", err)
	}

	log.Printf("✅ Gemini response received: %d characters", len(response))
	return response, nil
}
