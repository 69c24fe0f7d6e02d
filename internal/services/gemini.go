package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/example/farmwise/internal/models"
)

// GeminiService generates assistant replies and translations using Google's
// Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini-backed completion service.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{client: client, model: model}, nil
}

// Complete runs a single prompt through the model and returns the generated
// text.
func (s *GeminiService) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}

	return text, nil
}

// Translate renders text into the target language. The target is a language
// code from the supported-languages table.
func (s *GeminiService) Translate(ctx context.Context, text, targetCode string) (string, error) {
	languageName := models.LanguageName(targetCode)

	prompt := fmt.Sprintf(
		"Translate the following text to %s. Return only the translated text without any explanations:\n\n%s",
		languageName, text)

	translated, err := s.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(translated), nil
}

// CropRecommendations asks the model for crop advice matching the given soil
// and location.
func (s *GeminiService) CropRecommendations(ctx context.Context, soilType string, soilPH float64, location string) (string, error) {
	prompt := fmt.Sprintf(`Based on the following information:
- Soil type: %s
- Soil pH: %.1f
- Location: %s

Provide crop recommendations for an Indian farmer. For each recommended crop, include:
1. Best planting season
2. Water requirements
3. Expected yield
4. Common pests and diseases to watch for
5. Basic care instructions

Format the response in a clear, structured way.`, soilType, soilPH, location)

	return s.Complete(ctx, prompt)
}
