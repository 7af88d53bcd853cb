package services

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// GeminiService implements GenerativeModel with the Gemini API
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini client for apiKey
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client: client,
		model:  model,
	}, nil
}

// ChatStream streams the model's answer to message as text chunks
func (s *GeminiService) ChatStream(ctx context.Context, message string) iter.Seq2[string, error] {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(ChatSystemInstruction, genai.RoleUser),
	}

	return func(yield func(string, error) bool) {
		for resp, err := range s.client.Models.GenerateContentStream(ctx, s.model, genai.Text(message), config) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream failed: %w", err))
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}

// AnalyzeImage sends the image bytes inline together with prompt
func (s *GeminiService) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini image analysis failed: %w", err)
	}
	return resp.Text(), nil
}
