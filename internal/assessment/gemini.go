package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// InferenceClient sends one prompt plus one JPEG image to a vision-language
// model and returns the raw response text. Implementations classify failures
// as ErrQuotaExceeded or ErrTransport; no retries are performed here.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string, imageJPEG []byte) (string, error)
	Close() error
}

// GeminiClient implements InferenceClient using Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClient creates a Gemini-backed inference client. The API key is
// required; ErrUnavailable is returned without one so callers can
// short-circuit to a fallback instead of ever dialing out.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("assessment: create gemini client: %w", err)
	}

	return &GeminiClient{client: client, modelID: modelID}, nil
}

// Generate sends the composed request to Gemini. Single attempt; retry
// policy belongs to the caller and none is configured.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, imageJPEG []byte) (string, error) {
	model := c.client.GenerativeModel(c.modelID)

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: "image/jpeg", Data: imageJPEG},
	)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrTransport)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned empty content", ErrTransport)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text parts", ErrTransport)
	}
	return text, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
