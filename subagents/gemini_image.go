package subagents

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiImageGenerator is an ImageGenerator backed by Imagen. It returns
// the generated image's storage URI directly from the model response;
// nothing here uploads bytes to a bucket itself.
type GeminiImageGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiImageGenerator builds a GeminiImageGenerator calling model
// through client.
func NewGeminiImageGenerator(client *genai.Client, model string) *GeminiImageGenerator {
	return &GeminiImageGenerator{client: client, model: model}
}

// GenerateImage produces an image for prompt and returns its URI.
func (g *GeminiImageGenerator) GenerateImage(ctx context.Context, prompt, negativePrompt, aspectRatio string) (string, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
		NegativePrompt: negativePrompt,
	})
	if err != nil {
		return "", fmt.Errorf("subagents: gemini image generation: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", fmt.Errorf("subagents: imagen returned no images")
	}
	return resp.GeneratedImages[0].Image.GCSURI, nil
}
