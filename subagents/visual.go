package subagents

import (
	"context"
	"fmt"

	"github.com/lookatitude/beluga-ai/o11y"
)

const visualPromptTemplate = "African oral tradition illustration, %s, in the style of contemporary African art, " +
	"warm earth tones, vibrant colors, cultural authenticity, %s visual elements, digital painting, storytelling scene, detailed, beautiful"

const visualNegativePrompt = "stereotypical, offensive, caricature, Western-centric, colonial imagery, " +
	"unrealistic skin tones, cartoonish, low quality, blurry, text, watermark"

// ImageGenerator produces an image for a scene prompt and returns its
// public URL, or an error if generation is unavailable or fails.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, negativePrompt, aspectRatio string) (url string, err error)
}

// VisualAgent generates scene illustrations. Execute runs synchronously,
// so callers run it off the primary conversation stream; any failure
// degrades to a status field rather than an error return.
type VisualAgent struct {
	images ImageGenerator
}

// NewVisualAgent constructs a VisualAgent. images may be nil, in which
// case every request returns {status: "skipped"} — matching the
// original's "SDK not available" fallback.
func NewVisualAgent(images ImageGenerator) *VisualAgent {
	return &VisualAgent{images: images}
}

func (a *VisualAgent) Name() string { return "visual_agent" }

// Execute takes an ImageRequest and returns an ImageResult. Expected
// latency is 5-15s; callers must invoke this off the critical path.
func (a *VisualAgent) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if a.images == nil {
		return map[string]any{"status": "skipped"}, nil
	}

	scene, _ := input["scene_description"].(string)
	culture, _ := input["culture"].(string)
	if culture == "" {
		culture = "African"
	}
	aspectRatio, _ := input["aspect_ratio"].(string)
	if aspectRatio == "" {
		aspectRatio = "16:9"
	}

	prompt := fmt.Sprintf(visualPromptTemplate, scene, culture)

	o11y.FromContext(ctx).Info(ctx, "generating image", "event", "image_gen_start", "culture", culture)

	url, err := a.images.GenerateImage(ctx, prompt, visualNegativePrompt, aspectRatio)
	if err != nil {
		o11y.FromContext(ctx).Error(ctx, "image generation failed", "event", "image_gen_error", "error", err)
		return map[string]any{"status": "failed", "error": "image generation unavailable or failed"}, nil
	}
	if url == "" {
		return map[string]any{"status": "failed", "error": "image generation unavailable or failed"}, nil
	}

	o11y.FromContext(ctx).Info(ctx, "image generated", "event", "image_gen_complete", "url", url)
	return map[string]any{"status": "success", "url": url}, nil
}

// ExecuteStreaming has no meaningful partial output — an image is either
// ready or it isn't — so it runs Execute to completion and yields the
// single result, satisfying the uniform Producer contract.
func (a *VisualAgent) ExecuteStreaming(ctx context.Context, input map[string]any, yield func(map[string]any) bool) {
	result, err := a.Execute(ctx, input)
	if err != nil {
		return
	}
	yield(result)
}
