package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/fleveque/stylist-service/internal/model"
)

// GeminiClient implements Extractor and AdviceWriter on the Gemini API.
// Extraction asks for JSON output constrained by a response schema.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed text client.
func NewGeminiClient(ctx context.Context, apiKey string, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := newGenaiClient(ctx, apiKey, timeout)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: model}, nil
}

func newGenaiClient(ctx context.Context, apiKey string, timeout time.Duration) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return client, nil
}

func (g *GeminiClient) ProviderName() string { return "gemini" }
func (g *GeminiClient) ModelName() string     { return g.model }

// productListGenaiSchema mirrors ProductListSchema in Gemini's schema type.
func productListGenaiSchema() *genai.Schema {
	minScore, maxScore := 0.0, 1.0
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"imageUrl":       {Type: genai.TypeString},
				"title":          {Type: genai.TypeString},
				"description":    {Type: genai.TypeString},
				"price":          {Type: genai.TypeString},
				"productUrl":     {Type: genai.TypeString},
				"relevanceScore": {Type: genai.TypeNumber, Minimum: &minScore, Maximum: &maxScore},
			},
			Required: productRequired,
		},
	}
}

func (g *GeminiClient) ExtractProducts(ctx context.Context, req ExtractionRequest) (json.RawMessage, error) {
	parts := []*genai.Part{{Text: buildExtractionPrompt(req)}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   productListGenaiSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call: %w", err)
	}

	text := trimJSONFence(result.Text())
	if text == "" {
		return nil, nil
	}
	return json.RawMessage(text), nil
}

func (g *GeminiClient) WriteAdvice(ctx context.Context, req model.AdviceRequest) (string, error) {
	parts := []*genai.Part{{Text: buildAdvicePrompt(req)}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Parts: parts}}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API call: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}

// GeminiRenderer implements OutfitRenderer with a Gemini image model. Every
// request asks for both text and image output; image models reject
// image-only requests.
type GeminiRenderer struct {
	client *genai.Client
	model  string
}

// NewGeminiRenderer creates an outfit renderer bound to an image-capable model.
func NewGeminiRenderer(ctx context.Context, apiKey string, model string, timeout time.Duration) (*GeminiRenderer, error) {
	client, err := newGenaiClient(ctx, apiKey, timeout)
	if err != nil {
		return nil, err
	}
	return &GeminiRenderer{client: client, model: model}, nil
}

func (g *GeminiRenderer) ProviderName() string { return "gemini" }
func (g *GeminiRenderer) ModelName() string     { return g.model }

func (g *GeminiRenderer) RenderOutfit(ctx context.Context, advice string, item *Image) (*Image, error) {
	var parts []*genai.Part
	if item != nil && len(item.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: item.MIMEType, Data: item.Data},
		})
	}
	parts = append(parts, &genai.Part{Text: buildOutfitPrompt(advice)})

	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call: %w", err)
	}

	return firstInlineImage(result), nil
}

// firstInlineImage returns the first non-empty image/* inline part across all
// candidates, or nil. Blocked candidates are skipped.
func firstInlineImage(result *genai.GenerateContentResponse) *Image {
	if result == nil {
		return nil
	}
	for _, cand := range result.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		blocked := false
		for _, rating := range cand.SafetyRatings {
			if rating != nil && rating.Blocked {
				blocked = true
			}
		}
		if blocked {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if strings.HasPrefix(part.InlineData.MIMEType, "image/") && len(part.InlineData.Data) > 0 {
				return &Image{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}
			}
		}
	}
	return nil
}
