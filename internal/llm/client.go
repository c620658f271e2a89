// Package llm provides provider-agnostic interfaces for the three model calls
// the stylist pipeline makes: product extraction from a shop page, styling
// advice text, and the outfit image. Anthropic, OpenAI and Gemini implement
// the text steps; only Gemini renders images.
package llm

import (
	"context"
	"encoding/json"

	"github.com/fleveque/stylist-service/internal/model"
)

// Named is implemented by every client so calls can be attributed in the
// call ledger and metrics.
type Named interface {
	ProviderName() string
	ModelName() string
}

// ExtractionRequest carries the search terms and the raw page. Content may be
// empty when no page could be obtained; the model is then told so.
type ExtractionRequest struct {
	ClothingItem    string
	ColorPreference string
	Content         string
}

// Extractor asks a model to turn unstructured page content into product
// candidates. The returned JSON is untrusted: it should be an array, but its
// shape is not guaranteed. A nil result means the model returned nothing.
type Extractor interface {
	Named
	ExtractProducts(ctx context.Context, req ExtractionRequest) (json.RawMessage, error)
}

// AdviceWriter produces styling advice text for one product.
type AdviceWriter interface {
	Named
	WriteAdvice(ctx context.Context, req model.AdviceRequest) (string, error)
}

// Image is an inline image payload.
type Image struct {
	MIMEType string
	Data     []byte
}

// OutfitRenderer generates an outfit image from advice text and the product
// image. A nil image with a nil error means the model answered without one.
type OutfitRenderer interface {
	Named
	RenderOutfit(ctx context.Context, advice string, item *Image) (*Image, error)
}
