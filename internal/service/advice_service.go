package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/llm"
	"github.com/fleveque/stylist-service/internal/metrics"
	"github.com/fleveque/stylist-service/internal/model"
)

// AdviceService produces styling advice and an outfit image for one product.
// The two model calls run in sequence; a failure in either one fails the
// whole request and no partial advice is returned.
type AdviceService struct {
	writer       llm.AdviceWriter
	renderer     llm.OutfitRenderer
	images       ItemImageLoader
	tracker      *CallTracker
	allowDataURI bool
	logger       *zap.Logger
}

// NewAdviceService wires the advice pipeline.
func NewAdviceService(
	writer llm.AdviceWriter,
	renderer llm.OutfitRenderer,
	images ItemImageLoader,
	tracker *CallTracker,
	allowDataURI bool,
	logger *zap.Logger,
) *AdviceService {
	return &AdviceService{
		writer:       writer,
		renderer:     renderer,
		images:       images,
		tracker:      tracker,
		allowDataURI: allowDataURI,
		logger:       logger,
	}
}

// Advise validates the request, loads the product image, asks for styling
// advice and then for an outfit image built from that advice. Errors wrap
// ErrInvalidRequest, ErrUpstream, ErrAdviceGeneration, ErrImageGeneration or
// ErrMalformedOutput.
func (s *AdviceService) Advise(ctx context.Context, req model.AdviceRequest) (result *model.AdviceResult, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = Kind(err)
		}
		metrics.AdviceOutcomes.WithLabelValues(outcome).Inc()
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no image model configured", ErrImageGeneration)
	}

	itemImage, err := s.images.Load(ctx, strings.TrimSpace(req.ItemImageURL))
	if err != nil {
		return nil, err
	}

	// Step 1: styling advice text.
	start := time.Now()
	advice, err := s.writer.WriteAdvice(ctx, req)
	s.tracker.Record(ctx, model.StepAdvice, req.ClothingItem, s.writer, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: styling advice: %v", ErrUpstream, err)
	}
	advice = strings.TrimSpace(advice)
	if advice == "" {
		return nil, fmt.Errorf("%w: model returned no advice text", ErrAdviceGeneration)
	}

	// Step 2: outfit image from the advice plus the product image.
	start = time.Now()
	outfit, err := s.renderer.RenderOutfit(ctx, advice, itemImage)
	s.tracker.Record(ctx, model.StepOutfit, req.ClothingItem, s.renderer, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: outfit image: %v", ErrUpstream, err)
	}
	if outfit == nil || len(outfit.Data) == 0 {
		return nil, fmt.Errorf("%w: model returned no image payload", ErrImageGeneration)
	}

	result = &model.AdviceResult{
		StylingAdvice:  advice,
		OutfitImageURL: imageDataURI(outfit),
	}
	if err := checkAdviceResult(result); err != nil {
		s.logger.Warn("advice result failed post-conditions",
			zap.String("clothing_item", req.ClothingItem),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("advice complete",
		zap.String("clothing_item", req.ClothingItem),
		zap.Int("advice_chars", len(advice)),
		zap.Int("image_bytes", len(outfit.Data)),
	)
	return result, nil
}

// validate checks the request before any model call is made.
func (s *AdviceService) validate(req model.AdviceRequest) error {
	var missing []string
	if strings.TrimSpace(req.ClothingItem) == "" {
		missing = append(missing, "clothingItem")
	}
	if strings.TrimSpace(req.ColorPreference) == "" {
		missing = append(missing, "colorPreference")
	}
	if strings.TrimSpace(req.ItemDescription) == "" {
		missing = append(missing, "itemDescription")
	}
	if strings.TrimSpace(req.ItemImageURL) == "" {
		missing = append(missing, "itemImageUrl")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: all product details (clothing item, color, description, image URL) are required for styling advice; missing %s",
			ErrInvalidRequest, strings.Join(missing, ", "))
	}

	if !s.allowedImageRef(strings.TrimSpace(req.ItemImageURL)) {
		schemes := "http:// or https://"
		if s.allowDataURI {
			schemes = "http://, https:// or data:"
		}
		return fmt.Errorf("%w: invalid item image URL; it must start with %s", ErrInvalidRequest, schemes)
	}
	return nil
}

func (s *AdviceService) allowedImageRef(ref string) bool {
	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		return s.allowDataURI
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// imageDataURI encodes an image as a data URI, sniffing the MIME type when
// the model did not report one.
func imageDataURI(img *llm.Image) string {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = DetectMIMEType(img.Data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// checkAdviceResult enforces the post-conditions of a successful advice.
func checkAdviceResult(r *model.AdviceResult) error {
	if strings.TrimSpace(r.StylingAdvice) == "" {
		return fmt.Errorf("%w: empty styling advice", ErrMalformedOutput)
	}
	u := r.OutfitImageURL
	if strings.HasPrefix(u, "data:image/") || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return nil
	}
	prefix := u
	if len(prefix) > 32 {
		prefix = prefix[:32]
	}
	return fmt.Errorf("%w: outfit image URL %q is neither a data URI nor a web URL", ErrMalformedOutput, prefix)
}

