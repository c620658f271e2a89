package service

import (
	"fmt"

	"github.com/h2non/bimg"

	"github.com/fleveque/stylist-service/internal/llm"
)

// ImageProcessor prepares product images for the multimodal outfit call.
// It uses bimg (libvips bindings), so libvips must be installed.
type ImageProcessor struct {
	maxDimension int
}

// NewImageProcessor creates a processor that shrinks images whose longest
// side exceeds maxDimension. maxDimension <= 0 disables resizing.
func NewImageProcessor(maxDimension int) *ImageProcessor {
	return &ImageProcessor{maxDimension: maxDimension}
}

// mimeTypes maps bimg type names to the MIME types image models accept.
var mimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"heif": "image/heif",
	"avif": "image/avif",
	"svg":  "image/svg+xml",
	"tiff": "image/tiff",
}

// DetectMIMEType sniffs the image format from its bytes. It returns "" when
// the data is not a recognised image.
func DetectMIMEType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return mimeTypes[bimg.DetermineImageTypeName(data)]
}

// Normalize validates the image and returns it in a format the image model
// accepts (JPEG, PNG or WebP), downscaled to fit maxDimension. Images that
// already comply are returned unchanged.
func (p *ImageProcessor) Normalize(data []byte) (*llm.Image, error) {
	typeName := ""
	if len(data) > 0 {
		typeName = bimg.DetermineImageTypeName(data)
	}
	if _, known := mimeTypes[typeName]; !known {
		return nil, fmt.Errorf("unsupported image format %q", typeName)
	}

	img := bimg.NewImage(data)
	size, err := img.Size()
	if err != nil {
		return nil, fmt.Errorf("reading image size: %w", err)
	}

	opts := bimg.Options{Interpretation: bimg.InterpretationSRGB}
	changed := false

	switch typeName {
	case "jpeg", "png", "webp":
	default:
		// Everything else is flattened to PNG.
		opts.Type = bimg.PNG
		typeName = "png"
		changed = true
	}

	if p.maxDimension > 0 && (size.Width > p.maxDimension || size.Height > p.maxDimension) {
		// Setting only the longer side keeps the aspect ratio.
		if size.Width >= size.Height {
			opts.Width = p.maxDimension
		} else {
			opts.Height = p.maxDimension
		}
		changed = true
	}

	if !changed {
		return &llm.Image{MIMEType: mimeTypes[typeName], Data: data}, nil
	}

	processed, err := img.Process(opts)
	if err != nil {
		return nil, fmt.Errorf("normalizing image: %w", err)
	}
	return &llm.Image{MIMEType: mimeTypes[typeName], Data: processed}, nil
}
