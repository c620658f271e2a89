// Package provider defines where the raw search-results page comes from.
// Each source (live shop fetch, pasted content, none) implements
// ContentProvider; the search pipeline treats the result as an opaque blob.
package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/config"
)

// Query carries the search terms and any content the user pasted.
type Query struct {
	Item   string
	Color  string
	Pasted string
}

// SearchTerms joins item and color the way the shop's search box expects.
func (q Query) SearchTerms() string {
	terms := strings.TrimSpace(q.Item)
	if color := strings.TrimSpace(q.Color); color != "" {
		terms += " " + color
	}
	return terms
}

// ContentProvider supplies the raw page for a query.
type ContentProvider interface {
	// Fetch returns the page content. An empty string with a nil error means
	// no content is available, which is a valid outcome.
	Fetch(ctx context.Context, q Query) (string, error)

	// Name returns a short name used in logs and metrics.
	Name() string
}

// New builds the content provider for the configured strategy.
func New(cfg config.SourceConfig, logger *zap.Logger) (ContentProvider, error) {
	switch cfg.Strategy {
	case config.SourceFetch:
		return NewShopProvider(cfg, logger), nil
	case config.SourcePaste:
		return PasteProvider{}, nil
	case config.SourceNone:
		return NoneProvider{}, nil
	case config.SourceAuto, "":
		return NewAutoProvider(NewShopProvider(cfg, logger)), nil
	default:
		return nil, fmt.Errorf("unknown content source strategy %q", cfg.Strategy)
	}
}

// PasteProvider only returns content the user supplied with the request.
type PasteProvider struct{}

func (PasteProvider) Name() string { return "paste" }

func (PasteProvider) Fetch(_ context.Context, q Query) (string, error) {
	return q.Pasted, nil
}

// NoneProvider never supplies content; extraction then reports no candidates.
type NoneProvider struct{}

func (NoneProvider) Name() string { return "none" }

func (NoneProvider) Fetch(context.Context, Query) (string, error) {
	return "", nil
}

// AutoProvider prefers pasted content and falls back to a live fetch.
type AutoProvider struct {
	fallback ContentProvider
}

// NewAutoProvider wraps the provider used when nothing was pasted.
func NewAutoProvider(fallback ContentProvider) *AutoProvider {
	return &AutoProvider{fallback: fallback}
}

func (a *AutoProvider) Name() string { return "auto" }

func (a *AutoProvider) Fetch(ctx context.Context, q Query) (string, error) {
	if strings.TrimSpace(q.Pasted) != "" {
		return q.Pasted, nil
	}
	return a.fallback.Fetch(ctx, q)
}
