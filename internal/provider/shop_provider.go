package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/config"
)

const (
	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
	acceptLanguageHeader = "en-US,en;q=0.9"
)

// ShopProvider fetches the shop's search-results page with colly. It returns
// the page body untouched; product extraction is left to the model.
type ShopProvider struct {
	searchURL string
	userAgent string
	timeout   time.Duration
	maxBytes  int
	logger    *zap.Logger
}

// NewShopProvider creates a provider for the configured search URL template.
func NewShopProvider(cfg config.SourceConfig, logger *zap.Logger) *ShopProvider {
	return &ShopProvider{
		searchURL: cfg.SearchURL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		maxBytes:  cfg.MaxBytes,
		logger:    logger,
	}
}

func (s *ShopProvider) Name() string { return "shop" }

// SearchURL returns the shop URL for the query's search terms. Spaces are
// encoded as %20 as a browser form would.
func (s *ShopProvider) SearchURL(q Query) string {
	escaped := strings.ReplaceAll(url.QueryEscape(q.SearchTerms()), "+", "%20")
	return fmt.Sprintf(s.searchURL, escaped)
}

// Fetch downloads the search page. A non-2xx response or transport failure is
// returned as an error; the caller decides whether that is fatal.
func (s *ShopProvider) Fetch(ctx context.Context, q Query) (string, error) {
	if strings.TrimSpace(q.Item) == "" {
		return "", nil
	}

	searchURL := s.SearchURL(q)

	// A fresh collector per fetch keeps requests independent: colly tracks
	// visited URLs per collector and the search page must be refetched.
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxBodySize(s.maxBytes),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
		r.Headers.Set("Accept-Language", acceptLanguageHeader)
	})

	var body string
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetching %s (status %d): %w", searchURL, status, err)
	})

	s.logger.Debug("fetching shop search page", zap.String("url", searchURL))

	if err := c.Visit(searchURL); err != nil {
		if fetchErr != nil {
			return "", fetchErr
		}
		return "", fmt.Errorf("fetching %s: %w", searchURL, err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}

	return body, nil
}
