// Package service contains the stylist pipelines: product search over an
// untrusted extraction payload, and styling advice with an outfit image.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/llm"
	"github.com/fleveque/stylist-service/internal/metrics"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/provider"
)

// SearchState is the position of one search in its state machine:
//
//	pending → extracting → validating → filtering → success
//	                                              → empty_no_candidates
//	                                              → empty_filtered
//	          extracting → upstream_error | structural_error
//	pending → invalid_request
type SearchState string

const (
	StatePending           SearchState = "pending"
	StateExtracting        SearchState = "extracting"
	StateValidating        SearchState = "validating"
	StateFiltering         SearchState = "filtering"
	StateSuccess           SearchState = "success"
	StateEmptyNoCandidates SearchState = "empty_no_candidates"
	StateEmptyFiltered     SearchState = "empty_filtered"
	StateStructuralError   SearchState = "structural_error"
	StateUpstreamError     SearchState = "upstream_error"
	StateInvalidRequest    SearchState = "invalid_request"
)

// Terminal reports whether no further transition can happen from s.
func (s SearchState) Terminal() bool {
	switch s {
	case StatePending, StateExtracting, StateValidating, StateFiltering:
		return false
	default:
		return true
	}
}

// SearchResult is the outcome of one search. State is always terminal.
// Products is non-empty only on success. CandidateCount is the size of the
// validated list before filtering. Message explains empty outcomes.
type SearchResult struct {
	State          SearchState     `json:"state"`
	Products       []model.Product `json:"products"`
	CandidateCount int             `json:"candidateCount"`
	Message        string          `json:"message,omitempty"`
}

// SearchService drives a query through content fetch, extraction,
// sanitizing and filtering.
type SearchService struct {
	source     provider.ContentProvider
	extractor  llm.Extractor
	tracker    *CallTracker
	maxResults int
	logger     *zap.Logger
}

// NewSearchService wires the search pipeline. maxResults <= 0 keeps every
// displayable product.
func NewSearchService(
	source provider.ContentProvider,
	extractor llm.Extractor,
	tracker *CallTracker,
	maxResults int,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		source:     source,
		extractor:  extractor,
		tracker:    tracker,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search runs one search. The returned result is never nil and carries the
// terminal state. Failure states also return an error wrapping
// ErrInvalidRequest, ErrUpstream or ErrStructural. Empty outcomes are not
// errors: they return a nil error and a message.
func (s *SearchService) Search(ctx context.Context, req model.SearchRequest) (*SearchResult, error) {
	result := &SearchResult{State: StatePending, Products: []model.Product{}}
	defer func() {
		metrics.SearchOutcomes.WithLabelValues(string(result.State)).Inc()
	}()

	item := strings.TrimSpace(req.ClothingItem)
	if item == "" {
		result.State = StateInvalidRequest
		return result, fmt.Errorf("%w: clothing item is required", ErrInvalidRequest)
	}
	color := strings.TrimSpace(req.ColorPreference)

	content := s.fetchContent(ctx, provider.Query{Item: item, Color: color, Pasted: req.Content})

	result.State = StateExtracting
	start := time.Now()
	raw, err := s.extractor.ExtractProducts(ctx, llm.ExtractionRequest{
		ClothingItem:    item,
		ColorPreference: color,
		Content:         content,
	})
	s.tracker.Record(ctx, model.StepExtract, item, s.extractor, err, time.Since(start))
	if err != nil {
		result.State = StateUpstreamError
		return result, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result.State = StateValidating
	if issues := DescribeIssues(raw); len(issues) > 0 {
		s.logger.Debug("extraction output deviates from schema",
			zap.String("clothing_item", item),
			zap.Strings("issues", issues),
		)
	}
	validated, err := Sanitize(raw)
	if err != nil {
		s.logger.Warn("extraction returned a non-list payload",
			zap.String("clothing_item", item),
			zap.Error(err),
		)
		result.State = StateStructuralError
		return result, err
	}
	result.CandidateCount = len(validated)

	result.State = StateFiltering
	displayable := FilterDisplayable(validated)

	switch {
	case len(validated) == 0:
		result.State = StateEmptyNoCandidates
	case len(displayable) == 0:
		result.State = StateEmptyFiltered
	default:
		rankByRelevance(displayable)
		if s.maxResults > 0 && len(displayable) > s.maxResults {
			displayable = displayable[:s.maxResults]
		}
		result.State = StateSuccess
		result.Products = displayable
	}
	result.Message = EmptyMessage(result.State)

	s.logger.Info("search complete",
		zap.String("clothing_item", item),
		zap.String("state", string(result.State)),
		zap.Int("candidates", len(validated)),
		zap.Int("displayable", len(result.Products)),
	)
	return result, nil
}

// fetchContent asks the content source for the page. A failed fetch is
// logged and treated as "no content": extraction still runs and reports
// no candidates.
func (s *SearchService) fetchContent(ctx context.Context, q provider.Query) string {
	if s.source == nil {
		return q.Pasted
	}

	content, err := s.source.Fetch(ctx, q)
	switch {
	case err != nil:
		metrics.ContentFetches.WithLabelValues(s.source.Name(), "error").Inc()
		s.logger.Warn("content source failed, extracting without content",
			zap.String("source", s.source.Name()),
			zap.String("clothing_item", q.Item),
			zap.Error(err),
		)
		return ""
	case strings.TrimSpace(content) == "":
		metrics.ContentFetches.WithLabelValues(s.source.Name(), "empty").Inc()
	default:
		metrics.ContentFetches.WithLabelValues(s.source.Name(), "ok").Inc()
	}
	return content
}
