package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/fleveque/stylist-service/internal/llm"
	"github.com/fleveque/stylist-service/internal/model"
)

// Sanitize turns the raw extraction payload into fully-typed products.
//
// Each element is decoded field by field. Bad fields degrade to safe
// defaults and no element is ever dropped, so len(output) == len(input).
// An element that is not an object is treated as a malformed fragment and
// yields an all-default product. A missing payload (empty or JSON null)
// yields an empty list. Any other non-array payload returns ErrStructural.
func Sanitize(raw json.RawMessage) ([]model.Product, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.Product{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("%w: extraction output is not a list: %v", ErrStructural, err)
	}

	products := make([]model.Product, len(elements))
	for i, elem := range elements {
		products[i] = sanitizeCandidate(elem)
	}
	return products, nil
}

func sanitizeCandidate(raw json.RawMessage) model.Product {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Malformed fragment: every field takes its default.
		fields = nil
	}

	return model.Product{
		ImageURL:       absoluteURL(fields["imageUrl"]),
		Title:          textOrDefault(fields["title"], model.DefaultTitle),
		Description:    textOrDefault(fields["description"], model.DefaultDescription),
		Price:          textOrDefault(fields["price"], model.DefaultPrice),
		ProductURL:     absoluteURL(fields["productUrl"]),
		RelevanceScore: relevanceScore(fields["relevanceScore"]),
	}
}

// relevanceScore accepts a JSON number or a numeric string and clamps it into
// [0,1]. Anything else, including NaN and infinity spelled as strings, falls
// back to the midpoint.
func relevanceScore(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return model.DefaultRelevanceScore
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return model.DefaultRelevanceScore
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return model.DefaultRelevanceScore
		}
		return clamp01(score)
	}

	// A bare JSON number too large for float64 parses as ±Inf with ErrRange
	// and still clamps to a bound.
	score, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return model.DefaultRelevanceScore
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// textOrDefault returns the JSON string value, or def when the field is
// absent, null or not a string. An empty string is kept as is.
func textOrDefault(raw json.RawMessage, def string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

// absoluteURL returns the trimmed URL when it is an absolute http(s) URL with
// a host, and "" otherwise.
func absoluteURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	s = strings.TrimSpace(s)
	if !isAbsoluteHTTPURL(s) {
		return ""
	}
	return s
}

func isAbsoluteHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DescribeIssues checks the raw extraction payload against the product list
// schema and returns one line per violation. It is used for diagnostics
// logging only and never changes what Sanitize produces.
func DescribeIssues(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(llm.ProductListSchema())
	documentLoader := gojsonschema.NewBytesLoader(trimmed)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return []string{fmt.Sprintf("schema validation failed: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		issues[i] = desc.String()
	}
	return issues
}
