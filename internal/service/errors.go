package service

import (
	"errors"
	"strings"
)

// Failure classes of the search and advice pipelines. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrInvalidRequest means caller-supplied data failed a precondition.
	// Not retryable: the input has to change.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstream means a model call (or the product image download) failed.
	// The caller may retry the whole flow.
	ErrUpstream = errors.New("upstream error")

	// ErrStructural means the model returned a payload that is not a list.
	ErrStructural = errors.New("structural error")

	// ErrAdviceGeneration means the model returned no styling advice text.
	ErrAdviceGeneration = errors.New("advice generation error")

	// ErrImageGeneration means the image model returned no image payload.
	ErrImageGeneration = errors.New("image generation error")

	// ErrMalformedOutput means an advice result failed its post-conditions.
	ErrMalformedOutput = errors.New("malformed output")
)

// Kind returns a short machine-readable name for the failure class of err,
// or "internal" if err does not wrap one of the sentinels.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrStructural):
		return "structural_error"
	case errors.Is(err, ErrAdviceGeneration):
		return "advice_generation_error"
	case errors.Is(err, ErrImageGeneration):
		return "image_generation_error"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	default:
		return "internal"
	}
}

// UserMessage converts a pipeline error into the single message shown to the
// end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	detail := detailOf(err)

	switch {
	case errors.Is(err, ErrInvalidRequest):
		if detail == "" {
			return "The request is missing required details."
		}
		return sentence(detail)
	case errors.Is(err, ErrUpstream):
		return "An error occurred while talking to the AI service: " + detail + ". Please check the service configuration and try again."
	case errors.Is(err, ErrStructural):
		return "Failed to analyze search results: the AI service returned an unexpected data structure. Please check service status or try again."
	case errors.Is(err, ErrAdviceGeneration):
		return "Could not generate styling advice for this item. The AI might be unable to process the request or returned incomplete data."
	case errors.Is(err, ErrImageGeneration):
		return "Could not generate an outfit image for this item. Please try again."
	case errors.Is(err, ErrMalformedOutput):
		return "AI generated an invalid outfit image URL. It should be a data URI or a web URL."
	default:
		return "An unknown error occurred. Please try again."
	}
}

// EmptyMessage returns the user-facing explanation for an empty search
// outcome. It returns "" for states that are not empty outcomes.
func EmptyMessage(state SearchState) string {
	switch state {
	case StateEmptyNoCandidates:
		return "No products were identified by the AI from the shop's search results. The item might not be available, or there could be a temporary issue accessing the shop."
	case StateEmptyFiltered:
		return "Products found by the AI were missing essential details (like image or link) and could not be displayed. The page might have been incomplete or the extraction was partial."
	default:
		return ""
	}
}

// sentence capitalizes s and ends it with a period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// detailOf strips the sentinel prefix added by fmt.Errorf("%w: ...").
func detailOf(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		ErrInvalidRequest, ErrUpstream, ErrStructural,
		ErrAdviceGeneration, ErrImageGeneration, ErrMalformedOutput,
	} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
		if msg == sentinel.Error() {
			return ""
		}
	}
	return msg
}
