package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/fleveque/stylist-service/internal/model"
)

// AnthropicClient implements Extractor and AdviceWriter using Claude.
// Extraction goes through a custom tool so Claude returns structured JSON
// instead of free-form text.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a Claude-backed client. The SDK's automatic
// retries are switched off: a failed call surfaces to the caller as is.
func NewAnthropicClient(apiKey string, model string, timeout time.Duration) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	)
	return &AnthropicClient{
		client: &client,
		model:  model,
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string     { return a.model }

// ExtractProducts asks Claude to submit the matching products through the
// submit_products tool and returns the raw "products" value of that call.
func (a *AnthropicClient) ExtractProducts(ctx context.Context, req ExtractionRequest) (json.RawMessage, error) {
	submitTool := anthropic.ToolParam{
		Name:        submitProductsTool,
		Description: param.NewOpt("Submit the list of relevant products found in the search results. Call this exactly once."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"products": ProductListSchema(),
			},
		},
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildExtractionPrompt(req))),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &submitTool}},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range message.Content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok || toolUse.Name != submitProductsTool {
			continue
		}

		inputBytes, err := json.Marshal(toolUse.Input)
		if err != nil {
			return nil, fmt.Errorf("marshaling tool input: %w", err)
		}
		return productsFromToolInput(inputBytes), nil
	}

	// Claude answered without calling the tool: nothing was extracted.
	return nil, nil
}

// WriteAdvice asks Claude for styling advice and returns the concatenated text.
func (a *AnthropicClient) WriteAdvice(ctx context.Context, req model.AdviceRequest) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildAdvicePrompt(req))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// productsFromToolInput pulls the "products" value out of a submit_products
// call. Arguments that are not a JSON object, or that lack the key, are
// handed back whole so the sanitizer rejects them as a non-array payload.
func productsFromToolInput(input []byte) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return json.RawMessage(input)
	}
	if products, ok := fields["products"]; ok {
		return products
	}
	return json.RawMessage(input)
}
