package llm

import (
	"fmt"
	"strings"

	"github.com/fleveque/stylist-service/internal/model"
)

const submitProductsTool = "submit_products"

// productProperties is the JSON schema of one product candidate. It is shared
// by the Anthropic tool, the OpenAI function and the diagnostics validator.
func productProperties() map[string]interface{} {
	return map[string]interface{}{
		"imageUrl": map[string]interface{}{
			"type":        "string",
			"description": "Absolute URL of the product image.",
		},
		"title": map[string]interface{}{
			"type":        "string",
			"description": "Product title as shown in the shop.",
		},
		"description": map[string]interface{}{
			"type":        "string",
			"description": "Short product description.",
		},
		"price": map[string]interface{}{
			"type":        "string",
			"description": "Price as display text including currency.",
		},
		"productUrl": map[string]interface{}{
			"type":        "string",
			"description": "Absolute URL of the product page.",
		},
		"relevanceScore": map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"maximum":     1,
			"description": "How well the product matches the requested item and color, 0 to 1.",
		},
	}
}

var productRequired = []string{"imageUrl", "title", "description", "price", "productUrl", "relevanceScore"}

// ProductListSchema returns the JSON schema of the extraction output: an
// array of product candidates.
func ProductListSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":       "object",
			"properties": productProperties(),
			"required":   productRequired,
		},
	}
}

// buildExtractionPrompt creates the user prompt for product extraction.
func buildExtractionPrompt(req ExtractionRequest) string {
	color := strings.TrimSpace(req.ColorPreference)
	if color == "" {
		color = "Any color"
	}

	content := req.Content
	if strings.TrimSpace(content) == "" {
		content = "No search results HTML was available or could be fetched. Please indicate that no products could be found."
	}

	return fmt.Sprintf(`You are a personal style advisor. Analyze the following HTML search results from an online clothing shop for a specific clothing item and color preference. Filter the results to identify the most relevant matches based on the user's input.

Clothing Item: %s
Color Preference: %s

Search Results HTML:
%s

Return a JSON array of relevant products, each including the image URL, title, description, price, and product URL. Also include a relevance score (0-1) indicating how well the product matches the user preferences. If no products are found in the HTML or the HTML is empty/invalid, return an empty array.
If the color preference is not strictly met by a product, but the item is a good match otherwise, you can still include it but assign a lower relevance score. If color preference is empty or "any", do not penalize for color.`,
		req.ClothingItem, color, content)
}

// buildAdvicePrompt creates the styling-advice prompt for one product.
func buildAdvicePrompt(req model.AdviceRequest) string {
	return fmt.Sprintf(`You are a personal stylist. Provide styling advice for the following clothing item, considering the user's color preference.

Clothing Item: %s
Color Preference: %s
Description: %s

Give detailed advice on how to style this item, including what other items to pair it with and for what occasions. Also, tell me what kind of jewelry, shoes, bags and other accessories might be used to improve or complete the outfit.`,
		req.ClothingItem, req.ColorPreference, req.ItemDescription)
}

// buildOutfitPrompt creates the image prompt from generated advice.
func buildOutfitPrompt(advice string) string {
	return "Generate an image of a model wearing the suggested outfit, built around the clothing item in the attached image: " + advice
}

// trimJSONFence strips a markdown code fence some models wrap JSON in.
func trimJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
