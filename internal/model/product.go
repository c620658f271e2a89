// Package model defines the core data types for the stylist service.
// All values are request-scoped: they are built from one request, consumed by
// one orchestration and never shared between requests.
package model

// Defaults applied by the sanitizer when the model leaves a field out.
const (
	DefaultTitle          = "Untitled Product"
	DefaultDescription    = "No description available."
	DefaultPrice          = "Price not specified"
	DefaultRelevanceScore = 0.5
)

// Product is one clothing item candidate extracted from a shop page.
// After sanitizing, every field is set: URLs are absolute http(s) URLs or "",
// and RelevanceScore is within [0,1].
type Product struct {
	ImageURL       string  `json:"imageUrl"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Price          string  `json:"price"` // display text, formatted by the model
	ProductURL     string  `json:"productUrl"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Displayable reports whether the product carries enough to render in a
// result list.
func (p Product) Displayable() bool {
	return p.ImageURL != "" && p.ProductURL != "" && p.Title != DefaultTitle
}

// SearchRequest is the user's search input. Content optionally carries a
// pasted search-results page; when empty the configured content provider
// decides where the page comes from.
type SearchRequest struct {
	ClothingItem    string `json:"clothingItem" binding:"max=50"`
	ColorPreference string `json:"colorPreference" binding:"max=30"`
	Content         string `json:"content,omitempty"`
}

// AdviceRequest asks for styling advice on one selected product.
type AdviceRequest struct {
	ClothingItem    string `json:"clothingItem"`
	ColorPreference string `json:"colorPreference"`
	ItemDescription string `json:"itemDescription"`
	ItemImageURL    string `json:"itemImageUrl"`
}

// AdviceResult is the styling advice plus the generated outfit image, which is
// either a data URI or an absolute URL.
type AdviceResult struct {
	StylingAdvice  string `json:"stylingAdvice"`
	OutfitImageURL string `json:"outfitImageUrl"`
}
