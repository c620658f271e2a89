package llm

import (
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestBuildExtractionPrompt(t *testing.T) {
	tests := []struct {
		name       string
		req        ExtractionRequest
		wantSubstr []string
	}{
		{
			name: "item and color",
			req:  ExtractionRequest{ClothingItem: "jeans", ColorPreference: "blue", Content: "<html>results</html>"},
			wantSubstr: []string{
				"Clothing Item: jeans",
				"Color Preference: blue",
				"<html>results</html>",
			},
		},
		{
			name:       "empty color becomes any color",
			req:        ExtractionRequest{ClothingItem: "jeans", Content: "<html></html>"},
			wantSubstr: []string{"Color Preference: Any color"},
		},
		{
			name:       "missing content is announced",
			req:        ExtractionRequest{ClothingItem: "jeans", ColorPreference: "red"},
			wantSubstr: []string{"No search results HTML was available"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := buildExtractionPrompt(tt.req)
			for _, want := range tt.wantSubstr {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
		})
	}
}

func TestTrimJSONFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[]", "[]"},
		{"```json\n[{\"title\":\"x\"}]\n```", `[{"title":"x"}]`},
		{"```\n[]\n```", "[]"},
		{"  \n ", ""},
	}

	for _, tt := range tests {
		if got := trimJSONFence(tt.in); got != tt.want {
			t.Errorf("trimJSONFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProductsFromToolInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"products key", `{"products":[{"title":"x"}]}`, `[{"title":"x"}]`},
		{"empty products", `{"products":[]}`, `[]`},
		{"no products key", `{"items":[]}`, `{"items":[]}`},
		{"products is not an array", `{"products":"none found"}`, `"none found"`},
		{"truncated arguments", `{"products":[{"title":"x"`, `{"products":[{"title":"x"`},
		{"not json", `not json`, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := productsFromToolInput([]byte(tt.input))
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFirstInlineImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("nil response", func(t *testing.T) {
		if img := firstInlineImage(nil); img != nil {
			t.Errorf("expected nil image, got %+v", img)
		}
	})

	t.Run("text only", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "here is your outfit"}}},
			}},
		}
		if img := firstInlineImage(resp); img != nil {
			t.Errorf("expected nil image, got %+v", img)
		}
	})

	t.Run("image after text", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "here is your outfit"},
					{InlineData: &genai.Blob{MIMEType: "application/octet-stream", Data: []byte("x")}},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: png}},
				}},
			}},
		}
		img := firstInlineImage(resp)
		if img == nil {
			t.Fatal("expected an image")
		}
		if img.MIMEType != "image/png" || len(img.Data) != len(png) {
			t.Errorf("got %+v", img)
		}
	})

	t.Run("blocked candidate skipped", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				SafetyRatings: []*genai.SafetyRating{{Blocked: true}},
				Content: &genai.Content{Parts: []*genai.Part{
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: png}},
				}},
			}},
		}
		if img := firstInlineImage(resp); img != nil {
			t.Errorf("expected nil image, got %+v", img)
		}
	})
}
