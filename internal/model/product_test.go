package model

import "testing"

func TestProduct_Displayable(t *testing.T) {
	full := Product{
		ImageURL:   "https://shop.example/img/1.jpg",
		Title:      "Blue blouse",
		ProductURL: "https://shop.example/p/1",
	}

	tests := []struct {
		name    string
		product Product
		want    bool
	}{
		{"all fields", full, true},
		{"missing image", Product{Title: full.Title, ProductURL: full.ProductURL}, false},
		{"missing product url", Product{Title: full.Title, ImageURL: full.ImageURL}, false},
		{"default title", Product{ImageURL: full.ImageURL, ProductURL: full.ProductURL, Title: DefaultTitle}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.Displayable(); got != tt.want {
				t.Errorf("Displayable() = %v, want %v", got, tt.want)
			}
		})
	}
}
