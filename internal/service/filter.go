package service

import (
	"sort"

	"github.com/fleveque/stylist-service/internal/model"
)

// FilterDisplayable returns the products that carry enough fields to be shown
// in a result list, preserving their order.
func FilterDisplayable(products []model.Product) []model.Product {
	displayable := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Displayable() {
			displayable = append(displayable, p)
		}
	}
	return displayable
}

// rankByRelevance orders products by relevance score, highest first. Ties
// keep the order the model gave them.
func rankByRelevance(products []model.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].RelevanceScore > products[j].RelevanceScore
	})
}
