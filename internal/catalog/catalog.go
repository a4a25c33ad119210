// Package catalog holds the records behind the products, categories and
// warehouse screens.
package catalog

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// AllCategories is the pseudo-category that disables filtering.
const AllCategories = "All"

const placeholderImageURL = "https://via.placeholder.com/150/92c952/FFFFFF?text="

// Product is a sellable menu item.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    *string         `json:"image"`
}

func (p Product) GetID() string { return p.ID }

func (p Product) WithID(id string) Product {
	p.ID = id
	return p
}

// ImageOrPlaceholder returns the product image, or a generated placeholder
// carrying the product name.
func (p Product) ImageOrPlaceholder() string {
	if p.Image != nil && *p.Image != "" {
		return *p.Image
	}
	return placeholderImageURL + url.QueryEscape(strings.TrimSpace(p.Name))
}

// Category groups products.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c Category) GetID() string { return c.ID }

func (c Category) WithID(id string) Category {
	c.ID = id
	return c
}

// WarehouseItem is a stocked ingredient or supply.
type WarehouseItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Category string `json:"category"`
}

func (w WarehouseItem) GetID() string { return w.ID }

func (w WarehouseItem) WithID(id string) WarehouseItem {
	w.ID = id
	return w
}

// IsLow reports stock at or below the minimum.
func (w WarehouseItem) IsLow() bool {
	return w.Stock <= w.MinStock
}

// Categories lists AllCategories followed by each distinct product category
// in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	out := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// FilterByCategory returns the products in category. An empty category or
// AllCategories returns every product.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || category == AllCategories {
		return products
	}
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// LowStock returns the items at or below their minimum stock.
func LowStock(items []WarehouseItem) []WarehouseItem {
	var out []WarehouseItem
	for _, it := range items {
		if it.IsLow() {
			out = append(out, it)
		}
	}
	return out
}
