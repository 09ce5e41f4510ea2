// Package product manages the catalog's sellable items.
package product

import (
	"strconv"

	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Definition describes products to the resource module.
func Definition() resource.Definition[domain.Product] {
	return resource.FromCatalog(catalog.Products, resource.Definition[domain.Product]{
		Key:  productID,
		IDOf: productID,
		Columns: []resource.Column[domain.Product]{
			{Label: "Name", Value: func(p domain.Product) string { return p.Name }},
			{Label: "Price", Value: func(p domain.Product) string { return formatPrice(p.Price) }},
			{Label: "Stock", Value: func(p domain.Product) string { return strconv.Itoa(p.Stock) }},
			{Label: "Status", Value: func(p domain.Product) string { return p.Status }},
		},
		TextFields: []func(domain.Product) string{
			func(p domain.Product) string { return p.Name },
			func(p domain.Product) string { return p.Description },
		},
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Type: resource.InputText, Required: true},
			{Name: "description", Label: "Description", Type: resource.InputTextarea},
			{Name: "price", Label: "Price", Type: resource.InputNumber, Step: "0.01", Required: true},
			{Name: "stock", Label: "Stock", Type: resource.InputNumber, Step: "1", Required: true},
			{Name: "brandId", Label: "Brand ID", Type: resource.InputText, Required: true},
			{Name: "categoryId", Label: "Category ID", Type: resource.InputText, Required: true},
			{Name: "imageUrl", Label: "Image URL", Type: resource.InputURL},
			{Name: "status", Label: "Status", Type: resource.InputSelect, Options: []string{"active", "inactive"}, Required: true},
		},
		NewForm: func() resource.Form { return &ProductRequest{} },
		Values: func(p domain.Product) map[string]string {
			return map[string]string{
				"name":        p.Name,
				"description": p.Description,
				"price":       formatPrice(p.Price),
				"stock":       strconv.Itoa(p.Stock),
				"brandId":     p.BrandID,
				"categoryId":  p.CategoryID,
				"imageUrl":    p.ImageURL,
				"status":      p.Status,
			}
		},
	})
}

// NewModule creates the product module.
func NewModule(deps resource.Deps) *resource.Module[domain.Product] {
	return resource.New(Definition(), deps)
}

func productID(p domain.Product) string { return p.ID }

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
