// Package brand manages product brands.
package brand

import (
	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Definition describes brands to the resource module.
func Definition() resource.Definition[domain.Brand] {
	return resource.FromCatalog(catalog.Brands, resource.Definition[domain.Brand]{
		Key:  brandID,
		IDOf: brandID,
		Columns: []resource.Column[domain.Brand]{
			{Label: "Name", Value: func(b domain.Brand) string { return b.Name }},
			{Label: "Description", Value: func(b domain.Brand) string { return b.Description }},
		},
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Type: resource.InputText, Required: true},
			{Name: "description", Label: "Description", Type: resource.InputTextarea},
			{Name: "logoUrl", Label: "Logo URL", Type: resource.InputURL},
		},
		NewForm: func() resource.Form { return &BrandRequest{} },
		Values: func(b domain.Brand) map[string]string {
			return map[string]string{
				"name":        b.Name,
				"description": b.Description,
				"logoUrl":     b.LogoURL,
			}
		},
	})
}

// NewModule creates the brand module.
func NewModule(deps resource.Deps) *resource.Module[domain.Brand] {
	return resource.New(Definition(), deps)
}

func brandID(b domain.Brand) string { return b.ID }
