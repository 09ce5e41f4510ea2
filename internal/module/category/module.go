// Package category manages the catalog taxonomy.
package category

import (
	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Definition describes categories to the resource module.
func Definition() resource.Definition[domain.Category] {
	return resource.FromCatalog(catalog.Categories, resource.Definition[domain.Category]{
		Key:  categoryID,
		IDOf: categoryID,
		Columns: []resource.Column[domain.Category]{
			{Label: "Name", Value: func(c domain.Category) string { return c.Name }},
			{Label: "Parent", Value: func(c domain.Category) string { return c.ParentID }},
			{Label: "Description", Value: func(c domain.Category) string { return c.Description }},
		},
		TextFields: []func(domain.Category) string{
			func(c domain.Category) string { return c.Name },
		},
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Type: resource.InputText, Required: true},
			{Name: "description", Label: "Description", Type: resource.InputTextarea},
			{Name: "parentId", Label: "Parent ID", Type: resource.InputText},
		},
		NewForm: func() resource.Form { return &CategoryRequest{} },
		Values: func(c domain.Category) map[string]string {
			return map[string]string{
				"name":        c.Name,
				"description": c.Description,
				"parentId":    c.ParentID,
			}
		},
	})
}

// NewModule creates the category module.
func NewModule(deps resource.Deps) *resource.Module[domain.Category] {
	return resource.New(Definition(), deps)
}

func categoryID(c domain.Category) string { return c.ID }
