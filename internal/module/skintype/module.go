// Package skintype manages product suitability tags. Skin types are keyed
// by description in the store; paths use the backend id when one is
// returned.
package skintype

import (
	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Definition describes skin types to the resource module.
func Definition() resource.Definition[domain.SkinType] {
	return resource.FromCatalog(catalog.SkinTypes, resource.Definition[domain.SkinType]{
		Key:  description,
		IDOf: skinTypeID,
		Columns: []resource.Column[domain.SkinType]{
			{Label: "Description", Value: description},
		},
		Fields: []resource.Field{
			{Name: "description", Label: "Description", Type: resource.InputText, Required: true},
		},
		NewForm: func() resource.Form { return &SkinTypeRequest{} },
		Values: func(s domain.SkinType) map[string]string {
			return map[string]string{"description": s.Description}
		},
		Details: func(s domain.SkinType) []resource.Detail {
			return []resource.Detail{{Label: "Description", Value: s.Description}}
		},
	})
}

// NewModule creates the skin type module.
func NewModule(deps resource.Deps) *resource.Module[domain.SkinType] {
	return resource.New(Definition(), deps)
}

func description(s domain.SkinType) string { return s.Description }

func skinTypeID(s domain.SkinType) string {
	if s.ID != "" {
		return s.ID
	}
	return s.Description
}
