// Package review moderates customer reviews. Reviews are created by
// customers on the storefront, so the console only lists, edits and
// deletes them, and approves or hides them from the list.
package review

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Module is the resource module plus the moderation routes.
type Module struct {
	*resource.Module[domain.Review]
}

// Definition describes reviews to the resource module.
func Definition() resource.Definition[domain.Review] {
	return resource.FromCatalog(catalog.Reviews, resource.Definition[domain.Review]{
		Key:  reviewID,
		IDOf: reviewID,
		Columns: []resource.Column[domain.Review]{
			{Label: "Product", Value: func(r domain.Review) string { return r.ProductID }},
			{Label: "Customer", Value: func(r domain.Review) string { return r.CustomerName }},
			{Label: "Rating", Value: stars},
			{Label: "Comment", Value: func(r domain.Review) string { return excerpt(r.Comment, 60) }},
			{Label: "Status", Value: func(r domain.Review) string { return r.Status }},
		},
		TextFields: []func(domain.Review) string{
			func(r domain.Review) string { return r.CustomerName },
			func(r domain.Review) string { return r.Comment },
		},
		Filters: []resource.Filter{
			{Name: "rating", Label: "Rating", Options: []string{"1", "2", "3", "4", "5"}},
			{Name: "status", Label: "Status", Options: statuses},
		},
		Fields: []resource.Field{
			{Name: "status", Label: "Status", Type: resource.InputSelect, Options: statuses, Required: true},
		},
		NewForm: func() resource.Form { return &ReviewRequest{} },
		Values: func(r domain.Review) map[string]string {
			return map[string]string{"status": r.Status}
		},
		Details: func(r domain.Review) []resource.Detail {
			return []resource.Detail{
				{Label: "ID", Value: r.ID},
				{Label: "Product", Value: r.ProductID},
				{Label: "Customer", Value: r.CustomerName},
				{Label: "Rating", Value: stars(r)},
				{Label: "Comment", Value: r.Comment},
				{Label: "Image", Value: r.ImageURL},
				{Label: "Status", Value: r.Status},
			}
		},
		NoCreate: true,
	})
}

// NewModule creates the review module.
func NewModule(deps resource.Deps) *Module {
	return &Module{Module: resource.New(Definition(), deps)}
}

// RegisterRoutes registers the resource routes and the moderation routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	m.Module.RegisterRoutes(api, pages)

	base := m.Meta().Base
	api.PATCH(base+"/:id/status", m.Moderate)
	pages.PATCH(base+"/:id/status", m.ModeratePage)
	pages.POST(base+"/:id/status", m.ModeratePage)
}

func reviewID(r domain.Review) string { return r.ID }

func stars(r domain.Review) string {
	n := min(max(r.Rating, 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n) + " (" + strconv.Itoa(r.Rating) + ")"
}

// excerpt shortens s to at most n runes.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
