// Package catalog lists the backend resources the console manages and how
// each one is exposed by the commerce API.
package catalog

import (
	"sort"

	"github.com/simp-lee/shopadmin/internal/api"
)

// Entry describes one managed resource.
type Entry struct {
	Endpoint api.Endpoint
	// Title is the plural display name, e.g. "Skin types".
	Title string
	// Singular is the name used in toasts, e.g. "Skin type".
	Singular string
	// KeyField is the JSON field that identifies a record in lists. Most
	// resources use "id"; vouchers and skin types are keyed by a business
	// field.
	KeyField string
	// Filters are the query parameters the backend accepts on list.
	Filters []string
}

// Resource names.
const (
	Products   = "products"
	Orders     = "orders"
	Brands     = "brands"
	Categories = "categories"
	Vouchers   = "vouchers"
	Reviews    = "reviews"
	SkinTypes  = "skin-types"
)

var entries = map[string]Entry{
	Products: {
		Endpoint: api.Endpoint{Name: Products, Path: "/products", Paging: api.PagingPage, Shape: api.ShapeItems},
		Title:    "Products",
		Singular: "Product",
		KeyField: "id",
	},
	Orders: {
		Endpoint: api.Endpoint{Name: Orders, Path: "/orders", Paging: api.PagingPageNumber, Shape: api.ShapeItems},
		Title:    "Orders",
		Singular: "Order",
		KeyField: "id",
		Filters:  []string{"status"},
	},
	Brands: {
		Endpoint: api.Endpoint{Name: Brands, Path: "/brands", Paging: api.PagingPage, Shape: api.ShapeResults},
		Title:    "Brands",
		Singular: "Brand",
		KeyField: "id",
	},
	Categories: {
		Endpoint: api.Endpoint{Name: Categories, Path: "/categories", Paging: api.PagingPage, Shape: api.ShapeResults},
		Title:    "Categories",
		Singular: "Category",
		KeyField: "id",
	},
	Vouchers: {
		Endpoint: api.Endpoint{Name: Vouchers, Path: "/vouchers", Paging: api.PagingPageNumber, Shape: api.ShapeItems},
		Title:    "Vouchers",
		Singular: "Voucher",
		KeyField: "name",
	},
	Reviews: {
		Endpoint: api.Endpoint{Name: Reviews, Path: "/reviews", Paging: api.PagingPageNumber, Shape: api.ShapeItems},
		Title:    "Reviews",
		Singular: "Review",
		KeyField: "id",
		Filters:  []string{"rating", "status"},
	},
	SkinTypes: {
		Endpoint: api.Endpoint{Name: SkinTypes, Path: "/skin-types", Paging: api.PagingPage, Shape: api.ShapeResults},
		Title:    "Skin types",
		Singular: "Skin type",
		KeyField: "description",
	},
}

// Lookup returns the entry registered under name.
func Lookup(name string) (Entry, bool) {
	e, ok := entries[name]
	return e, ok
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) Entry {
	e, ok := entries[name]
	if !ok {
		panic("catalog: unknown resource " + name)
	}
	return e
}

// Names returns every resource name in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
