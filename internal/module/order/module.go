// Package order lists customer orders and moves them through their status
// workflow.
package order

import (
	"strconv"

	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Definition describes orders to the resource module. Orders cannot be
// created or deleted from the console.
func Definition() resource.Definition[domain.Order] {
	return resource.FromCatalog(catalog.Orders, resource.Definition[domain.Order]{
		Key:  orderID,
		IDOf: orderID,
		Columns: []resource.Column[domain.Order]{
			{Label: "Code", Value: func(o domain.Order) string { return o.Code }},
			{Label: "Customer", Value: func(o domain.Order) string { return o.CustomerName }},
			{Label: "Total", Value: func(o domain.Order) string { return formatTotal(o.Total) }},
			{Label: "Status", Value: func(o domain.Order) string { return o.Status }},
			{Label: "Placed", Value: func(o domain.Order) string { return o.CreatedAt }},
		},
		TextFields: []func(domain.Order) string{
			func(o domain.Order) string { return o.Code },
			func(o domain.Order) string { return o.CustomerName },
			func(o domain.Order) string { return o.Phone },
		},
		Filters: []resource.Filter{
			{Name: "status", Label: "Status", Options: statuses},
		},
		Fields: []resource.Field{
			{Name: "status", Label: "Status", Type: resource.InputSelect, Options: statuses, Required: true},
		},
		NewForm: func() resource.Form { return &StatusRequest{} },
		Values: func(o domain.Order) map[string]string {
			return map[string]string{"status": o.Status}
		},
		Details: func(o domain.Order) []resource.Detail {
			return []resource.Detail{
				{Label: "Code", Value: o.Code},
				{Label: "Customer", Value: o.CustomerName},
				{Label: "Phone", Value: o.Phone},
				{Label: "Address", Value: o.Address},
				{Label: "Total", Value: formatTotal(o.Total)},
				{Label: "Status", Value: o.Status},
				{Label: "Placed", Value: o.CreatedAt},
			}
		},
		NoCreate: true,
		NoDelete: true,
	})
}

// NewModule creates the order module.
func NewModule(deps resource.Deps) *resource.Module[domain.Order] {
	return resource.New(Definition(), deps)
}

func orderID(o domain.Order) string { return o.ID }

func formatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
