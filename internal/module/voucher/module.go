// Package voucher manages discount vouchers. Vouchers are keyed by name in
// the store; paths use the backend id when one is returned.
package voucher

import (
	"strconv"

	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/module/resource"
)

// Definition describes vouchers to the resource module.
func Definition() resource.Definition[domain.Voucher] {
	return resource.FromCatalog(catalog.Vouchers, resource.Definition[domain.Voucher]{
		Key:  voucherName,
		IDOf: voucherID,
		Columns: []resource.Column[domain.Voucher]{
			{Label: "Name", Value: voucherName},
			{Label: "Code", Value: func(v domain.Voucher) string { return v.Code }},
			{Label: "Discount", Value: func(v domain.Voucher) string { return formatFloat(v.DiscountPercent) + "%" }},
			{Label: "Quantity", Value: func(v domain.Voucher) string { return strconv.Itoa(v.Quantity) }},
			{Label: "Valid", Value: func(v domain.Voucher) string { return v.StartDate + " to " + v.EndDate }},
		},
		TextFields: []func(domain.Voucher) string{
			voucherName,
			func(v domain.Voucher) string { return v.Code },
		},
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Type: resource.InputText, Required: true},
			{Name: "code", Label: "Code", Type: resource.InputText, Required: true},
			{Name: "discountPercent", Label: "Discount (%)", Type: resource.InputNumber, Required: true, Step: "0.01"},
			{Name: "maxDiscount", Label: "Max discount", Type: resource.InputNumber, Step: "0.01"},
			{Name: "quantity", Label: "Quantity", Type: resource.InputNumber},
			{Name: "startDate", Label: "Start date", Type: resource.InputDate, Required: true},
			{Name: "endDate", Label: "End date", Type: resource.InputDate, Required: true},
		},
		NewForm: func() resource.Form { return &VoucherRequest{} },
		Values: func(v domain.Voucher) map[string]string {
			return map[string]string{
				"name":            v.Name,
				"code":            v.Code,
				"discountPercent": formatFloat(v.DiscountPercent),
				"maxDiscount":     formatFloat(v.MaxDiscount),
				"quantity":        strconv.Itoa(v.Quantity),
				"startDate":       dateOnly(v.StartDate),
				"endDate":         dateOnly(v.EndDate),
			}
		},
	})
}

// NewModule creates the voucher module.
func NewModule(deps resource.Deps) *resource.Module[domain.Voucher] {
	return resource.New(Definition(), deps)
}

func voucherName(v domain.Voucher) string { return v.Name }

func voucherID(v domain.Voucher) string {
	if v.ID != "" {
		return v.ID
	}
	return v.Name
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// dateOnly trims an RFC 3339 timestamp to the date input format.
func dateOnly(s string) string {
	if len(s) > len("2006-01-02") {
		return s[:len("2006-01-02")]
	}
	return s
}
