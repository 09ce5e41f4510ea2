package voucher

// VoucherRequest is the add/edit form of a voucher. Dates use the
// yyyy-mm-dd form of the date input.
type VoucherRequest struct {
	Name            string  `json:"name" form:"name" binding:"required,min=2,max=100"`
	Code            string  `json:"code" form:"code" binding:"required,alphanum,max=32"`
	DiscountPercent float64 `json:"discountPercent" form:"discountPercent" binding:"gt=0,lte=100"`
	MaxDiscount     float64 `json:"maxDiscount" form:"maxDiscount" binding:"gte=0"`
	Quantity        int     `json:"quantity" form:"quantity" binding:"gte=0"`
	StartDate       string  `json:"startDate" form:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate         string  `json:"endDate" form:"endDate" binding:"required,datetime=2006-01-02"`
}

// Payload implements resource.Form.
func (r *VoucherRequest) Payload() any { return r }
