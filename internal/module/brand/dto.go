package brand

// BrandRequest is the add/edit form of a brand.
type BrandRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" form:"description" binding:"max=1000"`
	LogoURL     string `json:"logoUrl" form:"logoUrl" binding:"omitempty,url"`
}

// Payload implements resource.Form.
func (r *BrandRequest) Payload() any { return r }
