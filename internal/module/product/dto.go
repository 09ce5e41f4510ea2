package product

// ProductRequest is the add/edit form of a product. It is sent to the
// backend as-is.
type ProductRequest struct {
	Name        string  `json:"name" form:"name" binding:"required,min=2,max=200"`
	Description string  `json:"description" form:"description" binding:"max=2000"`
	Price       float64 `json:"price" form:"price" binding:"gte=0"`
	Stock       int     `json:"stock" form:"stock" binding:"gte=0"`
	BrandID     string  `json:"brandId" form:"brandId" binding:"required"`
	CategoryID  string  `json:"categoryId" form:"categoryId" binding:"required"`
	ImageURL    string  `json:"imageUrl" form:"imageUrl" binding:"omitempty,url"`
	Status      string  `json:"status" form:"status" binding:"required,oneof=active inactive"`
}

// Payload implements resource.Form.
func (r *ProductRequest) Payload() any { return r }
