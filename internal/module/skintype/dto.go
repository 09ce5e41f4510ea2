package skintype

// SkinTypeRequest is the add/edit form of a skin type.
type SkinTypeRequest struct {
	Description string `json:"description" form:"description" binding:"required,max=100"`
}

// Payload implements resource.Form.
func (r *SkinTypeRequest) Payload() any { return r }
