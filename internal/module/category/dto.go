package category

// CategoryRequest is the add/edit form of a category. ParentID is empty for
// top-level categories.
type CategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" form:"description" binding:"max=1000"`
	ParentID    string `json:"parentId,omitempty" form:"parentId"`
}

// Payload implements resource.Form.
func (r *CategoryRequest) Payload() any { return r }
