package review

// Review statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusHidden   = "hidden"
)

var statuses = []string{StatusPending, StatusApproved, StatusHidden}

// ReviewRequest is the edit form of a review. Only the moderation status
// is editable.
type ReviewRequest struct {
	Status string `json:"status" form:"status" binding:"required,oneof=pending approved hidden"`
}

// Payload implements resource.Form.
func (r *ReviewRequest) Payload() any { return r }

// ModerationRequest approves or hides a review from the list actions.
type ModerationRequest struct {
	Status string `json:"status" form:"status" binding:"required,oneof=approved hidden"`
}
