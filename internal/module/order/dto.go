package order

// Order statuses accepted by the backend.
var statuses = []string{"pending", "confirmed", "shipping", "delivered", "cancelled"}

// StatusRequest changes the status of an order. Orders are created by
// customers, so this is the only edit the console offers.
type StatusRequest struct {
	Status string `json:"status" form:"status" binding:"required,oneof=pending confirmed shipping delivered cancelled"`
}

// Payload implements resource.Form.
func (r *StatusRequest) Payload() any { return r }
