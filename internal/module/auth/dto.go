package auth

// LoginRequest is the operator sign-in form. Next is the page to return to
// after sign-in.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=128"`
	Next     string `json:"-" form:"next"`
}

// TokenResponse is the backend credential handed to API clients.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}
