package auth

import "github.com/gin-gonic/gin"

// AuthModule implements the app.Module interface for operator sign-in.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers the sign-in routes. Both groups must be public;
// pages must be CSRF protected.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	if api != nil {
		api.POST("/auth/login", m.handler.Token)
	}
	if pages != nil {
		pages.GET("/login", m.handler.LoginPage)
		pages.POST("/login", m.handler.LoginSubmit)
		pages.POST("/logout", m.handler.Logout)
	}
}
