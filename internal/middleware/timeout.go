package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/shopadmin/internal/pkg"
)

// Timeout bounds each request by d. Handlers see the deadline on the request
// context, so backend calls made with it fail once it passes; a handler
// still running then is answered with 408 in the pkg.Response envelope.
// A non-positive d disables the bound.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return ginx.NewChain().
		WithErrorFormat(func(status int, message string) any {
			return pkg.Response{Code: status, Message: message}
		}).
		Use(ginx.Timeout(ginx.WithTimeout(d))).
		Build()
}
