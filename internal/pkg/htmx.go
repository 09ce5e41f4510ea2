package pkg

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/notify"
)

// htmx request and response headers.
const (
	HeaderHXRequest  = "HX-Request"
	HeaderHXTrigger  = "HX-Trigger"
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXReswap   = "HX-Reswap"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader(HeaderHXRequest) == "true"
}

// TriggerToast sets the HX-Trigger header so the page shows t.
func TriggerToast(c *gin.Context, t notify.Toast) {
	trigger, err := json.Marshal(map[string]any{
		"showToast": map[string]string{
			"message": t.Message,
			"type":    t.Type,
		},
	})
	if err != nil {
		return
	}
	c.Header(HeaderHXTrigger, string(trigger))
}

// Redirect sends htmx requests to url through HX-Redirect and everything
// else through a 303.
func Redirect(c *gin.Context, url string) {
	if IsHTMX(c) {
		c.Header(HeaderHXRedirect, url)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// NoSwap tells htmx to leave the target untouched, used when only a toast is
// returned.
func NoSwap(c *gin.Context) {
	c.Header(HeaderHXReswap, "none")
	c.Status(http.StatusOK)
}
