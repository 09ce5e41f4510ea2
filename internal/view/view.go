// Package view renders console pages with the data every layout needs:
// CSRF token, signed-in operator, navigation and pending toasts.
package view

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/middleware"
	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
)

const navContextKey = "view.nav"

// NavItem is one entry of the side navigation.
type NavItem struct {
	Title string
	Path  string
}

// Nav stores the navigation entries for Render.
func Nav(items []NavItem) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(navContextKey, items)
		c.Next()
	}
}

func navFrom(c *gin.Context) []NavItem {
	if v, ok := c.Get(navContextKey); ok {
		if items, ok := v.([]NavItem); ok {
			return items
		}
	}
	return nil
}

// Render executes the page template name. .Partial is set for htmx requests,
// which expect a fragment. Full pages receive the session's pending toasts
// in .Toasts; htmx fragments get the latest one through HX-Trigger instead.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CSRFToken"] = middleware.GetCSRFToken(c)
	data["Nav"] = navFrom(c)
	data["Path"] = c.Request.URL.Path
	data["Partial"] = pkg.IsHTMX(c)

	s := session.From(c)
	if s != nil {
		data["Operator"] = s.Operator()
	}
	var toasts []notify.Toast
	switch {
	case pkg.IsHTMX(c):
		Flush(c)
	case s != nil:
		toasts = s.Toasts.Drain()
	}
	data["Toasts"] = toasts
	c.HTML(status, name, data)
}

// Flush delivers the latest pending toast of an htmx request through
// HX-Trigger and drops the rest. Other requests keep their toasts for the
// next full page.
func Flush(c *gin.Context) {
	if !pkg.IsHTMX(c) {
		return
	}
	s := session.From(c)
	if s == nil {
		return
	}
	if toasts := s.Toasts.Drain(); len(toasts) > 0 {
		pkg.TriggerToast(c, toasts[len(toasts)-1])
	}
}

// Done answers a successful mutation: the toast plus a redirect to target.
func Done(c *gin.Context, target string) {
	Flush(c)
	pkg.Redirect(c, target)
}

// Failed answers an htmx mutation that left nothing to swap: the toast and
// HX-Reswap none. Other requests are redirected to fallback, where the toast
// is shown on the next page.
func Failed(c *gin.Context, fallback string) {
	if !pkg.IsHTMX(c) {
		c.Redirect(http.StatusSeeOther, fallback)
		return
	}
	Flush(c)
	pkg.NoSwap(c)
}

// errorTemplates maps HTTP status codes to their error pages.
var errorTemplates = map[int]string{
	http.StatusBadRequest: "errors/400.html",
	http.StatusNotFound:   "errors/404.html",
}

// Error renders the error page for status. htmx requests get the toast and
// no swap, so an open modal stays as it is.
func Error(c *gin.Context, status int) {
	if pkg.IsHTMX(c) {
		Flush(c)
		c.Header(pkg.HeaderHXReswap, "none")
		c.Status(status)
		return
	}
	name, ok := errorTemplates[status]
	if !ok {
		name = "errors/500.html"
	}
	Render(c, status, name, gin.H{"Status": status})
}
