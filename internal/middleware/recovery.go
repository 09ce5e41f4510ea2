package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

const panicMessage = "internal server error"

// Recovery turns a panic into a 500 and logs it with its stack.
//
// htmx requests get an error toast and no swap. Requests accepting HTML get
// the errors/500.html page (plain text if rendering fails). Everything else
// gets the JSON envelope {"code":500,"message":"internal server error","data":null}.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.ErrorContext(c.Request.Context(), "panic recovered",
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)

			c.Abort()
			switch {
			case pkg.IsHTMX(c):
				pkg.TriggerToast(c, notify.Toast{Type: notify.TypeError, Message: "Something went wrong"})
				c.Header(pkg.HeaderHXReswap, "none")
				c.Status(http.StatusInternalServerError)
			case acceptsHTML(c):
				renderPanicPage(c)
			default:
				c.JSON(http.StatusInternalServerError, pkg.Response{
					Code:    http.StatusInternalServerError,
					Message: panicMessage,
				})
			}
		}()
		c.Next()
	}
}

// renderPanicPage falls back to plain text when no HTML renderer is
// configured or the template fails.
func renderPanicPage(c *gin.Context) {
	defer func() {
		if recover() != nil {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
		}
	}()
	c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}
