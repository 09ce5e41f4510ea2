package review

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/module/resource"
	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/internal/view"
)

// Moderate handles PATCH /api/v1/reviews/:id/status.
func (m *Module) Moderate(c *gin.Context) {
	var req ModerationRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	rec, err := m.Dispatcher(c, notify.Discard).Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, rec)
}

// ModeratePage approves or hides a review from the list and answers with
// the reloaded table, so a status-filtered queue drops the review.
// PATCH /reviews/:id/status
func (m *Module) ModeratePage(c *gin.Context) {
	s := session.From(c)
	ctx := c.Request.Context()
	base := m.Meta().Base

	var req ModerationRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.DebugContext(ctx, "moderation rejected", slog.Any("error", err))
		s.Toasts.Notify(notify.Toast{Type: notify.TypeError, Message: "Unknown review status"})
		view.Error(c, http.StatusBadRequest)
		return
	}

	d := m.Dispatcher(c, s.Toasts)
	if _, err := d.Update(ctx, c.Param("id"), req); err != nil {
		if !resource.SessionExpired(c, err) {
			view.Failed(c, base)
		}
		return
	}

	if !pkg.IsHTMX(c) {
		c.Redirect(http.StatusSeeOther, base)
		return
	}
	q := m.LastQuery(c)
	if _, _, err := d.FetchList(ctx, q); resource.SessionExpired(c, err) {
		return
	}
	m.RenderList(c, q, "")
}
