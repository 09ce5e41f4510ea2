package activity

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/view"
)

// ListPage renders the log; htmx requests get only the table.
// GET /activity
func (m *Module) ListPage(c *gin.Context) {
	req := m.pageRequest(c)
	page, err := m.journal.List(c.Request.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list activity failed", slog.Any("error", err))
		status, _ := pkg.ErrorStatus(err)
		view.Error(c, status)
		return
	}

	name := "activity/list.html"
	if pkg.IsHTMX(c) {
		name = "activity/table.html"
	}
	view.Render(c, http.StatusOK, name, gin.H{
		"Title":      "Activity",
		"Items":      page.Items,
		"Filter":     req.Filter,
		"Resources":  resources(),
		"Verbs":      verbs,
		"Outcomes":   outcomes,
		"Pagination": view.NewPagination(c.Request.Context(), Base, req, *page),
	})
}
