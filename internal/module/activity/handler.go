package activity

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

// List handles GET /api/v1/activity.
func (m *Module) List(c *gin.Context) {
	page, err := m.journal.List(c.Request.Context(), m.pageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Get handles GET /api/v1/activity/:id.
func (m *Module) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "invalid activity id", err))
		return
	}
	a, err := m.journal.Get(c.Request.Context(), uint(id))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, a)
}
