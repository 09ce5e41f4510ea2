package resource

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

// API handlers answer with pkg.Response. Toasts are discarded; failures
// carry the backend status (502 when the backend was unreachable).

// List handles GET /api/v1/{name} and returns the slice state after the
// fetch.
func (m *Module[T]) List(c *gin.Context) {
	d := m.Dispatcher(c, notify.Discard)
	if _, _, err := d.FetchList(c.Request.Context(), m.pageRequest(c)); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, d.Slice.Snapshot())
}

// Get handles GET /api/v1/{name}/:id.
func (m *Module[T]) Get(c *gin.Context) {
	rec, err := m.Dispatcher(c, notify.Discard).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, rec)
}

// Create handles POST /api/v1/{name}.
func (m *Module[T]) Create(c *gin.Context) {
	form := m.def.NewForm()
	if !pkg.BindAndValidate(c, form) {
		return
	}

	rec, err := m.Dispatcher(c, notify.Discard).Create(c.Request.Context(), form.Payload())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    rec,
	})
}

// Update handles PATCH /api/v1/{name}/:id.
func (m *Module[T]) Update(c *gin.Context) {
	form := m.def.NewForm()
	if !pkg.BindAndValidate(c, form) {
		return
	}

	rec, err := m.Dispatcher(c, notify.Discard).Update(c.Request.Context(), c.Param("id"), form.Payload())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, rec)
}

// Delete handles DELETE /api/v1/{name}/:id.
func (m *Module[T]) Delete(c *gin.Context) {
	d := m.Dispatcher(c, notify.Discard)
	id := c.Param("id")
	if err := d.Delete(c.Request.Context(), id, d.KeyOf(id)); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}
