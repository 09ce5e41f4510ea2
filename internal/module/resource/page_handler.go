package resource

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/internal/view"
)

// Modal modes. A list page without a modal is the closed state.
const (
	ModeAdd     = "add"
	ModeEdit    = "edit"
	ModeView    = "view"
	ModeConfirm = "confirm"
)

const (
	invalidFormMessage = "Please correct the highlighted fields"
	badFormMessage     = "The form could not be read"
)

// ListPage renders the list. Every render fetches the requested page,
// except a search from the text filter: q narrows the page already fetched
// in memory, so it renders from the slice without asking the backend.
// GET /{name}
func (m *Module[T]) ListPage(c *gin.Context) {
	s := session.From(c)
	req := m.pageRequest(c)
	if m.searchOnly(c, s, req) {
		m.RenderList(c, req, c.Query("q"))
		return
	}

	_, stale, err := m.Dispatcher(c, s.Toasts).FetchList(c.Request.Context(), req)
	if SessionExpired(c, err) {
		return
	}
	if !stale {
		s.SetLastQuery(m.def.Name, req)
	}
	m.RenderList(c, req, c.Query("q"))
}

// searchOnly reports whether an htmx request carries q for exactly the page
// request last shown to this session.
func (m *Module[T]) searchOnly(c *gin.Context, s *session.Session, req domain.PageRequest) bool {
	if !pkg.IsHTMX(c) || !c.Request.URL.Query().Has("q") {
		return false
	}
	last, ok := s.LastQuery(m.def.Name)
	return ok && last.Equal(req)
}

// RenderList renders the current slice state: the whole page, or only the
// table for htmx requests.
func (m *Module[T]) RenderList(c *gin.Context, req domain.PageRequest, q string) {
	state := m.Dispatcher(c, nil).Slice.Snapshot()
	q = strings.TrimSpace(q)

	p := view.NewPagination(c.Request.Context(), m.meta.Base, req, domain.Page[T]{
		Items:      state.Items,
		PageNumber: state.PageNumber,
		PageSize:   state.PageSize,
		TotalCount: state.TotalCount,
		TotalPages: state.TotalPages,
	})
	if q != "" {
		p.Query.Set("q", q)
	}

	name := "resource/list.html"
	if pkg.IsHTMX(c) {
		name = "resource/table.html"
	}
	view.Render(c, http.StatusOK, name, gin.H{
		"Title":      m.def.Title,
		"Resource":   m.meta,
		"Rows":       m.def.rows(m.def.search(state.Items, q)),
		"State":      state,
		"Query":      q,
		"Filter":     req.Filter,
		"Search":     searchValues(req),
		"Pagination": p,
	})
}

// searchValues are the page parameters the text filter sends along with q,
// so a search stays on the page being viewed.
func searchValues(req domain.PageRequest) map[string]string {
	v := map[string]string{
		"page":      strconv.Itoa(max(req.Page, 1)),
		"page_size": strconv.Itoa(req.PageSize),
	}
	if req.Sort != "" {
		v["sort"] = req.Sort
	}
	return v
}

// NewPage renders the add modal.
// GET /{name}/new
func (m *Module[T]) NewPage(c *gin.Context) {
	m.renderForm(c, http.StatusOK, formState{mode: ModeAdd, values: map[string]string{}})
}

// ViewPage renders the read-only modal.
// GET /{name}/:id
func (m *Module[T]) ViewPage(c *gin.Context) {
	rec, ok := m.fetch(c)
	if !ok {
		return
	}
	view.Render(c, http.StatusOK, "resource/view.html", gin.H{
		"Title":    m.def.Singular,
		"Resource": m.meta,
		"Mode":     ModeView,
		"ID":       m.def.IDOf(*rec),
		"Details":  m.def.details(*rec),
	})
}

// EditPage renders the edit modal filled with the current record.
// GET /{name}/:id/edit
func (m *Module[T]) EditPage(c *gin.Context) {
	rec, ok := m.fetch(c)
	if !ok {
		return
	}
	m.renderForm(c, http.StatusOK, formState{
		mode:   ModeEdit,
		id:     m.def.IDOf(*rec),
		values: m.def.Values(*rec),
	})
}

// ConfirmPage renders the delete confirmation modal.
// GET /{name}/:id/delete
func (m *Module[T]) ConfirmPage(c *gin.Context) {
	view.Render(c, http.StatusOK, "resource/confirm.html", gin.H{
		"Title":    "Delete " + strings.ToLower(m.def.Singular),
		"Resource": m.meta,
		"Mode":     ModeConfirm,
		"ID":       c.Param("id"),
	})
}

// CreatePage handles the add form.
// POST /{name}
func (m *Module[T]) CreatePage(c *gin.Context) {
	form := m.def.NewForm()
	if err := c.ShouldBind(form); err != nil {
		m.renderInvalid(c, formState{mode: ModeAdd}, form, err)
		return
	}

	_, err := m.Dispatcher(c, session.From(c).Toasts).Create(c.Request.Context(), form.Payload())
	if err != nil {
		m.renderFailed(c, formState{mode: ModeAdd}, err)
		return
	}
	view.Done(c, m.meta.Base)
}

// UpdatePage handles the edit form.
// PATCH /{name}/:id
func (m *Module[T]) UpdatePage(c *gin.Context) {
	st := formState{mode: ModeEdit, id: c.Param("id")}
	form := m.def.NewForm()
	if err := c.ShouldBind(form); err != nil {
		m.renderInvalid(c, st, form, err)
		return
	}

	_, err := m.Dispatcher(c, session.From(c).Toasts).Update(c.Request.Context(), st.id, form.Payload())
	if err != nil {
		m.renderFailed(c, st, err)
		return
	}
	view.Done(c, m.meta.Base)
}

// DeletePage deletes the record, then reloads the last rendered page so
// counts stay in sync, and answers with the refreshed table.
// DELETE /{name}/:id
func (m *Module[T]) DeletePage(c *gin.Context) {
	s := session.From(c)
	ctx := c.Request.Context()
	id := c.Param("id")
	d := m.Dispatcher(c, s.Toasts)

	if err := d.Delete(ctx, id, d.KeyOf(id)); err != nil {
		if !SessionExpired(c, err) {
			view.Failed(c, m.meta.Base)
		}
		return
	}

	req := m.LastQuery(c)
	page, _, err := d.FetchList(ctx, req)
	if SessionExpired(c, err) {
		return
	}
	// The last record of the last page is gone; step back one page.
	if err == nil && len(page.Items) == 0 && req.Page > 1 && page.TotalPages < req.Page {
		req.Page = max(page.TotalPages, 1)
		if _, _, err = d.FetchList(ctx, req); SessionExpired(c, err) {
			return
		}
	}
	s.SetLastQuery(m.def.Name, req)

	if !pkg.IsHTMX(c) {
		c.Redirect(http.StatusSeeOther, m.meta.Base)
		return
	}
	m.RenderList(c, req, "")
}

// LastQuery returns the page request of the last list the session rendered
// for this resource, or the first page.
func (m *Module[T]) LastQuery(c *gin.Context) domain.PageRequest {
	if req, ok := session.From(c).LastQuery(m.def.Name); ok {
		return req
	}
	return domain.PageRequest{Page: 1, PageSize: m.pageSize}
}

// fetch loads the record named by the id path parameter. On failure the
// response is written and ok is false.
func (m *Module[T]) fetch(c *gin.Context) (*T, bool) {
	rec, err := m.Dispatcher(c, session.From(c).Toasts).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !SessionExpired(c, err) {
			status, _ := pkg.ErrorStatus(err)
			view.Error(c, status)
		}
		return nil, false
	}
	return rec, true
}

type formState struct {
	mode    string
	id      string
	values  map[string]string
	errors  map[string]string
	message string
}

func (m *Module[T]) renderForm(c *gin.Context, status int, st formState) {
	target, title := m.meta.Base, "New "+strings.ToLower(m.def.Singular)
	if st.mode == ModeEdit {
		target, title = m.meta.Base+"/"+st.id, "Edit "+strings.ToLower(m.def.Singular)
	}
	view.Render(c, status, "resource/form.html", gin.H{
		"Title":    title,
		"Resource": m.meta,
		"Mode":     st.mode,
		"ID":       st.id,
		"Action":   target,
		"Values":   st.values,
		"Errors":   st.errors,
		"Error":    st.message,
	})
}

// renderInvalid re-renders the form with field errors without calling the
// backend.
func (m *Module[T]) renderInvalid(c *gin.Context, st formState, form Form, err error) {
	slog.DebugContext(c.Request.Context(), "form rejected",
		slog.String("resource", m.def.Name),
		slog.String("mode", st.mode),
		slog.Any("error", err),
	)
	fields, ok := pkg.FieldErrors(err, form)
	st.message = invalidFormMessage
	if !ok {
		st.message = badFormMessage
	}
	st.errors = fields
	st.values = postedValues(c)
	m.renderForm(c, http.StatusUnprocessableEntity, st)
}

// renderFailed keeps the modal open after a backend failure: the form is
// re-rendered with what the operator typed and the action's message.
func (m *Module[T]) renderFailed(c *gin.Context, st formState, err error) {
	if SessionExpired(c, err) {
		return
	}
	st.values = postedValues(c)
	st.message = "Request failed"
	var ae *action.Error
	if errors.As(err, &ae) {
		st.message = ae.PublicMessage()
	}
	m.renderForm(c, http.StatusOK, st)
}

// postedValues returns the submitted form values, first value per key.
func postedValues(c *gin.Context) map[string]string {
	values := make(map[string]string)
	if err := c.Request.ParseForm(); err != nil {
		return values
	}
	for k, v := range c.Request.PostForm {
		if k == "_csrf" || len(v) == 0 {
			continue
		}
		values[k] = v[0]
	}
	return values
}
