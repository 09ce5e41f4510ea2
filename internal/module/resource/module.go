package resource

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/internal/store"
	"github.com/simp-lee/shopadmin/internal/view"
)

// Deps are the collaborators shared by every resource module.
type Deps struct {
	Client   *api.Client
	Runner   *action.Runner
	PageSize int
}

// Meta is the resource description handed to templates.
type Meta struct {
	Name      string
	Title     string
	Singular  string
	Base      string
	Columns   []string
	Filters   []Filter
	Fields    []Field
	CanCreate bool
	CanDelete bool
}

// Module serves one resource.
type Module[T any] struct {
	def      Definition[T]
	meta     Meta
	binding  *api.Binding[T]
	runner   *action.Runner
	pageSize int
}

// New creates a Module. It panics when def is incomplete or a dependency is
// missing.
func New[T any](def Definition[T], deps Deps) *Module[T] {
	if err := def.validate(); err != nil {
		panic("resource.New: " + err.Error())
	}
	if deps.Client == nil {
		panic("resource.New: client must not be nil")
	}
	if deps.Runner == nil {
		panic("resource.New: runner must not be nil")
	}
	if deps.PageSize <= 0 {
		deps.PageSize = pkg.DefaultPageSize
	}
	return &Module[T]{
		def: def,
		meta: Meta{
			Name:      def.Name,
			Title:     def.Title,
			Singular:  def.Singular,
			Base:      "/" + def.Name,
			Columns:   def.labels(),
			Filters:   def.Filters,
			Fields:    def.Fields,
			CanCreate: !def.NoCreate,
			CanDelete: !def.NoDelete,
		},
		binding:  api.NewBinding[T](deps.Client, def.Endpoint),
		runner:   deps.Runner,
		pageSize: deps.PageSize,
	}
}

// Meta returns the template description of the resource.
func (m *Module[T]) Meta() Meta { return m.meta }

// NavItem returns the navigation entry of the resource.
func (m *Module[T]) NavItem() view.NavItem {
	return view.NavItem{Title: m.def.Title, Path: m.meta.Base}
}

// RegisterRoutes registers the JSON API under api and the console pages
// under pages. Both groups must require a credential.
func (m *Module[T]) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	base := m.meta.Base

	api.GET(base, m.List)
	api.GET(base+"/:id", m.Get)
	api.PATCH(base+"/:id", m.Update)
	if m.meta.CanCreate {
		api.POST(base, m.Create)
	}
	if m.meta.CanDelete {
		api.DELETE(base+"/:id", m.Delete)
	}

	pages.GET(base, m.ListPage)
	pages.GET(base+"/:id", m.ViewPage)
	pages.GET(base+"/:id/edit", m.EditPage)
	pages.PATCH(base+"/:id", m.UpdatePage)
	// Plain form posts cannot send PATCH or DELETE.
	pages.POST(base+"/:id", m.UpdatePage)
	if m.meta.CanCreate {
		pages.GET(base+"/new", m.NewPage)
		pages.POST(base, m.CreatePage)
	}
	if m.meta.CanDelete {
		pages.GET(base+"/:id/delete", m.ConfirmPage)
		pages.DELETE(base+"/:id", m.DeletePage)
		pages.POST(base+"/:id/delete", m.DeletePage)
	}
}

// Dispatcher binds the request's session slice to the backend. Toasts go
// to n.
func (m *Module[T]) Dispatcher(c *gin.Context, n notify.Notifier) action.Dispatcher[T] {
	s := session.From(c)
	return action.Dispatcher[T]{
		Runner:  m.runner,
		Binding: m.binding,
		Slice:   store.For(s.Slices, m.def.Name, m.def.Key),
		IDOf:    m.def.IDOf,
		Base: action.Spec{
			Resource: m.def.Singular,
			Name:     m.def.Name,
			Operator: s.Operator(),
		},
		Notifier: n,
	}
}

func (m *Module[T]) pageRequest(c *gin.Context) domain.PageRequest {
	req := pkg.ParsePageRequest(c, m.pageSize)
	req.Filter = pkg.AllowedFilters(req, m.def.filterNames())
	return req
}

// SessionExpired handles a backend 401 on a page request. The session
// credential is dropped and the operator sent to the login page. It reports
// whether the response was written.
func SessionExpired(c *gin.Context, err error) bool {
	if api.StatusOf(err) != http.StatusUnauthorized {
		return false
	}
	if s := session.From(c); s != nil {
		s.SignOut()
	}
	if pkg.IsHTMX(c) {
		view.Flush(c)
		c.Header(pkg.HeaderHXRedirect, session.LoginPath)
		c.Status(http.StatusUnauthorized)
		return true
	}
	c.Redirect(http.StatusFound, session.LoginPath)
	return true
}
