// Package activity serves the audit trail of console mutations.
package activity

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/journal"
	"github.com/simp-lee/shopadmin/internal/pkg"
	"github.com/simp-lee/shopadmin/internal/view"
)

// Base is the page path of the activity log.
const Base = "/activity"

// allowedFilters are the query filters forwarded to the journal.
var allowedFilters = []string{"resource", "verb", "outcome", "operator", "message__like"}

var (
	verbs    = []string{"create", "update", "delete", "prune"}
	outcomes = []string{domain.OutcomeSuccess, domain.OutcomeFailure}
)

// Module implements the app.Module interface for the activity log.
type Module struct {
	journal  journal.Reader
	pageSize int
}

// NewModule creates the activity module. A nil reader serves an empty log.
func NewModule(r journal.Reader, pageSize int) *Module {
	if r == nil {
		r = journal.Nop{}
	}
	if pageSize <= 0 {
		pageSize = pkg.DefaultPageSize
	}
	return &Module{journal: r, pageSize: pageSize}
}

// NavItem returns the navigation entry of the log.
func (m *Module) NavItem() view.NavItem {
	return view.NavItem{Title: "Activity", Path: Base}
}

// RegisterRoutes registers the read-only log routes. Both groups must
// require a credential.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET(Base, m.List)
	api.GET(Base+"/:id", m.Get)
	pages.GET(Base, m.ListPage)
}

func (m *Module) pageRequest(c *gin.Context) domain.PageRequest {
	req := pkg.ParsePageRequest(c, m.pageSize)
	req.Filter = pkg.AllowedFilters(req, allowedFilters)
	return req
}

// resources lists the resource filter options: every catalog resource plus
// the log itself, which records pruning.
func resources() []string {
	return append(catalog.Names(), "activity")
}
