package app

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/journal"
	"github.com/simp-lee/shopadmin/internal/module/activity"
	"github.com/simp-lee/shopadmin/internal/module/auth"
	"github.com/simp-lee/shopadmin/internal/module/brand"
	"github.com/simp-lee/shopadmin/internal/module/category"
	"github.com/simp-lee/shopadmin/internal/module/order"
	"github.com/simp-lee/shopadmin/internal/module/product"
	"github.com/simp-lee/shopadmin/internal/module/resource"
	"github.com/simp-lee/shopadmin/internal/module/review"
	"github.com/simp-lee/shopadmin/internal/module/skintype"
	"github.com/simp-lee/shopadmin/internal/module/voucher"
	"github.com/simp-lee/shopadmin/internal/session"
	"github.com/simp-lee/shopadmin/internal/view"
)

// Module defines the contract for a self-registering business module.
// Each module registers its own API and page routes.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup)
}

// Navigable is a module listed in the navigation and on the home page.
type Navigable interface {
	NavItem() view.NavItem
}

type moduleDeps struct {
	client    *api.Client
	runner    *action.Runner
	sessions  *session.Manager
	journal   journal.Reader
	pageSize  int
	loginPath string
}

// buildModules creates the public sign-in module and the modules that
// require a credential, in navigation order.
func buildModules(d moduleDeps) (public []Module, modules []Module) {
	authHandler := auth.NewHandler(auth.NewService(d.client, d.loginPath), d.sessions)
	public = []Module{auth.NewModule(authHandler)}

	deps := resource.Deps{Client: d.client, Runner: d.runner, PageSize: d.pageSize}
	modules = []Module{
		product.NewModule(deps),
		order.NewModule(deps),
		brand.NewModule(deps),
		category.NewModule(deps),
		voucher.NewModule(deps),
		review.NewModule(deps),
		skintype.NewModule(deps),
		activity.NewModule(d.journal, d.pageSize),
	}
	return public, modules
}

// navItems collects the navigation entries of modules.
func navItems(modules []Module) []view.NavItem {
	var items []view.NavItem
	for _, m := range modules {
		if n, ok := m.(Navigable); ok {
			items = append(items, n.NavItem())
		}
	}
	return items
}
