// Package pages holds the page containers of the console. Each container
// reads the request session, asks the cached banking API for its data, owns
// the page and sort state of its tables and renders the result.
package pages

import (
	"net/http"
	"net/url"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/session"
)

// Parsed template names. Each one also names its localization bundle.
const (
	ViewHome                 = "home"
	ViewLogin                = "login"
	ViewAdminDashboard       = "admin_dashboard"
	ViewMerchants            = "merchants"
	ViewMerchantDetails      = "merchant_details"
	ViewTransactions         = "transactions"
	ViewCoreUsers            = "core_users"
	ViewCoreUserEdit         = "core_user_edit"
	ViewMerchantUserEdit     = "merchant_user_edit"
	ViewMerchantDashboard    = "merchant_dashboard"
	ViewMerchantTransactions = "merchant_transactions"
	ViewMerchantUsers        = "merchant_users"
)

// Views lists every page template.
var Views = []string{
	ViewHome,
	ViewLogin,
	ViewAdminDashboard,
	ViewMerchants,
	ViewMerchantDetails,
	ViewTransactions,
	ViewCoreUsers,
	ViewCoreUserEdit,
	ViewMerchantUserEdit,
	ViewMerchantDashboard,
	ViewMerchantTransactions,
	ViewMerchantUsers,
}

// Chrome is what the layout needs to draw the navigation.
type Chrome struct {
	Username string
	Kind     core.UserKind
	Path     string
}

func chrome(ctx *bankconsole.Context) Chrome {
	s := session.Get(ctx)
	return Chrome{
		Username: session.Username(s),
		Kind:     s.Kind(),
		Path:     ctx.Req.URL.Path,
	}
}

func (c Chrome) IsCore() bool     { return c.Kind == core.KindCore }
func (c Chrome) IsMerchant() bool { return c.Kind == core.KindMerchant }

// Panel is a block of a page fetched on its own. A failed panel shows its
// error without hiding the others.
type Panel struct {
	Value   string
	Error   string
	Loading bool
}

func caller(ctx *bankconsole.Context, api *bank.API) bank.Caller {
	return api.For(session.GetID(ctx), session.Get(ctx))
}

// unauthorized ends the session when any of errs is a rejected token.
func unauthorized(sessions *session.Manager, ctx *bankconsole.Context, errs ...error) bool {
	for _, err := range errs {
		if err != nil && session.HandleUnauthorized(sessions, ctx, err) {
			return true
		}
	}
	return false
}

// failureStatus is the status answered when a form submit failed at the
// banking API. Client errors are passed through, the rest is a bad gateway.
func failureStatus(err error) int {
	f, ok := core.AsFailure(err)
	if ok && f.Kind == core.FailureHTTP && f.Code >= 400 && f.Code < 500 {
		return f.Code
	}
	return http.StatusBadGateway
}

// localPath keeps the path of a same site URL, "/" for anything else.
func localPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path[0] != '/' {
		return "/"
	}
	if len(u.Path) > 1 && u.Path[1] == '/' {
		return "/"
	}
	return u.Path
}

// Register adds every page route to r. The API, session manager and clock
// are resolved through the injector of r.
func Register(r *bankconsole.Router, sessions *session.Manager) {
	public := session.PublicOnly(sessions)
	coreOnly := session.RequireCore(sessions)
	merchantOnly := session.RequireMerchant(sessions)

	r.Get("/", homeHandler, public)
	r.Get("/core", showLogin(core.KindCore), public)
	r.Post("/core", loginHandler(core.KindCore), public)
	r.Get("/merchant", showLogin(core.KindMerchant), public)
	r.Post("/merchant", loginHandler(core.KindMerchant), public)
	r.Post("/logout", logoutHandler, session.Load(sessions))
	r.Get("/language/:lang", languageHandler)

	r.Get("/admin/dashboard", adminDashboardHandler, coreOnly)
	r.Get("/admin/merchants", merchantsHandler, coreOnly)
	r.Post("/admin/merchants", createMerchantHandler, coreOnly)
	r.Get("/admin/merchants/:id", merchantDetailsHandler, coreOnly)
	r.Post("/admin/merchants/:id/users", createMerchantUserHandler(adminUsersScope), coreOnly)
	r.Get("/admin/merchants/:id/users/:userId/edit", editMerchantUserHandler(adminUsersScope), coreOnly)
	r.Post("/admin/merchants/:id/users/:userId", updateMerchantUserHandler(adminUsersScope), coreOnly)
	r.Post("/admin/merchants/:id/users/:userId/delete", deleteMerchantUserHandler(adminUsersScope), coreOnly)
	r.Get("/admin/transactions", systemTransactionsHandler, coreOnly)
	r.Get("/admin/core-users", coreUsersHandler, coreOnly)
	r.Post("/admin/core-users", createCoreUserHandler, coreOnly)
	r.Get("/admin/core-users/:id/edit", editCoreUserHandler, coreOnly)
	r.Post("/admin/core-users/:id", updateCoreUserHandler, coreOnly)
	r.Post("/admin/core-users/:id/delete", deleteCoreUserHandler, coreOnly)

	r.Get("/merchant/dashboard", merchantDashboardHandler, merchantOnly)
	r.Get("/merchant/transactions", merchantTransactionsHandler, merchantOnly)
	r.Post("/merchant/transactions", createTransactionHandler, merchantOnly)
	r.Get("/merchant/users", merchantUsersHandler, merchantOnly)
	r.Post("/merchant/users", createMerchantUserHandler(ownUsersScope), merchantOnly)
	r.Get("/merchant/users/:userId/edit", editMerchantUserHandler(ownUsersScope), merchantOnly)
	r.Post("/merchant/users/:userId", updateMerchantUserHandler(ownUsersScope), merchantOnly)
	r.Post("/merchant/users/:userId/delete", deleteMerchantUserHandler(ownUsersScope), merchantOnly)
}
