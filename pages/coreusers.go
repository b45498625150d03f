package pages

import (
	"net/http"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/pagination"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/session"
)

type coreUsersPage struct {
	Chrome
	Table      datatable.View
	Form       createUserForm
	RoleSelect renderer.ViewModel
	Feedback   string
}

func coreUsersHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return showCoreUsers(ctx, api, sessions, createUserForm{Role: string(core.RoleAdmin)}, okState)
	}
}

func showCoreUsers(ctx *bankconsole.Context, api *bank.API, sessions *session.Manager, form createUserForm, state formState) error {
	q := readTable(ctx, "/admin/core-users", "", pagination.Request{Size: pagination.DefaultPageSize})
	loc := ctx.GetLocalizer(ViewCoreUsers)
	res := caller(ctx, api).ListCoreUsers(ctx.Context(), q.Req)
	if unauthorized(sessions, ctx, res.Err) {
		return nil
	}
	table, err := newTable(q, loc, res, coreUserColumns(loc), coreUserID)
	if err != nil {
		return err
	}
	if q.Dispatch(table) {
		return ctx.Redirect(q.NextURL())
	}
	page := coreUsersPage{
		Chrome:     chrome(ctx),
		Table:      table.View(),
		Form:       form,
		RoleSelect: renderer.RoleSelectList(loc, "role", core.Role(form.Role), coreRoles),
		Feedback:   state.feedback,
	}
	if ctx.WantsJSON() {
		return ctx.JsonOk(page.Table)
	}
	return ctx.RenderWithErrors(state.status, ViewCoreUsers, page, state.errs)
}

func createCoreUserHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		var form createUserForm
		if err := ctx.ParseForm(&form); err != nil {
			return ctx.BadRequest("malformed user form")
		}
		if errs := form.validate(ctx.Validator(), coreRoles); !errs.Empty() {
			form.Password = ""
			return showCoreUsers(ctx, api, sessions, form, formState{status: http.StatusUnprocessableEntity, errs: errs})
		}
		created, err := caller(ctx, api).CreateCoreUser(ctx.Context(), form.coreRequest())
		if err != nil {
			if unauthorized(sessions, ctx, err) {
				return nil
			}
			ctx.Logger().Warn().Err(err).Msg("cannot create core user")
			form.Password = ""
			return showCoreUsers(ctx, api, sessions, form, formState{status: failureStatus(err), feedback: core.Feedback(err)})
		}
		ctx.Logger().Info().Str("user_id", created.UserID).Msg("core user created")
		return ctx.Redirect("/admin/core-users")
	}
}

type coreUserEditPage struct {
	Chrome
	User       bank.CoreUser
	Action     string
	Form       editUserForm
	RoleSelect renderer.ViewModel
	Feedback   string
}

func storedCoreUser(user bank.CoreUser) storedUser {
	return storedUser{
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Enabled:  user.Enabled == nil || *user.Enabled,
	}
}

func renderCoreUserEdit(ctx *bankconsole.Context, user bank.CoreUser, form editUserForm, state formState) error {
	loc := ctx.GetLocalizer(ViewCoreUserEdit)
	page := coreUserEditPage{
		Chrome:     chrome(ctx),
		User:       user,
		Action:     "/admin/core-users/" + user.UserID,
		Form:       form,
		RoleSelect: renderer.RoleSelectList(loc, "role", core.Role(form.Role), coreRoles),
		Feedback:   state.feedback,
	}
	return ctx.RenderWithErrors(state.status, ViewCoreUserEdit, page, state.errs)
}

// loadCoreUser reads the user named in the URL. It answers the request
// itself when it returns false.
func loadCoreUser(ctx *bankconsole.Context, c bank.Caller, sessions *session.Manager) (bank.CoreUser, bool, error) {
	res := c.GetCoreUser(ctx.Context(), ctx.GetURLParam("id"))
	if res.HasData {
		return res.Data, true, nil
	}
	if unauthorized(sessions, ctx, res.Err) {
		return bank.CoreUser{}, false, nil
	}
	status := http.StatusBadGateway
	if res.Err != nil {
		status = failureStatus(res.Err)
	}
	return bank.CoreUser{}, false, ctx.String(status, core.Describe(res.Err, "core user"))
}

func editCoreUserHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		user, ok, err := loadCoreUser(ctx, caller(ctx, api), sessions)
		if !ok {
			return err
		}
		stored := storedCoreUser(user)
		form := editUserForm{
			Email:    stored.Email,
			FullName: stored.FullName,
			Role:     string(stored.Role),
			Enabled:  stored.Enabled,
		}
		return renderCoreUserEdit(ctx, user, form, okState)
	}
}

func updateCoreUserHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		c := caller(ctx, api)
		user, ok, err := loadCoreUser(ctx, c, sessions)
		if !ok {
			return err
		}
		var form editUserForm
		if err := ctx.ParseForm(&form); err != nil {
			return ctx.BadRequest("malformed user form")
		}
		changes := form.diff(storedCoreUser(user))
		form.Password = ""
		if errs := changes.validate(coreRoles); !errs.Empty() {
			return renderCoreUserEdit(ctx, user, form, formState{status: http.StatusUnprocessableEntity, errs: errs})
		}
		if _, err := c.UpdateCoreUser(ctx.Context(), user.UserID, changes.coreRequest()); err != nil {
			if unauthorized(sessions, ctx, err) {
				return nil
			}
			ctx.Logger().Warn().Err(err).Str("user_id", user.UserID).Msg("cannot update core user")
			return renderCoreUserEdit(ctx, user, form, formState{status: failureStatus(err), feedback: core.Feedback(err)})
		}
		ctx.Logger().Info().Str("user_id", user.UserID).Msg("core user updated")
		return ctx.Redirect("/admin/core-users")
	}
}

func deleteCoreUserHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		id := ctx.GetURLParam("id")
		if err := caller(ctx, api).DeleteCoreUser(ctx.Context(), id); err != nil {
			if unauthorized(sessions, ctx, err) {
				return nil
			}
			ctx.Logger().Warn().Err(err).Str("user_id", id).Msg("cannot delete core user")
			return showCoreUsers(ctx, api, sessions, createUserForm{Role: string(core.RoleAdmin)}, formState{
				status:   failureStatus(err),
				feedback: core.Feedback(err),
			})
		}
		ctx.Logger().Info().Str("user_id", id).Msg("core user deleted")
		return ctx.Redirect("/admin/core-users")
	}
}
