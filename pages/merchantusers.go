package pages

import (
	"errors"
	"net/http"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/pagination"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/session"
)

// userLookupSize is the page read to find the user an edit form is for.
const userLookupSize = 100

var errUserNotFound = errors.New("merchant user not found")

// usersTarget is the merchant whose users a page lists.
type usersTarget struct {
	// Back is the page forms return to.
	Back string
	// Users is the collection path. Each user lives under it.
	Users      string
	MerchantID string
	CanManage  bool
}

func (t usersTarget) userPath(userID string) string {
	return t.Users + "/" + userID
}

func adminTarget(merchantID string) usersTarget {
	back := "/admin/merchants/" + merchantID
	return usersTarget{
		Back:       back,
		Users:      back + "/users",
		MerchantID: merchantID,
		CanManage:  true,
	}
}

// usersScope binds the merchant user handlers to the side of the console
// they serve: core staff act on any merchant, merchant admins on their own.
type usersScope struct {
	resolve func(ctx *bankconsole.Context, c bank.Caller) (usersTarget, error)
	show    func(ctx *bankconsole.Context, api *bank.API, sessions *session.Manager, form createUserForm, state formState) error
}

var adminUsersScope = usersScope{
	resolve: func(ctx *bankconsole.Context, _ bank.Caller) (usersTarget, error) {
		return adminTarget(ctx.GetURLParam("id")), nil
	},
	show: showMerchantDetails,
}

var ownUsersScope = usersScope{
	resolve: resolveOwnTarget,
	show:    showMerchantUsers,
}

func resolveOwnTarget(ctx *bankconsole.Context, c bank.Caller) (usersTarget, error) {
	profile := c.MyMerchantProfile(ctx.Context())
	if !profile.HasData {
		if profile.Err != nil {
			return usersTarget{}, profile.Err
		}
		return usersTarget{}, errors.New(profileError(ctx, profile))
	}
	return usersTarget{
		Back:       "/merchant/users",
		Users:      "/merchant/users",
		MerchantID: profile.Data.Merchant.MerchantID,
		CanManage:  profile.Data.User.Role == core.RoleMerchantAdmin,
	}, nil
}

type usersSection struct {
	Target     usersTarget
	Table      datatable.View
	Form       createUserForm
	RoleSelect renderer.ViewModel
	Feedback   string
}

func newUsersSection(loc localizer.Localizer, target usersTarget, table datatable.View, form createUserForm, state formState) usersSection {
	return usersSection{
		Target:     target,
		Table:      table,
		Form:       form,
		RoleSelect: renderer.RoleSelectList(loc, "role", core.Role(form.Role), merchantRoles),
		Feedback:   state.feedback,
	}
}

type merchantUsersPage struct {
	Chrome
	ProfileError string
	Users        usersSection
}

func merchantUsersHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return showMerchantUsers(ctx, api, sessions, createUserForm{}, okState)
	}
}

func showMerchantUsers(ctx *bankconsole.Context, api *bank.API, sessions *session.Manager, form createUserForm, state formState) error {
	c := caller(ctx, api)
	loc := ctx.GetLocalizer(ViewMerchantUsers)
	page := merchantUsersPage{Chrome: chrome(ctx)}

	target, err := resolveOwnTarget(ctx, c)
	if err != nil {
		if unauthorized(sessions, ctx, err) {
			return nil
		}
		page.ProfileError = core.Describe(err, "merchant profile")
		return ctx.JsonOrRender(ViewMerchantUsers, page, page)
	}

	q := readTable(ctx, target.Users, "", pagination.Request{Size: pagination.DefaultPageSize})
	res := c.ListMerchantUsers(ctx.Context(), target.MerchantID, q.Req)
	if unauthorized(sessions, ctx, res.Err) {
		return nil
	}
	table, err := newTable(q, loc, res, merchantUserColumns(loc, target), merchantUserID)
	if err != nil {
		return err
	}
	if q.Dispatch(table) {
		return ctx.Redirect(q.NextURL())
	}
	page.Users = newUsersSection(loc, target, table.View(), form, state)
	if ctx.WantsJSON() {
		return ctx.JsonOk(page.Users.Table)
	}
	return ctx.RenderWithErrors(state.status, ViewMerchantUsers, page, state.errs)
}

// manage resolves the target of a write and checks it may be changed by the
// current user. It answers the request itself when it returns false.
func (scope usersScope) manage(ctx *bankconsole.Context, c bank.Caller, sessions *session.Manager) (usersTarget, bool, error) {
	target, err := scope.resolve(ctx, c)
	if err != nil {
		if unauthorized(sessions, ctx, err) {
			return target, false, nil
		}
		return target, false, ctx.String(failureStatus(err), core.Describe(err, "merchant profile"))
	}
	if !target.CanManage {
		ctx.Logger().Warn().Str("merchant_id", target.MerchantID).Msg("merchant user management refused")
		return target, false, ctx.Forbidden("only merchant admins can manage users")
	}
	return target, true, nil
}

func createMerchantUserHandler(scope usersScope) any {
	return func(api *bank.API, sessions *session.Manager) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			c := caller(ctx, api)
			target, ok, err := scope.manage(ctx, c, sessions)
			if !ok {
				return err
			}
			var form createUserForm
			if err := ctx.ParseForm(&form); err != nil {
				return ctx.BadRequest("malformed user form")
			}
			if errs := form.validate(ctx.Validator(), merchantRoles); !errs.Empty() {
				return scope.show(ctx, api, sessions, form, formState{status: http.StatusUnprocessableEntity, errs: errs})
			}
			created, err := c.CreateMerchantUser(ctx.Context(), form.merchantRequest(target.MerchantID))
			if err != nil {
				if unauthorized(sessions, ctx, err) {
					return nil
				}
				ctx.Logger().Warn().Err(err).Str("merchant_id", target.MerchantID).Msg("cannot create merchant user")
				return scope.show(ctx, api, sessions, form, formState{status: failureStatus(err), feedback: core.Feedback(err)})
			}
			ctx.Logger().Info().Str("user_id", created.UserID).Str("merchant_id", target.MerchantID).Msg("merchant user created")
			return ctx.Redirect(target.Back)
		}
	}
}

// findMerchantUser looks the user up in the cached first page of the
// merchant users list.
func findMerchantUser(ctx *bankconsole.Context, c bank.Caller, target usersTarget, userID string) (bank.MerchantUser, error) {
	res := c.ListMerchantUsers(ctx.Context(), target.MerchantID, pagination.Request{Page: 0, Size: userLookupSize})
	if !res.HasData {
		if res.Err != nil {
			return bank.MerchantUser{}, res.Err
		}
		return bank.MerchantUser{}, errUserNotFound
	}
	for _, user := range res.Data.Content {
		if user.UserID == userID {
			return user, nil
		}
	}
	return bank.MerchantUser{}, errUserNotFound
}

type merchantUserEditPage struct {
	Chrome
	Target     usersTarget
	User       bank.MerchantUser
	Action     string
	Form       editUserForm
	RoleSelect renderer.ViewModel
	Feedback   string
}

func renderMerchantUserEdit(ctx *bankconsole.Context, target usersTarget, user bank.MerchantUser, form editUserForm, state formState) error {
	loc := ctx.GetLocalizer(ViewMerchantUserEdit)
	page := merchantUserEditPage{
		Chrome:     chrome(ctx),
		Target:     target,
		User:       user,
		Action:     target.userPath(user.UserID),
		Form:       form,
		RoleSelect: renderer.RoleSelectList(loc, "role", core.Role(form.Role), merchantRoles),
		Feedback:   state.feedback,
	}
	return ctx.RenderWithErrors(state.status, ViewMerchantUserEdit, page, state.errs)
}

func (scope usersScope) loadUser(ctx *bankconsole.Context, c bank.Caller, sessions *session.Manager) (usersTarget, bank.MerchantUser, bool, error) {
	target, ok, err := scope.manage(ctx, c, sessions)
	if !ok {
		return target, bank.MerchantUser{}, false, err
	}
	user, err := findMerchantUser(ctx, c, target, ctx.GetURLParam("userId"))
	switch {
	case errors.Is(err, errUserNotFound):
		return target, user, false, ctx.NotFound("user not found")
	case err != nil:
		if unauthorized(sessions, ctx, err) {
			return target, user, false, nil
		}
		return target, user, false, ctx.String(failureStatus(err), core.Describe(err, "merchant users"))
	}
	return target, user, true, nil
}

func editMerchantUserHandler(scope usersScope) any {
	return func(api *bank.API, sessions *session.Manager) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			target, user, ok, err := scope.loadUser(ctx, caller(ctx, api), sessions)
			if !ok {
				return err
			}
			form := editUserForm{
				Email:    user.Email,
				FullName: user.FullName,
				Role:     string(user.Role),
				Enabled:  user.Enabled,
			}
			return renderMerchantUserEdit(ctx, target, user, form, okState)
		}
	}
}

func updateMerchantUserHandler(scope usersScope) any {
	return func(api *bank.API, sessions *session.Manager) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			c := caller(ctx, api)
			target, user, ok, err := scope.loadUser(ctx, c, sessions)
			if !ok {
				return err
			}
			var form editUserForm
			if err := ctx.ParseForm(&form); err != nil {
				return ctx.BadRequest("malformed user form")
			}
			changes := form.diff(storedUser{
				Email:    user.Email,
				FullName: user.FullName,
				Role:     user.Role,
				Enabled:  user.Enabled,
			})
			form.Password = ""
			if errs := changes.validate(merchantRoles); !errs.Empty() {
				return renderMerchantUserEdit(ctx, target, user, form, formState{
					status: http.StatusUnprocessableEntity,
					errs:   errs,
				})
			}
			if _, err := c.UpdateMerchantUser(ctx.Context(), user.UserID, changes.merchantRequest()); err != nil {
				if unauthorized(sessions, ctx, err) {
					return nil
				}
				ctx.Logger().Warn().Err(err).Str("user_id", user.UserID).Msg("cannot update merchant user")
				return renderMerchantUserEdit(ctx, target, user, form, formState{
					status:   failureStatus(err),
					feedback: core.Feedback(err),
				})
			}
			ctx.Logger().Info().Str("user_id", user.UserID).Msg("merchant user updated")
			return ctx.Redirect(target.Back)
		}
	}
}

func deleteMerchantUserHandler(scope usersScope) any {
	return func(api *bank.API, sessions *session.Manager) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			c := caller(ctx, api)
			target, ok, err := scope.manage(ctx, c, sessions)
			if !ok {
				return err
			}
			userID := ctx.GetURLParam("userId")
			if err := c.DeleteMerchantUser(ctx.Context(), userID, target.MerchantID); err != nil {
				if unauthorized(sessions, ctx, err) {
					return nil
				}
				ctx.Logger().Warn().Err(err).Str("user_id", userID).Msg("cannot delete merchant user")
				return scope.show(ctx, api, sessions, createUserForm{}, formState{
					status:   failureStatus(err),
					feedback: core.Feedback(err),
				})
			}
			ctx.Logger().Info().Str("user_id", userID).Msg("merchant user deleted")
			return ctx.Redirect(target.Back)
		}
	}
}
