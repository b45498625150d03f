package pages

import (
	"net/http"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/session"
	"github.com/deltegui/bankconsole/validator"
)

type homePage struct {
	Chrome
}

func homeHandler() bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return ctx.RenderOk(ViewHome, homePage{Chrome: chrome(ctx)})
	}
}

type loginPage struct {
	Chrome
	For      core.UserKind
	Action   string
	Typed    string
	Feedback string
}

func newLoginPage(ctx *bankconsole.Context, kind core.UserKind) loginPage {
	return loginPage{
		Chrome: chrome(ctx),
		For:    kind,
		Action: "/" + string(kind),
	}
}

func showLogin(kind core.UserKind) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return ctx.RenderOk(ViewLogin, newLoginPage(ctx, kind))
	}
}

// loginHandler authenticates against the endpoint of kind and opens a
// session of the same kind.
func loginHandler(kind core.UserKind) any {
	return func(api *bank.API, sessions *session.Manager) bankconsole.Handler {
		return func(ctx *bankconsole.Context) error {
			page := newLoginPage(ctx, kind)
			var form loginForm
			if err := ctx.ParseForm(&form); err != nil {
				return ctx.BadRequest("malformed login form")
			}
			page.Typed = form.Username

			errs := form.validate(ctx.Validator())
			if !errs.Empty() {
				page.Feedback = validator.FirstMessage(errs, []string{fieldLoginUsername, fieldLoginPassword}, ctx.ErrorMessages())
				return ctx.RenderWithErrors(http.StatusUnprocessableEntity, ViewLogin, page, errs)
			}

			credentials := bank.Credentials{Username: form.Username, Password: form.Password}
			var (
				auth bank.AuthResponse
				err  error
			)
			if kind == core.KindCore {
				auth, err = api.Client().CoreLogin(ctx.Context(), credentials)
			} else {
				auth, err = api.Client().MerchantLogin(ctx.Context(), credentials)
			}
			if err != nil {
				ctx.Logger().Info().Err(err).Str("kind", string(kind)).Msg("login rejected")
				page.Feedback = loginFeedback(ctx, err)
				return ctx.Render(http.StatusUnauthorized, ViewLogin, page)
			}

			var s session.Session = session.Merchant{Token: auth.Token, Username: form.Username}
			if kind == core.KindCore {
				s = session.Core{Token: auth.Token, Username: form.Username}
			}
			if _, err := sessions.Login(ctx.Context(), ctx.Res, s); err != nil {
				return err
			}
			ctx.Logger().Info().Str("kind", string(kind)).Str("username", form.Username).Msg("logged in")
			return ctx.Redirect(kind.Dashboard())
		}
	}
}

func loginFeedback(ctx *bankconsole.Context, err error) string {
	f, ok := core.AsFailure(err)
	if ok && f.Kind == core.FailureHTTP && (f.Code == http.StatusUnauthorized || f.Code == http.StatusForbidden) {
		return ctx.Localize(ViewLogin, "InvalidCredentials")
	}
	return core.Feedback(err)
}

func logoutHandler(sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		if err := sessions.Logout(ctx.Context(), ctx.Res, ctx.Req); err != nil {
			return err
		}
		return ctx.Redirect("/")
	}
}

// languageHandler stores the chosen language and goes back to the page the
// user came from.
func languageHandler() bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		lang := ctx.GetURLParam("lang")
		if !localizer.Supported(lang) {
			return ctx.BadRequest("unsupported language")
		}
		if err := ctx.ChangeLanguage(lang); err != nil {
			return err
		}
		return ctx.Redirect(localPath(ctx.Req.Referer()))
	}
}
