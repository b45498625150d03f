package bankconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/localizer"
)

// Context is created for every request and handed to handlers and
// middlewares.
type Context struct {
	Req    *http.Request
	Res    http.ResponseWriter
	params httprouter.Params

	locstore *localizer.Store
	renderer Renderer
	validate core.Validator
}

func (ctx *Context) Context() context.Context {
	return ctx.Req.Context()
}

// Set stores a request scoped value. Later middlewares and the handler can
// read it with Get.
func (ctx *Context) Set(key, value any) {
	ctx.Req = ctx.Req.WithContext(context.WithValue(ctx.Req.Context(), key, value))
}

func (ctx *Context) Get(key any) any {
	return ctx.Req.Context().Value(key)
}

func (ctx *Context) Language() string {
	if ctx.locstore == nil {
		return localizer.FallbackLanguage
	}
	return ctx.locstore.Language(ctx.Req)
}

func (ctx *Context) GetLocalizer(file string) localizer.Localizer {
	if ctx.locstore == nil {
		return localizer.Localizer{}
	}
	return ctx.locstore.GetUsingRequest(file, ctx.Req)
}

func (ctx *Context) Localize(file, key string) string {
	return ctx.GetLocalizer(file).Get(key)
}

// ErrorMessages is the bundle holding form validation messages.
func (ctx *Context) ErrorMessages() localizer.Localizer {
	if ctx.locstore == nil {
		return localizer.Localizer{}
	}
	return ctx.locstore.Errors(ctx.Req)
}

func (ctx *Context) ChangeLanguage(to string) error {
	if ctx.locstore == nil {
		return fmt.Errorf("no localizer configured")
	}
	return ctx.locstore.CreateCookie(ctx.Res, to)
}

func (ctx *Context) Validator() core.Validator {
	return ctx.validate
}

func (ctx *Context) Redirect(to string) error {
	http.Redirect(ctx.Res, ctx.Req, to, http.StatusSeeOther)
	return nil
}

func (ctx *Context) GetURLParam(name string) string {
	return ctx.params.ByName(name)
}

func (ctx *Context) GetQueryParam(name string) string {
	return ctx.Req.URL.Query().Get(name)
}

// WantsJSON is true for format=json requests.
func (ctx *Context) WantsJSON() bool {
	return ctx.GetQueryParam("format") == "json"
}

func (ctx *Context) String(status int, data string, a ...any) error {
	ctx.Res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	ctx.Res.WriteHeader(status)
	_, err := fmt.Fprintf(ctx.Res, data, a...)
	return err
}

func (ctx *Context) BadRequest(data string, a ...any) error {
	return ctx.String(http.StatusBadRequest, data, a...)
}

func (ctx *Context) NotFound(data string, a ...any) error {
	return ctx.String(http.StatusNotFound, data, a...)
}

func (ctx *Context) Ok(data string, a ...any) error {
	return ctx.String(http.StatusOK, data, a...)
}

func (ctx *Context) InternalServerError(data string, a ...any) error {
	return ctx.String(http.StatusInternalServerError, data, a...)
}

func (ctx *Context) NoContent() error {
	ctx.Res.WriteHeader(http.StatusNoContent)
	return nil
}

func (ctx *Context) Forbidden(data string, a ...any) error {
	return ctx.String(http.StatusForbidden, data, a...)
}

func (ctx *Context) Json(status int, data any) error {
	response, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}
	ctx.Res.Header().Set("Content-Type", "application/json")
	ctx.Res.WriteHeader(status)
	_, err = ctx.Res.Write(response)
	return err
}

func (ctx *Context) JsonOk(data any) error {
	return ctx.Json(http.StatusOK, data)
}

func (ctx *Context) Render(status int, parsed string, vm any) error {
	if ctx.renderer == nil {
		panic("Cannot call render. Missing dependency: bankconsole.Renderer")
	}
	return ctx.renderer.Render(ctx, status, parsed, vm)
}

func (ctx *Context) RenderOk(parsed string, vm any) error {
	return ctx.Render(http.StatusOK, parsed, vm)
}

func (ctx *Context) RenderWithErrors(
	status int,
	parsed string,
	vm any,
	formErrors map[string][]core.ValidationError,
) error {
	if ctx.renderer == nil {
		panic("Cannot call render. Missing dependency: bankconsole.Renderer")
	}
	return ctx.renderer.RenderWithErrors(ctx, status, parsed, vm, formErrors)
}

// Logger is the request scoped logger set by the logging middleware.
func (ctx *Context) Logger() *zerolog.Logger {
	return zerolog.Ctx(ctx.Req.Context())
}
