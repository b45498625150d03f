package renderer_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/cypher"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/validator"
)

var views = fstest.MapFS{
	"layout.html": {Data: []byte(`{{ define "layout" }}<h1>{{ .Localize "Title" }}</h1>{{ template "content" . }}{{ end }}`)},
	"merchants.html": {Data: []byte(`{{ template "layout" . }}` +
		`{{ define "content" }}<p>{{ Money .Lang .Model.Balance }}</p>` +
		`{{ if .HaveFormError "Name" }}<span>{{ .GetFormError "Name" }}</span>{{ end }}` +
		`{{ with .Model.Table }}{{ template "datatable" . }}{{ end }}{{ end }}`)},
	"select.html": {Data: []byte(`{{ define "selectlist" }}<select name="{{ .Model.Name }}">` +
		`{{ range .Model.Items }}<option value="{{ .Value }}"{{ if .Selected }} selected{{ end }}>{{ .Label }}</option>{{ end }}` +
		`</select>{{ end }}`)},
}

var bundles = fstest.MapFS{
	"shared.json":    {Data: []byte(`{"en": {"Title": "Console", "SelectChoose": "Choose", "RoleADMIN": "Admin"}}`)},
	"merchants.json": {Data: []byte(`{"en": {"Title": "Merchants"}}`)},
	"errors.json":    {Data: []byte(`{"en": {"Name": "Merchant name must be between 2 and 100 characters."}}`)},
}

type merchantsPage struct {
	Balance float64
	Table   any
}

func newRouter(t *testing.T, rend *renderer.TemplateRenderer) *bankconsole.Router {
	t.Helper()
	cy, err := cypher.New()
	require.NoError(t, err)
	r := bankconsole.NewRouter(bankconsole.Config{
		Localizer: localizer.NewStore(bundles, "shared", "errors", cy, zerolog.Nop()),
		Logger:    zerolog.Nop(),
	})
	r.SetRenderer(rend)
	return r
}

func newRenderer() *renderer.TemplateRenderer {
	rend := renderer.NewTemplateRenderer(views, zerolog.Nop())
	rend.AddDefaultTemplateFunctions()
	rend.Parse("merchants", "merchants.html", "layout.html", "merchants.html")
	rend.ParsePartial("selectlist", "select.html")
	return rend
}

func TestRenderPageWithLocalizerAndFuncs(t *testing.T) {
	r := newRouter(t, newRenderer())
	r.Get("/", func(ctx *bankconsole.Context) error {
		return ctx.RenderOk("merchants", merchantsPage{Balance: 1234.5})
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Merchants</h1>")
	assert.Contains(t, body, "<p>$1,234.50</p>")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderWithErrorsUsesErrorBundle(t *testing.T) {
	r := newRouter(t, newRenderer())
	r.Post("/", func(ctx *bankconsole.Context) error {
		errs := validator.Errors{}
		errs.Add(validator.Length("Name", "a", 2, 100))
		return ctx.RenderWithErrors(http.StatusBadRequest, "merchants", merchantsPage{}, errs)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "<span>Merchant name must be between 2 and 100 characters.</span>")
}

func TestMissingTemplateIsAnError(t *testing.T) {
	r := newRouter(t, newRenderer())
	var got error
	r.Get("/", func(ctx *bankconsole.Context) error {
		got = ctx.RenderOk("nope", nil)
		return got
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorContains(t, got, "nope")
}

func TestRoleSelectList(t *testing.T) {
	r := newRouter(t, newRenderer())
	r.Get("/", func(ctx *bankconsole.Context) error {
		loc := ctx.GetLocalizer("shared")
		vm := renderer.RoleSelectList(loc, "role", core.RoleAdmin, []core.Role{core.RoleAdmin})
		return ctx.RenderOk("selectlist", vm.Model)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t,
		`<select name="role"><option value="">Choose</option><option value="ADMIN" selected>Admin</option></select>`,
		rec.Body.String())
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", renderer.Money("en", 1234.5))
	assert.Equal(t, "$0.10", renderer.Money("en", 0.1))
	assert.Equal(t, "-$5.00", renderer.Money("en", -5.0))
	assert.Equal(t, "N/A", renderer.Money("en", (*float64)(nil)))
	assert.Equal(t, "N/A", renderer.Money("en", "12"))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "2024-03-01 10:20:30", renderer.Timestamp("en", "2024-03-01T10:20:30"))
	assert.Equal(t, "2024-03-01 10:20:30", renderer.Timestamp("en", "2024-03-01T10:20:30.123456"))
	assert.Equal(t, "01/03/2024 10:20:30", renderer.Timestamp("pt", "2024-03-01T10:20:30Z"))
	assert.Equal(t, "yesterday", renderer.Timestamp("en", "yesterday"))
	assert.Equal(t, "N/A", renderer.Timestamp("en", ""))
}
