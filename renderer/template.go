// Package renderer executes the html/template views of the console.
package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/datatable"
)

type TemplateRenderer struct {
	tmpl      map[string]*template.Template
	tmplFuncs template.FuncMap
	tmplFS    fs.FS
	log       zerolog.Logger
}

func NewTemplateRenderer(files fs.FS, logger zerolog.Logger) *TemplateRenderer {
	return &TemplateRenderer{
		tmpl:      make(map[string]*template.Template),
		tmplFS:    files,
		tmplFuncs: template.FuncMap{},
		log:       logger.With().Str("component", "renderer").Logger(),
	}
}

func (r *TemplateRenderer) ShowAvailableTemplates() {
	for key, value := range r.tmpl {
		r.log.Debug().Str("parsed", key).Str("main", value.Name()).Msg("template available")
	}
}

func (r *TemplateRenderer) Render(ctx *bankconsole.Context, status int, parsed string, vm any) error {
	return r.execute(ctx, status, parsed, CreateViewModel(ctx, parsed, vm))
}

func (r *TemplateRenderer) RenderWithErrors(
	ctx *bankconsole.Context,
	status int,
	parsed string,
	vm any,
	formErrors map[string][]core.ValidationError,
) error {
	model := CreateViewModel(ctx, parsed, vm)
	model.FormErrors = formErrors
	return r.execute(ctx, status, parsed, model)
}

func (r *TemplateRenderer) execute(ctx *bankconsole.Context, status int, parsed string, model ViewModel) error {
	if ctx == nil {
		panic("Called to Render outside request: no context!")
	}
	tmpl, ok := r.tmpl[parsed]
	if !ok {
		return fmt.Errorf("error executing template with parsed name '%s': it does not exist", parsed)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, model); err != nil {
		ctx.Res.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("error executing template with parsed name '%s': %w", parsed, err)
	}
	ctx.Res.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx.Res.WriteHeader(status)
	_, err := buf.WriteTo(ctx.Res)
	return err
}

// AddDefaultTemplateFunctions must be called before AddTemplateFunction if
// both the defaults and custom functions are wanted.
func (r *TemplateRenderer) AddDefaultTemplateFunctions() {
	r.tmplFuncs = defaultFuncs()
}

func (r *TemplateRenderer) AddTemplateFunction(name string, f any) {
	if r.tmplFuncs == nil {
		r.tmplFuncs = template.FuncMap{}
	}
	r.tmplFuncs[name] = f
}

func (r *TemplateRenderer) base(name string) *template.Template {
	tmpl := template.New(name)
	if r.tmplFuncs != nil {
		tmpl = tmpl.Funcs(r.tmplFuncs)
	}
	return template.Must(datatable.AddTo(tmpl))
}

// Parse compiles the page name from patterns. main is the file that is
// executed.
func (r *TemplateRenderer) Parse(name, main string, patterns ...string) {
	compilation := template.Must(r.base(main).ParseFS(r.tmplFS, patterns...))
	r.tmpl[name] = compilation
}

// ParsePartial compiles patterns and executes the definition called name.
func (r *TemplateRenderer) ParsePartial(name string, patterns ...string) {
	compilation, err := r.base("partial").ParseFS(r.tmplFS, patterns...)
	if err != nil {
		r.log.Panic().Err(err).Str("partial", name).Msg("failed to parse partial view")
	}
	main := fmt.Sprintf("{{ template \"%s\" . }}", name)
	r.tmpl[name] = template.Must(compilation.Parse(main))
}
