// Package views embeds the page templates, the localization bundles and the
// static assets of the console.
package views

import (
	"embed"
	"io/fs"

	"github.com/deltegui/bankconsole/renderer"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed i18n/*.json
var bundles embed.FS

//go:embed static
var static embed.FS

// Shared templates included in every page.
var sharedTemplates = []string{"layout.html", "partials.html", "selectlist.html"}

func sub(files embed.FS, dir string) fs.FS {
	out, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return out
}

func Templates() fs.FS { return sub(templates, "templates") }

// Bundles holds "<name>.json" localization files, one per page plus the
// shared and errors bundles.
func Bundles() fs.FS { return sub(bundles, "i18n") }

func Static() fs.FS { return sub(static, "static") }

// Parse compiles every named page on rend. Page "x" is read from x.html and
// executed through the layout.
func Parse(rend *renderer.TemplateRenderer, pages []string) {
	for _, page := range pages {
		main := page + ".html"
		patterns := append([]string{main}, sharedTemplates...)
		rend.Parse(page, main, patterns...)
	}
	rend.ParsePartial("selectlist", "selectlist.html")
}
