package datatable

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
)

//go:embed table.html
var tableTemplate string

// Template holds the "datatable" definition. Page templates can include it
// with AddTo, or a View can render itself with HTML.
var Template = template.Must(template.New("datatable.html").Parse(tableTemplate))

// AddTo registers the table definitions in t.
func AddTo(t *template.Template) (*template.Template, error) {
	return t.Parse(tableTemplate)
}

func (v View) Render(w io.Writer) error {
	return Template.ExecuteTemplate(w, "datatable", v)
}

func (v View) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
