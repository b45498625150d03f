package datatable

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"
)

// NotAvailable is shown for cells that have neither a render function nor a
// readable accessor.
const NotAvailable = "N/A"

type Column[T any] struct {
	// Header is the label of the column and its stable key.
	Header string

	// Accessor names the field of T shown in the cell. Both the JSON name
	// and the Go field name are accepted. It is also the default sort key.
	Accessor string

	// Render overrides the accessor based cell content.
	Render func(row T) template.HTML

	Sortable bool

	// SortKey overrides Accessor as the value sent in the sort parameter.
	SortKey string

	Class         string
	CellClass     string
	CellClassFunc func(row T) string
}

func (c Column[T]) sortField() string {
	if c.SortKey != "" {
		return c.SortKey
	}
	return c.Accessor
}

// canSort is false for sortable columns without a sort key.
func (c Column[T]) canSort() bool {
	return c.Sortable && c.sortField() != ""
}

func (c Column[T]) cellClass(row T) string {
	if c.CellClassFunc != nil {
		return c.CellClassFunc(row)
	}
	return c.CellClass
}

func (c Column[T]) content(row T) template.HTML {
	if c.Render != nil {
		return c.Render(row)
	}
	if c.Accessor == "" {
		return NotAvailable
	}
	value, ok := Lookup(row, c.Accessor)
	if !ok {
		return NotAvailable
	}
	return Text(value)
}

// Lookup reads the named field of row as display text. Structs are matched
// by JSON tag first and Go field name second; string keyed maps by key.
func Lookup(row any, name string) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		field, ok := structField(v, name)
		if !ok {
			return "", false
		}
		return display(field)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return "", false
		}
		value := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !value.IsValid() {
			return "", false
		}
		return display(value)
	default:
		return "", false
	}
}

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	f, ok := t.FieldByName(name)
	if !ok || !f.IsExported() {
		return reflect.Value{}, false
	}
	return v.FieldByIndex(f.Index), true
}

func display(v reflect.Value) (string, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return fmt.Sprint(v.Interface()), true
}

// Text escapes s for use as cell content.
func Text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

// Link renders an anchor with escaped href and label.
func Link(href, label string) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<a href="%s" class="text-indigo-600 hover:text-indigo-900">%s</a>`,
		template.HTMLEscapeString(href),
		template.HTMLEscapeString(label)))
}

// Badge renders a small pill with the given class.
func Badge(class, label string) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<span class="px-2 inline-flex text-xs leading-5 font-semibold rounded-full %s">%s</span>`,
		template.HTMLEscapeString(class),
		template.HTMLEscapeString(label)))
}
