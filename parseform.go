package bankconsole

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// ParseForm parses the request form and copies it into the struct pointed
// by dst using reflection. Form names match the 'form' tag or, when it is
// not set, the field name. Only one-depth structs are supported.
//
//	type createMerchant struct {
//		Name string `form:"name"`
//		CNPJ string `form:"cnpj"`
//	}
//
// Supported field types are string, bool, signed integers and floats, and
// pointers to them. An empty value leaves a pointer field nil.
func (ctx *Context) ParseForm(dst any) error {
	if err := ctx.Req.ParseForm(); err != nil {
		return fmt.Errorf("cannot parse form: %w", err)
	}
	return Bind(ctx.Req.Form, dst)
}

// ParseQuery copies the URL query into dst, like ParseForm.
func (ctx *Context) ParseQuery(dst any) error {
	return Bind(ctx.Req.URL.Query(), dst)
}

// Bind copies values into dst. Values that cannot be converted to the field
// type are reported together.
func Bind(values url.Values, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("bind target must be a non nil pointer, got %T", dst)
	}
	e := v.Elem()
	t := e.Type()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("bind target must point to a struct, got %T", dst)
	}
	var invalid []string
	for i := 0; i < t.NumField(); i++ {
		fieldValue := e.Field(i)
		fieldType := t.Field(i)
		lookup, ok := fieldType.Tag.Lookup("form")
		if !ok {
			lookup = fieldType.Name
		}
		if lookup == "-" || !values.Has(lookup) || !fieldValue.CanSet() {
			continue
		}
		if !setValue(fieldValue, values.Get(lookup)) {
			invalid = append(invalid, lookup)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid values for fields: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func setValue(field reflect.Value, value string) bool {
	t := field.Type()
	isPointer := false
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		isPointer = true
	}
	if isPointer && value == "" {
		field.Set(reflect.Zero(field.Type()))
		return true
	}
	target := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		target.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, t.Bits())
		if err != nil {
			return false
		}
		target.SetInt(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, t.Bits())
		if err != nil {
			return false
		}
		target.SetFloat(f)
	case reflect.Bool:
		b, err := parseBool(value)
		if err != nil {
			return false
		}
		target.SetBool(b)
	default:
		return false
	}
	if isPointer {
		field.Set(target.Addr())
	} else {
		field.Set(target)
	}
	return true
}

// parseBool also accepts the "on" sent by checked checkboxes.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on":
		return true, nil
	case "off", "":
		return false, nil
	}
	return strconv.ParseBool(value)
}
