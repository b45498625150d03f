// Package validator checks console forms before anything is sent to the
// banking API. Struct rules use valtruc tags; rules valtruc cannot express
// are plain functions returning FieldError.
package validator

import (
	"errors"
	"strings"

	"github.com/deltegui/valtruc"

	"github.com/deltegui/bankconsole/core"
)

// fromTag turns a failed valtruc tag into a FieldError, so tag and function
// rules read the same to templates.
func fromTag(verr valtruc.ValidationError) FieldError {
	code := strings.ToLower(string(verr.GetIdentifier()))
	if code == "" {
		code = "invalid"
	}
	return FieldError{Field: verr.GetFieldName(), Code: code}
}

// New returns a core.Validator keyed by struct field name. Errors that are
// not valtruc failures are dropped.
func New() core.Validator {
	vt := valtruc.New()
	return func(target interface{}) map[string][]core.ValidationError {
		errs := Errors{}
		for _, err := range vt.Validate(target) {
			var verr valtruc.ValidationError
			if !errors.As(err, &verr) {
				continue
			}
			fe := fromTag(verr)
			errs.Add(&fe)
		}
		return errs
	}
}
