package validator

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/localizer"
)

// FieldError is a failed rule on one form field.
type FieldError struct {
	Field string
	Code  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s failed on %s", e.Field, e.Code)
}

func (e FieldError) Format(f string) string {
	return fmt.Sprintf(f, e.Field)
}

func (e FieldError) GetName() string {
	return e.Code
}

// Errors accumulates failures per field.
type Errors map[string][]core.ValidationError

func (errs Errors) Add(err *FieldError) {
	if err == nil {
		return
	}
	errs[err.Field] = append(errs[err.Field], *err)
}

func (errs Errors) Merge(other map[string][]core.ValidationError) {
	for field, list := range other {
		errs[field] = append(errs[field], list...)
	}
}

func (errs Errors) Empty() bool {
	for _, list := range errs {
		if len(list) > 0 {
			return false
		}
	}
	return true
}

// Check runs the struct validator on target and adds the extra failures.
func Check(validate core.Validator, target any, extra ...*FieldError) Errors {
	errs := Errors{}
	if validate != nil {
		errs.Merge(validate(target))
	}
	for _, e := range extra {
		errs.Add(e)
	}
	return errs
}

// FirstMessage is the message shown for a rejected form: the translation of
// the first failing field in order, keyed by field name.
func FirstMessage(errs Errors, order []string, loc localizer.Localizer) string {
	for _, field := range order {
		list := errs[field]
		if len(list) == 0 {
			continue
		}
		if msg, ok := loc[field]; ok {
			return msg
		}
		return list[0].Error()
	}
	for field, list := range errs {
		if len(list) > 0 {
			return loc.Get(field)
		}
	}
	return ""
}

func Length(field, value string, min, max int) *FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min || n > max {
		return &FieldError{Field: field, Code: "length"}
	}
	return nil
}

func Required(field, value string) *FieldError {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Code: "required"}
	}
	return nil
}

// Digits requires exactly n ASCII digits.
func Digits(field, value string, n int) *FieldError {
	if len(value) != n {
		return &FieldError{Field: field, Code: "digits"}
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return &FieldError{Field: field, Code: "digits"}
		}
	}
	return nil
}

func Email(field, value string) *FieldError {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &FieldError{Field: field, Code: "email"}
	}
	return nil
}

// Amount parses a positive amount with at most two decimals.
func Amount(field, raw string) (float64, *FieldError) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, &FieldError{Field: field, Code: "amount"}
	}
	if _, decimals, found := strings.Cut(raw, "."); found && len(decimals) > 2 {
		return 0, &FieldError{Field: field, Code: "decimals"}
	}
	return value, nil
}

// Changed fails when an edit form carries no change at all.
func Changed(changed bool) *FieldError {
	if changed {
		return nil
	}
	return &FieldError{Field: "NoChanges", Code: "unchanged"}
}
