package renderer

import (
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/localizer"
)

const (
	displayLayout   = "2006-01-02 15:04:05"
	displayLayoutPt = "02/01/2006 15:04:05"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Money renders an amount in dollars with two decimals using the number
// conventions of lang.
func Money(lang string, amount any) string {
	var value float64
	switch v := amount.(type) {
	case float64:
		value = v
	case *float64:
		if v == nil {
			return datatable.NotAvailable
		}
		value = *v
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	default:
		return datatable.NotAvailable
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	p := message.NewPrinter(language.Make(lang))
	return sign + "$" + p.Sprint(number.Decimal(value, number.Scale(2)))
}

// Count renders an integer with thousand separators.
func Count(lang string, n int64) string {
	return message.NewPrinter(language.Make(lang)).Sprintf("%d", n)
}

// Timestamp renders an API timestamp for lang. Unparseable values are shown
// as they are.
func Timestamp(lang, raw string) string {
	if raw == "" {
		return datatable.NotAvailable
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if lang == "pt" {
			return t.Format(displayLayoutPt)
		}
		return t.Format(displayLayout)
	}
	return raw
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"Uppercase": strings.ToUpper,
		"StringNotEmpty": func(v string) bool {
			return len(v) > 0
		},
		"BoolToYesNo": func(loc localizer.Localizer, b bool) string {
			if b {
				return loc.Get("Yes")
			}
			return loc.Get("No")
		},
		"Money":     Money,
		"Count":     Count,
		"Timestamp": Timestamp,
		"SelectList": func(loc localizer.Localizer, list SelectList) ViewModel {
			return ViewModel{Localizer: loc, Model: list}
		},
		"CreateSelectList": func(loc localizer.Localizer, name string, items []SelectItem) ViewModel {
			return CreateSelectList(loc, name, items, false)
		},
		"CreateMultipleSelectList": func(loc localizer.Localizer, name string, items []SelectItem) ViewModel {
			return CreateSelectList(loc, name, items, true)
		},
		"RoleSelectList":            RoleSelectList,
		"TransactionTypeSelectList": TransactionTypeSelectList,
	}
}
