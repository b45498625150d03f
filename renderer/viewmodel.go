package renderer

import (
	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/csrf"
	"github.com/deltegui/bankconsole/localizer"
)

// ViewModel is what every template receives as dot.
type ViewModel struct {
	Model      any
	Localizer  localizer.Localizer
	Messages   localizer.Localizer
	Lang       string
	FormErrors map[string][]core.ValidationError
	CsrfToken  string
	Ctx        *bankconsole.Context
}

// CreateViewModel loads the bundle named after the parsed template.
func CreateViewModel(ctx *bankconsole.Context, name string, model any) ViewModel {
	return ViewModel{
		Model:     model,
		CsrfToken: csrf.Token(ctx),
		Localizer: ctx.GetLocalizer(name),
		Messages:  ctx.ErrorMessages(),
		Lang:      ctx.Language(),
		Ctx:       ctx,
	}
}

func (vm ViewModel) Localize(key string) string {
	return vm.Localizer.Get(key)
}

func (vm ViewModel) HaveFormError(key string) bool {
	return len(vm.FormErrors[key]) > 0
}

// GetFormError is the message of the first failure of field key.
func (vm ViewModel) GetFormError(key string) string {
	list := vm.FormErrors[key]
	if len(list) == 0 {
		return ""
	}
	if msg, ok := vm.Messages[key]; ok {
		return msg
	}
	return list[0].Format(vm.Localize(key))
}

type SelectItem struct {
	Value    string
	Label    string
	Selected bool
}

type SelectList struct {
	Name     string
	Multiple bool
	Items    []SelectItem
}

// CreateSelectList builds a list whose labels are localized with loc.
func CreateSelectList(loc localizer.Localizer, name string, items []SelectItem, multiple bool) ViewModel {
	localized := make([]SelectItem, len(items))
	for i, item := range items {
		item.Label = loc.Get(item.Label)
		localized[i] = item
	}
	return ViewModel{
		Model: SelectList{
			Name:     name,
			Multiple: multiple,
			Items:    localized,
		},
		Localizer: loc,
	}
}

// RoleSelectList offers the roles a user can be given. An empty selected
// value preselects the "choose" entry.
func RoleSelectList(loc localizer.Localizer, name string, selected core.Role, roles []core.Role) ViewModel {
	items := []SelectItem{{Value: "", Label: "SelectChoose", Selected: selected == ""}}
	for _, role := range roles {
		items = append(items, SelectItem{
			Value:    string(role),
			Label:    "Role" + string(role),
			Selected: role == selected,
		})
	}
	return CreateSelectList(loc, name, items, false)
}

// TransactionTypeSelectList is the type filter of transaction lists. The
// empty value means any type.
func TransactionTypeSelectList(loc localizer.Localizer, name string, selected string) ViewModel {
	items := []SelectItem{
		{Value: "", Label: "SelectAnyType", Selected: selected == ""},
		{Value: string(core.PayIn), Label: "TransactionPAYIN", Selected: selected == string(core.PayIn)},
		{Value: string(core.PayOut), Label: "TransactionPAYOUT", Selected: selected == string(core.PayOut)},
	}
	return CreateSelectList(loc, name, items, false)
}
