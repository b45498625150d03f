package bankconsole

import (
	"github.com/deltegui/bankconsole/core"
)

// Renderer writes views for a request.
type Renderer interface {
	Render(ctx *Context, status int, parsed string, vm any) error
	RenderWithErrors(ctx *Context, status int, parsed string, vm any, formErrors map[string][]core.ValidationError) error
}

// JsonOrRender answers format=json requests with data and the others with
// the parsed template.
func (ctx *Context) JsonOrRender(parsed string, vm any, data any) error {
	if ctx.WantsJSON() {
		return ctx.JsonOk(data)
	}
	return ctx.RenderOk(parsed, vm)
}
