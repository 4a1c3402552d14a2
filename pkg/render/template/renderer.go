package template

import (
	"io"
)

// TemplateRenderer is the engine contract the page renderer relies on.
// RenderTemplate resolves name against the engine's template sources while
// RenderString compiles templateContent directly.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
