package render

import (
	"context"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
)

// Renderer converts a document into a byte representation (HTML fragment,
// full page).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc Document, options RenderOptions) ([]byte, error)
}

// Document is the input every renderer receives: the template markup plus the
// values collected for it.
type Document struct {
	TemplateID  string
	Language    string
	Title       string
	Markup      string
	Values      document.Values
	Definitions []fields.Definition
	Status      document.Status
}
