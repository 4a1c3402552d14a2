package doctemplate

import (
	"io/fs"

	"github.com/goliatone/go-doctemplate/pkg/catalog"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

// EmbeddedTemplates exposes the built-in page layouts so callers can reuse or
// extend them without importing the render package directly.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}

// BundledCatalogFS exposes the embedded template catalog at
// catalog.BundledPath.
func BundledCatalogFS() fs.FS {
	return catalog.BundledFS()
}
