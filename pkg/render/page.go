package render

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/render/template/pongo"
)

//go:embed templates/*.tpl
var pageTemplates embed.FS

// TemplatesFS exposes the embedded page layouts rooted at their directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return pageTemplates
	}
	return sub
}

// DefaultPageTemplate is the embedded page layout.
const DefaultPageTemplate = "page"

// Page renders the document body inside a complete HTML page.
type Page struct {
	fragment *Fragment
	engine   template.TemplateRenderer
	template string
}

// PageOption customises a Page renderer.
type PageOption func(*Page)

// WithFragment sets the body renderer.
func WithFragment(fragment *Fragment) PageOption {
	return func(p *Page) {
		if fragment != nil {
			p.fragment = fragment
		}
	}
}

// WithTemplateRenderer replaces the layout engine; name selects the layout
// template it renders.
func WithTemplateRenderer(engine template.TemplateRenderer, name string) PageOption {
	return func(p *Page) {
		if engine != nil {
			p.engine = engine
		}
		if strings.TrimSpace(name) != "" {
			p.template = strings.TrimSpace(name)
		}
	}
}

// NewPage constructs the "page" renderer using the embedded layout.
func NewPage(opts ...PageOption) (*Page, error) {
	p := &Page{
		fragment: NewFragment(),
		template: DefaultPageTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.engine == nil {
		engine, err := pongo.New(pongo.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("render: page engine: %w", err)
		}
		p.engine = engine
	}
	return p, nil
}

func (p *Page) Name() string        { return PageName }
func (p *Page) ContentType() string { return "text/html; charset=utf-8" }

// Render implements Renderer.
func (p *Page) Render(ctx context.Context, doc Document, options RenderOptions) ([]byte, error) {
	if p == nil || p.engine == nil {
		return nil, errors.New("render: page renderer is not configured")
	}
	body, err := p.fragment.Body(ctx, doc, options)
	if err != nil {
		return nil, err
	}
	engine, err := p.fragment.engineFor(options)
	if err != nil {
		return nil, err
	}
	markers := engine.Markers()

	title := doc.Title
	if title == "" {
		title = doc.TemplateID
	}
	language := doc.Language
	if language == "" {
		language = "en"
	}

	out, err := p.engine.RenderTemplate(p.template, map[string]any{
		"title":       title,
		"language":    language,
		"template_id": doc.TemplateID,
		"status":      string(doc.Status),
		"body":        body,
		"markers": map[string]any{
			"filled":    firstClass(markers.FilledClass),
			"unfilled":  firstClass(markers.UnfilledClass),
			"signature": firstClass(markers.SignatureClass),
		},
	})
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func firstClass(classes string) string {
	if fields := strings.Fields(classes); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
