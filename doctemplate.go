package doctemplate

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/session"
	"github.com/goliatone/go-doctemplate/pkg/store"
)

// Prepared is a resolved template with its classified fields.
type Prepared = orchestrator.Prepared

// Values maps field names to text or signature values.
type Values = document.Values

// RenderOptions describes per-request renderer overrides.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewSessionManager returns a document session manager over orch.
func NewSessionManager(orch *orchestrator.Orchestrator, options ...session.ManagerOption) *session.Manager {
	return session.NewManager(orch, options...)
}

// RenderHTML resolves the template and renders values with the named renderer
// ("html" when empty). It is the simplest entry point for callers that just
// want output.
func RenderHTML(ctx context.Context, templateID, lang string, values Values, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	orch := orchestrator.New(options...)
	prepared, err := orch.Prepare(ctx, templateID, lang)
	if err != nil {
		return nil, err
	}
	out, _, err := orch.Render(ctx, orchestrator.Request{
		Prepared: prepared,
		Values:   values,
		Renderer: rendererName,
	})
	return out, err
}

// WithRemoteStore resolves templates from url before the bundled catalog.
func WithRemoteStore(ctx context.Context, url string, options ...store.Option) (orchestrator.Option, error) {
	svc, err := store.New(ctx, append([]store.Option{store.WithRemoteURL(url)}, options...)...)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithStore(svc), nil
}

// WithThemeSelector passes a go-theme selector through to the default
// renderers so marker classes come from the selected theme.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}
