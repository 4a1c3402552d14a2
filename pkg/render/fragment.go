package render

import (
	"context"
	"errors"

	theme "github.com/goliatone/go-theme"
)

// Renderer names registered by default.
const (
	FragmentName = "html"
	PageName     = "page"
)

// Fragment renders the document body as an HTML fragment.
type Fragment struct {
	engine   *Engine
	selector theme.ThemeSelector
}

// FragmentOption customises a Fragment renderer.
type FragmentOption func(*Fragment)

// WithEngine sets the substitution engine.
func WithEngine(engine *Engine) FragmentOption {
	return func(f *Fragment) {
		if engine != nil {
			f.engine = engine
		}
	}
}

// WithThemeSelector resolves markers per request from RenderOptions theme
// choices.
func WithThemeSelector(selector theme.ThemeSelector) FragmentOption {
	return func(f *Fragment) {
		f.selector = selector
	}
}

// NewFragment constructs the "html" renderer.
func NewFragment(opts ...FragmentOption) *Fragment {
	f := &Fragment{engine: NewEngine()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

func (f *Fragment) Name() string        { return FragmentName }
func (f *Fragment) ContentType() string { return "text/html; charset=utf-8" }

// Render implements Renderer.
func (f *Fragment) Render(ctx context.Context, doc Document, options RenderOptions) ([]byte, error) {
	body, err := f.Body(ctx, doc, options)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Body renders the substituted markup.
func (f *Fragment) Body(ctx context.Context, doc Document, options RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	engine, err := f.engineFor(options)
	if err != nil {
		return "", err
	}
	return engine.Render(doc.Markup, doc.Values, doc.Definitions), nil
}

func (f *Fragment) engineFor(options RenderOptions) (*Engine, error) {
	switch {
	case options.Markers != nil:
		return f.engine.with(*options.Markers), nil
	case f.selector != nil:
		markers, err := ResolveMarkers(f.selector, options.ThemeName, options.ThemeVariant)
		if err != nil {
			// Without an explicit theme a selector lacking a default is not an error.
			if options.ThemeName == "" && errors.Is(err, ErrThemeNotFound) {
				return f.engine, nil
			}
			return nil, err
		}
		return f.engine.with(markers), nil
	default:
		return f.engine, nil
	}
}
