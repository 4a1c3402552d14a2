package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/pkg/catalog"
	"github.com/goliatone/go-doctemplate/pkg/classify"
	"github.com/goliatone/go-doctemplate/pkg/completion"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/format"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/store"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

const defaultRendererName = render.FragmentName

// ErrTemplateUnavailable is returned by Prepare when neither the remote store
// nor the local catalog has the template.
var ErrTemplateUnavailable = errors.New("orchestrator: template unavailable")

// TemplateSource resolves templates. *store.Service satisfies it.
type TemplateSource interface {
	Template(ctx context.Context, id, lang string) store.Result
	Templates(lang string) []catalog.Summary
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore injects the template source.
func WithStore(source TemplateSource) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// WithClassifier injects a custom classifier.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(o *Orchestrator) {
		o.classifier = classifier
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer run at the end of Prepare.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithFormatter sets the formatter used by the default renderers.
func WithFormatter(formatter *format.Formatter) Option {
	return func(o *Orchestrator) {
		o.formatter = formatter
	}
}

// WithThemeSelector lets the default renderers resolve markers from themes.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.selector = selector
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates template resolution, field discovery and
// rendering.
type Orchestrator struct {
	source          TemplateSource
	classifier      *classify.Classifier
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	formatter       *format.Formatter
	selector        theme.ThemeSelector
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator. Missing dependencies get the built-in
// implementations: a local-only store over the bundled catalog and a registry
// holding the "html" and "page" renderers.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.formatter == nil {
		o.formatter = format.New()
	}
	if o.classifier == nil {
		o.classifier = classify.New()
	}
	if o.source == nil {
		svc, err := store.New(context.Background(), store.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default store: %w", err)
		} else {
			o.source = svc
		}
	}
	if o.registry == nil {
		fragment := render.NewFragment(
			render.WithEngine(render.NewEngine(render.WithFormatter(o.formatter))),
			render.WithThemeSelector(o.selector),
		)
		o.registry = render.NewRegistry(fragment)
		page, err := render.NewPage(render.WithFragment(fragment))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: page renderer: %w", err)
		} else {
			o.registry.MustRegister(page)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

// Prepared is a resolved template together with its derived field metadata.
type Prepared struct {
	Template    catalog.Template    `json:"template"`
	Origin      store.Origin        `json:"origin"`
	Fields      []fields.Name       `json:"fields"`
	Categories  []classify.Category `json:"categories"`
	Definitions []fields.Definition `json:"definitions"`
	Profile     fields.Profile      `json:"-"`
}

// Definition returns the definition of name.
func (p Prepared) Definition(name fields.Name) (fields.Definition, bool) {
	for _, def := range p.Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return fields.Definition{}, false
}

// Document builds the renderer input for values.
func (p Prepared) Document(values document.Values, status document.Status) render.Document {
	return render.Document{
		TemplateID:  p.Template.ID,
		Language:    p.Template.Language,
		Title:       p.Template.Title,
		Markup:      p.Template.Markup(),
		Values:      values,
		Definitions: p.Definitions,
		Status:      status,
	}
}

// Validator returns a validator scoped to the template's profile.
func (p Prepared) Validator() *validation.Validator {
	return validation.New(validation.WithProfile(p.Profile))
}

// Validate validates values for role.
func (p Prepared) Validate(values document.Values, role validation.Role) validation.Result {
	return p.Validator().Validate(p.Definitions, values, role)
}

// Completion computes section completion for values.
func (p Prepared) Completion(values document.Values) completion.Status {
	return completion.Compute(p.Categories, values, p.Profile)
}

// Prepare resolves the template and runs extract -> classify -> define.
func (o *Orchestrator) Prepare(ctx context.Context, id, lang string) (Prepared, error) {
	if ctx == nil {
		return Prepared{}, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return Prepared{}, err
	}
	if err := ctx.Err(); err != nil {
		return Prepared{}, err
	}

	result := o.source.Template(ctx, id, lang)
	if !result.OK() {
		return Prepared{}, fmt.Errorf("%w: %s (%s)", ErrTemplateUnavailable, id, catalog.NormalizeLanguage(lang))
	}
	tpl := result.Template

	// Placeholders the sanitizer removes never render, so they are not fields.
	names := fields.Extract(render.SanitizeMarkup(tpl.Markup()))
	categories := o.classifier.Classify(names, tpl.ID)
	prepared := Prepared{
		Template:    tpl,
		Origin:      result.Origin,
		Fields:      names,
		Categories:  categories,
		Definitions: fields.Definitions(classify.Names(categories), tpl.ID),
		Profile:     fields.ProfileFor(tpl.ID),
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &prepared); err != nil {
			return Prepared{}, fmt.Errorf("orchestrator: transform: %w", err)
		}
	}

	o.logger.Debug("template prepared",
		zap.String("template", tpl.ID),
		zap.String("language", tpl.Language),
		zap.String("origin", string(result.Origin)),
		zap.Int("fields", len(names)),
	)
	return prepared, nil
}

// Templates lists the available templates.
func (o *Orchestrator) Templates(lang string) []catalog.Summary {
	if o.source == nil {
		return nil
	}
	return o.source.Templates(lang)
}

// Request describes a render call.
type Request struct {
	Prepared Prepared
	Values   document.Values
	Status   document.Status
	// Renderer names the renderer to use; empty selects the default.
	Renderer      string
	RenderOptions render.RenderOptions
}

// Render substitutes values through the selected renderer and returns the
// output with its content type.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, string, error) {
	if err := o.initialiseErr; err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, "", err
	}
	status := req.Status
	if status == "" {
		status = document.StatusDraft
	}
	out, err := renderer.Render(ctx, req.Prepared.Document(req.Values, status), req.RenderOptions)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: render output: %w", err)
	}
	return out, renderer.ContentType(), nil
}

// Renderer returns the named renderer, or the default when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

// Formatter returns the formatter used for value normalisation.
func (o *Orchestrator) Formatter() *format.Formatter {
	return o.formatter
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	renderer, err := o.registry.Get(target)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}
