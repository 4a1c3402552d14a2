package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/format"
)

// Engine substitutes field values into template markup.
type Engine struct {
	markers   Markers
	formatter *format.Formatter
}

// Option customises an Engine.
type Option func(*Engine)

// WithMarkers sets the marker classes and signature box.
func WithMarkers(markers Markers) Option {
	return func(e *Engine) {
		e.markers = markers.normalize()
	}
}

// WithFormatter sets the formatter used to present currency and date values.
// A nil formatter renders values exactly as stored.
func WithFormatter(formatter *format.Formatter) Option {
	return func(e *Engine) {
		e.formatter = formatter
	}
}

// NewEngine constructs an Engine with the default markers and formatter.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		markers:   DefaultMarkers(),
		formatter: format.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Markers returns the engine's markers.
func (e *Engine) Markers() Markers {
	return e.markers
}

// with returns a copy of e using markers.
func (e *Engine) with(markers Markers) *Engine {
	clone := *e
	clone.markers = markers.normalize()
	return &clone
}

// Render replaces every {{field}} token in markup. When defs is nil each
// field's definition is inferred from its name; otherwise a token without a
// definition renders as unfilled. Output is a pure function of the inputs.
func (e *Engine) Render(markup string, values document.Values, defs []fields.Definition) string {
	clean := SanitizeMarkup(markup)

	var index map[fields.Name]fields.Definition
	if defs != nil {
		index = fields.Index(defs)
	}

	return fields.PlaceholderPattern.ReplaceAllStringFunc(clean, func(token string) string {
		match := fields.PlaceholderPattern.FindStringSubmatch(token)
		name := match[1]
		if index == nil {
			return e.field(fields.ProfileFor("").Define(name), values.Get(name))
		}
		def, ok := index[name]
		if !ok {
			return e.unfilled(name)
		}
		return e.field(def, values.Get(name))
	})
}

// Field renders a single field the way Render substitutes it.
func (e *Engine) Field(def fields.Definition, value document.Value) string {
	return e.field(def, value)
}

func (e *Engine) field(def fields.Definition, value document.Value) string {
	if value.IsEmpty() {
		return e.unfilled(def.Name)
	}
	if value.IsSignature() {
		sig := *value.Signature
		if err := sig.Validate(); err != nil {
			return e.unfilled(def.Name)
		}
		if sig.Kind == document.SignatureDrawn {
			return e.drawn(def, sig)
		}
		return e.typed(def.Name, sig)
	}

	text := value.Text
	if e.formatter != nil {
		text = e.formatter.Display(def, text)
	}
	return fmt.Sprintf(`<span class="%s" %s="%s">%s</span>`,
		e.markers.FilledClass, FieldAttribute, def.Name, escapeText(text))
}

func (e *Engine) unfilled(name fields.Name) string {
	return fmt.Sprintf(`<span class="%s" %s="%s">%s</span>`,
		e.markers.UnfilledClass, FieldAttribute, name, html.EscapeString(fields.Placeholder(name)))
}

func (e *Engine) drawn(def fields.Definition, sig document.Signature) string {
	alt := def.Label
	if alt == "" {
		alt = fields.Label(def.Name)
	}
	return fmt.Sprintf(`<span class="%s %s" %s="%s"><img src="%s" alt="%s" style="max-width: %dpx; max-height: %dpx;"></span>`,
		e.markers.FilledClass, e.markers.SignatureClass, FieldAttribute, def.Name,
		html.EscapeString(sig.ImageData), html.EscapeString(alt),
		e.markers.SignatureMaxWidth, e.markers.SignatureMaxHeight)
}

func (e *Engine) typed(name fields.Name, sig document.Signature) string {
	return fmt.Sprintf(`<span class="%s %s" %s="%s" style="font-family: '%s', cursive; font-size: %spx;">%s</span>`,
		e.markers.FilledClass, e.markers.SignatureClass, FieldAttribute, name,
		fontFamily(sig.Font), strconv.FormatFloat(sig.FontSize, 'f', -1, 64), escapeText(sig.Text))
}

// Braces are encoded so a value can never read back as a placeholder.
var braceEscaper = strings.NewReplacer("{", "&#123;", "}", "&#125;")

func escapeText(raw string) string {
	return braceEscaper.Replace(EscapeValue(strings.TrimSpace(raw)))
}

var unsafeFontChars = regexp.MustCompile(`[^A-Za-z0-9 \-]+`)

func fontFamily(font string) string {
	cleaned := strings.TrimSpace(unsafeFontChars.ReplaceAllString(font, ""))
	if cleaned == "" {
		return document.DefaultSignatureFont
	}
	return cleaned
}
