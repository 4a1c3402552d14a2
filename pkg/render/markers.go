package render

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme tokens read by MarkersFromSelection.
const (
	TokenFilled          = "doc.filled"
	TokenUnfilled        = "doc.unfilled"
	TokenSignature       = "doc.signature"
	TokenSignatureWidth  = "doc.signature.maxWidth"
	TokenSignatureHeight = "doc.signature.maxHeight"
)

// FieldAttribute maps rendered content back to its field.
const FieldAttribute = "data-field"

// Markers control how substituted fields are decorated.
type Markers struct {
	FilledClass        string
	UnfilledClass      string
	SignatureClass     string
	SignatureMaxWidth  int
	SignatureMaxHeight int
}

// DefaultMarkers returns the stock marker classes and a 200x60 signature box.
func DefaultMarkers() Markers {
	return Markers{
		FilledClass:        "field-filled",
		UnfilledClass:      "field-unfilled",
		SignatureClass:     "field-signature",
		SignatureMaxWidth:  200,
		SignatureMaxHeight: 60,
	}
}

var classPattern = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)

// normalize fills zero values from the defaults and drops class names that
// are unsafe inside an attribute.
func (m Markers) normalize() Markers {
	def := DefaultMarkers()
	pick := func(value, fallback string) string {
		value = strings.TrimSpace(value)
		if value == "" || !classPattern.MatchString(value) {
			return fallback
		}
		return value
	}
	m.FilledClass = pick(m.FilledClass, def.FilledClass)
	m.UnfilledClass = pick(m.UnfilledClass, def.UnfilledClass)
	m.SignatureClass = pick(m.SignatureClass, def.SignatureClass)
	if m.SignatureMaxWidth <= 0 {
		m.SignatureMaxWidth = def.SignatureMaxWidth
	}
	if m.SignatureMaxHeight <= 0 {
		m.SignatureMaxHeight = def.SignatureMaxHeight
	}
	return m
}

// MarkersFromSelection derives markers from a theme selection. Variant
// tokens override manifest tokens; missing tokens keep the defaults.
func MarkersFromSelection(selection *theme.Selection) Markers {
	markers := DefaultMarkers()
	if selection == nil || selection.Manifest == nil {
		return markers
	}

	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}

	markers.FilledClass = tokens[TokenFilled]
	markers.UnfilledClass = tokens[TokenUnfilled]
	markers.SignatureClass = tokens[TokenSignature]
	markers.SignatureMaxWidth = pixels(tokens[TokenSignatureWidth])
	markers.SignatureMaxHeight = pixels(tokens[TokenSignatureHeight])
	return markers.normalize()
}

// ResolveMarkers selects a theme and derives its markers.
func ResolveMarkers(selector theme.ThemeSelector, name, variant string) (Markers, error) {
	if selector == nil {
		return DefaultMarkers(), nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return DefaultMarkers(), fmt.Errorf("render: select theme %q: %w", name, err)
	}
	return MarkersFromSelection(selection), nil
}

func pixels(raw string) int {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "px")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

var ErrThemeNotFound = errors.New("render: theme not found")

// StaticSelector serves a fixed set of manifests. An empty name or variant
// falls back to the selector defaults.
type StaticSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector registers manifests by name.
func NewStaticSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest != nil && manifest.Name != "" {
			s.manifests[manifest.Name] = manifest
		}
	}
	return s
}

// Select implements theme.ThemeSelector.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = s.defaultTheme
	}
	if variant == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}
