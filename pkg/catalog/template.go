package catalog

import (
	"errors"
	"strings"
)

// DefaultLanguage is the variant every lookup falls back to.
const DefaultLanguage = "en"

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Template is a single language variant of a legal document template. Content
// holds the primary markup; SignatureBlock is an auxiliary fragment appended
// after it when rendering, and may reference fields the body never mentions.
type Template struct {
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	Language       string            `json:"language,omitempty" yaml:"language,omitempty"`
	Format         string            `json:"format,omitempty" yaml:"format,omitempty"`
	Sections       map[string]string `json:"sections,omitempty" yaml:"sections,omitempty"`
	Content        string            `json:"content" yaml:"content"`
	SignatureBlock string            `json:"signatureBlock,omitempty" yaml:"signatureBlock,omitempty"`
	// Variants maps a language code to alternate raw content for the same
	// template when the catalog does not carry a dedicated entry.
	Variants map[string]string `json:"languageVariants,omitempty" yaml:"languageVariants,omitempty"`
}

var errTemplateIDMissing = errors.New("catalog: template id is required")

// Validate performs the sanity checks applied when a catalog is decoded.
func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errTemplateIDMissing
	}
	if strings.TrimSpace(t.Content) == "" {
		return errors.New("catalog: template " + t.ID + " has no content")
	}
	return nil
}

// Markup returns the full markup scanned for placeholders and rendered: the
// primary content followed by the signature fragment.
func (t Template) Markup() string {
	if t.SignatureBlock == "" {
		return t.Content
	}
	return t.Content + "\n" + t.SignatureBlock
}

// Key returns the cache key used for the (id, language) pair.
func (t Template) Key() string {
	return Key(t.ID, t.Language)
}

// Key builds the "templateId-language" key shared by caches and catalogs.
func Key(id, lang string) string {
	return strings.TrimSpace(id) + "-" + NormalizeLanguage(lang)
}

// Clone returns a deep copy so cached templates stay immutable.
func (t Template) Clone() Template {
	cloned := t
	if len(t.Sections) > 0 {
		cloned.Sections = make(map[string]string, len(t.Sections))
		for k, v := range t.Sections {
			cloned.Sections[k] = v
		}
	}
	if len(t.Variants) > 0 {
		cloned.Variants = make(map[string]string, len(t.Variants))
		for k, v := range t.Variants {
			cloned.Variants[k] = v
		}
	}
	return cloned
}

// Summary is the listing entry for a template.
type Summary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Languages []string `json:"languages"`
}
