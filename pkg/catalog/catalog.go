package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Catalog mirrors the consolidated payload served by the remote template store
// and bundled with the binary: {"templates": {id: {lang: Template}}}.
type Catalog struct {
	Templates map[string]map[string]Template `json:"templates" yaml:"templates"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Decode parses a catalog payload. JSON is attempted first, then YAML. Every
// template is normalised: ids and languages are filled from the map keys and
// markdown content is converted to HTML.
func Decode(data []byte, source string) (Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Catalog{}, fmt.Errorf("catalog: payload %s is empty", source)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		cat = Catalog{}
		if yamlErr := yaml.Unmarshal(data, &cat); yamlErr != nil {
			return Catalog{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
		}
	}
	if cat.Templates == nil {
		return Catalog{}, fmt.Errorf("catalog: payload %s has no templates", source)
	}

	normalized := make(map[string]map[string]Template, len(cat.Templates))
	for rawID, variants := range cat.Templates {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return Catalog{}, fmt.Errorf("catalog: payload %s defines an empty template id", source)
		}
		byLang := make(map[string]Template, len(variants))
		for rawLang, tpl := range variants {
			lang := NormalizeLanguage(rawLang)
			tpl.ID = id
			tpl.Language = lang
			converted, err := normalizeFormat(tpl)
			if err != nil {
				return Catalog{}, fmt.Errorf("catalog: template %s (%s): %w", id, lang, err)
			}
			if err := converted.Validate(); err != nil {
				return Catalog{}, err
			}
			byLang[lang] = converted
		}
		normalized[id] = byLang
	}
	cat.Templates = normalized
	return cat, nil
}

// Lookup returns the exact (id, lang) entry.
func (c Catalog) Lookup(id, lang string) (Template, bool) {
	variants, ok := c.Templates[strings.TrimSpace(id)]
	if !ok {
		return Template{}, false
	}
	tpl, ok := variants[NormalizeLanguage(lang)]
	if !ok {
		return Template{}, false
	}
	return tpl.Clone(), true
}

// Variant looks for an entry of the same template that carries alternate raw
// content for lang in its languageVariants map. The English entry is checked
// first so the result does not depend on map iteration order.
func (c Catalog) Variant(id, lang string) (Template, bool) {
	variants, ok := c.Templates[strings.TrimSpace(id)]
	if !ok {
		return Template{}, false
	}
	lang = NormalizeLanguage(lang)

	langs := make([]string, 0, len(variants))
	for l := range variants {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i] == DefaultLanguage {
			return true
		}
		if langs[j] == DefaultLanguage {
			return false
		}
		return langs[i] < langs[j]
	})

	for _, l := range langs {
		base := variants[l]
		raw, ok := base.Variants[lang]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		tpl := base.Clone()
		tpl.Language = lang
		tpl.Content = raw
		converted, err := normalizeFormat(tpl)
		if err != nil {
			continue
		}
		return converted, true
	}
	return Template{}, false
}

// Summaries lists the templates available in the catalog, sorted by id. The
// title is taken from the requested language when present, otherwise English.
func (c Catalog) Summaries(lang string) []Summary {
	lang = NormalizeLanguage(lang)
	out := make([]Summary, 0, len(c.Templates))
	for id, variants := range c.Templates {
		summary := Summary{ID: id}
		for l := range variants {
			summary.Languages = append(summary.Languages, l)
		}
		sort.Strings(summary.Languages)
		if tpl, ok := variants[lang]; ok {
			summary.Title = tpl.Title
		} else if tpl, ok := variants[DefaultLanguage]; ok {
			summary.Title = tpl.Title
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of (id, language) entries.
func (c Catalog) Len() int {
	total := 0
	for _, variants := range c.Templates {
		total += len(variants)
	}
	return total
}

func normalizeFormat(tpl Template) (Template, error) {
	format := strings.ToLower(strings.TrimSpace(tpl.Format))
	switch format {
	case "", FormatHTML:
		tpl.Format = FormatHTML
		return tpl, nil
	case FormatMarkdown, "md":
		content, err := markdownToHTML(tpl.Content)
		if err != nil {
			return Template{}, err
		}
		block, err := markdownToHTML(tpl.SignatureBlock)
		if err != nil {
			return Template{}, err
		}
		tpl.Content = content
		tpl.SignatureBlock = block
		tpl.Format = FormatHTML
		return tpl, nil
	default:
		return Template{}, fmt.Errorf("unsupported format %q", tpl.Format)
	}
}

func markdownToHTML(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return src, nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
