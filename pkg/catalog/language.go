package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage reduces a language tag to the base code used as catalog
// key ("de-DE" -> "de", "pt_BR" -> "pt"). Empty input yields DefaultLanguage.
func NormalizeLanguage(raw string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if trimmed == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return strings.ToLower(trimmed)
	}
	return base.String()
}
