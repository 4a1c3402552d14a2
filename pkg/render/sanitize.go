package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy

	valuePolicyOnce sync.Once
	valuePolicy     *bluemonday.Policy
)

// SanitizeMarkup strips scripts, handlers and unknown elements from template
// markup. Placeholder tokens in text content survive unchanged.
func SanitizeMarkup(raw string) string {
	return markupSanitizer().Sanitize(raw)
}

// EscapeValue strips any markup from a user-supplied value and escapes the
// remaining text.
func EscapeValue(raw string) string {
	return valueSanitizer().Sanitize(raw)
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowElements("section", "article", "header", "footer")
		markupPolicy = policy
	})
	return markupPolicy
}

func valueSanitizer() *bluemonday.Policy {
	valuePolicyOnce.Do(func() {
		valuePolicy = bluemonday.StrictPolicy()
	})
	return valuePolicy
}
