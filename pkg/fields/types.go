package fields

import "strings"

// Type is the display type inferred from a field name.
type Type string

const (
	TypeText      Type = "text"
	TypeCurrency  Type = "currency"
	TypeDate      Type = "date"
	TypeNumber    Type = "number"
	TypeSignature Type = "signature"
)

type typeRule struct {
	fragments []string
	typ       Type
}

// Checked in order; first match wins.
var typeRules = []typeRule{
	{fragments: []string{"date"}, typ: TypeDate},
	{fragments: []string{"signature"}, typ: TypeSignature},
	{fragments: []string{"rent", "deposit", "cam_charges"}, typ: TypeCurrency},
	{fragments: []string{"lease_term_months", "lease_term_years", "payment_due_day"}, typ: TypeNumber},
}

// InferType derives the display type of a field from its name alone.
func InferType(name Name) Type {
	lower := strings.ToLower(name)
	for _, rule := range typeRules {
		if containsAny(lower, rule.fragments) {
			return rule.typ
		}
	}
	return TypeText
}

// IsPhone reports whether the field holds a phone number.
func IsPhone(name Name) bool {
	return strings.Contains(strings.ToLower(name), "phone")
}

// IsEmail reports whether the field holds an email address.
func IsEmail(name Name) bool {
	return strings.Contains(strings.ToLower(name), "email")
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
