package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/format"
)

// Role selects which party the validation is performed for.
type Role string

const (
	// RoleSaveDraft validates a draft save; signatures may be missing.
	RoleSaveDraft Role = "save-draft"
	// RoleSend validates sending to the counterparty; fields the counterparty
	// supplies after receipt may be missing.
	RoleSend Role = "send"
	// RoleFinalize validates a completed document; every required field must
	// be present.
	RoleFinalize Role = "finalize"
)

var ErrUnknownRole = errors.New("validation: unknown role")

// ParseRole maps a role name to a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleSaveDraft, "draft", "save":
		return RoleSaveDraft, nil
	case RoleSend, "send-to-counterparty":
		return RoleSend, nil
	case RoleFinalize, "complete", "completed":
		return RoleFinalize, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
}

// Result captures validation outcomes. Valid is true iff Errors is empty.
type Result struct {
	Valid  bool                   `json:"valid"`
	Errors map[fields.Name]string `json:"errors,omitempty"`
}

// Fields returns the names with errors, sorted.
func (r Result) Fields() []fields.Name {
	out := make([]fields.Name, 0, len(r.Errors))
	for name := range r.Errors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validator checks field values against their definitions.
type Validator struct {
	profile fields.Profile
}

// Option customises a Validator.
type Option func(*Validator)

// WithProfile sets the template profile used for role scoping.
func WithProfile(profile fields.Profile) Option {
	return func(v *Validator) {
		v.profile = profile
	}
}

// WithTemplate selects the profile registered for templateID.
func WithTemplate(templateID string) Option {
	return func(v *Validator) {
		v.profile = fields.ProfileFor(templateID)
	}
}

// New constructs a Validator using the default landlord/tenant profile.
func New(opts ...Option) *Validator {
	v := &Validator{profile: fields.ProfileFor("")}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate runs a one-off validation.
func Validate(defs []fields.Definition, values document.Values, role Role, opts ...Option) Result {
	return New(opts...).Validate(defs, values, role)
}

// Validate checks every definition: required fields (scoped by role) must be
// non-empty and non-empty values must have the right shape.
func (v *Validator) Validate(defs []fields.Definition, values document.Values, role Role) Result {
	result := Result{Valid: true}
	add := func(name fields.Name, msg string) {
		if result.Errors == nil {
			result.Errors = make(map[fields.Name]string)
		}
		result.Errors[name] = msg
	}

	// Unknown roles get the strictest treatment.
	if parsed, err := ParseRole(string(role)); err == nil {
		role = parsed
	} else {
		role = RoleFinalize
	}

	for _, def := range defs {
		value := values.Get(def.Name)
		if value.IsEmpty() {
			if def.Required && v.RequiredFor(def, role) {
				add(def.Name, fmt.Sprintf("%s is required", label(def)))
			}
			continue
		}
		if err := v.ValidateField(def, value); err != nil {
			add(def.Name, err.Error())
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// RequiredFor reports whether a required definition stays required for role.
func (v *Validator) RequiredFor(def fields.Definition, role Role) bool {
	switch role {
	case RoleSaveDraft:
		return !v.isSignatureField(def)
	case RoleSend:
		return !v.profile.IsCounterpartyField(def.Name)
	default:
		return true
	}
}

func (v *Validator) isSignatureField(def fields.Definition) bool {
	if def.Type == fields.TypeSignature {
		return true
	}
	for _, name := range v.profile.SignatureFields() {
		if name == def.Name {
			return true
		}
	}
	return strings.Contains(def.Name, "sign_date")
}

// ValidateField checks the shape of a single non-empty value. Empty values
// are accepted; requiredness is role-dependent and handled by Validate.
func (v *Validator) ValidateField(def fields.Definition, value document.Value) error {
	if value.IsEmpty() {
		return nil
	}
	name := label(def)

	if def.Type == fields.TypeSignature {
		if !value.IsSignature() {
			return fmt.Errorf("%s must be a drawn or typed signature", name)
		}
		if err := value.Signature.Validate(); err != nil {
			return fmt.Errorf("%s: %v", name, err)
		}
		return nil
	}
	if value.IsSignature() {
		return fmt.Errorf("%s does not accept a signature", name)
	}

	text := strings.TrimSpace(value.Text)
	switch def.Type {
	case fields.TypeDate:
		if _, err := format.ParseDate(text); err != nil {
			return fmt.Errorf("%s must be a valid date", name)
		}
	case fields.TypeCurrency:
		amount, err := format.ParseCurrency(text)
		if err != nil {
			return fmt.Errorf("%s must be a valid amount", name)
		}
		if amount < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	case fields.TypeNumber:
		n, err := format.ParseNumber(text)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", name)
		}
		if n < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
		if def.Name == "payment_due_day" && (n < 1 || n > 31) {
			return fmt.Errorf("%s must be between 1 and 31", name)
		}
	default:
		if fields.IsEmail(def.Name) {
			if _, err := mail.ParseAddress(text); err != nil {
				return fmt.Errorf("%s must be a valid email address", name)
			}
		}
		if fields.IsPhone(def.Name) {
			if _, err := format.New().Phone(text); err != nil {
				return fmt.Errorf("%s must be a valid phone number", name)
			}
		}
	}
	return nil
}

func label(def fields.Definition) string {
	if def.Label != "" {
		return def.Label
	}
	return fields.Label(def.Name)
}
