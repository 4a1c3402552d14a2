package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SignatureKind distinguishes the two capture modes.
type SignatureKind string

const (
	SignatureDrawn SignatureKind = "drawn"
	SignatureTyped SignatureKind = "typed"
)

const (
	DefaultSignatureFont     = "Dancing Script"
	DefaultSignatureFontSize = 32
	maxSignatureFontSize     = 200
)

var imageDataPattern = regexp.MustCompile(`^data:image/(png|jpeg|gif|webp|svg\+xml);base64,[A-Za-z0-9+/]+={0,2}$`)

// Signature is a captured signature: either a drawn image (data URL) or typed
// text with the font it was typed in.
type Signature struct {
	Kind      SignatureKind `json:"kind"`
	ImageData string        `json:"imageData,omitempty"`
	Text      string        `json:"text,omitempty"`
	Font      string        `json:"font,omitempty"`
	FontSize  float64       `json:"fontSize,omitempty"`
}

// Drawn builds a drawn signature from an image data URL.
func Drawn(imageData string) Signature {
	return Signature{Kind: SignatureDrawn, ImageData: strings.TrimSpace(imageData)}
}

// Typed builds a typed signature. An empty font or non-positive size falls
// back to the defaults.
func Typed(text, font string, size float64) Signature {
	font = strings.TrimSpace(font)
	if font == "" {
		font = DefaultSignatureFont
	}
	if size <= 0 {
		size = DefaultSignatureFontSize
	}
	return Signature{Kind: SignatureTyped, Text: strings.TrimSpace(text), Font: font, FontSize: size}
}

// IsEmpty reports whether the signature carries nothing to render.
func (s Signature) IsEmpty() bool {
	switch s.Kind {
	case SignatureDrawn:
		return strings.TrimSpace(s.ImageData) == ""
	case SignatureTyped:
		return strings.TrimSpace(s.Text) == ""
	default:
		return true
	}
}

// Validate checks that the signature is well formed.
func (s Signature) Validate() error {
	switch s.Kind {
	case SignatureDrawn:
		if strings.TrimSpace(s.ImageData) == "" {
			return errors.New("drawn signature is empty")
		}
		if !imageDataPattern.MatchString(s.ImageData) {
			return errors.New("drawn signature must be a base64 image data URL")
		}
		return nil
	case SignatureTyped:
		if strings.TrimSpace(s.Text) == "" {
			return errors.New("typed signature text is empty")
		}
		if s.FontSize <= 0 || s.FontSize > maxSignatureFontSize {
			return fmt.Errorf("typed signature font size must be between 1 and %d", maxSignatureFontSize)
		}
		return nil
	case "":
		return errors.New("signature kind is required")
	default:
		return fmt.Errorf("unknown signature kind %q", s.Kind)
	}
}

// Value is a field value: plain text or a structured signature.
type Value struct {
	Text      string
	Signature *Signature
}

// Text wraps a string value.
func Text(value string) Value {
	return Value{Text: value}
}

// SignatureValue wraps a captured signature.
func SignatureValue(sig Signature) Value {
	return Value{Signature: &sig}
}

// IsSignature reports whether the value holds a structured signature.
func (v Value) IsSignature() bool {
	return v.Signature != nil
}

// IsEmpty reports whether the value is blank.
func (v Value) IsEmpty() bool {
	if v.Signature != nil {
		return v.Signature.IsEmpty()
	}
	return strings.TrimSpace(v.Text) == ""
}

// String returns the textual content (typed signature text for signatures).
func (v Value) String() string {
	if v.Signature != nil {
		if v.Signature.Kind == SignatureTyped {
			return v.Signature.Text
		}
		return ""
	}
	return v.Text
}

// Equal reports whether two values are identical.
func (v Value) Equal(other Value) bool {
	if (v.Signature == nil) != (other.Signature == nil) {
		return false
	}
	if v.Signature != nil {
		return *v.Signature == *other.Signature
	}
	return v.Text == other.Text
}

// MarshalJSON encodes text values as JSON strings and signatures as objects.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Signature != nil {
		return json.Marshal(v.Signature)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a string or a signature object.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*v = Text(text)
		return nil
	case '{':
		var sig Signature
		if err := json.Unmarshal(trimmed, &sig); err != nil {
			return err
		}
		*v = SignatureValue(sig)
		return nil
	default:
		// Numbers and booleans coming from loosely typed clients.
		*v = Text(string(trimmed))
		return nil
	}
}

// Values maps field names to values.
type Values map[string]Value

// Get returns the value for name or the zero Value.
func (vs Values) Get(name string) Value {
	if vs == nil {
		return Value{}
	}
	return vs[name]
}

// Filled reports whether name has a non-empty value.
func (vs Values) Filled(name string) bool {
	return !vs.Get(name).IsEmpty()
}

// Clone returns a deep copy.
func (vs Values) Clone() Values {
	if vs == nil {
		return Values{}
	}
	out := make(Values, len(vs))
	for k, v := range vs {
		if v.Signature != nil {
			sig := *v.Signature
			v.Signature = &sig
		}
		out[k] = v
	}
	return out
}

// TextValues builds Values from a plain string map.
func TextValues(in map[string]string) Values {
	out := make(Values, len(in))
	for k, v := range in {
		out[k] = Text(v)
	}
	return out
}
