package prompt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/format"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

// DefaultFonts are offered for typed signatures.
var DefaultFonts = []string{document.DefaultSignatureFont, "Great Vibes", "Pacifico", "Allura"}

const (
	signatureTyped = "Type it"
	signatureImage = "Use an image file"
	signatureSkip  = "Skip for now"
)

// Option customises a Filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithFonts sets the fonts offered for typed signatures.
func WithFonts(fonts ...string) Option {
	return func(f *Filler) {
		if len(fonts) > 0 {
			f.fonts = fonts
		}
	}
}

// WithRole decides which fields are required while prompting. Counterparty
// fields are only asked for under validation.RoleFinalize.
func WithRole(role validation.Role) Option {
	return func(f *Filler) {
		f.role = role
	}
}

// WithFormatter sets the formatter applied to accepted answers.
func WithFormatter(formatter *format.Formatter) Option {
	return func(f *Filler) {
		if formatter != nil {
			f.formatter = formatter
		}
	}
}

// Filler walks a prepared template category by category and asks for every
// field.
type Filler struct {
	driver    Driver
	fonts     []string
	role      validation.Role
	formatter *format.Formatter
}

// NewFiller returns a Filler using survey prompts by default.
func NewFiller(opts ...Option) *Filler {
	f := &Filler{
		driver:    NewSurveyDriver(),
		fonts:     DefaultFonts,
		role:      validation.RoleSend,
		formatter: format.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill prompts for each classified field, starting from values, and returns
// the collected values. Existing answers become prompt defaults.
func (f *Filler) Fill(ctx context.Context, prepared orchestrator.Prepared, values document.Values) (document.Values, error) {
	out := values.Clone()
	if out == nil {
		out = document.Values{}
	}
	validator := prepared.Validator()

	for _, category := range prepared.Categories {
		if err := f.driver.Info(ctx, fmt.Sprintf("\n== %s ==", category.Name)); err != nil {
			return out, err
		}
		for _, name := range category.Fields {
			def, ok := prepared.Definition(name)
			if !ok {
				continue
			}
			if f.role != validation.RoleFinalize && prepared.Profile.IsCounterpartyField(name) {
				continue
			}
			required := def.Required && validator.RequiredFor(def, f.role)

			var (
				value document.Value
				err   error
			)
			if def.Type == fields.TypeSignature {
				value, err = f.signature(ctx, def, required)
			} else {
				value, err = f.text(ctx, def, out.Get(name), required, validator)
			}
			if err != nil {
				return out, err
			}
			if value.IsEmpty() {
				delete(out, name)
				continue
			}
			out[name] = value
		}
	}
	return out, nil
}

func (f *Filler) text(ctx context.Context, def fields.Definition, current document.Value, required bool, validator *validation.Validator) (document.Value, error) {
	message := def.Label
	if required {
		message += " *"
	}
	answer, err := f.driver.Input(ctx, InputConfig{
		Message: message,
		Default: current.Text,
		Help:    fields.Placeholder(def.Name),
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				if required {
					return fmt.Errorf("%s is required", def.Label)
				}
				return nil
			}
			return validator.ValidateField(def, document.Text(raw))
		},
	})
	if err != nil {
		return document.Value{}, err
	}
	value, err := f.formatter.Value(def, document.Text(answer))
	if err != nil {
		return document.Value{}, fmt.Errorf("prompt: %s: %w", def.Name, err)
	}
	return value, nil
}

func (f *Filler) signature(ctx context.Context, def fields.Definition, required bool) (document.Value, error) {
	options := []string{signatureTyped, signatureImage}
	if !required {
		options = append(options, signatureSkip)
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: def.Label, Options: options})
	if err != nil {
		return document.Value{}, err
	}
	if idx < 0 || idx >= len(options) {
		return document.Value{}, ErrNoSelection
	}

	switch options[idx] {
	case signatureTyped:
		return f.typedSignature(ctx, def)
	case signatureImage:
		return f.imageSignature(ctx, def)
	default:
		return document.Value{}, nil
	}
}

func (f *Filler) typedSignature(ctx context.Context, def fields.Definition) (document.Value, error) {
	text, err := f.driver.Input(ctx, InputConfig{
		Message: def.Label + " (typed name)",
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return errors.New("a typed signature needs text")
			}
			return nil
		},
	})
	if err != nil {
		return document.Value{}, err
	}
	fontIdx, err := f.driver.Select(ctx, SelectConfig{Message: "Font", Options: f.fonts})
	if err != nil {
		return document.Value{}, err
	}
	if fontIdx < 0 || fontIdx >= len(f.fonts) {
		return document.Value{}, ErrNoSelection
	}
	rawSize, err := f.driver.Input(ctx, InputConfig{
		Message: "Font size",
		Default: strconv.Itoa(document.DefaultSignatureFontSize),
		Validator: func(raw string) error {
			_, err := parseFontSize(raw)
			return err
		},
	})
	if err != nil {
		return document.Value{}, err
	}
	size, err := parseFontSize(rawSize)
	if err != nil {
		return document.Value{}, err
	}

	sig := document.Typed(text, f.fonts[fontIdx], size)
	if err := sig.Validate(); err != nil {
		return document.Value{}, fmt.Errorf("prompt: %s: %w", def.Name, err)
	}
	return document.SignatureValue(sig), nil
}

func (f *Filler) imageSignature(ctx context.Context, def fields.Definition) (document.Value, error) {
	path, err := f.driver.Input(ctx, InputConfig{
		Message: def.Label + " (image path)",
		Validator: func(raw string) error {
			_, err := ImageDataURL(raw)
			return err
		},
	})
	if err != nil {
		return document.Value{}, err
	}
	dataURL, err := ImageDataURL(path)
	if err != nil {
		return document.Value{}, err
	}
	sig := document.Drawn(dataURL)
	if err := sig.Validate(); err != nil {
		return document.Value{}, fmt.Errorf("prompt: %s: %w", def.Name, err)
	}
	return document.SignatureValue(sig), nil
}

// ImageDataURL reads an image file and encodes it as a base64 data URL.
func ImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("prompt: read signature image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("prompt: %s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func parseFontSize(raw string) (float64, error) {
	size, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || size < 1 || size > 200 {
		return 0, errors.New("font size must be a number between 1 and 200")
	}
	return size, nil
}
