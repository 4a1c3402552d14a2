package format_test

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"golang.org/x/text/language"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/format"
)

func TestFormatter_Currency(t *testing.T) {
	f := format.New()
	cases := map[string]string{
		"2000":        "$2,000.00",
		"$1,250.5":    "$1,250.50",
		" 950 ":       "$950.00",
		"1234567.891": "$1,234,567.89",
	}
	for raw, want := range cases {
		got, err := f.Currency(raw)
		if err != nil {
			t.Fatalf("Currency(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("Currency(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := f.Currency("two thousand"); !errors.Is(err, format.ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	euro := format.New(format.WithCurrencyMarker("€"))
	if got, _ := euro.Currency("10"); got != "€10.00" {
		t.Fatalf("unexpected marker output %q", got)
	}
}

func TestFormatter_Date(t *testing.T) {
	f := format.New()
	for _, raw := range []string{"2025-01-01", "01/01/2025", "1/1/2025", "January 1, 2025", "Jan 1, 2025", "2025-01-01T10:00:00Z"} {
		got, err := f.Date(raw)
		if err != nil {
			t.Fatalf("Date(%q): %v", raw, err)
		}
		if got != "2025-01-01" {
			t.Fatalf("Date(%q) = %q", raw, got)
		}
	}
	if got, _ := f.DisplayDate("2025-12-31"); got != "December 31, 2025" {
		t.Fatalf("unexpected display date %q", got)
	}
	if _, err := f.Date("31/31/2025"); !errors.Is(err, format.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestFormatter_Phone(t *testing.T) {
	f := format.New()
	cases := map[string]string{
		"5551234567":      "(555) 123-4567",
		"555.123.4567":    "(555) 123-4567",
		"1 555 123 4567":  "+1 (555) 123-4567",
		"+1-555-123-4567": "+1 (555) 123-4567",
	}
	for raw, want := range cases {
		got, err := f.Phone(raw)
		if err != nil {
			t.Fatalf("Phone(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("Phone(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := f.Phone("12345"); !errors.Is(err, format.ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestFormatter_Text(t *testing.T) {
	f := format.New()

	if got, _ := f.Text("lease_term_months", fields.TypeNumber, "1,2"); got != "12" {
		t.Fatalf("unexpected number %q", got)
	}
	if got, _ := f.Text("tenant_phone", fields.TypeText, "5551234567"); got != "(555) 123-4567" {
		t.Fatalf("unexpected phone %q", got)
	}
	if got, err := f.Text("tenant_phone", fields.TypeText, "ext 12"); err != nil || got != "ext 12" {
		t.Fatalf("unparseable phone should be kept, got %q, %v", got, err)
	}
	if got, _ := f.Text("landlord_name", fields.TypeText, "  Ada  "); got != "Ada" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestFormatter_ValuePassesSignaturesThrough(t *testing.T) {
	f := format.New()
	def := fields.Definition{Name: "landlord_signature", Type: fields.TypeSignature}
	sig := document.SignatureValue(document.Typed("J. Smith", "Dancing Script", 48))

	got, err := f.Value(def, sig)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if !got.Equal(sig) {
		t.Fatalf("signature should be unchanged, got %#v", got)
	}

	rent := fields.Definition{Name: "monthly_rent", Type: fields.TypeCurrency}
	formatted, err := f.Value(rent, document.Text("2000"))
	if err != nil || formatted.Text != "$2,000.00" {
		t.Fatalf("unexpected currency value %#v, %v", formatted, err)
	}
	bad := document.Text("abc")
	kept, err := f.Value(rent, bad)
	if err == nil || !kept.Equal(bad) {
		t.Fatalf("expected original value and error, got %#v, %v", kept, err)
	}
}

func TestFormatter_Display(t *testing.T) {
	f := format.New()
	if got := f.Display(fields.Definition{Type: fields.TypeDate}, "2025-01-01"); got != "January 1, 2025" {
		t.Fatalf("unexpected date display %q", got)
	}
	if got := f.Display(fields.Definition{Type: fields.TypeCurrency}, "n/a"); got != "n/a" {
		t.Fatalf("unparseable values should display as entered, got %q", got)
	}
}

func TestFormatter_CurrencyRoundTrip(t *testing.T) {
	rent := fields.Definition{Name: "monthly_rent", Type: fields.TypeCurrency}
	formatters := map[string]*format.Formatter{
		"euro marker": format.New(format.WithCurrencyMarker("€")),
		"code marker": format.New(format.WithCurrencyMarker("CHF ")),
		"german":      format.New(format.WithLanguage(language.German)),
		"french euro": format.New(format.WithLanguage(language.French), format.WithCurrencyMarker("€")),
	}
	for name, f := range formatters {
		for _, want := range []float64{2000, 950.5, 1234567.89} {
			stored, err := f.Currency(strconv.FormatFloat(want, 'f', 2, 64))
			if err != nil {
				t.Fatalf("%s: format %v: %v", name, want, err)
			}
			got, err := format.ParseCurrency(stored)
			if err != nil {
				t.Fatalf("%s: parse %q: %v", name, stored, err)
			}
			if math.Abs(got-want) > 0.001 {
				t.Fatalf("%s: %q parsed as %v, want %v", name, stored, got, want)
			}
			if display := f.Display(rent, stored); display != stored {
				t.Fatalf("%s: display of %q changed it to %q", name, stored, display)
			}
			again, err := f.Currency(stored)
			if err != nil || again != stored {
				t.Fatalf("%s: reformatting %q gave %q, %v", name, stored, again, err)
			}
		}
	}
}

func TestParseCurrency_Forms(t *testing.T) {
	cases := map[string]float64{
		"$2,000.00":     2000,
		"€2.000,00":     2000,
		"2.000,00 €":    2000,
		"CHF 2'000.50":  2000.5,
		"1,250":         1250,
		"950,00":        950,
		"12.5":          12.5,
		"-$40.00":       -40,
		"1.234.567,89":  1234567.89,
		"USD 1,000,000": 1000000,
	}
	for raw, want := range cases {
		got, err := format.ParseCurrency(raw)
		if err != nil {
			t.Fatalf("ParseCurrency(%q): %v", raw, err)
		}
		if math.Abs(got-want) > 0.001 {
			t.Fatalf("ParseCurrency(%q) = %v, want %v", raw, got, want)
		}
	}
	for _, raw := range []string{"lots", "12 months", ",", ""} {
		if _, err := format.ParseCurrency(raw); !errors.Is(err, format.ErrInvalidCurrency) {
			t.Fatalf("ParseCurrency(%q): expected ErrInvalidCurrency, got %v", raw, err)
		}
	}
}
