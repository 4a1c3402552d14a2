package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
)

var (
	ErrInvalidCurrency = errors.New("format: invalid currency amount")
	ErrInvalidDate     = errors.New("format: invalid date")
	ErrInvalidNumber   = errors.New("format: invalid number")
	ErrInvalidPhone    = errors.New("format: invalid phone number")
)

const (
	DefaultCurrencyMarker = "$"
	CanonicalDateLayout   = "2006-01-02"
	DisplayDateLayout     = "January 2, 2006"
)

// DateLayouts lists the accepted input layouts, tried in order.
var DateLayouts = []string{
	CanonicalDateLayout,
	"01/02/2006",
	"1/2/2006",
	DisplayDateLayout,
	"Jan 2, 2006",
	time.RFC3339,
}

// Formatter normalises raw field input according to its inferred type.
type Formatter struct {
	tag     language.Tag
	marker  string
	printer *message.Printer
}

// Option customises a Formatter.
type Option func(*Formatter)

// WithLanguage sets the locale used for digit grouping.
func WithLanguage(tag language.Tag) Option {
	return func(f *Formatter) {
		f.tag = tag
	}
}

// WithCurrencyMarker overrides the currency prefix.
func WithCurrencyMarker(marker string) Option {
	return func(f *Formatter) {
		f.marker = marker
	}
}

// New constructs a Formatter. English grouping and "$" are the defaults.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		tag:    language.English,
		marker: DefaultCurrencyMarker,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.printer = message.NewPrinter(f.tag)
	return f
}

// Currency groups digits, fixes two decimals and prefixes the marker:
// "2000" -> "$2,000.00".
func (f *Formatter) Currency(raw string) (string, error) {
	amount, err := ParseCurrency(raw)
	if err != nil {
		return "", err
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + f.marker + f.printer.Sprintf("%.2f", amount), nil
}

// Date normalises raw to the canonical calendar form.
func (f *Formatter) Date(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return t.Format(CanonicalDateLayout), nil
}

// DisplayDate renders raw in long form: "January 2, 2006".
func (f *Formatter) DisplayDate(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return t.Format(DisplayDateLayout), nil
}

// Number normalises an integer, dropping grouping separators.
func (f *Formatter) Number(raw string) (string, error) {
	n, err := ParseNumber(raw)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

// Phone normalises US numbers: ten digits -> "(555) 123-4567", eleven digits
// with a leading 1 -> "+1 (555) 123-4567".
func (f *Formatter) Phone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:]), nil
	case len(d) == 11 && d[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", d[1:4], d[4:7], d[7:]), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
}

// Text canonicalises raw input for the given field and type. Text values are
// trimmed; phone fields are normalised when they parse and left as typed
// otherwise.
func (f *Formatter) Text(name fields.Name, typ fields.Type, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", nil
	}
	switch typ {
	case fields.TypeCurrency:
		return f.Currency(value)
	case fields.TypeDate:
		return f.Date(value)
	case fields.TypeNumber:
		return f.Number(value)
	case fields.TypeSignature:
		return value, nil
	}
	if fields.IsPhone(name) {
		if phone, err := f.Phone(value); err == nil {
			return phone, nil
		}
	}
	return value, nil
}

// Value formats a field value. Signature values pass through unchanged; on
// error the original value is returned alongside the error.
func (f *Formatter) Value(def fields.Definition, v document.Value) (document.Value, error) {
	if v.IsSignature() || v.IsEmpty() {
		return v, nil
	}
	text, err := f.Text(def.Name, def.Type, v.Text)
	if err != nil {
		return v, err
	}
	return document.Text(text), nil
}

// Display converts a text value to its presentation form: currency grouped,
// dates in long form. Values that do not parse are shown as entered.
func (f *Formatter) Display(def fields.Definition, raw string) string {
	value := strings.TrimSpace(raw)
	var (
		out string
		err error
	)
	switch def.Type {
	case fields.TypeCurrency:
		out, err = f.Currency(value)
	case fields.TypeDate:
		out, err = f.DisplayDate(value)
	default:
		return value
	}
	if err != nil {
		return value
	}
	return out
}

// ParseCurrency reads an amount written in any of the forms Currency
// produces: a currency symbol or upper-case code before or after the number,
// grouping with ".", ",", spaces or apostrophes, and "." or "," as the
// decimal separator. When both separators appear the last one is the decimal
// separator. A lone "." is decimal; a lone "," is grouping when exactly three
// digits follow it ("1,250") and decimal otherwise ("950,00").
func ParseCurrency(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	negative := false
	value = strings.TrimFunc(value, func(r rune) bool {
		if r == '-' {
			negative = true
			return true
		}
		return isCurrencyAffix(r)
	})
	if value == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidCurrency)
	}

	var digits strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			digits.WriteRune(r)
		case unicode.IsSpace(r), r == '\'', r == '\u2019':
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
		}
	}

	number, err := normalizeSeparators(digits.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
	}
	amount, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
	}
	if negative {
		amount = -amount
	}
	return amount, nil
}

func isCurrencyAffix(r rune) bool {
	return unicode.Is(unicode.Sc, r) || (r >= 'A' && r <= 'Z') || unicode.IsSpace(r)
}

// normalizeSeparators rewrites a grouped number to plain "1234.56" form.
func normalizeSeparators(number string) (string, error) {
	if number == "" {
		return "", errors.New("no digits")
	}
	lastDot := strings.LastIndexByte(number, '.')
	lastComma := strings.LastIndexByte(number, ',')

	decimal := -1
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimal = max(lastDot, lastComma)
	case lastDot >= 0:
		if strings.Count(number, ".") == 1 {
			decimal = lastDot
		}
	case lastComma >= 0:
		if strings.Count(number, ",") == 1 && len(number)-lastComma-1 != 3 {
			decimal = lastComma
		}
	}

	var out strings.Builder
	for i := 0; i < len(number); i++ {
		c := number[i]
		switch {
		case i == decimal:
			out.WriteByte('.')
		case c == '.' || c == ',':
			if decimal >= 0 && i > decimal {
				return "", errors.New("separator after decimal point")
			}
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}

// ParseDate tries each of DateLayouts.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// ParseNumber reads an integer, tolerating grouping commas.
func ParseNumber(raw string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return n, nil
}
