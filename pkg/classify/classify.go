package classify

import (
	"strings"

	"github.com/goliatone/go-doctemplate/pkg/fields"
)

const (
	PartyInformation = "Party Information"
	PropertyDetails  = "Property Details"
	LeaseTerms       = "Lease Terms"
	Signatures       = "Signatures"
	AdditionalTerms  = "Additional Terms"
)

// Order is the fixed presentation order of categories.
var Order = []string{PartyInformation, PropertyDetails, LeaseTerms, Signatures, AdditionalTerms}

// Category groups fields shown together.
type Category struct {
	Name   string        `json:"name"`
	Fields []fields.Name `json:"fields"`
}

// Predicate decides whether a field name belongs to a category.
type Predicate func(name fields.Name) bool

// Rule pairs a predicate with the category it assigns.
type Rule struct {
	Category string
	Match    Predicate
}

// Contains matches names containing any of fragments.
func Contains(fragments ...string) Predicate {
	return func(name fields.Name) bool {
		lower := strings.ToLower(name)
		for _, fragment := range fragments {
			if strings.Contains(lower, fragment) {
				return true
			}
		}
		return false
	}
}

// Suffix matches names ending in any of suffixes.
func Suffix(suffixes ...string) Predicate {
	return func(name fields.Name) bool {
		lower := strings.ToLower(name)
		for _, suffix := range suffixes {
			if strings.HasSuffix(lower, suffix) {
				return true
			}
		}
		return false
	}
}

// Any matches when any predicate matches.
func Any(preds ...Predicate) Predicate {
	return func(name fields.Name) bool {
		for _, pred := range preds {
			if pred(name) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is evaluated in order; the first match wins. Signatures are
// checked first so that "lease_holder_signature" is not claimed by the party
// rule.
var DefaultRules = []Rule{
	{Category: Signatures, Match: Contains("signature", "sign_date")},
	{Category: PartyInformation, Match: Any(
		Contains("landlord_name", "tenant_name", "business_name", "lease_holder", "roommate_name"),
		Suffix("_email", "_phone"),
	)},
	{Category: PropertyDetails, Match: Contains("property", "address", "permitted_use")},
	{Category: LeaseTerms, Match: Contains("rent", "deposit", "lease", "date", "term", "payment", "cam_charges", "move_in")},
}

// Classifier assigns fields to categories with an ordered rule table.
type Classifier struct {
	rules    []Rule
	fallback string
}

// Option customises a Classifier.
type Option func(*Classifier)

// WithRules replaces the rule table.
func WithRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.rules = append([]Rule(nil), rules...)
	}
}

// WithFallback sets the category for names no rule matches.
func WithFallback(category string) Option {
	return func(c *Classifier) {
		if category != "" {
			c.fallback = category
		}
	}
}

// New constructs a Classifier using DefaultRules.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:    DefaultRules,
		fallback: AdditionalTerms,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CategoryOf dispatches name through the rule table.
func (c *Classifier) CategoryOf(name fields.Name) string {
	for _, rule := range c.rules {
		if rule.Match != nil && rule.Match(name) {
			return rule.Category
		}
	}
	return c.fallback
}

// Classify groups the editable fields of templateID. The candidate set is the
// profile's required fields, the signers' signature fields and the discovered
// names, restricted to the allow-list. Empty categories are dropped except
// Signatures, which always holds at least the sender's signature and sign
// date. The result depends only on its inputs.
func (c *Classifier) Classify(names []fields.Name, templateID string) []Category {
	profile := fields.ProfileFor(templateID)

	candidates := make([]fields.Name, 0, len(names)+len(profile.Required)+4)
	candidates = append(candidates, profile.Required...)
	candidates = append(candidates, profile.SignatureFields()...)
	candidates = append(candidates, names...)

	seen := make(map[fields.Name]struct{}, len(candidates))
	grouped := make(map[string][]fields.Name)
	for _, name := range candidates {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if !profile.Allowed(name) {
			continue
		}
		category := c.CategoryOf(name)
		grouped[category] = append(grouped[category], name)
	}

	if len(grouped[Signatures]) == 0 {
		grouped[Signatures] = []fields.Name{profile.SenderSignature(), profile.SenderSignDate()}
	}

	out := make([]Category, 0, len(Order))
	for _, name := range c.order(grouped) {
		list := grouped[name]
		if len(list) == 0 && name != Signatures {
			continue
		}
		out = append(out, Category{Name: name, Fields: list})
	}
	return out
}

// order returns Order followed by any custom categories in rule order.
func (c *Classifier) order(grouped map[string][]fields.Name) []string {
	out := append([]string(nil), Order...)
	known := make(map[string]struct{}, len(out))
	for _, name := range out {
		known[name] = struct{}{}
	}
	extra := make([]string, 0)
	for _, rule := range c.rules {
		extra = append(extra, rule.Category)
	}
	extra = append(extra, c.fallback)
	for _, name := range extra {
		if _, ok := known[name]; ok {
			continue
		}
		if _, ok := grouped[name]; !ok {
			continue
		}
		known[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

var defaultClassifier = New()

// Classify runs the default classifier.
func Classify(names []fields.Name, templateID string) []Category {
	return defaultClassifier.Classify(names, templateID)
}

// Find returns the category with the given name.
func Find(categories []Category, name string) (Category, bool) {
	for _, category := range categories {
		if category.Name == name {
			return category, true
		}
	}
	return Category{}, false
}

// Names flattens categories into their field names in order.
func Names(categories []Category) []fields.Name {
	var out []fields.Name
	for _, category := range categories {
		out = append(out, category.Fields...)
	}
	return out
}
