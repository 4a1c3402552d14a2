package completion

import (
	"github.com/goliatone/go-doctemplate/pkg/classify"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
)

// Section is the completion state of one category.
type Section struct {
	Name     string        `json:"name"`
	Complete bool          `json:"complete"`
	Filled   int           `json:"filled"`
	Total    int           `json:"total"`
	Pending  []fields.Name `json:"pending,omitempty"`
}

// Status is the sender-side completion of a document.
type Status struct {
	Sections []Section `json:"sections"`
}

// Compute derives completion per category. A non-Signatures category is
// complete when every field the sender owns is filled; fields the
// counterparty supplies after receipt are skipped and reported as Pending.
// Signatures is complete once the sender's signature is present.
func Compute(categories []classify.Category, values document.Values, profile fields.Profile) Status {
	status := Status{Sections: make([]Section, 0, len(categories))}
	for _, category := range categories {
		section := Section{Name: category.Name, Total: len(category.Fields)}
		complete := true
		for _, name := range category.Fields {
			if values.Filled(name) {
				section.Filled++
				continue
			}
			if profile.IsCounterpartyField(name) {
				section.Pending = append(section.Pending, name)
				continue
			}
			complete = false
		}
		if category.Name == classify.Signatures {
			complete = values.Filled(profile.SenderSignature())
		}
		section.Complete = complete
		status.Sections = append(status.Sections, section)
	}
	return status
}

// Completed returns the names of complete categories in category order.
func (s Status) Completed() []string {
	var out []string
	for _, section := range s.Sections {
		if section.Complete {
			out = append(out, section.Name)
		}
	}
	return out
}

// IsComplete reports whether the named category is complete.
func (s Status) IsComplete(name string) bool {
	for _, section := range s.Sections {
		if section.Name == name {
			return section.Complete
		}
	}
	return false
}

// AllComplete reports whether every category is complete for the sender.
func (s Status) AllComplete() bool {
	for _, section := range s.Sections {
		if !section.Complete {
			return false
		}
	}
	return len(s.Sections) > 0
}

// Pending lists the empty counterparty fields across all categories.
func (s Status) Pending() []fields.Name {
	var out []fields.Name
	for _, section := range s.Sections {
		out = append(out, section.Pending...)
	}
	return out
}
