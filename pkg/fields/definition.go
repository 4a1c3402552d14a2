package fields

// Definition describes an editable field. It is derived, never persisted.
type Definition struct {
	Name     Name   `json:"name"`
	Label    string `json:"label"`
	Type     Type   `json:"type"`
	Required bool   `json:"required"`
}

// Define builds the definition of a single field under profile p.
func (p Profile) Define(name Name) Definition {
	return Definition{
		Name:     name,
		Label:    Label(name),
		Type:     InferType(name),
		Required: p.IsRequired(name),
	}
}

// Definitions builds definitions for names in order using the profile of
// templateID.
func Definitions(names []Name, templateID string) []Definition {
	p := ProfileFor(templateID)
	out := make([]Definition, 0, len(names))
	for _, name := range names {
		out = append(out, p.Define(name))
	}
	return out
}

// Index maps definitions by name.
func Index(defs []Definition) map[Name]Definition {
	out := make(map[Name]Definition, len(defs))
	for _, def := range defs {
		out[def.Name] = def
	}
	return out
}
