package fields

import "regexp"

// Name identifies a placeholder slot inside one template.
type Name = string

// PlaceholderPattern matches {{field_name}} tokens. Whitespace inside the
// braces is tolerated; the identifier itself is letters, digits and
// underscores.
var PlaceholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Extract returns the distinct placeholder names found in content and any
// auxiliary fragments (for example a signature block appended separately),
// preserving first-seen order.
func Extract(content string, fragments ...string) []Name {
	seen := make(map[Name]struct{})
	var out []Name
	scan := func(markup string) {
		for _, match := range PlaceholderPattern.FindAllStringSubmatch(markup, -1) {
			name := match[1]
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	scan(content)
	for _, fragment := range fragments {
		scan(fragment)
	}
	return out
}
