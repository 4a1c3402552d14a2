package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-doctemplate/pkg/fields"
)

// FieldMarker is a data-field element found in rendered output.
type FieldMarker struct {
	Field  fields.Name
	Filled bool
}

// Inspect parses rendered output and returns every data-field marker in
// document order. Filled is derived from the marker classes.
func Inspect(output string, markers Markers) ([]FieldMarker, error) {
	root, err := html.Parse(strings.NewReader(output))
	if err != nil {
		return nil, fmt.Errorf("render: parse output: %w", err)
	}
	markers = markers.normalize()

	var out []FieldMarker
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var (
				name    string
				classes string
				tagged  bool
			)
			for _, attr := range n.Attr {
				switch attr.Key {
				case FieldAttribute:
					name, tagged = attr.Val, true
				case "class":
					classes = attr.Val
				}
			}
			if tagged {
				out = append(out, FieldMarker{
					Field:  name,
					Filled: hasClass(classes, markers.FilledClass),
				})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return out, nil
}

// FieldsInOutput returns the distinct field names carrying a data-field marker
// in rendered output, in first-seen order.
func FieldsInOutput(output string) ([]fields.Name, error) {
	found, err := Inspect(output, DefaultMarkers())
	if err != nil {
		return nil, err
	}
	seen := make(map[fields.Name]struct{}, len(found))
	var out []fields.Name
	for _, marker := range found {
		if _, ok := seen[marker.Field]; ok {
			continue
		}
		seen[marker.Field] = struct{}{}
		out = append(out, marker.Field)
	}
	return out, nil
}

func hasClass(classes, want string) bool {
	wanted := strings.Fields(want)
	if len(wanted) == 0 {
		return false
	}
	have := make(map[string]struct{})
	for _, class := range strings.Fields(classes) {
		have[class] = struct{}{}
	}
	for _, class := range wanted {
		if _, ok := have[class]; !ok {
			return false
		}
	}
	return true
}
