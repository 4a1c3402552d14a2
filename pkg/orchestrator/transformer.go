package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transformer mutates a Prepared template before it is returned to callers.
// Implementations can relabel fields or adjust requiredness per deployment.
type Transformer interface {
	Transform(ctx context.Context, prepared *Prepared) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, prepared *Prepared) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, prepared *Prepared) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, prepared)
}

// PresetTransformer applies declarative field patches loaded from a JSON or
// YAML document. Patches under "fields" apply to every template; patches
// under "templates.<id>.fields" apply to that template only and win:
//
//	fields:
//	  tenant_phone: {label: "Tenant Mobile"}
//	templates:
//	  lease-standard:
//	    title: "Standard Residential Lease"
//	    fields:
//	      property_address: {required: true}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Fields    map[string]fieldPatch     `yaml:"fields" json:"fields"`
	Templates map[string]templatePatch `yaml:"templates" json:"templates"`
}

type templatePatch struct {
	Title  string                `yaml:"title" json:"title"`
	Fields map[string]fieldPatch `yaml:"fields" json:"fields"`
}

type fieldPatch struct {
	Label    string `yaml:"label" json:"label"`
	Required *bool  `yaml:"required" json:"required"`
}

// NewPresetTransformer parses a preset document. JSON input is accepted as
// YAML.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches. Patches naming fields the template does not
// define are ignored.
func (t *PresetTransformer) Transform(ctx context.Context, prepared *Prepared) error {
	if prepared == nil {
		return errors.New("preset transformer: prepared template is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.applyFields(prepared, t.document.Fields)
	if patch, ok := t.document.Templates[prepared.Template.ID]; ok {
		if title := strings.TrimSpace(patch.Title); title != "" {
			prepared.Template.Title = title
		}
		t.applyFields(prepared, patch.Fields)
	}
	return nil
}

func (t *PresetTransformer) applyFields(prepared *Prepared, patches map[string]fieldPatch) {
	if len(patches) == 0 {
		return
	}
	for idx := range prepared.Definitions {
		def := &prepared.Definitions[idx]
		patch, ok := patches[def.Name]
		if !ok {
			continue
		}
		if label := strings.TrimSpace(patch.Label); label != "" {
			def.Label = label
		}
		if patch.Required != nil {
			def.Required = *patch.Required
		}
	}
}
