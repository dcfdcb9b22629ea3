package wizard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed steps.yaml
var stepsYAML []byte

// FieldKind is the value format of a declared field.
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindMultiline FieldKind = "multiline"
	KindEmail     FieldKind = "email"
	KindPhone     FieldKind = "phone"
	KindDate      FieldKind = "date"
	KindNumber    FieldKind = "number"
	KindSelect    FieldKind = "select"
)

var knownKinds = map[FieldKind]bool{
	KindText:      true,
	KindMultiline: true,
	KindEmail:     true,
	KindPhone:     true,
	KindDate:      true,
	KindNumber:    true,
	KindSelect:    true,
}

// Field is one declared input of a step.
type Field struct {
	Name     string    `yaml:"name" json:"name"`
	Label    string    `yaml:"label" json:"label"`
	Kind     FieldKind `yaml:"kind" json:"kind"`
	Required bool      `yaml:"required" json:"required"`
	// Options is the catalog category backing a select field.
	Options string `yaml:"options" json:"options,omitempty"`
	// Min is the lower bound for number fields.
	Min int `yaml:"min" json:"min,omitempty"`
}

// Step is one ordered stage of the wizard.
type Step struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title" json:"title"`
	Fields []Field `yaml:"fields" json:"fields"`
	// Items marks the step carrying the bill-of-quantity editor.
	Items bool `yaml:"items" json:"items"`
}

// Declares reports whether the step declares a field called name.
func (s Step) Declares(name string) bool {
	_, ok := s.field(name)
	return ok
}

func (s Step) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type stepsDoc struct {
	Steps []Step `yaml:"steps"`
}

// LoadSteps parses and validates the embedded step schema.
func LoadSteps() ([]Step, error) {
	return ParseSteps(stepsYAML)
}

// ParseSteps parses a step schema document and validates it: unknown
// kinds, duplicate ids or field names and select fields without an
// options category are load errors, not first-use surprises.
func ParseSteps(data []byte) ([]Step, error) {
	var doc stepsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse step schema: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("step schema declares no steps")
	}

	seenSteps := make(map[string]bool)
	seenFields := make(map[string]bool)
	for _, s := range doc.Steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step schema: step without id")
		}
		if seenSteps[s.ID] {
			return nil, fmt.Errorf("step schema: duplicate step id %q", s.ID)
		}
		seenSteps[s.ID] = true
		if len(s.Fields) == 0 {
			return nil, fmt.Errorf("step %q declares no fields", s.ID)
		}

		for _, f := range s.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("step %q: field without name", s.ID)
			}
			if seenFields[f.Name] {
				return nil, fmt.Errorf("step schema: duplicate field %q", f.Name)
			}
			seenFields[f.Name] = true
			if !knownKinds[f.Kind] {
				return nil, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
			}
			if f.Kind == KindSelect && f.Options == "" {
				return nil, fmt.Errorf("select field %q has no options category", f.Name)
			}
			if f.Kind != KindSelect && f.Options != "" {
				return nil, fmt.Errorf("field %q: options only apply to select fields", f.Name)
			}
		}
	}

	return doc.Steps, nil
}
