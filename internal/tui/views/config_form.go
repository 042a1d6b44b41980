package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/botadmin/internal/configtree"
)

// FormField is one editable leaf of the configuration document.
type FormField struct {
	Path    []string
	Kind    configtree.Kind
	Secret  bool
	Text    string
	Checked bool
}

// Label is the dotted path shown next to the field.
func (f FormField) Label() string {
	return strings.Join(f.Path, ".")
}

// FormFields flattens doc into form fields in document order. Booleans
// become checkboxes, numbers and strings become inputs, and arrays and
// nulls are edited as JSON text.
func FormFields(doc *configtree.Node) []FormField {
	var fields []FormField
	_ = doc.Walk(func(path []string, leaf *configtree.Node) error {
		if len(path) == 0 {
			return nil
		}
		f := FormField{
			Path:   path,
			Kind:   leaf.Kind(),
			Secret: configtree.IsSecretKey(path[len(path)-1]),
		}
		switch leaf.Kind() {
		case configtree.Bool:
			f.Checked = leaf.Bool()
		case configtree.Number:
			f.Text = leaf.Number().String()
		case configtree.String:
			f.Text = leaf.Str()
		case configtree.Array:
			f.Text = leaf.Display()
		}
		fields = append(fields, f)
		return nil
	})
	return fields
}

// ApplyFields writes field values into a copy of doc. The leaf kind of
// every field is preserved; text that does not parse as that kind is an
// error naming the field.
func ApplyFields(doc *configtree.Node, fields []FormField) (*configtree.Node, error) {
	out := doc.Clone()
	if out == nil {
		out = configtree.NewObject()
	}
	for _, f := range fields {
		v, err := fieldValue(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Label(), err)
		}
		if err := out.SetPath(v, f.Path...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fieldValue(f FormField) (*configtree.Node, error) {
	switch f.Kind {
	case configtree.Bool:
		return configtree.NewBool(f.Checked), nil
	case configtree.Number:
		v := configtree.ParseScalar(f.Text)
		if v.Kind() != configtree.Number {
			return nil, fmt.Errorf("%q is not a number", f.Text)
		}
		return v, nil
	case configtree.String:
		return configtree.NewString(f.Text), nil
	case configtree.Array:
		v := configtree.ParseScalar(f.Text)
		if v.Kind() != configtree.Array {
			return nil, fmt.Errorf("expected a JSON array")
		}
		return v, nil
	}
	if strings.TrimSpace(f.Text) == "" {
		return configtree.NewNull(), nil
	}
	return configtree.ParseScalar(f.Text), nil
}
