// Package funcschema decodes function-calling manifests into grammar
// catalogs. The manifest shape is the pre-existing tool/function-calling
// format:
//
//	{"functions": [
//	  {"name": ..., "description": ...,
//	   "parameters": {"properties": {"arg": {"type": ...}, ...},
//	                  "required": ["arg", ...]}}
//	]}
//
// Property order is significant: the compiled call grammar renders
// parameters in declaration order, so properties are decoded as an ordered
// list rather than a Go map.
package funcschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/coax-ai/coax/grammar"
)

// Function is one declared function in a manifest.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters holds a function's ordered properties and its required-name
// list.
type Parameters struct {
	Properties props    `json:"properties"`
	Required   []string `json:"required"`

	// set reports whether the parameters object was present at all. A
	// signature without one is a configuration error.
	set bool
}

func (p *Parameters) UnmarshalJSON(data []byte) error {
	type P Parameters
	if err := json.Unmarshal(data, (*P)(p)); err != nil {
		return err
	}
	p.set = true
	return nil
}

// Property is one parameter declaration. Composite types carry their child
// declarations: Items for arrays, Properties for objects.
type Property struct {
	Name        string    `json:"-"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Items       *Property `json:"items"`
	Properties  props     `json:"properties"`
	MaxItems    int       `json:"maxItems"`
}

// props is an ordered list of properties, in manifest declaration order.
type props []*Property

var _ json.Unmarshaler = (*props)(nil)

func (v *props) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if data[0] != '{' {
		return errors.New("expected object")
	}

	d := json.NewDecoder(bytes.NewReader(data))
	t, err := d.Token()
	if err != nil {
		return err
	}
	if t != json.Delim('{') {
		return errors.New("expected object")
	}
	for d.More() {
		// The map key is the property name; the value decodes into the
		// property itself.
		t, err := d.Token()
		if err != nil {
			return err
		}
		p := &Property{
			Name: t.(string),
		}
		if err := d.Decode(p); err != nil {
			return err
		}
		*v = append(*v, p)
	}
	return nil
}

type manifest struct {
	Functions []*Function `json:"functions"`
}

// Decode parses a manifest document into its declared functions.
func Decode(data []byte) ([]*Function, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("function manifest: %w", err)
	}
	if len(m.Functions) == 0 {
		return nil, errors.New("function manifest: no functions declared")
	}
	return m.Functions, nil
}

// Catalog decodes a manifest and converts it into a compilable function
// catalog. All validation happens here, before any pattern is built:
// unknown type tags, objects without properties, arrays without items, and
// required names that reference no declared property all fail immediately.
func Catalog(data []byte) (*grammar.FunctionCatalog, error) {
	funcs, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c := &grammar.FunctionCatalog{}
	for _, f := range funcs {
		sig, err := signature(f)
		if err != nil {
			return nil, err
		}
		if err := c.Add(sig); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load reads and converts a manifest file.
func Load(path string) (*grammar.FunctionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Catalog(data)
}

func signature(f *Function) (grammar.FunctionSignature, error) {
	var sig grammar.FunctionSignature
	if f.Name == "" {
		return sig, errors.New("function manifest: function with no name")
	}
	sig.Name = f.Name

	if !f.Parameters.set {
		return sig, fmt.Errorf("%s: missing parameters", f.Name)
	}
	if f.Parameters.Required == nil {
		return sig, fmt.Errorf("%s: missing required parameter list", f.Name)
	}

	declared := make(map[string]bool, len(f.Parameters.Properties))
	for _, p := range f.Parameters.Properties {
		t, err := descriptor(p)
		if err != nil {
			return sig, fmt.Errorf("%s: parameter %q: %w", f.Name, p.Name, err)
		}
		declared[p.Name] = true
		sig.Params = append(sig.Params, grammar.ParameterSpec{
			Name:     p.Name,
			Type:     t,
			Required: slices.Contains(f.Parameters.Required, p.Name),
		})
	}
	for _, name := range f.Parameters.Required {
		if !declared[name] {
			return sig, fmt.Errorf("%s: required parameter %q is not declared", f.Name, name)
		}
	}
	return sig, nil
}

// descriptor maps a manifest type tag to a grammar type descriptor. The tag
// set is the external format's, so it is wider than the grammar's kind
// names: "float" is an alias for number, "any" for string, "dict" for
// object, "tuple" for array.
func descriptor(p *Property) (grammar.TypeDescriptor, error) {
	switch p.Type {
	case "string", "any":
		return grammar.Scalar(grammar.String), nil
	case "integer":
		return grammar.Scalar(grammar.Integer), nil
	case "number", "float":
		return grammar.Scalar(grammar.Number), nil
	case "boolean":
		return grammar.Scalar(grammar.Boolean), nil
	case "null":
		return grammar.Scalar(grammar.Null), nil
	case "array", "tuple":
		if p.Items == nil {
			return grammar.TypeDescriptor{}, errors.New("array type does not declare items")
		}
		elem, err := descriptor(p.Items)
		if err != nil {
			return grammar.TypeDescriptor{}, err
		}
		return grammar.Array(elem, p.MaxItems), nil
	case "object", "dict":
		if len(p.Properties) == 0 {
			return grammar.TypeDescriptor{}, errors.New("object type does not declare properties")
		}
		fields := make([]grammar.Field, 0, len(p.Properties))
		for _, child := range p.Properties {
			t, err := descriptor(child)
			if err != nil {
				return grammar.TypeDescriptor{}, fmt.Errorf("field %q: %w", child.Name, err)
			}
			fields = append(fields, grammar.Field{Name: child.Name, Type: t})
		}
		return grammar.Object(fields...), nil
	case "":
		return grammar.TypeDescriptor{}, errors.New("missing type")
	default:
		return grammar.TypeDescriptor{}, fmt.Errorf("unsupported type %q", p.Type)
	}
}
