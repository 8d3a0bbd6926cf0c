// Package grammar compiles declarative output schemas into regular
// expressions for constrained decoding. A generation backend that enforces a
// regex token-by-token can use the compiled patterns to force a model's
// output into a parseable shape: a CSV table with typed columns, or a call
// to one of a set of declared functions.
//
// Every pattern this package emits is finite and boundedly quantified.
// Constrained decoding operates over a finite-state acceptor, so open-ended
// repetition is never produced: rows, array elements and string bodies all
// carry explicit upper bounds.
//
// Compilation is pure and deterministic. Schemas are built once, compiled
// once, and the resulting pattern is reused across generation calls.
package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnknownKind is returned when a schema names a scalar kind that is
	// not in the pattern table.
	ErrUnknownKind = errors.New("unknown scalar kind")

	// ErrEmptySchema is returned when a schema or catalog declares nothing
	// to compile.
	ErrEmptySchema = errors.New("empty schema")
)

// DefaultMaxItems bounds array elements when a descriptor does not carry its
// own bound.
const DefaultMaxItems = 9

// TypeDescriptor describes the shape of one value: a scalar kind, a bounded
// array of a single element type, or an object with a fixed, ordered set of
// named fields.
type TypeDescriptor struct {
	kind     Kind
	elem     *TypeDescriptor
	fields   []Field
	maxItems int
	tag      typeTag
}

type typeTag int

const (
	tagScalar typeTag = iota
	tagArray
	tagObject
)

// Field is one named member of an object descriptor. Field order is part of
// the grammar: objects render their fields in declaration order.
type Field struct {
	Name string
	Type TypeDescriptor
}

// Scalar returns a descriptor for a single scalar kind.
func Scalar(k Kind) TypeDescriptor {
	return TypeDescriptor{tag: tagScalar, kind: k}
}

// Array returns a descriptor for a bracketed, comma-separated list of at
// most maxItems elements. A maxItems of zero or less takes DefaultMaxItems.
func Array(elem TypeDescriptor, maxItems int) TypeDescriptor {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return TypeDescriptor{tag: tagArray, elem: &elem, maxItems: maxItems}
}

// Object returns a descriptor for a brace-enclosed object with the given
// fields, rendered as `"name": <pattern>` pairs in declaration order.
func Object(fields ...Field) TypeDescriptor {
	return TypeDescriptor{tag: tagObject, fields: fields}
}

// CompilePattern compiles a type descriptor to a regex fragment.
func CompilePattern(t TypeDescriptor) (string, error) {
	return compilePattern(t, DefaultStringMax)
}

func compilePattern(t TypeDescriptor, stringMax int) (string, error) {
	switch t.tag {
	case tagScalar:
		p := t.kind.pattern(stringMax)
		if p == "" {
			return "", fmt.Errorf("%w Kind(%d)", ErrUnknownKind, int(t.kind))
		}
		return p, nil
	case tagArray:
		p, err := compilePattern(*t.elem, stringMax)
		if err != nil {
			return "", err
		}
		// 0..maxItems elements. The empty list is legal output; a model
		// reporting "nothing found" must have a conformant way to say so.
		return fmt.Sprintf(`\[(%s(, %s){0,%d})?\]`, p, p, t.maxItems-1), nil
	case tagObject:
		if len(t.fields) == 0 {
			return "", fmt.Errorf("object descriptor: %w", ErrEmptySchema)
		}
		var sb strings.Builder
		sb.WriteString(`\{`)
		for i, f := range t.fields {
			if f.Name == "" {
				return "", fmt.Errorf("object descriptor: field %d has no name", i)
			}
			p, err := compilePattern(f.Type, stringMax)
			if err != nil {
				return "", fmt.Errorf("field %q: %w", f.Name, err)
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, `"%s": %s`, f.Name, p)
		}
		sb.WriteString(`\}`)
		return sb.String(), nil
	}
	return "", fmt.Errorf("invalid type descriptor tag %d", t.tag)
}

// Choice returns a pattern matching exactly one of the given literals. It is
// the smallest useful grammar: classification prompts constrain the model to
// a fixed menu of answers.
func Choice(literals []string) (string, error) {
	if len(literals) == 0 {
		return "", fmt.Errorf("choice: %w", ErrEmptySchema)
	}
	quoted := make([]string, len(literals))
	for i, l := range literals {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return "(" + strings.Join(quoted, "|") + ")", nil
}
