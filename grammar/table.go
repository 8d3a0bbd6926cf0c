package grammar

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxRows is the default bound on generated data rows. Financial
// filings rarely report more than three years of annual data, which is where
// the number comes from; callers with other domains should set their own.
const DefaultMaxRows = 3

// ColumnSpec is one column of a tabular schema: a name and a scalar kind.
type ColumnSpec struct {
	Name string
	Type Kind
}

// TableSchema describes the CSV document a model is asked to produce: an
// ordered list of typed columns and an upper bound on data rows.
type TableSchema struct {
	Columns []ColumnSpec

	// MaxRows bounds the number of data lines. Zero compiles to the
	// degenerate header-only grammar; negative is an error. Callers
	// wanting the default should use DefaultMaxRows explicitly.
	MaxRows int
}

// Compile emits a regex matching a literal header line followed by zero to
// MaxRows data lines and a terminating blank line. The double newline gives
// the generator an unambiguous way to signal "no more rows".
//
// The header is the column names joined by commas, verbatim and in order.
// It must match the column list advertised in the prompt exactly, or
// generated values will be silently attributed to the wrong columns by
// downstream parsing.
func (s TableSchema) Compile() (string, error) {
	if len(s.Columns) == 0 {
		return "", fmt.Errorf("table schema: %w", ErrEmptySchema)
	}
	if s.MaxRows < 0 {
		return "", fmt.Errorf("table schema: max rows %d is negative", s.MaxRows)
	}

	names := make([]string, len(s.Columns))
	patterns := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" {
			return "", fmt.Errorf("table schema: column %d has no name", i)
		}
		if strings.ContainsAny(c.Name, ",\n") {
			return "", fmt.Errorf("table schema: column %q contains a comma or newline", c.Name)
		}
		p, err := c.Type.Pattern()
		if err != nil {
			return "", fmt.Errorf("column %q: %w", c.Name, err)
		}
		names[i] = c.Name
		patterns[i] = p
	}

	header := strings.Join(names, ",")
	dataLine := strings.Join(patterns, ",")
	return fmt.Sprintf("%s(\n%s){0,%d}\n\n", header, dataLine, s.MaxRows), nil
}

type columnJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ParseTableSchema decodes a schema file: an ordered JSON array of
// {"name": ..., "type": ...} pairs. The array form is deliberate; JSON
// object keys would not preserve column order.
func ParseTableSchema(data []byte, maxRows int) (TableSchema, error) {
	var cols []columnJSON
	if err := json.Unmarshal(data, &cols); err != nil {
		return TableSchema{}, fmt.Errorf("table schema: %w", err)
	}
	s := TableSchema{MaxRows: maxRows}
	for i, c := range cols {
		if c.Name == "" {
			return TableSchema{}, fmt.Errorf("table schema: column %d has no name", i)
		}
		k, err := ParseKind(c.Type)
		if err != nil {
			return TableSchema{}, fmt.Errorf("column %q: %w", c.Name, err)
		}
		s.Columns = append(s.Columns, ColumnSpec{Name: c.Name, Type: k})
	}
	if len(s.Columns) == 0 {
		return TableSchema{}, fmt.Errorf("table schema: %w", ErrEmptySchema)
	}
	return s, nil
}

// ColumnNames returns the schema's column names in order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// TypeNames returns the schema's column type names in order.
func (s TableSchema) TypeNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Type.String()
	}
	return names
}
