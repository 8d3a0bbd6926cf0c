package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
)

func earningsSchema(maxRows int) TableSchema {
	return TableSchema{
		Columns: []ColumnSpec{
			{Name: "year", Type: Year},
			{Name: "revenue", Type: IntegerComma},
			{Name: "operating_income", Type: IntegerComma},
			{Name: "net_income", Type: IntegerComma},
		},
		MaxRows: maxRows,
	}
}

func TestTableHeaderFidelity(t *testing.T) {
	s := earningsSchema(DefaultMaxRows)
	g, err := s.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	header := strings.Join(s.ColumnNames(), ",")
	if !strings.HasPrefix(g, header+"(\n") {
		t.Errorf("grammar %q does not start with literal header %q", g, header)
	}
	if !strings.HasSuffix(g, "\n\n") {
		t.Errorf("grammar %q does not end with the blank-line terminator", g)
	}
}

func TestTableRowBounds(t *testing.T) {
	s := TableSchema{
		Columns: []ColumnSpec{
			{Name: "year", Type: Year},
			{Name: "revenue", Type: IntegerComma},
		},
		MaxRows: 2,
	}
	g, err := s.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	re := regexp.MustCompile(`\A(?:` + g + `)\z`)

	cases := []struct {
		name  string
		doc   string
		match bool
	}{
		{"zero rows", "year,revenue\n\n", true},
		{"one row", "year,revenue\n2023,1,234\n\n", true},
		{"two rows", "year,revenue\n2023,1,234\n2022,987\n\n", true},
		{"three rows", "year,revenue\n2023,1,234\n2022,987\n2021,500\n\n", false},
		{"missing terminator", "year,revenue\n2023,1,234", false},
		{"wrong header", "revenue,year\n2023,1,234\n\n", false},
		{"wrong column type", "year,revenue\nlots,1,234\n\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := re.MatchString(tc.doc); got != tc.match {
				t.Errorf("match(%q) = %v, want %v", tc.doc, got, tc.match)
			}
		})
	}
}

func TestTableZeroMaxRows(t *testing.T) {
	// max rows of zero is the degenerate header-only grammar, not an
	// error.
	s := earningsSchema(0)
	g, err := s.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	re := regexp.MustCompile(`\A(?:` + g + `)\z`)
	if !re.MatchString("year,revenue,operating_income,net_income\n\n") {
		t.Error("header-only document should match")
	}
	if re.MatchString("year,revenue,operating_income,net_income\n2023,1,2,3\n\n") {
		t.Error("data row should not match with max rows of zero")
	}

	if _, err := earningsSchema(-1).Compile(); err == nil {
		t.Error("negative max rows should be an error")
	}
}

func TestTableCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		schema TableSchema
	}{
		{"no columns", TableSchema{MaxRows: 3}},
		{"unnamed column", TableSchema{Columns: []ColumnSpec{{Type: Year}}, MaxRows: 3}},
		{"comma in name", TableSchema{Columns: []ColumnSpec{{Name: "a,b", Type: Year}}, MaxRows: 3}},
		{"unknown kind", TableSchema{Columns: []ColumnSpec{{Name: "x", Type: Kind(99)}}, MaxRows: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if g, err := tc.schema.Compile(); err == nil {
				t.Errorf("Compile = %q, want error", g)
			}
		})
	}
}

func TestParseTableSchema(t *testing.T) {
	data := []byte(`[
		{"name": "year", "type": "year"},
		{"name": "revenue", "type": "integer_comma"}
	]`)
	s, err := ParseTableSchema(data, 2)
	if err != nil {
		t.Fatalf("ParseTableSchema: %v", err)
	}
	if got, want := fmt.Sprint(s.ColumnNames()), "[year revenue]"; got != want {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if s.MaxRows != 2 {
		t.Errorf("MaxRows = %d, want 2", s.MaxRows)
	}

	if _, err := ParseTableSchema([]byte(`[{"name": "x", "type": "complex"}]`), 3); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown type error = %v, want ErrUnknownKind", err)
	}
	if _, err := ParseTableSchema([]byte(`[]`), 3); !errors.Is(err, ErrEmptySchema) {
		t.Errorf("empty schema error = %v, want ErrEmptySchema", err)
	}
}

// The end-to-end shape from the financial-extraction pipeline: a two-column
// schema bounded at two rows.
func TestTableEndToEnd(t *testing.T) {
	s := TableSchema{
		Columns: []ColumnSpec{
			{Name: "year", Type: Year},
			{Name: "revenue", Type: IntegerComma},
		},
		MaxRows: 2,
	}
	g, err := s.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	re := regexp.MustCompile(`\A(?:` + g + `)\z`)

	if !re.MatchString("year,revenue\n2023,1,234\n2022,987\n\n") {
		t.Error("two-row document should match")
	}
	if re.MatchString("year,revenue\n2023,1,234\n2022,987\n2021,500\n\n") {
		t.Error("three-row document should not match")
	}
}
