package cmd

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPages(t *testing.T) {
	doc := "PAGE ONE\ncontent\n---\nPAGE TWO\n---\n\n---\nPAGE THREE"
	pages := splitPages(doc)
	require.Len(t, pages, 3)
	assert.Equal(t, "PAGE ONE\ncontent", pages[0])
	assert.Equal(t, "PAGE TWO", pages[1])
	assert.Equal(t, "PAGE THREE", pages[2])

	assert.Empty(t, splitPages("\n---\n\n---\n"))
}

func TestJoinPages(t *testing.T) {
	pages := []string{"a", "b", "c"}
	joined := joinPages(pages, []int{2, 0})
	assert.Equal(t, "\n---\nPAGE 0\nc\n---\n\n---\nPAGE 1\na\n---\n", joined)
	assert.Empty(t, joinPages(pages, nil))
}

func TestParseCSV(t *testing.T) {
	records, err := parseCSV("year,revenue\n2022,\"51,700.00\"\n2023,60922\n\n")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2022", "51,700.00"}, records[0])
	assert.Equal(t, []string{"2023", "60922"}, records[1])
}

func TestParseCSVHeaderOnly(t *testing.T) {
	records, err := parseCSV("year,revenue\n\n")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseCSVRaggedRows(t *testing.T) {
	// unquoted comma-grouped numbers split into extra fields
	records, err := parseCSV("year,revenue\n2023,51,728\n")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"2023", "51", "728"}, records[0])
}

func TestEarningsSchemaCompiles(t *testing.T) {
	schema := earningsSchema(2)
	pattern, err := schema.Compile()
	require.NoError(t, err)

	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	require.NoError(t, err)

	assert.True(t, re.MatchString("year,revenue,operating_income,net_income\n2023,51728,5864,4792\n\n"))
	assert.True(t, re.MatchString("year,revenue,operating_income,net_income\n\n"))
	assert.False(t, re.MatchString("year,total_revenue\n2023,51728\n\n"))
}

func TestLoadTableSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	err := os.WriteFile(path, []byte(`[
		{"name": "year", "type": "year"},
		{"name": "revenue", "type": "integer_comma"}
	]`), 0o644)
	require.NoError(t, err)

	schema, err := loadTableSchema(path, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "revenue"}, schema.ColumnNames())
	assert.Equal(t, 5, schema.MaxRows)

	_, err = loadTableSchema(filepath.Join(t.TempDir(), "missing.json"), 5)
	assert.Error(t, err)
}
