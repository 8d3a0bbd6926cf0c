package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coax-ai/coax/api"
	"github.com/coax-ai/coax/envconfig"
	"github.com/coax-ai/coax/format"
	"github.com/coax-ai/coax/grammar"
	"github.com/coax-ai/coax/progress"
)

// earningsSchema is the default extraction target: the income-statement
// columns of a financial filing.
func earningsSchema(maxRows int) grammar.TableSchema {
	return grammar.TableSchema{
		Columns: []grammar.ColumnSpec{
			{Name: "year", Type: grammar.Year},
			{Name: "revenue", Type: grammar.IntegerComma},
			{Name: "operating_income", Type: grammar.IntegerComma},
			{Name: "net_income", Type: grammar.IntegerComma},
		},
		MaxRows: maxRows,
	}
}

func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract typed CSV tables from markdown documents",
		Long: `Extract typed CSV tables from markdown documents.

Each document is split into pages on "\n---\n" separators. Pages are
classified with a constrained Yes/Maybe/No prompt to find the ones holding
the target table, then the matching pages are handed to the model under a
CSV grammar compiled from the schema.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			schemaPath, _ := cmd.Flags().GetString("schema")
			maxRows, _ := cmd.Flags().GetInt("max-rows")
			outDir, _ := cmd.Flags().GetString("out")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			schema := earningsSchema(maxRows)
			if schemaPath != "" {
				var err error
				schema, err = loadTableSchema(schemaPath, maxRows)
				if err != nil {
					return err
				}
			}

			client := api.ClientFromEnvironment()
			if _, err := client.Version(cmd.Context()); err != nil {
				return fmt.Errorf("generation backend at %s is unreachable: %w", envconfig.Host, err)
			}

			for _, file := range args {
				if err := extractFile(cmd.Context(), client, model, schema, file, outDir, concurrency); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("model", envconfig.Model, "Model to use")
	cmd.Flags().String("schema", "", "Path to a table schema file (default: income-statement columns)")
	cmd.Flags().Int("max-rows", envconfig.MaxRows, "Maximum number of data rows")
	cmd.Flags().String("out", "", "Directory to write extracted CSV files to")
	cmd.Flags().Int("concurrency", 4, "Concurrent page classification requests")
	return cmd
}

func extractFile(ctx context.Context, client *api.Client, model string, schema grammar.TableSchema, file, outDir string, concurrency int) error {
	started := time.Now()

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	pages := splitPages(string(data))
	if len(pages) == 0 {
		return fmt.Errorf("no pages found")
	}
	fmt.Printf("%s: %s, %d pages\n", file, format.HumanBytes(int64(len(data))), len(pages))

	p := progress.NewProgress(os.Stderr)
	bar := progress.NewBar("classifying", len(pages))
	p.Add(bar)

	relevant, err := classifyPages(ctx, client, model, pages, concurrency, bar.Increment)
	if err != nil {
		p.StopAndClear()
		return err
	}
	p.StopAndClear()

	if len(relevant) == 0 {
		return fmt.Errorf("no page matched the classification prompt")
	}

	regex, err := schema.Compile()
	if err != nil {
		return err
	}

	p = progress.NewProgress(os.Stderr)
	spinner := progress.NewSpinner("extracting")
	p.Add(spinner)

	opts := api.DefaultOptions()
	text, err := client.GenerateText(ctx, &api.GenerateRequest{
		Model:   model,
		Prompt:  extractionPrompt(schema, joinPages(pages, relevant)),
		Regex:   regex,
		Options: &opts,
	})
	p.StopAndClear()
	if err != nil {
		return err
	}

	records, err := parseCSV(text)
	if err != nil {
		return err
	}
	renderTable(os.Stdout, schema.ColumnNames(), records)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".csv"
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(text), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", filepath.Join(outDir, name))
	}

	fmt.Printf("%d rows in %s\n", len(records), format.HumanDuration(time.Since(started)))
	return nil
}

// splitPages breaks a markdown document into pages on horizontal-rule
// separators, dropping empty pages.
func splitPages(doc string) []string {
	var pages []string
	for _, page := range strings.Split(doc, "\n---\n") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

// classifyPages asks the model, page by page, whether a page contains the
// target table, constrained to answer Yes, Maybe or No. Only "Yes" pages are
// kept; done is called as each page finishes.
func classifyPages(ctx context.Context, client *api.Client, model string, pages []string, concurrency int, done func()) ([]int, error) {
	choice, err := grammar.Choice([]string{"Yes", "Maybe", "No"})
	if err != nil {
		return nil, err
	}

	answers := make([]string, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			defer done()
			answer, err := client.GenerateText(ctx, &api.GenerateRequest{
				Model:  model,
				Prompt: classifyPrompt(page),
				Regex:  choice,
			})
			if err != nil {
				return err
			}
			answers[i] = answer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var relevant []int
	for i, answer := range answers {
		if answer == "Yes" {
			relevant = append(relevant, i)
		}
	}
	return relevant, nil
}

func joinPages(pages []string, idx []int) string {
	var sb strings.Builder
	for n, i := range idx {
		fmt.Fprintf(&sb, "\n---\nPAGE %d\n%s\n---\n", n, pages[i])
	}
	return sb.String()
}

func classifyPrompt(page string) string {
	return fmt.Sprintf(`Analyze the following page from a financial filing and determine if it
contains the comprehensive income statement: the primary financial statement
for the company over the year.

Page content:
%s

Criteria:
1. Must contain key income statement line items such as revenue, cost of
   revenue, operating expenses and net income.
2. Must show financial results for specific time periods.
3. Must be a primary financial statement, not discussion or analysis.
4. Numbers should be presented in a structured tabular format.

Answer only 'Yes' if this page contains a complete comprehensive income
statement table, or 'No' if it does not. If you are not sure, answer
'Maybe'.`, page)
}

func extractionPrompt(schema grammar.TableSchema, pages string) string {
	return fmt.Sprintf(`Extract annual financial data from this set of pages. Pages were chosen
because they may contain a comprehensive income statement; verify that you
are extracting from it and not some other financial statement.

Create a row for each year available with the following columns: %s.
Each column has types: %s.

# Relevant pages:

%s

# Output format:

- CSV format with headers: %s
- If no data are found, do not create a row.
- Enter two newline characters to terminate the CSV when no more data are
  found.`,
		strings.Join(schema.ColumnNames(), ", "),
		strings.Join(schema.TypeNames(), ", "),
		pages,
		strings.Join(schema.ColumnNames(), ","))
}

// parseCSV parses generated CSV output into data records, dropping the
// header line. Comma-grouped numbers make rows ragged, so no field count is
// enforced.
func parseCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text) + "\n"))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse generated CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

func renderTable(w io.Writer, headers []string, records [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(records)
	table.Render()
}
