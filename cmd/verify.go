package cmd

import (
	"fmt"
	"os"

	"github.com/dlclark/regexp2"
	"github.com/spf13/cobra"

	"github.com/coax-ai/coax/envconfig"
	"github.com/coax-ai/coax/grammar/funcschema"
)

func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify FILE...",
		Short: "Check saved outputs against a compiled grammar",
		Long: `Check saved outputs against a compiled grammar.

Recompiles the grammar from a schema or manifest and reports, file by file,
whether each saved output still fully matches it. Useful for auditing
extraction results after a schema change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaPath, _ := cmd.Flags().GetString("schema")
			manifestPath, _ := cmd.Flags().GetString("functions")
			maxRows, _ := cmd.Flags().GetInt("max-rows")

			var regex string
			switch {
			case schemaPath != "" && manifestPath != "":
				return fmt.Errorf("set either --schema or --functions, not both")
			case schemaPath != "":
				schema, err := loadTableSchema(schemaPath, maxRows)
				if err != nil {
					return err
				}
				if regex, err = schema.Compile(); err != nil {
					return err
				}
			case manifestPath != "":
				catalog, err := funcschema.Load(manifestPath)
				if err != nil {
					return err
				}
				if regex, err = catalog.CompileBounded(envconfig.StringMax); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --schema or --functions is required")
			}

			re, err := regexp2.Compile(`\A(?:`+regex+`)\z`, regexp2.RE2)
			if err != nil {
				return fmt.Errorf("compile grammar: %w", err)
			}

			conforming := 0
			for _, file := range args {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				ok, err := re.MatchString(string(data))
				if err != nil {
					return err
				}
				if ok {
					conforming++
					fmt.Printf("%s: ok\n", file)
				} else {
					fmt.Printf("%s: does not match\n", file)
				}
			}

			fmt.Printf("%d/%d outputs conform\n", conforming, len(args))
			if conforming != len(args) {
				return fmt.Errorf("%d non-conforming outputs", len(args)-conforming)
			}
			return nil
		},
	}

	cmd.Flags().String("schema", "", "Path to a table schema file")
	cmd.Flags().String("functions", "", "Path to a function manifest file")
	cmd.Flags().Int("max-rows", envconfig.MaxRows, "Maximum number of data rows")
	return cmd
}
