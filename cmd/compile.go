package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coax-ai/coax/envconfig"
	"github.com/coax-ai/coax/grammar"
	"github.com/coax-ai/coax/grammar/funcschema"
)

func NewCompileCmd() *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a schema into a constrained-decoding regex",
	}

	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Compile a CSV table schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("schema")
			maxRows, _ := cmd.Flags().GetInt("max-rows")

			schema, err := loadTableSchema(path, maxRows)
			if err != nil {
				return err
			}
			regex, err := schema.Compile()
			if err != nil {
				return err
			}
			fmt.Print(regex)
			return nil
		},
	}
	tableCmd.Flags().String("schema", "", "Path to a table schema file (JSON array of {name, type})")
	tableCmd.Flags().Int("max-rows", envconfig.MaxRows, "Maximum number of data rows")
	tableCmd.MarkFlagRequired("schema")

	callCmd := &cobra.Command{
		Use:   "call",
		Short: "Compile a function-calling manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("functions")

			catalog, err := funcschema.Load(path)
			if err != nil {
				return err
			}
			regex, err := catalog.CompileBounded(envconfig.StringMax)
			if err != nil {
				return err
			}
			fmt.Println(regex)
			return nil
		},
	}
	callCmd.Flags().String("functions", "", "Path to a function manifest file")
	callCmd.MarkFlagRequired("functions")

	compileCmd.AddCommand(tableCmd, callCmd)
	return compileCmd
}

func loadTableSchema(path string, maxRows int) (grammar.TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grammar.TableSchema{}, err
	}
	return grammar.ParseTableSchema(data, maxRows)
}
