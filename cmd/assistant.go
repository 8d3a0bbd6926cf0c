package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/coax-ai/coax/api"
	"github.com/coax-ai/coax/envconfig"
	"github.com/coax-ai/coax/grammar/funcschema"
	"github.com/coax-ai/coax/progress"
)

const assistantSystemPrompt = `You are an expert designed to call the correct function to solve a problem
based on the user's request.
The functions available (with required parameters) to you are:
%s

You will be given a user prompt and you need to decide which function to
call. You will then need to format the function call correctly and return
it in the correct format. The format for the function call is:
[func1(params_name=params_value)]
NO other text MUST be included.

For example:
Request: I want to order a cheese pizza from Pizza Hut.
Response: [order_food(restaurant="Pizza Hut", item="cheese pizza", quantity=1)]

Request: I want to know the weather in Tokyo.
Response: [get_weather(city="Tokyo")]`

func NewAssistantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Interactive function-calling assistant",
		Long: `Interactive function-calling assistant.

Reads requests from the terminal and answers each with a single call to one
of the functions declared in the manifest. Generation is constrained to the
call grammar compiled from the manifest, so the response is always a
well-formed call to a declared function.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, _ := cmd.Flags().GetString("functions")
			model, _ := cmd.Flags().GetString("model")

			data, err := os.ReadFile(manifestPath)
			if err != nil {
				return err
			}
			funcs, err := funcschema.Decode(data)
			if err != nil {
				return err
			}
			catalog, err := funcschema.Catalog(data)
			if err != nil {
				return err
			}
			regex, err := catalog.CompileBounded(envconfig.StringMax)
			if err != nil {
				return err
			}

			system := fmt.Sprintf(assistantSystemPrompt, formatFunctions(funcs))
			client := api.ClientFromEnvironment()
			if _, err := client.Version(cmd.Context()); err != nil {
				return fmt.Errorf("generation backend at %s is unreachable: %w", envconfig.Host, err)
			}

			return runAssistant(cmd, client, model, system, regex)
		},
	}

	cmd.Flags().String("functions", "", "Path to a function manifest file")
	cmd.Flags().String("model", envconfig.Model, "Model to use")
	cmd.MarkFlagRequired("functions")
	return cmd
}

func runAssistant(cmd *cobra.Command, client *api.Client, model, system, regex string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: historyFile(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("What do you need? ('exit' to leave)")
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		p := progress.NewProgress(os.Stderr)
		p.Add(progress.NewSpinner(""))
		response, err := client.GenerateText(cmd.Context(), &api.GenerateRequest{
			Model:  model,
			System: system,
			Prompt: fmt.Sprintf("Request: %s.", line),
			Regex:  regex,
		})
		p.StopAndClear()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(response)
	}
}

// formatFunctions renders the function list for the system prompt: one
// block per function with its description and parameter descriptions.
func formatFunctions(funcs []*funcschema.Function) string {
	var blocks []string
	for _, f := range funcs {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s: %s\n", f.Name, f.Description)
		for _, p := range f.Parameters.Properties {
			description := p.Description
			if description == "" {
				description = "No description provided"
			}
			fmt.Fprintf(&sb, "- %s: %s\n", p.Name, description)
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n")
}

func historyFile() string {
	if envconfig.NoHistory {
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".coax", "history")
}
