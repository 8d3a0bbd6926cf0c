package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coax-ai/coax/logutil"
	"github.com/coax-ai/coax/version"
)

func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:   "coax",
		Short: "Coax language models into typed, schema-conformant output",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			logutil.Init()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("coax version %s\n", version.Version)

			if check, _ := cmd.Flags().GetBool("check"); check {
				newer, latest, err := version.CheckForUpdate(cmd.Context())
				if err != nil {
					return err
				}
				if newer {
					fmt.Printf("a newer version is available: %s\n", latest)
				} else {
					fmt.Println("you are on the latest version")
				}
			}
			return nil
		},
	}
	versionCmd.Flags().Bool("check", false, "Check for a newer version")

	rootCmd.AddCommand(
		NewCompileCmd(),
		NewExtractCmd(),
		NewAssistantCmd(),
		NewVerifyCmd(),
		NewServeCmd(),
		versionCmd,
	)

	return rootCmd
}
