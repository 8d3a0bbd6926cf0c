package cmd

import (
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"github.com/coax-ai/coax/envconfig"
	"github.com/coax-ai/coax/server"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the compilation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			manifests, _ := cmd.Flags().GetString("manifests")

			registry := server.NewRegistry()
			if err := registry.LoadDir(manifests); err != nil {
				return err
			}
			if names := registry.Names(); len(names) > 0 {
				slog.Info("loaded catalogs", "names", names)
			}

			ln, err := net.Listen("tcp", envconfig.Bind)
			if err != nil {
				return err
			}

			return server.NewServer(registry, nil).Serve(ln)
		},
	}

	cmd.Flags().String("manifests", "manifests", "Directory of function manifests to preload")
	return cmd
}
