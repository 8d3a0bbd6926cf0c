package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/coax-ai/coax/cmd"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
