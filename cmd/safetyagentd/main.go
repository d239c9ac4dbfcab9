package main

import (
	"fmt"
	"os"

	"github.com/mrcgomez/safetyagent/internal/cli"
	"github.com/mrcgomez/safetyagent/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "safetyagentd",
		Short: "Safetyagent daemon",
		Long:  "Safetyagent daemon for running the document QA API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
