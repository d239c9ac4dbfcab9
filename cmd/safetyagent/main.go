package main

import (
	"fmt"
	"os"

	"github.com/mrcgomez/safetyagent/internal/cli"
	"github.com/mrcgomez/safetyagent/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "safetyagent",
		Short: "Safetyagent CLI - Document question answering",
		Long: `Safetyagent CLI provides commands to upload documents and ask questions
answered from their contents.

Environment variables:
  SAFETYAGENT_API_URL   API base URL (default: http://localhost:8000)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.DocsCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.ReindexCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
