package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// StatsResponse represents the stats API response.
type StatsResponse struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	Categories     map[string]int `json:"categories"`
}

// ReindexResponse represents the reindex API response.
type ReindexResponse struct {
	Message string        `json:"message"`
	Stats   StatsResponse `json:"stats"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(cmd, outputJSON)
		},
	}
}

// ReindexCmd creates the reindex command.
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the chunk index",
		Long:  "Rebuilds the chunk index from stored document text.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReindex(cmd, outputJSON)
		},
	}
}

func runStats(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/api/stats")
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	var statsResp StatsResponse
	if err := json.Unmarshal(resp.Data, &statsResp); err != nil {
		return fmt.Errorf("failed to parse stats: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(statsResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printStats(statsResp)
	return nil
}

func runReindex(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/reindex", nil)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	var reindexResp ReindexResponse
	if err := json.Unmarshal(resp.Data, &reindexResp); err != nil {
		return fmt.Errorf("failed to parse reindex response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(reindexResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(reindexResp.Message)
	printStats(reindexResp.Stats)
	return nil
}

func printStats(stats StatsResponse) {
	fmt.Printf("Documents: %d\n", stats.TotalDocuments)
	fmt.Printf("Chunks:    %d\n", stats.TotalChunks)
	if len(stats.Categories) > 0 {
		categories := make([]string, 0, len(stats.Categories))
		for name := range stats.Categories {
			categories = append(categories, name)
		}
		sort.Strings(categories)
		fmt.Println("Categories:")
		for _, name := range categories {
			fmt.Printf("  %s: %d\n", name, stats.Categories[name])
		}
	}
}
