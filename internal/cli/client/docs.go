package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DocumentInfo represents a document in list responses.
type DocumentInfo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Category   string `json:"category"`
	SizeBytes  int64  `json:"size_bytes"`
	TextLength int    `json:"text_length"`
	IngestedAt string `json:"ingested_at"`
}

// DocumentListResponse represents the document list API response.
type DocumentListResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DownloadResponse represents the download API response.
type DownloadResponse struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
}

// DocsCmd creates the docs command group.
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents",
		Long:  "Lists, deletes, and downloads indexed documents.",
	}

	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsDeleteCmd())
	cmd.AddCommand(docsDownloadCmd())

	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsList(cmd, outputJSON)
		},
	}
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsDelete(cmd, args[0])
		},
	}
}

func docsDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <id>",
		Short: "Get a download link for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsDownload(cmd, args[0], outputJSON)
		},
	}
}

func runDocsList(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/api/documents")
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var listResp DocumentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse document list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if listResp.Count == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}

	fmt.Printf("%d documents:\n\n", listResp.Count)
	for _, doc := range listResp.Documents {
		fmt.Printf("%s  %s\n", doc.ID, doc.Filename)
		fmt.Printf("    Category: %s  Characters: %d  Ingested: %s\n",
			doc.Category, doc.TextLength, doc.IngestedAt)
	}

	return nil
}

func runDocsDelete(cmd *cobra.Command, id string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete("/api/documents/" + id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("Deleted document %s\n", id)
	return nil
}

func runDocsDownload(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/api/documents/" + id + "/download")
	if err != nil {
		return fmt.Errorf("failed to get download link: %w", err)
	}

	var downloadResp DownloadResponse
	if err := json.Unmarshal(resp.Data, &downloadResp); err != nil {
		return fmt.Errorf("failed to parse download response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(downloadResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(downloadResp.DownloadURL)
	return nil
}
