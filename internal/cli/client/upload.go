package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UploadResponse represents the upload API response.
type UploadResponse struct {
	Message       string `json:"message"`
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	Category      string `json:"category"`
	ChunksCreated int    `json:"chunks_created"`
	TextLength    int    `json:"text_length"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Long:  "Uploads a document (PDF, DOCX, TXT, or Markdown) for indexing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], category, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Document category")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath, category string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Upload("/api/upload", filePath, category)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var uploadResp UploadResponse
	if err := json.Unmarshal(resp.Data, &uploadResp); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(uploadResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Uploaded %s\n", uploadResp.Filename)
	fmt.Printf("  ID: %s\n", uploadResp.DocumentID)
	fmt.Printf("  Category: %s\n", uploadResp.Category)
	fmt.Printf("  Chunks: %d\n", uploadResp.ChunksCreated)
	fmt.Printf("  Characters: %d\n", uploadResp.TextLength)

	return nil
}
