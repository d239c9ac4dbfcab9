package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatSource is a citation attached to an answer.
type ChatSource struct {
	Filename  string  `json:"filename"`
	ChunkID   string  `json:"chunk_id"`
	Relevance float64 `json:"relevance"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Response   string       `json:"response"`
	Confidence float64      `json:"confidence"`
	Sources    []ChatSource `json:"sources"`
	SessionID  string       `json:"session_id"`
	Timestamp  string       `json:"timestamp"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  "Asks a question and prints the answer synthesized from indexed documents.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, strings.Join(args, " "), outputJSON)
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, question string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/chat", ChatRequest{Query: question})
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(resp.Data, &chatResp); err != nil {
		return fmt.Errorf("failed to parse chat response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(chatResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(chatResp.Response)
	fmt.Printf("\nConfidence: %.2f\n", chatResp.Confidence)
	if len(chatResp.Sources) > 0 {
		names := make([]string, 0, len(chatResp.Sources))
		for _, src := range chatResp.Sources {
			names = append(names, src.Filename)
		}
		fmt.Printf("Sources: %s\n", strings.Join(names, ", "))
	}

	return nil
}
