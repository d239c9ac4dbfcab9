// Package openai wraps the OpenAI chat completion API behind the small
// generator interface the answer synthesizer consumes.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the OpenAI model used for answer generation.
	DefaultChatModel = openai.GPT3Dot5Turbo
	// DefaultMaxTokens bounds the length of a generated answer.
	DefaultMaxTokens = 500
	// DefaultTemperature keeps answers close to the supplied manual content.
	DefaultTemperature = 0.3
)

var (
	// ErrEmptyPrompt is returned when the user prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrNoChoices is returned when the API responds without any completion
	ErrNoChoices = errors.New("no completion choices returned")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api         ChatAPI
	model       string
	maxTokens   int
	temperature float32
}

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Client{
		api:         openai.NewClient(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// NewClientWithAPI creates a client around a custom ChatAPI (for testing).
func NewClientWithAPI(api ChatAPI) *Client {
	return &Client{
		api:         api,
		model:       DefaultChatModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
}

// Complete sends one system plus user message pair and returns the first
// completion choice.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
