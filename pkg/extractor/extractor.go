// Package extractor turns free-form query text into graph seed identifiers
// using an LLM-backed entity extraction service. It is consumed only by
// traversal-mode searches over free text; callers fall back to the raw query
// as a pseudo-seed when extraction fails.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ragno-ai/ragno/pkg/types"
)

// Client extracts entity mentions from text.
type Client interface {
	// Extract returns the entity names mentioned in text, best first.
	Extract(ctx context.Context, text string) ([]string, error)

	Close() error
}

// Config holds settings for the LLM extraction client.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

const extractionSystemPrompt = `You are an entity extraction system. Given a search query, list the named entities and key concepts it mentions. Respond with only a JSON array of strings, most important first, e.g. ["beer brewing","fermentation"].`

// LLMClient implements Client over an OpenAI-compatible chat endpoint.
type LLMClient struct {
	client *openai.Client
	model  string
}

// NewLLMClient creates an extraction client.
func NewLLMClient(config Config) *LLMClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &LLMClient{client: openai.NewClientWithConfig(clientConfig), model: model}
}

func (c *LLMClient) Extract(ctx context.Context, text string) ([]string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, types.NewConnectivityError("extraction service", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction returned no choices")
	}

	return parseEntityList(resp.Choices[0].Message.Content)
}

func (c *LLMClient) Close() error { return nil }

// parseEntityList decodes a JSON array of strings, repairing malformed LLM
// output before giving up.
func parseEntityList(content string) ([]string, error) {
	content = strings.TrimSpace(content)

	var entities []string
	if err := json.Unmarshal([]byte(content), &entities); err != nil {
		repaired, _ := jsonrepair.JSONRepair(content)
		if err := json.Unmarshal([]byte(repaired), &entities); err != nil {
			return nil, fmt.Errorf("unparseable extraction response: %w", err)
		}
	}

	out := make([]string, 0, len(entities))
	for _, e := range entities {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out, nil
}
