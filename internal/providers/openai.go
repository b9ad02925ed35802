package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultChatTimeout = 60 * time.Second

// OpenAIClient talks to an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
}

// NewOpenAIClient builds a client for the given API base and model.
func NewOpenAIClient(apiKey, apiBase, model string) *OpenAIClient {
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		model:   model,
		client:  &http.Client{Timeout: defaultChatTimeout},
	}
}

// Complete runs a single-turn completion and returns the model's text.
// An empty answer maps to ErrEmptyCompletion so callers can distinguish
// "model had nothing to say" from transport failures.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, nil)
}

// CompleteJSON runs a completion in JSON mode; the model is constrained to
// emit a single JSON object.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, &responseFormat{Type: "json_object"})
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string, format *responseFormat) (string, error) {
	req := chatRequest{
		Model:          c.model,
		Temperature:    0.2,
		ResponseFormat: format,
	}
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: upstream returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("openai: %w: %v", ErrMalformedCompletion, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai: api error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: %w: no choices", ErrMalformedCompletion)
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// ConversationAgent adapts the completion client to the dispatch Assistant
// contract, prepending the system prompt and the local-time context.
type ConversationAgent struct {
	client       *OpenAIClient
	systemPrompt string
}

const defaultSystemPrompt = "You are a concise personal assistant for a small business owner. " +
	"Answer briefly and practically."

// NewConversationAgent builds the conversational handler backend.
func NewConversationAgent(client *OpenAIClient, systemPrompt string) *ConversationAgent {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &ConversationAgent{client: client, systemPrompt: systemPrompt}
}

// Reply answers a conversational message. localContext carries the resolved
// local date and time so the model can reason about "tomorrow" and friends.
func (a *ConversationAgent) Reply(ctx context.Context, localContext, prompt string) (string, error) {
	system := a.systemPrompt
	if localContext != "" {
		system += "\nCurrent local time: " + localContext
	}
	return a.client.Complete(ctx, system, prompt)
}
