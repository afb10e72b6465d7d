// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Endpoints for OpenAI-compatible providers. Package-level vars for test
// substitution.
var (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	openAIBaseURL = "https://api.openai.com/v1"
)

// ChatCompletionsBackend calls an OpenAI-compatible /chat/completions
// endpoint (Groq, OpenAI, or a gateway).
type ChatCompletionsBackend struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Client      *http.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message *Message `json:"message"`
		Text    *string  `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends messages and maps the choices onto a Response: one message
// choice becomes KindMessage, several become KindMessages, and a legacy
// completions "text" field becomes KindText.
func (c *ChatCompletionsBackend) Complete(ctx context.Context, messages []Message) (Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, string(raw))
		}
		return Response{}, fmt.Errorf("decoding response: %w", err)
	}
	if cr.Error != nil {
		return Response{}, fmt.Errorf("chat completions error: %s", cr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, string(raw))
	}

	var msgs []Message
	for _, ch := range cr.Choices {
		switch {
		case ch.Message != nil:
			msgs = append(msgs, *ch.Message)
		case ch.Text != nil:
			return TextResponse(*ch.Text), nil
		}
	}
	switch len(msgs) {
	case 0:
		return Response{}, nil
	case 1:
		return MessageResponse(msgs[0]), nil
	default:
		return MessagesResponse(msgs), nil
	}
}
