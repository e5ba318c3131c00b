// Package llm adapts the chat completion client to the assistant's Completer port.
package llm

import (
	"context"
	"errors"
	"fmt"

	llmclient "github.com/Apurer/cement-dealer-portal/internal/clients/http/llm"
	"github.com/Apurer/cement-dealer-portal/internal/domains/assistant/ports"
)

var (
	_ ports.Completer = (*Completer)(nil)
	_ ports.Completer = Unavailable{}
)

// ChatClient is satisfied by *llmclient.Client.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req llmclient.ChatRequest) (*llmclient.ChatResponse, error)
}

type Completer struct {
	client      ChatClient
	temperature float64
}

func NewCompleter(client ChatClient) *Completer {
	return &Completer{client: client, temperature: 0.3}
}

func (c *Completer) Complete(ctx context.Context, messages []ports.Message) (string, error) {
	req := llmclient.ChatRequest{Messages: make([]llmclient.ChatMessage, 0, len(messages)), Temperature: &c.temperature}
	for _, m := range messages {
		req.Messages = append(req.Messages, llmclient.ChatMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ports.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ports.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Unavailable is used when no API key is configured; every call fails.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, []ports.Message) (string, error) {
	return "", fmt.Errorf("%w: %w", ports.ErrUpstream, errors.New("no LLM API key configured"))
}
