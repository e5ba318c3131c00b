package ports

import (
	"context"
	"errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrUpstream marks a failure of the chat collaborator.
var ErrUpstream = errors.New("chat collaborator failed")

// Message is one turn of a chat completion request.
type Message struct {
	Role    string
	Content string
}

// Completer produces the assistant's answer for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
