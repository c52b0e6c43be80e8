package store

import (
	"context"

	"github.com/saahil/toolcalling/pkg/llms"
)

// MessageStore keeps the chat history of a session. The chat ID is taken
// from the chatmodel context.
type MessageStore interface {
	// Messages returns the stored history, oldest first.
	Messages(ctx context.Context) []llms.Message
	// Add appends messages to the history.
	Add(ctx context.Context, msgs ...llms.Message) error
	// Reset clears the history of the chat.
	Reset(ctx context.Context) error
}
