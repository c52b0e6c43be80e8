package store

import (
	"context"
	"sync"

	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llms"
)

// DefaultWindow caps how many messages are kept per chat. The LLM context
// is finite, so the history cannot grow without bound.
const DefaultWindow = 50

type inMemory struct {
	mu      sync.RWMutex
	window  int
	storage map[string][]llms.Message
}

// NewMemoryStore returns an in-memory MessageStore keeping at most
// window messages per chat. A non-positive window uses DefaultWindow.
func NewMemoryStore(window int) MessageStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &inMemory{window: window}
}

func (m *inMemory) Messages(ctx context.Context) []llms.Message {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[chatID]
}

func (m *inMemory) Add(ctx context.Context, msgs ...llms.Message) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llms.Message)
	}
	history := append(m.storage[chatID], msgs...)
	if len(history) > m.window {
		history = history[len(history)-m.window:]
	}
	m.storage[chatID] = history
	return nil
}

func (m *inMemory) Reset(ctx context.Context) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
