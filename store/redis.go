package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/saahil/toolcalling", "store")

// The redis store implements the MessageStore interface using Redis as the
// backend. Keys are structured as
// `<prefix>/chatstore/<chatID>/messages`, one list entry per message.
// The list is trimmed to the window on every write.

type redisStore struct {
	client *redis.Client
	prefix string
	window int
}

// NewRedisStore returns a Redis-backed MessageStore keeping at most
// window messages per chat. A non-positive window uses DefaultWindow.
func NewRedisStore(client *redis.Client, prefix string, window int) MessageStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &redisStore{
		client: client,
		prefix: prefix,
		window: window,
	}
}

func (m *redisStore) getMessagesKey(chatID string) string {
	return path.Join(m.prefix, "chatstore", chatID, "messages")
}

func (m *redisStore) Messages(ctx context.Context) []llms.Message {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "GetChatID", "err", err.Error())
		return nil
	}

	key := m.getMessagesKey(chatID)
	data, err := m.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "LRange", "err", err.Error())
		return nil
	}

	var messages []llms.Message
	for _, item := range data {
		var msg llms.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal message", "err", err.Error())
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (m *redisStore) Add(ctx context.Context, msgs ...llms.Message) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	key := m.getMessagesKey(chatID)
	pipe := m.client.Pipeline()
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message")
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, int64(-m.window), -1)
	if _, err = pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to store messages in Redis")
	}
	return nil
}

func (m *redisStore) Reset(ctx context.Context) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	if err := m.client.Del(ctx, m.getMessagesKey(chatID)).Err(); err != nil {
		return errors.Wrap(err, "failed to reset chat in Redis")
	}
	return nil
}
