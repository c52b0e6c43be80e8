package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, window int) (store.MessageStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisStore(client, "test", window), mr
}

func Test_RedisStore(t *testing.T) {
	st, mr := newRedisStore(t, store.DefaultWindow)
	ctx := chatmodel.SetChatID(context.Background(), "chat1")

	require.NoError(t, st.Add(ctx,
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
		llms.MessageFromTextParts(llms.RoleAI, "hi there"),
	))
	assert.True(t, mr.Exists("test/chatstore/chat1/messages"))

	msgs := st.Messages(ctx)
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleHuman, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].GetContent())
	assert.Equal(t, llms.RoleAI, msgs[1].Role)
	assert.Equal(t, "hi there", msgs[1].GetContent())

	// chats do not share history
	other := chatmodel.SetChatID(context.Background(), "chat2")
	assert.Empty(t, st.Messages(other))

	require.NoError(t, st.Reset(ctx))
	assert.False(t, mr.Exists("test/chatstore/chat1/messages"))
	assert.Empty(t, st.Messages(ctx))
}

func Test_RedisStore_Window(t *testing.T) {
	st, _ := newRedisStore(t, 4)
	ctx := chatmodel.SetChatID(context.Background(), "chat1")

	for i := 0; i < 10; i++ {
		require.NoError(t, st.Add(ctx,
			llms.MessageFromTextParts(llms.RoleHuman, fmt.Sprintf("msg %d", i))))
	}

	// the list is trimmed to the newest window entries on write
	msgs := st.Messages(ctx)
	require.Len(t, msgs, 4)
	assert.Equal(t, "msg 6", msgs[0].GetContent())
	assert.Equal(t, "msg 9", msgs[3].GetContent())
}

func Test_RedisStore_MissingChatID(t *testing.T) {
	st, _ := newRedisStore(t, store.DefaultWindow)

	err := st.Add(context.Background(), llms.MessageFromTextParts(llms.RoleHuman, "hello"))
	require.Error(t, err)
	assert.Nil(t, st.Messages(context.Background()))
}
