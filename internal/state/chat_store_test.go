package state

import (
	"testing"

	"hello-ai-be/internal/constant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatStoreAppendFlow(t *testing.T) {
	store := NewChatStore(uuid.Nil)

	store.AddMessage(Message{Role: constant.ChatMessageRoleUser, Content: "A"})
	store.AddMessage(Message{Role: constant.ChatMessageRoleAssistant, Content: ""})

	store.AppendToLastAssistantMessage("Hi")
	store.AppendToLastAssistantMessage(" there")
	store.AppendToLastAssistantMessage("!")

	msgs := store.Messages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, "A", msgs[0].Content)
	assert.Equal(t, "Hi there!", msgs[1].Content)
}

func TestChatStoreAppendToLastIgnoredWhenLastIsUser(t *testing.T) {
	store := NewChatStore(uuid.Nil)
	store.AddMessage(Message{Role: constant.ChatMessageRoleUser, Content: "A"})

	store.AppendToLastAssistantMessage("should vanish")

	msgs := store.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, "A", msgs[0].Content)
}

func TestChatStoreAppendToLastOnEmptyStore(t *testing.T) {
	store := NewChatStore(uuid.Nil)

	store.AppendToLastAssistantMessage("nothing to attach to")

	assert.Zero(t, store.Len())
}

func TestChatStoreBeginStreamGuards(t *testing.T) {
	store := NewChatStore(uuid.Nil)

	assert.True(t, store.BeginStream())
	assert.False(t, store.BeginStream(), "second begin while active must be refused")
	assert.True(t, store.Streaming())

	store.EndStream()
	assert.False(t, store.Streaming())
	assert.True(t, store.BeginStream())
}

func TestChatStoreBeginStreamClearsLastError(t *testing.T) {
	store := NewChatStore(uuid.Nil)
	store.SetError("upstream timeout")
	assert.Equal(t, "upstream timeout", store.LastError())

	store.BeginStream()
	assert.Empty(t, store.LastError())
}

func TestChatStoreReplaceAllIsolation(t *testing.T) {
	store := NewChatStore(uuid.Nil)
	incoming := []Message{
		{Role: constant.ChatMessageRoleUser, Content: "A"},
		{Role: constant.ChatMessageRoleAssistant, Content: "B"},
	}

	store.ReplaceAll(incoming)
	incoming[0].Content = "mutated"

	msgs := store.Messages()
	assert.Equal(t, "A", msgs[0].Content, "store must not alias the caller's slice")

	msgs[1].Content = "mutated too"
	assert.Equal(t, "B", store.Messages()[1].Content, "returned copy must not alias internal state")
}

func TestChatStoreReset(t *testing.T) {
	store := NewChatStore(uuid.Nil)
	store.SetSessionId(uuid.New())
	store.SetSystemPrompt("be terse")
	store.AddMessage(Message{Role: constant.ChatMessageRoleUser, Content: "A"})
	store.SetError("boom")

	store.Reset()

	assert.Zero(t, store.Len())
	assert.Equal(t, uuid.Nil, store.SessionId())
	assert.Empty(t, store.SystemPrompt())
	assert.Empty(t, store.LastError())
}
