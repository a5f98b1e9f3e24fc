package state

import (
	"sync"

	"hello-ai-be/internal/constant"

	"github.com/google/uuid"
)

// ChatStore holds the in-memory message log for one chat session.
// It is purely local: durable writes are explicit commits made by the
// streaming flow, never a side effect of a store mutation.
type ChatStore struct {
	mu           sync.RWMutex
	messages     []Message
	systemPrompt string
	sessionId    uuid.UUID
	streaming    bool
	lastError    string
}

func NewChatStore(sessionId uuid.UUID) *ChatStore {
	return &ChatStore{sessionId: sessionId}
}

// SetSessionId replaces the active session context. Messages are kept;
// the caller reloads explicitly when it wants the new session's log.
func (s *ChatStore) SetSessionId(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionId = id
}

func (s *ChatStore) SessionId() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionId
}

// AddMessage appends msg to the log.
func (s *ChatStore) AddMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// AppendToLastAssistantMessage concatenates fragment onto the trailing
// message iff that message is an assistant turn; otherwise it is a no-op.
func (s *ChatStore) AppendToLastAssistantMessage(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.messages)
	if n == 0 || s.messages[n-1].Role != constant.ChatMessageRoleAssistant {
		return
	}
	s.messages[n-1].Content += fragment
}

// ReplaceAll atomically swaps the whole log. Used to hydrate from storage
// and to finalize a streamed answer with its accumulated full text.
func (s *ChatStore) ReplaceAll(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]Message(nil), messages...)
}

// Messages returns a copy of the log in insertion order.
func (s *ChatStore) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages...)
}

func (s *ChatStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *ChatStore) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = prompt
}

func (s *ChatStore) SystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemPrompt
}

// BeginStream flips the streaming flag and clears any prior error.
// It reports false if a stream is already in flight, so at most one
// generation runs against the store at a time.
func (s *ChatStore) BeginStream() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streaming {
		return false
	}
	s.streaming = true
	s.lastError = ""
	return true
}

func (s *ChatStore) EndStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = false
}

func (s *ChatStore) Streaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streaming
}

func (s *ChatStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

func (s *ChatStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Reset clears messages, system prompt and session id together.
func (s *ChatStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.systemPrompt = ""
	s.sessionId = uuid.Nil
	s.lastError = ""
}
