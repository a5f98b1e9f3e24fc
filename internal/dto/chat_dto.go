package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatSessionRequest struct {
	Title string `json:"title"`
}

type CreateChatSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type ChatSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ShowChatSessionResponse struct {
	Id       uuid.UUID             `json:"id"`
	Title    string                `json:"title"`
	Messages []ChatMessageResponse `json:"messages"`
}

type RenameChatSessionRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,min=1"`
}

type StreamChatRequest struct {
	Prompt       string `json:"prompt" validate:"required,min=1"`
	SystemPrompt string `json:"system_prompt"`
	// Regenerate drops the last assistant message and replays the last
	// user turn instead of appending Prompt.
	Regenerate bool `json:"regenerate"`
}

// StreamChatFrame is one SSE frame on the chat stream.
type StreamChatFrame struct {
	Type    string `json:"type"` // "chunk", "done", "error"
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}
