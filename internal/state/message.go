package state

// Message is one chat turn as the stores and the streaming flow see it.
// Role is constant.ChatMessageRoleUser or constant.ChatMessageRoleAssistant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
