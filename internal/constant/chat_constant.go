package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Role name the generative-language API expects for assistant turns.
	GeminiRoleModel = "model"
	GeminiRoleUser  = "user"

	// Content forced into the trailing assistant message when a stream fails.
	StreamErrorMarker = "(an error occurred)"

	// Fallback when the user leaves the system prompt blank.
	DefaultSystemPrompt = "You are a helpful assistant."

	DefaultSessionTitle = "New Chat"
)

const (
	// Internal watermill topic carrying debounced sticky flushes.
	StickyFlushTopic = "STICKY_FLUSH"

	// NATS event codes.
	EventSessionCreated    = "SESSION_CREATED"
	EventChatTurnCommitted = "CHAT_TURN_COMMITTED"
	EventStickySaved       = "STICKY_SAVED"
)
