package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hello-ai-be/internal/constant"
	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/pkg/logger"
	"hello-ai-be/internal/repository/specification"
	"hello-ai-be/internal/repository/unitofwork"
	"hello-ai-be/internal/state"
	"hello-ai-be/pkg/events"
	"hello-ai-be/pkg/genai"
	pkgNats "hello-ai-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ChatGenerator is the streaming model client the chat service drives.
// *genai.GeminiClient satisfies it.
type ChatGenerator interface {
	StreamGeminiResponse(
		ctx context.Context,
		systemPrompt string,
		chatHistories []*genai.ChatHistory,
		prompt string,
		callback genai.StreamCallback,
	) error
}

// StreamEmitter receives transport frames in fragment order.
type StreamEmitter func(frame dto.StreamChatFrame) error

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error)
	EnsureSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, title string) (*dto.CreateChatSessionResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error)
	GetMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ShowChatSessionResponse, error)
	RenameSession(ctx context.Context, userId uuid.UUID, req *dto.RenameChatSessionRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	StreamChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.StreamChatRequest, emit StreamEmitter) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	registry       *state.Registry
	generator      ChatGenerator
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	registry *state.Registry,
	generator ChatGenerator,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		registry:       registry,
		generator:      generator,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (c *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.CreateChatSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = constant.DefaultSessionTitle
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NewSessionCreated(session.Id, userId, title))

	return &dto.CreateChatSessionResponse{Id: session.Id, Title: title}, nil
}

// EnsureSession persists a session under a caller-chosen id. Replays are
// harmless: an existing row with the same id is left untouched.
func (c *chatService) EnsureSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, title string) (*dto.CreateChatSessionResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = constant.DefaultSessionTitle
	}

	session := entity.ChatSession{
		Id:        sessionId,
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().CreateIfAbsent(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateChatSessionResponse{Id: sessionId, Title: title}, nil
}

func (c *chatService) GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(
		ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, &dto.ChatSessionResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
		})
	}
	return res, nil
}

func (c *chatService) GetMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ShowChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(
		ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := dto.ShowChatSessionResponse{
		Id:       session.Id,
		Title:    session.Title,
		Messages: make([]dto.ChatMessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, dto.ChatMessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return &res, nil
}

func (c *chatService) RenameSession(ctx context.Context, userId uuid.UUID, req *dto.RenameChatSessionRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}

	session.Title = req.Title
	return uow.ChatSessionRepository().Update(ctx, session)
}

func (c *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if _, err := c.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	c.registry.DropChat(sessionId)
	return nil
}

// StreamChat runs one generation turn against the session's store.
//
// The user prompt is committed durably up front; the assistant answer is
// committed exactly once, after the stream completes. A failed stream
// persists nothing partial: the in-memory trailing message is forced to
// the error marker and the error returns to the transport, which emits
// the terminal frame.
func (c *chatService) StreamChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.StreamChatRequest, emit StreamEmitter) error {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" && !req.Regenerate {
		return nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if _, err := c.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	store := c.registry.Chat(sessionId)
	if !store.BeginStream() {
		return fiber.NewError(fiber.StatusConflict, "a stream is already in progress for this session")
	}
	defer store.EndStream()

	if err := c.hydrateStore(ctx, uow, store, sessionId); err != nil {
		store.SetError(err.Error())
		return err
	}

	systemPrompt := strings.TrimSpace(req.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = constant.DefaultSystemPrompt
	}
	store.SetSystemPrompt(systemPrompt)

	// History is captured before the prompt joins the log, so the turn
	// being answered is passed to the generator once, as the prompt.
	log := store.Messages()
	if req.Regenerate {
		if n := len(log); n > 0 && log[n-1].Role == constant.ChatMessageRoleAssistant {
			log = log[:n-1]
		}
		n := len(log)
		if n == 0 || log[n-1].Role != constant.ChatMessageRoleUser {
			return fiber.NewError(fiber.StatusBadRequest, "nothing to regenerate")
		}
		prompt = log[n-1].Content
		store.ReplaceAll(log)
		log = log[:n-1]
	} else {
		userMsg := state.Message{Role: constant.ChatMessageRoleUser, Content: prompt}
		store.AddMessage(userMsg)
		if err := c.commitMessage(ctx, uow, sessionId, userMsg); err != nil {
			store.SetError(err.Error())
			return err
		}
	}

	history := toChatHistories(log)

	store.AddMessage(state.Message{Role: constant.ChatMessageRoleAssistant, Content: ""})

	var accumulated strings.Builder
	streamErr := c.generator.StreamGeminiResponse(ctx, systemPrompt, history, prompt, func(chunk string) error {
		accumulated.WriteString(chunk)
		store.AppendToLastAssistantMessage(chunk)
		return emit(dto.StreamChatFrame{Type: "chunk", Content: chunk})
	})

	if streamErr != nil {
		c.failStream(store, streamErr)
		return streamErr
	}

	// Finalize from the accumulator, not the store, so the durable copy
	// matches what was actually streamed.
	final := store.Messages()
	final[len(final)-1].Content = accumulated.String()
	store.ReplaceAll(final)

	assistantMsg := state.Message{Role: constant.ChatMessageRoleAssistant, Content: accumulated.String()}
	if err := c.commitMessage(ctx, uow, sessionId, assistantMsg); err != nil {
		c.failStream(store, err)
		return err
	}

	c.publishEvent(ctx, events.NewChatTurnCommitted(sessionId, userId, store.Len()))

	return emit(dto.StreamChatFrame{Type: "done"})
}

// hydrateStore loads the durable log into a freshly created store. A
// store that already has messages is left alone.
func (c *chatService) hydrateStore(ctx context.Context, uow unitofwork.UnitOfWork, store *state.ChatStore, sessionId uuid.UUID) error {
	if store.Len() > 0 {
		return nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(
		ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	log := make([]state.Message, 0, len(messages))
	for _, m := range messages {
		log = append(log, state.Message{Role: m.Role, Content: m.Content})
	}
	store.ReplaceAll(log)
	return nil
}

func (c *chatService) commitMessage(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, msg state.Message) error {
	return uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          msg.Role,
		Content:       msg.Content,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	})
}

func (c *chatService) failStream(store *state.ChatStore, cause error) {
	store.SetError(cause.Error())

	log := store.Messages()
	if n := len(log); n > 0 && log[n-1].Role == constant.ChatMessageRoleAssistant {
		log[n-1].Content = constant.StreamErrorMarker
		store.ReplaceAll(log)
	}

	if c.logger != nil {
		c.logger.Error("ChatService", "Stream failed", map[string]interface{}{
			"session_id": store.SessionId().String(),
			"error":      cause.Error(),
		})
	}
}

func (c *chatService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(
		ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}
	return session, nil
}

func (c *chatService) publishEvent(ctx context.Context, event events.Event) {
	if c.eventPublisher == nil {
		return
	}
	// Events power notifications and fan-out; a bus hiccup must not fail
	// the request.
	if err := c.eventPublisher.Publish(ctx, event); err != nil && c.logger != nil {
		c.logger.Warn("ChatService", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func toChatHistories(log []state.Message) []*genai.ChatHistory {
	histories := make([]*genai.ChatHistory, 0, len(log))
	for _, m := range log {
		role := constant.GeminiRoleUser
		if m.Role == constant.ChatMessageRoleAssistant {
			role = constant.GeminiRoleModel
		}
		histories = append(histories, &genai.ChatHistory{Chat: m.Content, Role: role})
	}
	return histories
}
