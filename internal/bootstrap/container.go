package bootstrap

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"hello-ai-be/internal/config"
	"hello-ai-be/internal/constant"
	"hello-ai-be/internal/controller"
	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/handler"
	"hello-ai-be/internal/pkg/logger"
	"hello-ai-be/internal/pkg/mailer"
	"hello-ai-be/internal/repository/unitofwork"
	"hello-ai-be/internal/service"
	"hello-ai-be/internal/state"
	"hello-ai-be/internal/websocket"
	"hello-ai-be/pkg/deepai"
	"hello-ai-be/pkg/events"
	"hello-ai-be/pkg/genai"
	"hello-ai-be/pkg/snapshot"
	"hello-ai-be/pkg/unsplash"

	pkgNats "hello-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	BoardController controller.IBoardController
	ImageController controller.IImageController
	AuthController  controller.IAuthController
	OAuthController controller.IOAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	BoardHandler *handler.BoardHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		sysLogger,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/board.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Board State Pipeline
	// Sticky writes flow: store debounce -> gochannel -> consumer -> DB -> NATS -> hub.
	publisherService := service.NewPublisherService(pubSub, cfg.Board.StickyFlushTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Board.StickyFlushTopic,
		uowFactory,
		natsPub,
		sysLogger,
	)

	snapshots, err := snapshot.NewPebbleSnapshotStore(cfg.Board.SnapshotPath)
	if err != nil {
		log.Printf("[WARN] Failed to open board snapshot store: %v. Boards start empty", err)
		snapshots = nil
	}

	debouncer := state.NewDebouncer(time.Duration(cfg.Board.DebounceMillis) * time.Millisecond)

	flush := func(sessionId uuid.UUID, sticky state.Sticky) {
		payload, err := json.Marshal(dto.StickyFlushMessage{
			StickyId:      sticky.Id,
			Content:       sticky.Content,
			X:             sticky.X,
			Y:             sticky.Y,
			Color:         sticky.Color,
			OwnerUserId:   sticky.OwnerUserId,
			ChatSessionId: sessionId,
		})
		if err != nil {
			sysLogger.Error("Bootstrap", "Failed to marshal sticky flush", map[string]interface{}{
				"sticky_id": sticky.Id.String(),
				"error":     err.Error(),
			})
			return
		}
		if err := publisherService.Publish(context.Background(), payload); err != nil {
			sysLogger.Error("Bootstrap", "Failed to publish sticky flush", map[string]interface{}{
				"sticky_id": sticky.Id.String(),
				"error":     err.Error(),
			})
		}
	}

	var snapshotStore state.BoardSnapshotStore
	if snapshots != nil {
		snapshotStore = snapshots
	}

	registry := state.NewRegistry(
		func(sessionId uuid.UUID) *state.ChatStore {
			return state.NewChatStore(sessionId)
		},
		func(ownerId uuid.UUID) *state.StickyStore {
			return state.NewStickyStore(ownerId, snapshotStore, debouncer, flush, sysLogger)
		},
	)

	// Fan saved-sticky confirmations out to connected boards.
	if natsSub != nil {
		err := natsSub.Subscribe(
			"events."+constant.EventStickySaved,
			"board-fanout",
			func(ctx context.Context, event events.Event) error {
				payload := event.Payload()
				ownerStr, _ := payload["owner_user_id"].(string)
				stickyStr, _ := payload["sticky_id"].(string)

				ownerId, err := uuid.Parse(ownerStr)
				if err != nil {
					// Unparseable events are dropped, not retried.
					return nil
				}
				stickyId, _ := uuid.Parse(stickyStr)

				wsHub.BroadcastBoardEvent(ownerId, dto.BoardEvent{
					Type:     "sticky_saved",
					StickyId: stickyId,
				})
				return nil
			},
		)
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to sticky events: %v", err)
		}
	}

	// 4. Vendor Clients
	geminiClient := genai.NewGeminiClient(cfg.Keys.GoogleGemini)
	unsplashClient := unsplash.NewClient(cfg.Keys.Unsplash)
	deepaiClient := deepai.NewClient(cfg.Keys.DeepAI)

	// 5. Services
	chatService := service.NewChatService(uowFactory, registry, geminiClient, natsPub, sysLogger)
	boardService := service.NewBoardService(registry, wsHub)
	imageService := service.NewImageService(geminiClient, unsplashClient, deepaiClient, sysLogger)
	authService := service.NewAuthService(uowFactory, emailService, sysLogger)
	oauthService := service.NewOAuthService(uowFactory, sysLogger)

	// 6. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		BoardController: controller.NewBoardController(boardService),
		ImageController: controller.NewImageController(imageService),
		AuthController:  controller.NewAuthController(authService),
		OAuthController: controller.NewOAuthController(oauthService),

		ConsumerService: consumerService,

		BoardHandler: handler.NewBoardHandler(wsHub, wsLogger),
		WebSocketHub: wsHub,
	}
}
